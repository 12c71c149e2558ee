// Package httpserver exposes the cache's operational surface over HTTP:
// health, statistics, and prometheus metrics. Cache operations themselves are
// never served here; the cache has no external clients.
package httpserver

import (
	"time"

	"github.com/avatarctic/diskcache/internal/core/ports"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	engine         ports.CacheEngine
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, engine ports.CacheEngine, healthCheckers []ports.HealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		engine:         engine,
		healthCheckers: healthCheckers,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.echo.GET("/healthz", s.healthCheck)
	s.echo.GET("/stats", s.statsEndpoint)
	s.echo.GET("/metrics", s.metricsEndpoint)
}
