package services

import (
	"context"
	"sync"
	"time"

	"github.com/avatarctic/diskcache/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// DefaultSweepInterval is used when no sweep period is configured.
const DefaultSweepInterval = 5 * time.Minute

// Sweeper periodically asks the engine to purge expired records from both
// tiers. It never touches storage itself. Sweeps run in the loop goroutine;
// a sweep outlasting the interval simply delays the next tick, and because
// sweep operations are idempotent an extra manual sweep alongside the loop is
// harmless.
//
// Ownership model: the Sweeper owns its goroutine. Call Stop to shut it down.
type Sweeper struct {
	engine   ports.CacheEngine
	interval time.Duration
	logger   *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewSweeper creates a sweeper over engine. A non-positive interval falls
// back to DefaultSweepInterval.
func NewSweeper(engine ports.CacheEngine, interval time.Duration, logger *logrus.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{engine: engine, interval: interval, logger: logger, ctx: ctx, cancel: cancel}
}

// Start launches the background loop. Calling Start more than once has no
// effect.
func (s *Sweeper) Start() {
	s.once.Do(func() {
		s.wg.Add(1)
		go s.loop()
	})
}

func (s *Sweeper) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"interval": s.interval.String()}).Info("sweeper: started")
	}
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			removed := s.engine.SweepExpired(s.ctx)
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{
					"removed":  removed,
					"duration": time.Since(start).String(),
				}).Debug("sweeper: pass finished")
			}
		}
	}
}

// Stop cancels the loop and waits for an in-flight sweep to finish. Safe to
// call multiple times and before Start.
func (s *Sweeper) Stop() {
	s.cancel()
	s.wg.Wait()
}
