package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/avatarctic/diskcache/internal/core/ports"
)

// storageHealthChecker probes the cache directory for writability.
type storageHealthChecker struct{ dir string }

func (s *storageHealthChecker) Name() string { return "storage" }

func (s *storageHealthChecker) Check(_ context.Context) error {
	f, err := os.CreateTemp(s.dir, "healthcheck-*")
	if err != nil {
		return fmt.Errorf("cache directory not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// engineHealthChecker exercises a full set/get/delete round trip through both
// tiers. The probe key is short-lived and removed immediately, but the calls
// do count toward the engine's lifetime statistics.
type engineHealthChecker struct{ engine ports.CacheEngine }

func (e *engineHealthChecker) Name() string { return "cache" }

func (e *engineHealthChecker) Check(ctx context.Context) error {
	const probeKey = "healthcheck:probe"
	if err := e.engine.Set(ctx, probeKey, "ok", time.Minute); err != nil {
		return fmt.Errorf("probe write failed: %w", err)
	}
	if _, ok := e.engine.Get(ctx, probeKey); !ok {
		return fmt.Errorf("probe read came back absent")
	}
	e.engine.Delete(ctx, probeKey)
	return nil
}

// NewStorageHealthChecker creates a health checker for the cache directory.
func NewStorageHealthChecker(dir string) ports.HealthChecker {
	return &storageHealthChecker{dir: dir}
}

// NewEngineHealthChecker creates a health checker for the cache engine.
func NewEngineHealthChecker(engine ports.CacheEngine) ports.HealthChecker {
	return &engineHealthChecker{engine: engine}
}
