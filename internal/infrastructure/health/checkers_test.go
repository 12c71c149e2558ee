package health_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/avatarctic/diskcache/internal/application/services"
	"github.com/avatarctic/diskcache/internal/infrastructure/filestore"
	"github.com/avatarctic/diskcache/internal/infrastructure/health"
	"github.com/avatarctic/diskcache/internal/infrastructure/memindex"
	"github.com/stretchr/testify/require"
)

func TestStorageChecker(t *testing.T) {
	ok := health.NewStorageHealthChecker(t.TempDir())
	require.Equal(t, "storage", ok.Name())
	require.NoError(t, ok.Check(context.Background()))

	missing := health.NewStorageHealthChecker(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, missing.Check(context.Background()))
}

func TestEngineChecker(t *testing.T) {
	engine := services.NewCacheService(memindex.New(10), filestore.New(t.TempDir(), nil), services.SystemClock{}, nil, nil)
	hc := health.NewEngineHealthChecker(engine)
	require.Equal(t, "cache", hc.Name())
	require.NoError(t, hc.Check(context.Background()))

	// The probe cleans up after itself.
	require.Zero(t, engine.Stats(context.Background()).FileItems)
}
