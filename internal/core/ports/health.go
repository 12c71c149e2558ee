package ports

import "context"

// HealthChecker abstracts a probe over one cache dependency (storage
// directory, engine round-trip). Implementations return error if unhealthy.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}
