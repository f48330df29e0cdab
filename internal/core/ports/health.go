package ports

import "context"

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks
//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks

// HealthChecker checks external dependency health.
type HealthChecker interface {
	// Ping verifies connectivity. Returns nil if healthy.
	Ping(ctx context.Context) error
	// Name returns the dependency name (e.g., "postgresql", "redis").
	Name() string
}
