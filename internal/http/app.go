package http

import (
	"context"

	"farebridge_backend/internal/events"
	"farebridge_backend/platform/config"
	"farebridge_backend/platform/logger"
)

// HealthChecker is the minimal ping surface the readiness endpoint probes.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App carries the initialized dependencies the router needs. The
// composition root in cmd/api populates it.
type App struct {
	// Config scopes the server settings the router reads.
	Config config.HTTPConfig
	// Logger is the shared structured logger.
	Logger *logger.Logger
	// Health lists the backends the readiness endpoint pings.
	Health []HealthChecker
	// EventBus carries domain events between modules.
	EventBus events.Bus
	// Modules are the HTTP-facing feature modules to register.
	Modules []Module
}
