package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Healthy reports whether the component answered its health probe.
func (h Health) Healthy() bool { return h.Status == StatusHealthy }

// Component is a connection owned by the application context: a database
// pool, a cache client. It is started before any hook runs and stopped when
// the context is closed.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is what a component reports about itself for the startup
// summary.
type Description struct {
	// Name is the display name, e.g. "PostgreSQL". Defaults to Component.Name.
	Name string
	// Type categorizes the component: "database", "cache".
	Type string
	// Details is a one-liner such as "localhost:5432/app pool=1-10".
	Details string
}

// Describable is optionally implemented by components that want a line in
// the startup summary.
type Describable interface {
	Describe() Description
}
