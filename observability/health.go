package observability

import "github.com/kbukum/insane/component"

// HealthStatus is the overall state reported by a health endpoint.
type HealthStatus string

const (
	HealthStatusUp   HealthStatus = "up"
	HealthStatusDown HealthStatus = "down"
)

// ServiceHealth describes the overall health of a service and its components.
type ServiceHealth struct {
	Service    string             `json:"service"`
	Status     HealthStatus       `json:"status"`
	Version    string             `json:"version,omitempty"`
	Components []component.Health `json:"components,omitempty"`
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent adds a component result. Any unhealthy component takes the
// service down.
func (sh *ServiceHealth) AddComponent(h component.Health) {
	sh.Components = append(sh.Components, h)
	if !h.Healthy() {
		sh.Status = HealthStatusDown
	}
}

// Up reports whether every component is healthy.
func (sh *ServiceHealth) Up() bool { return sh.Status == HealthStatusUp }

// Failing lists the names of the unhealthy components in report order.
func (sh *ServiceHealth) Failing() []string {
	var names []string
	for _, h := range sh.Components {
		if !h.Healthy() {
			names = append(names, h.Name)
		}
	}
	return names
}
