package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/insane/component"
)

// InfrastructureInfo describes a connection owned by the application context.
type InfrastructureInfo struct {
	Name    string
	Type    string
	Details string
	Healthy bool
}

// Summary collects what the startup banner shows.
type Summary struct {
	serviceName     string
	version         string
	environment     string
	startupDuration time.Duration
	infrastructure  []InfrastructureInfo
	servers         []string
}

// NewSummary creates a new startup summary.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
	}
}

// SetEnvironment records the environment the application runs in.
func (s *Summary) SetEnvironment(env string) {
	s.environment = env
}

// SetStartupDuration records the time spent before serving.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackInfrastructure adds one infrastructure line.
func (s *Summary) TrackInfrastructure(name, componentType, details string, healthy bool) {
	s.infrastructure = append(s.infrastructure, InfrastructureInfo{
		Name:    name,
		Type:    componentType,
		Details: details,
		Healthy: healthy,
	})
}

// TrackComponents adds every component of the registry, using Describe when
// a component implements it and its live health otherwise.
func (s *Summary) TrackComponents(registry *component.Registry) {
	if registry == nil {
		return
	}
	for _, c := range registry.All() {
		h := c.Health(context.Background())
		name, typ, details := c.Name(), "component", ""
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			name, typ, details = desc.Name, desc.Type, desc.Details
		}
		if !h.Healthy() && h.Message != "" {
			details = strings.TrimSpace(details + " " + h.Message)
		}
		s.TrackInfrastructure(name, typ, details, h.Healthy())
	}
}

// TrackServer adds a server to the banner.
func (s *Summary) TrackServer(name string) {
	s.servers = append(s.servers, name)
}

// Display writes the banner to w.
func (s *Summary) Display(w io.Writer) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "🚀 %s %s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())
	if s.environment != "" {
		fmt.Fprintf(w, "   environment: %s\n", s.environment)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "📊 Infrastructure\n")
	if len(s.infrastructure) == 0 {
		fmt.Fprintf(w, "   └── none configured\n")
	}
	for i, inf := range s.infrastructure {
		fmt.Fprintf(w, "   %s %s %s: %s\n", treePrefix(i, len(s.infrastructure)), healthIcon(inf.Healthy), inf.Name, inf.Details)
	}

	fmt.Fprintf(w, "\n🖥️  Servers (%d)\n", len(s.servers))
	if len(s.servers) == 0 {
		fmt.Fprintf(w, "   └── none\n")
	}
	for i, name := range s.servers {
		fmt.Fprintf(w, "   %s %s\n", treePrefix(i, len(s.servers)), name)
	}
	fmt.Fprintf(w, "\n")
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthIcon(healthy bool) string {
	if healthy {
		return "✅"
	}
	return "❌"
}
