package doctor

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/kbukum/insane/config"
)

// Checker evaluates one resource against the resolved configuration.
type Checker interface {
	Check(ctx context.Context, cfg *config.AppConfig) Check
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, cfg *config.AppConfig) Check

// Check calls f.
func (f CheckerFunc) Check(ctx context.Context, cfg *config.AppConfig) Check { return f(ctx, cfg) }

// Registry holds the checks to run, one per resource.
type Registry struct {
	checks map[Resource]Checker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{checks: make(map[Resource]Checker)}
}

// Register sets the checker for res, replacing any previous one.
func (r *Registry) Register(res Resource, c Checker) {
	r.checks[res] = c
}

// Resources returns the registered resources in ascending order.
func (r *Registry) Resources() []Resource {
	out := make([]Resource, 0, len(r.checks))
	for res := range r.checks {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RunAll evaluates every registered check once, in resource order.
func (r *Registry) RunAll(ctx context.Context, cfg *config.AppConfig) map[Resource]Check {
	results := make(map[Resource]Check, len(r.checks))
	for _, res := range r.Resources() {
		results[res] = r.checks[res].Check(ctx, cfg)
	}
	return results
}

// Print writes every result in ascending resource order, one per block.
func Print(w io.Writer, results map[Resource]Check) {
	keys := make([]Resource, 0, len(results))
	for res := range results {
		keys = append(keys, res)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, res := range keys {
		fmt.Fprintln(w, results[res].String())
	}
}

// ExitCode is 1 when any check failed and 0 otherwise.
func ExitCode(results map[Resource]Check) int {
	for _, c := range results {
		if !c.Valid() {
			return 1
		}
	}
	return 0
}

// Run evaluates reg, prints the results to w and returns the exit code.
func Run(ctx context.Context, w io.Writer, reg *Registry, cfg *config.AppConfig) int {
	results := reg.RunAll(ctx, cfg)
	Print(w, results)
	return ExitCode(results)
}
