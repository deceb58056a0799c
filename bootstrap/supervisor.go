package bootstrap

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/kbukum/insane/app"
	apperrors "github.com/kbukum/insane/errors"
	"github.com/kbukum/insane/logger"
	"github.com/kbukum/insane/observability"
)

// Status is how a supervised unit ended.
type Status int

const (
	// Served means Serve returned without error.
	Served Status = iota
	// Skipped means Enable returned false and Serve was never called.
	Skipped
	// Failed means Enable or Serve returned an error, or the unit panicked.
	Failed
)

func (s Status) String() string {
	switch s {
	case Served:
		return "served"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of one supervised unit.
type Outcome struct {
	Server   string
	Status   Status
	Err      error
	Duration time.Duration
}

// Report lists one outcome per server, in the order the servers were given.
type Report struct {
	Outcomes []Outcome
}

// Count returns the number of outcomes with status st.
func (r Report) Count(st Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == st {
			n++
		}
	}
	return n
}

// Get returns the outcome for the named server.
func (r Report) Get(server string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Server == server {
			return o, true
		}
	}
	return Outcome{}, false
}

// Supervisor runs servers concurrently and isolates their failures.
type Supervisor struct {
	log     *logger.Logger
	metrics *observability.Metrics
	service string
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithSupervisorLogger sets the logger unit outcomes are written to.
func WithSupervisorLogger(l *logger.Logger) SupervisorOption {
	return func(s *Supervisor) { s.log = l }
}

// WithMetrics sets the instruments unit outcomes are recorded on.
func WithMetrics(m *observability.Metrics) SupervisorOption {
	return func(s *Supervisor) { s.metrics = m }
}

// WithServiceName sets the service attribute on recorded metrics.
func WithServiceName(name string) SupervisorOption {
	return func(s *Supervisor) { s.service = name }
}

// NewSupervisor creates a supervisor. Metrics default to the global meter
// provider.
func NewSupervisor(opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.WithComponent("supervisor")
	}
	if s.metrics == nil {
		s.metrics = observability.DefaultMetrics()
	}
	return s
}

// Run launches every server in its own goroutine, then waits for all of
// them. A unit's error or panic is logged and recorded in its outcome; it
// never cancels or otherwise affects the other units. A unit whose name
// cannot be read is reported as server[i].
func (s *Supervisor) Run(ctx context.Context, appCtx *app.Context, servers []app.Server) Report {
	outcomes := make([]Outcome, len(servers))

	var wg sync.WaitGroup
	for i, srv := range servers {
		wg.Add(1)
		go func(i int, srv app.Server) {
			defer wg.Done()
			outcomes[i] = s.runUnit(ctx, appCtx, i, srv)
		}(i, srv)
	}
	wg.Wait()

	return Report{Outcomes: outcomes}
}

func (s *Supervisor) runUnit(ctx context.Context, appCtx *app.Context, index int, srv app.Server) (out Outcome) {
	// Name is application code too, so it runs under the recover below.
	name := fmt.Sprintf("server[%d]", index)
	log := s.log.WithFields(logger.Fields(logger.FieldServer, name))
	start := time.Now()

	ctx, span := observability.StartSpan(ctx, observability.SpanServer)

	defer func() {
		if r := recover(); r != nil {
			out.Status = Failed
			out.Err = apperrors.Server(name).WithCause(fmt.Errorf("panic: %v", r))
			log.Error("server panicked", logger.Fields(
				logger.FieldError, fmt.Sprint(r),
				"stack", string(debug.Stack()),
			))
			s.metrics.RecordError(ctx, "panic", name)
		}
		out.Server = name
		out.Duration = time.Since(start)
		if out.Err != nil {
			observability.SetSpanError(ctx, out.Err)
		}
		observability.SetSpanAttribute(ctx, observability.AttrServer, name)
		observability.SetSpanAttribute(ctx, observability.AttrStatus, out.Status.String())
		span.End()
		s.metrics.RecordOperation(ctx, s.service, "serve:"+name, out.Status.String(), out.Duration)
	}()

	name = srv.Name()
	log = s.log.WithFields(logger.Fields(logger.FieldServer, name))

	enabled, err := srv.Enable(ctx, appCtx)
	if err != nil {
		out.Status = Failed
		out.Err = apperrors.Server(name).WithCause(err)
		log.Error("server enable check failed", logger.Fields(logger.FieldError, err.Error()))
		s.metrics.RecordError(ctx, "enable", name)
		return out
	}
	if !enabled {
		out.Status = Skipped
		log.Info("is disabled. skipping...")
		return out
	}

	log.Debug("serving")
	if err := srv.Serve(ctx, appCtx); err != nil {
		out.Status = Failed
		out.Err = apperrors.Server(name).WithCause(err)
		log.Error("server failed", logger.Fields(logger.FieldError, err.Error()))
		s.metrics.RecordError(ctx, "serve", name)
		return out
	}

	out.Status = Served
	log.Info("server stopped")
	return out
}
