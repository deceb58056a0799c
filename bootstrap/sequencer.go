package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/insane/app"
	apperrors "github.com/kbukum/insane/errors"
	"github.com/kbukum/insane/logger"
	"github.com/kbukum/insane/observability"
)

// State is a boot phase.
type State int

const (
	Created State = iota
	PreRunDone
	InitializersDone
	Serving
	Terminated
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case PreRunDone:
		return "pre_run_done"
	case InitializersDone:
		return "initializers_done"
	case Serving:
		return "serving"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Sequencer drives an application from its before-run hook to the end of
// its servers. A failed phase leaves the state at the last one completed.
type Sequencer struct {
	hooks      app.Hooks
	appCtx     *app.Context
	supervisor *Supervisor
	out        io.Writer
	log        *logger.Logger

	mu      sync.Mutex
	state   State
	booting bool
	report  Report
}

// New creates a sequencer in the Created state.
func New(hooks app.Hooks, appCtx *app.Context, opts ...Option) *Sequencer {
	s := &Sequencer{
		hooks:  hooks,
		appCtx: appCtx,
		out:    defaultOutput(),
		state:  Created,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.WithComponent("boot")
	}
	if s.supervisor == nil {
		s.supervisor = NewSupervisor(
			WithSupervisorLogger(s.log.WithComponent("supervisor")),
			WithServiceName(hooks.AppName()),
		)
	}
	return s
}

// State returns the last phase completed.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Report returns the supervisor's report once the sequencer is Terminated.
func (s *Sequencer) Report() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// claim marks the sequencer as booting; only the first caller wins.
func (s *Sequencer) claim() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.booting {
		return fmt.Errorf("boot: sequencer already booted (state %s)", s.state)
	}
	s.booting = true
	return nil
}

func (s *Sequencer) advance(to State) {
	s.mu.Lock()
	s.state = to
	s.mu.Unlock()
	s.log.Debug("boot phase done", logger.Fields(logger.FieldPhase, to.String()))
}

// Boot runs every phase in order. Errors from the before-run hook, the
// initializers or the server list abort the boot before any server starts.
// Once servers are supervised Boot returns nil when all of them have ended,
// whatever their outcome.
func (s *Sequencer) Boot(ctx context.Context) error {
	if err := s.claim(); err != nil {
		return err
	}
	started := time.Now()

	ctx, span := observability.StartSpan(ctx, observability.SpanBoot)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrServiceName, s.hooks.AppName())
	observability.SetSpanAttribute(ctx, observability.AttrEnvironment, s.appCtx.Environment().String())

	err := s.phase(ctx, "before_run", func(ctx context.Context) error {
		if err := s.hooks.BeforeRun(ctx, s.appCtx); err != nil {
			return apperrors.Extension("before_run").WithCause(err)
		}
		return nil
	})
	if err != nil {
		observability.SetSpanError(ctx, err)
		return err
	}
	s.advance(PreRunDone)

	err = s.phase(ctx, "initializers", func(ctx context.Context) error {
		list, err := s.hooks.Initializers(ctx, s.appCtx)
		if err != nil {
			return apperrors.Extension("initializers").WithCause(err)
		}
		s.log.Info("initializers loaded", logger.Fields("initializers", initializerNames(list)))
		return app.RunInitializers(ctx, s.appCtx, nil, list)
	})
	if err != nil {
		observability.SetSpanError(ctx, err)
		return err
	}
	s.advance(InitializersDone)

	var servers []app.Server
	err = s.phase(ctx, "servers", func(ctx context.Context) error {
		var err error
		servers, err = s.hooks.Servers(ctx, s.appCtx)
		if err != nil {
			return apperrors.Extension("servers").WithCause(err)
		}
		return nil
	})
	if err != nil {
		observability.SetSpanError(ctx, err)
		return err
	}

	summary := NewSummary(s.hooks.AppName(), s.hooks.AppVersion())
	summary.SetEnvironment(s.appCtx.Environment().String())
	summary.SetStartupDuration(time.Since(started))
	summary.TrackComponents(s.appCtx.Components())
	for i, srv := range servers {
		summary.TrackServer(displayName(i, srv))
	}
	summary.Display(s.out)

	s.advance(Serving)
	report := s.supervisor.Run(ctx, s.appCtx, servers)

	s.mu.Lock()
	s.report = report
	s.mu.Unlock()
	s.advance(Terminated)

	s.log.Info("all servers finished", logger.Fields(
		"served", report.Count(Served),
		"skipped", report.Count(Skipped),
		"failed", report.Count(Failed),
	))
	return nil
}

func (s *Sequencer) phase(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanBoot+"."+name)
	defer span.End()

	err := fn(ctx)
	if err != nil {
		observability.SetSpanError(ctx, err)
		s.log.Error("boot phase failed", logger.Fields(
			logger.FieldPhase, name,
			logger.FieldError, err.Error(),
		))
	}
	return err
}

// displayName reads a server's name for the banner. The supervisor reports
// broken servers itself.
func displayName(index int, srv app.Server) (name string) {
	name = fmt.Sprintf("server[%d]", index)
	defer func() { _ = recover() }()
	if srv != nil {
		name = srv.Name()
	}
	return name
}

func initializerNames(list []app.Initializer) string {
	names := make([]string, 0, len(list))
	for _, i := range list {
		names = append(names, i.Name())
	}
	return strings.Join(names, ",")
}
