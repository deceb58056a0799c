package bootstrap

import (
	"io"
	"os"

	"github.com/kbukum/insane/logger"
)

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the logger for the boot phases.
func WithLogger(l *logger.Logger) Option {
	return func(s *Sequencer) {
		s.log = l
	}
}

// WithOutput sets where the startup banner is written. Defaults to stdout;
// pass io.Discard to silence it.
func WithOutput(w io.Writer) Option {
	return func(s *Sequencer) {
		s.out = w
	}
}

// WithSupervisor replaces the default server supervisor.
func WithSupervisor(sv *Supervisor) Option {
	return func(s *Sequencer) {
		s.supervisor = sv
	}
}

func defaultOutput() io.Writer { return os.Stdout }
