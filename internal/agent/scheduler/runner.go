package scheduler

import (
	"context"

	"github.com/vagrants/blackbird-go/internal/agent/job"
	clrserver "github.com/vagrants/blackbird-go/internal/agent/server"
	agenttypes "github.com/vagrants/blackbird-go/internal/agent/types/collector"
)

// Runner adapts the supervisor to the agent's runner lifecycle.
type Runner struct {
	server     *clrserver.Server
	supervisor *Supervisor
}

func NewRunner(srv *clrserver.Server, jobs map[string]job.Descriptor, options ...Option) *Runner {

	return &Runner{
		server:     srv,
		supervisor: NewSupervisor(jobs, srv.Logger, options...),
	}
}

func (r *Runner) Start(ctx context.Context) error {

	r.server.Logger.WithName(r.Info().Name).Info("Starting scheduler")

	err := r.supervisor.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}

func (r *Runner) Info() agenttypes.Info {

	return agenttypes.Info{
		Name: "scheduler",
	}
}

func (r *Runner) Close() error {

	r.server.Logger.Info("scheduler close...")
	return nil
}
