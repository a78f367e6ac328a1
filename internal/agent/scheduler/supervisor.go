/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package scheduler

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/vagrants/blackbird-go/internal/agent/job"
	"github.com/vagrants/blackbird-go/internal/metrics"
	"github.com/vagrants/blackbird-go/internal/util/logger"
)

const defaultPollInterval = time.Second

// Supervisor maintains the invariant "at most one live worker per job
// name". It polls the liveness registry on a short fixed period and
// starts a worker for every descriptor whose name is absent — a
// restart-on-death supervisor, not a fixed thread pool: no backoff, no
// restart cap, and a running worker is never touched. The loop only
// exits when ctx is cancelled; shutdown is owned by the caller.
type Supervisor struct {
	jobs         map[string]job.Descriptor
	liveness     *liveness
	pollInterval time.Duration
	clock        clockwork.Clock
	logger       logger.Logger
}

// Option tweaks supervisor behavior, mainly for tests.
type Option func(*Supervisor)

// WithPollInterval overrides the default 1s restart-poll period.
func WithPollInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.pollInterval = d
	}
}

// WithClock injects the clock used for the poll period and for worker
// interval sleeps.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Supervisor) {
		s.clock = clock
	}
}

func NewSupervisor(jobs map[string]job.Descriptor, log logger.Logger, options ...Option) *Supervisor {

	s := &Supervisor{
		jobs:         jobs,
		liveness:     newLiveness(),
		pollInterval: defaultPollInterval,
		clock:        clockwork.NewRealClock(),
		logger:       log.WithName("supervisor"),
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Run drives the supervision loop until ctx is cancelled. Workers are
// not awaited on shutdown; they are background units that never block
// process exit.
func (s *Supervisor) Run(ctx context.Context) error {

	s.logger.Info("starting supervisor",
		"jobs", len(s.jobs),
		"pollInterval", s.pollInterval)

	for {
		s.cycle(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("supervisor stopped")
			return ctx.Err()
		case <-s.clock.After(s.pollInterval):
		}
	}
}

// cycle snapshots the live worker names once and schedules every job
// absent from the snapshot. A worker terminating after the snapshot is
// picked up next cycle; the duplicate-start window this opens is
// accepted as benign.
func (s *Supervisor) cycle(ctx context.Context) {

	live := s.liveness.snapshot()

	for name, descriptor := range s.jobs {
		if _, ok := live[name]; ok {
			continue
		}
		s.startWorker(ctx, descriptor)
	}
}

func (s *Supervisor) startWorker(ctx context.Context, descriptor job.Descriptor) {

	s.liveness.add(descriptor.Name)
	metrics.WorkerRestartTotal.WithLabelValues(descriptor.Name).Inc()

	worker := newExecutor(descriptor, s.clock, s.logger, func() {
		s.liveness.remove(descriptor.Name)
	})
	go worker.run(ctx)

	s.logger.Info("started worker",
		"job", descriptor.Name,
		"kind", descriptor.Kind,
		"interval", descriptor.Interval)
}

// Alive reports whether a worker for the job name is currently live.
func (s *Supervisor) Alive(name string) bool {

	return s.liveness.alive(name)
}

// LiveCount returns the number of live workers.
func (s *Supervisor) LiveCount() int {

	return len(s.liveness.snapshot())
}
