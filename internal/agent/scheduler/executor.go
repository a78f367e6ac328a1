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
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/vagrants/blackbird-go/internal/agent/job"
	"github.com/vagrants/blackbird-go/internal/agent/plugin"
	"github.com/vagrants/blackbird-go/internal/metrics"
	"github.com/vagrants/blackbird-go/internal/util/logger"
)

// executor is the per-job worker: sleep one full interval, invoke the
// callback synchronously, repeat. Any callback failure terminates the
// worker; the supervisor notices the missing name on its next cycle and
// respawns. There is no cancellation of a running callback — a hung
// callback hangs its worker indefinitely; only the sleep respects ctx so
// process shutdown is not held up by sleepers.
type executor struct {
	descriptor job.Descriptor
	clock      clockwork.Clock
	logger     logger.Logger
	done       func()
}

func newExecutor(descriptor job.Descriptor, clock clockwork.Clock, log logger.Logger, done func()) *executor {

	return &executor{
		descriptor: descriptor,
		clock:      clock,
		logger:     log.WithName("executor").WithValues("job", descriptor.Name),
		done:       done,
	}
}

func (e *executor) run(ctx context.Context) {
	defer e.done()

	for {
		// First execution is delayed by one full interval, not immediate.
		select {
		case <-ctx.Done():
			return
		case <-e.clock.After(e.descriptor.Interval):
		}

		if err := e.invoke(); err != nil {
			// Terminal errors are logged uniformly, distinguished or
			// not; the restart policy is the supervisor's respawn.
			if plugin.IsError(err) {
				e.logger.Error(err, "plugin error, terminating worker")
			} else {
				e.logger.Error(err, "job failed, terminating worker")
			}
			metrics.JobExecutionTotal.WithLabelValues("failure", string(e.descriptor.Kind)).Inc()
			return
		}

		metrics.JobExecutionTotal.WithLabelValues("success", string(e.descriptor.Kind)).Inc()
	}
}

// invoke runs the callback, converting a panic into a terminal error so
// a misbehaving collector kills only its own worker.
func (e *executor) invoke() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panic: %v", r)
		}
	}()

	return e.descriptor.Run()
}
