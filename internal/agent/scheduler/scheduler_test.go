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
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vagrants/blackbird-go/internal/agent/job"
	"github.com/vagrants/blackbird-go/internal/agent/plugin"
	loggertypes "github.com/vagrants/blackbird-go/internal/agent/types/logger"
	"github.com/vagrants/blackbird-go/internal/util/logger"
)

func createTestLogger() logger.Logger {
	return logger.NewLogger(io.Discard, loggertypes.DefaultAgentLogging())
}

func TestExecutorDelaysFirstExecution(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ran := make(chan struct{}, 1)

	descriptor := job.Descriptor{
		Name:     "probe-build_items",
		Kind:     job.KindMetric,
		Interval: time.Minute,
		Run: func() error {
			ran <- struct{}{}
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := newExecutor(descriptor, clock, createTestLogger(), func() {})
	go worker.run(ctx)

	// The worker must be asleep on its interval before the first call.
	clock.BlockUntil(1)
	select {
	case <-ran:
		t.Fatal("callback ran before the first interval elapsed")
	default:
	}

	clock.Advance(time.Minute)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("callback did not run after the interval elapsed")
	}
}

func TestExecutorRepeatsWhileHealthy(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ran := make(chan struct{}, 1)

	descriptor := job.Descriptor{
		Name:     "probe-build_items",
		Kind:     job.KindMetric,
		Interval: time.Minute,
		Run: func() error {
			ran <- struct{}{}
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := newExecutor(descriptor, clock, createTestLogger(), func() {})
	go worker.run(ctx)

	for i := 0; i < 3; i++ {
		clock.BlockUntil(1)
		clock.Advance(time.Minute)

		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatalf("callback did not run on iteration %d", i)
		}
	}
}

func TestExecutorTerminatesOnError(t *testing.T) {
	clock := clockwork.NewFakeClock()
	done := make(chan struct{})

	descriptor := job.Descriptor{
		Name:     "probe-build_items",
		Kind:     job.KindMetric,
		Interval: time.Minute,
		Run: func() error {
			return errors.New("collection failed")
		},
	}

	worker := newExecutor(descriptor, clock, createTestLogger(), func() {
		close(done)
	})
	go worker.run(context.Background())

	clock.BlockUntil(1)
	clock.Advance(time.Minute)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not terminate after the callback failed")
	}
}

func TestExecutorTerminatesOnPluginError(t *testing.T) {
	clock := clockwork.NewFakeClock()
	done := make(chan struct{})

	descriptor := job.Descriptor{
		Name:     "probe-build_items",
		Kind:     job.KindMetric,
		Interval: time.Minute,
		Run: func() error {
			return plugin.NewError("probe", errors.New("bad credentials"))
		},
	}

	worker := newExecutor(descriptor, clock, createTestLogger(), func() {
		close(done)
	})
	go worker.run(context.Background())

	clock.BlockUntil(1)
	clock.Advance(time.Minute)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not terminate after a plugin error")
	}
}

func TestExecutorRecoversPanic(t *testing.T) {
	clock := clockwork.NewFakeClock()
	done := make(chan struct{})

	descriptor := job.Descriptor{
		Name:     "probe-build_items",
		Kind:     job.KindMetric,
		Interval: time.Minute,
		Run: func() error {
			panic("collector bug")
		},
	}

	worker := newExecutor(descriptor, clock, createTestLogger(), func() {
		close(done)
	})
	go worker.run(context.Background())

	clock.BlockUntil(1)
	clock.Advance(time.Minute)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not terminate after the callback panicked")
	}
}

func TestExecutorStopsOnContextCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	done := make(chan struct{})

	descriptor := job.Descriptor{
		Name:     "probe-build_items",
		Kind:     job.KindMetric,
		Interval: time.Hour,
		Run:      func() error { return nil },
	}

	ctx, cancel := context.WithCancel(context.Background())

	worker := newExecutor(descriptor, clock, createTestLogger(), func() {
		close(done)
	})
	go worker.run(ctx)

	clock.BlockUntil(1)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}

func TestSupervisorStartsAllWorkers(t *testing.T) {
	jobs := map[string]job.Descriptor{
		"a-build_items":           {Name: "a-build_items", Kind: job.KindMetric, Interval: time.Hour, Run: func() error { return nil }},
		"b-build_items":           {Name: "b-build_items", Kind: job.KindMetric, Interval: time.Hour, Run: func() error { return nil }},
		"b-build_discovery_items": {Name: "b-build_discovery_items", Kind: job.KindDiscovery, Interval: time.Hour, Run: func() error { return nil }},
	}

	supervisor := NewSupervisor(jobs, createTestLogger(),
		WithPollInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = supervisor.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return supervisor.LiveCount() == len(jobs)
	}, time.Second, 5*time.Millisecond)

	for name := range jobs {
		assert.True(t, supervisor.Alive(name), "worker %s not live", name)
	}
}

func TestSupervisorRespawnsDeadWorker(t *testing.T) {
	var starts atomic.Int32

	jobs := map[string]job.Descriptor{
		"dying-build_items": {
			Name:     "dying-build_items",
			Kind:     job.KindMetric,
			Interval: time.Millisecond,
			Run: func() error {
				starts.Add(1)
				return errors.New("always fails")
			},
		},
	}

	supervisor := NewSupervisor(jobs, createTestLogger(),
		WithPollInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = supervisor.Run(ctx)
	}()

	// Every run fails, so reaching multiple runs requires respawns.
	require.Eventually(t, func() bool {
		return starts.Load() >= 3
	}, 5*time.Second, 5*time.Millisecond)
}

func TestSupervisorNeverDuplicatesLiveWorker(t *testing.T) {
	var concurrent atomic.Int32
	var maxConcurrent atomic.Int32

	jobs := map[string]job.Descriptor{
		"busy-build_items": {
			Name:     "busy-build_items",
			Kind:     job.KindMetric,
			Interval: time.Millisecond,
			Run: func() error {
				now := concurrent.Add(1)
				defer concurrent.Add(-1)

				for {
					observed := maxConcurrent.Load()
					if now <= observed || maxConcurrent.CompareAndSwap(observed, now) {
						break
					}
				}

				time.Sleep(2 * time.Millisecond)
				return nil
			},
		},
	}

	supervisor := NewSupervisor(jobs, createTestLogger(),
		WithPollInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = supervisor.Run(ctx)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	assert.Equal(t, int32(1), maxConcurrent.Load(),
		"a live worker was duplicated")
	assert.LessOrEqual(t, supervisor.LiveCount(), 1)
}

func TestSupervisorRunStopsOnCancel(t *testing.T) {
	supervisor := NewSupervisor(nil, createTestLogger(),
		WithPollInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan error, 1)
	go func() {
		stopped <- supervisor.Run(ctx)
	}()

	cancel()

	select {
	case err := <-stopped:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop on context cancellation")
	}
}
