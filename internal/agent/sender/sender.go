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

package sender

import (
	"context"
	"time"

	"github.com/vagrants/blackbird-go/internal/agent/queue"
	clrserver "github.com/vagrants/blackbird-go/internal/agent/server"
	agenttypes "github.com/vagrants/blackbird-go/internal/agent/types/collector"
	"github.com/vagrants/blackbird-go/internal/util/logger"
)

const drainPoll = time.Second

// Forwarder delivers one dequeued item mapping to the monitoring
// backend. The agent guarantees items are well formed when they reach a
// Forwarder, not their eventual delivery.
type Forwarder interface {
	Forward(data map[string]any) error
}

// LogForwarder writes item data to the structured log. It is the shipped
// default; real backend transports plug in behind the same interface.
type LogForwarder struct {
	logger logger.Logger
}

func NewLogForwarder(log logger.Logger) *LogForwarder {

	return &LogForwarder{logger: log.WithName("forwarder")}
}

func (f *LogForwarder) Forward(data map[string]any) error {

	f.logger.Info("item",
		"key", data["key"],
		"host", data["host"],
		"clock", data["clock"],
		"value", data["value"])
	return nil
}

// Runner drains the primary queue and hands each item's data to the
// forwarder. Draining is what releases producers blocked on a full
// queue. An item is consumed exactly once: forward failures are logged
// and the item is discarded, never re-queued.
type Runner struct {
	name      string
	server    *clrserver.Server
	queue     *queue.Queue
	forwarder Forwarder
}

// New builds a sender runner. The name distinguishes the primary item
// sender from the stats-queue drain in logs and runner listings.
func New(srv *clrserver.Server, name string, q *queue.Queue, forwarder Forwarder) *Runner {

	return &Runner{
		name:      name,
		server:    srv,
		queue:     q,
		forwarder: forwarder,
	}
}

func (r *Runner) Start(ctx context.Context) error {

	log := r.server.Logger.WithName(r.Info().Name)
	log.Info("Starting sender")

	for {
		select {
		case <-ctx.Done():
			log.Info("sender stopped", "remaining", r.queue.Len())
			return nil
		default:
		}

		it, ok := r.queue.GetTimeout(drainPoll)
		if !ok {
			continue
		}

		if err := r.forwarder.Forward(it.Data()); err != nil {
			log.Error(err, "forward failed, item dropped", "key", it.Key())
		}
	}
}

func (r *Runner) Info() agenttypes.Info {

	return agenttypes.Info{
		Name: r.name,
	}
}

func (r *Runner) Close() error {

	r.server.Logger.Info("sender close...")
	return nil
}
