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
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vagrants/blackbird-go/internal/agent/item"
	"github.com/vagrants/blackbird-go/internal/agent/queue"
	clrserver "github.com/vagrants/blackbird-go/internal/agent/server"
	configtypes "github.com/vagrants/blackbird-go/internal/agent/types/config"
)

type recordingForwarder struct {
	mutex sync.Mutex
	data  []map[string]any
	fail  bool
}

func (f *recordingForwarder) Forward(data map[string]any) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.fail {
		return errors.New("backend unreachable")
	}
	f.data = append(f.data, data)
	return nil
}

func (f *recordingForwarder) forwarded() []map[string]any {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	out := make([]map[string]any, len(f.data))
	copy(out, f.data)
	return out
}

func newTestServer() *clrserver.Server {
	cfg := &configtypes.AgentConfig{
		Global: configtypes.GlobalOptions{LogLevel: "error", Raw: configtypes.Options{}},
	}
	return clrserver.New(cfg, io.Discard)
}

func TestSenderDrainsQueue(t *testing.T) {
	q := queue.New("items", 8)
	forwarder := &recordingForwarder{}

	runner := New(newTestServer(), "sender", q, forwarder)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = runner.Start(ctx)
	}()

	q.Put(item.NewMetricItem("cpu.load", 0.5, "web01", 100))
	q.Put(item.NewMetricItem("mem.free", 2048, "web01", 101))

	require.Eventually(t, func() bool {
		return len(forwarder.forwarded()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	data := forwarder.forwarded()
	assert.Equal(t, "cpu.load", data[0]["key"])
	assert.Equal(t, 0.5, data[0]["value"])
	assert.Equal(t, "mem.free", data[1]["key"])
	assert.Equal(t, 0, q.Len())
}

func TestSenderDropsItemOnForwardFailure(t *testing.T) {
	q := queue.New("items", 8)
	forwarder := &recordingForwarder{fail: true}

	runner := New(newTestServer(), "sender", q, forwarder)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = runner.Start(ctx)
	}()

	q.Put(item.NewMetricItem("cpu.load", 0.5, "web01", 100))

	// The failed item must be consumed, not re-queued.
	require.Eventually(t, func() bool {
		return q.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, forwarder.forwarded())
	assert.Equal(t, 0, q.Len())
}

func TestSenderReleasesBlockedProducer(t *testing.T) {
	q := queue.New("items", 1)
	forwarder := &recordingForwarder{}

	runner := New(newTestServer(), "sender", q, forwarder)

	q.Put(item.NewMetricItem("first", 1, "web01", 100))

	produced := make(chan struct{})
	go func() {
		q.Put(item.NewMetricItem("second", 2, "web01", 101))
		close(produced)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = runner.Start(ctx)
	}()

	select {
	case <-produced:
	case <-time.After(5 * time.Second):
		t.Fatal("producer stayed blocked while the sender was draining")
	}
}

func TestSenderInfo(t *testing.T) {
	runner := New(newTestServer(), "stats-sender", queue.New("stats", 1), &recordingForwarder{})
	assert.Equal(t, "stats-sender", runner.Info().Name)
}
