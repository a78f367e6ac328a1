/*
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	clrserver "github.com/vagrants/blackbird-go/internal/agent/server"
	agenttypes "github.com/vagrants/blackbird-go/internal/agent/types/collector"
)

const (
	Namespace = "blackbird"
	Subsystem = "agent"
)

var (
	// JobExecutionTotal counts the total number of job executions
	JobExecutionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "job_execution_total",
			Help:      "Total number of job executions",
		},
		[]string{"status", "kind"},
	)

	// WorkerRestartTotal counts workers respawned by the supervisor
	WorkerRestartTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "worker_restart_total",
			Help:      "Total number of workers started or restarted by the supervisor",
		},
		[]string{"job"},
	)

	// ItemsEnqueuedTotal counts items pushed onto a queue
	ItemsEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "items_enqueued_total",
			Help:      "Total number of items pushed onto a queue",
		},
		[]string{"queue"},
	)

	// QueueLength tracks the current length of each queue
	QueueLength = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "queue_length",
			Help:      "Current number of items in a queue",
		},
		[]string{"queue"},
	)

	// AgentUp indicates if the agent is up
	AgentUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "up",
			Help:      "1 if the agent is up, 0 otherwise",
		},
	)
)

func init() {
	// Register metrics with the global prometheus registry
	prometheus.MustRegister(JobExecutionTotal)
	prometheus.MustRegister(WorkerRestartTotal)
	prometheus.MustRegister(ItemsEnqueuedTotal)
	prometheus.MustRegister(QueueLength)
	prometheus.MustRegister(AgentUp)
	AgentUp.Set(1)
}

// Runner implements the self-metrics HTTP server runner
type Runner struct {
	cfg    *clrserver.Server
	server *http.Server
}

// New creates a new metrics runner
func New(cfg *clrserver.Server) *Runner {

	return &Runner{cfg: cfg}
}

// Start starts the metrics server
func (r *Runner) Start(ctx context.Context) error {

	mlog := r.cfg.Logger.WithName("metrics")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", r.cfg.Config.Global.MetricsPort)
	r.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       15 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	mlog.Info("Starting metrics server", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return r.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Info returns the runner identity
func (r *Runner) Info() agenttypes.Info {

	return agenttypes.Info{
		Name: "metrics",
	}
}

// Close stops the metrics server
func (r *Runner) Close() error {

	if r.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.server.Shutdown(ctx)
}
