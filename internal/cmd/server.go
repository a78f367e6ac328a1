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

package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	cfgloader "github.com/vagrants/blackbird-go/internal/agent/config"
	"github.com/vagrants/blackbird-go/internal/agent/job"
	"github.com/vagrants/blackbird-go/internal/agent/plugin"
	"github.com/vagrants/blackbird-go/internal/agent/queue"
	"github.com/vagrants/blackbird-go/internal/agent/scheduler"
	"github.com/vagrants/blackbird-go/internal/agent/sender"
	clrserver "github.com/vagrants/blackbird-go/internal/agent/server"
	agenttypes "github.com/vagrants/blackbird-go/internal/agent/types/collector"
	configtypes "github.com/vagrants/blackbird-go/internal/agent/types/config"
	agenterr "github.com/vagrants/blackbird-go/internal/agent/types/err"
	bannerouter "github.com/vagrants/blackbird-go/internal/banner"
	"github.com/vagrants/blackbird-go/internal/metrics"
	_ "github.com/vagrants/blackbird-go/internal/plugins"
)

var (
	cfgPath string
)

type Runner interface {
	Start(ctx context.Context) error
	Info() agenttypes.Info
	Close() error
}

func ServerCommand() *cobra.Command {

	cmd := &cobra.Command{
		Use:     "server",
		Aliases: []string{"server", "srv", "s"},
		Short:   "Run the blackbird agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	return cmd
}

func getConfigByPath() (*configtypes.AgentConfig, error) {

	loader := cfgloader.New(cfgPath)
	cfg, err := loader.LoadConfig()
	if err != nil {
		return nil, err
	}

	if err := loader.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func server(ctx context.Context, logOut io.Writer) error {

	cfg, err := getConfigByPath()
	if err != nil {
		return err
	}

	agentServer := clrserver.New(cfg, logOut)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hostname := cfg.Global.Hostname
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	banner := bannerouter.New(&bannerouter.Config{
		Server: *agentServer,
	})
	if err := banner.PrintBanner("blackbird-agent", hostname); err != nil {
		return err
	}

	// The two shared queues live as long as the process; every collector
	// is constructed against them.
	itemQueue := queue.New("items", cfg.Global.MaxQueueLength)
	statsQueue := queue.New("stats", cfg.Global.MaxQueueLength)

	// Any resolution failure is fatal here, before the supervisor loop
	// ever starts.
	factory := job.NewFactory(cfg, plugin.Default(), itemQueue, statsQueue, agentServer.Logger)
	jobs, err := factory.Build()
	if err != nil {
		return err
	}

	return startRunners(ctx, agentServer, jobs, itemQueue, statsQueue)
}

func startRunners(ctx context.Context, cfg *clrserver.Server, jobs map[string]job.Descriptor, itemQueue, statsQueue *queue.Queue) error {

	forwarder := sender.NewLogForwarder(cfg.Logger)

	runners := []struct {
		runner Runner
	}{
		{scheduler.NewRunner(cfg, jobs)},
		{sender.New(cfg, "sender", itemQueue, forwarder)},
		{sender.New(cfg, "stats-sender", statsQueue, forwarder)},
		{metrics.New(cfg)},
	}

	errCh := make(chan error, len(runners))

	var wg sync.WaitGroup

	for _, r := range runners {
		wg.Add(1)
		go func(runner Runner) {
			defer wg.Done()
			cfg.Logger.Info("Starting runner", "runner component", runner.Info().Name)
			if err := runner.Start(ctx); err != nil {
				select {
				case errCh <- err:
				default:
				}
			}
		}(r.runner)
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	cleanup := func() {
		signal.Stop(signalCh)
		for _, r := range runners {
			if err := r.runner.Close(); err != nil {
				cfg.Logger.Info("error closing runner", "runner", r.runner.Info().Name, "error", err)
			}
		}
	}

	select {
	case <-ctx.Done():
		cfg.Logger.Info("Context cancelled")
		cleanup()
		return ctx.Err()
	case sig := <-signalCh:
		cfg.Logger.Info("Received signal", "signal", sig.String())
		cleanup()
		return nil
	case err := <-errCh:
		cleanup()
		cfg.Logger.Error(agenterr.AgentServerStop, "runner error", "error", err)
		return err
	}
}
