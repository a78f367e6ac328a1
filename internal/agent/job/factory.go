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

package job

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vagrants/blackbird-go/internal/agent/plugin"
	"github.com/vagrants/blackbird-go/internal/agent/queue"
	configtypes "github.com/vagrants/blackbird-go/internal/agent/types/config"
	errtypes "github.com/vagrants/blackbird-go/internal/agent/types/err"
	"github.com/vagrants/blackbird-go/internal/util/logger"
)

// Factory turns config sections plus the plugin registry into the job
// descriptor table the supervisor schedules from. It owns the two
// queues every collector instance is constructed with.
type Factory struct {
	config     *configtypes.AgentConfig
	registry   *plugin.Registry
	queue      *queue.Queue
	statsQueue *queue.Queue
	logger     logger.Logger
}

func NewFactory(cfg *configtypes.AgentConfig, registry *plugin.Registry, q, statsQueue *queue.Queue, log logger.Logger) *Factory {

	return &Factory{
		config:     cfg,
		registry:   registry,
		queue:      q,
		statsQueue: statsQueue,
		logger:     log.WithName("job-factory"),
	}
}

// Queue returns the primary item queue shared by all collectors.
func (f *Factory) Queue() *queue.Queue {
	return f.queue
}

// StatsQueue returns the secondary self-monitoring queue.
func (f *Factory) StatsQueue() *queue.Queue {
	return f.statsQueue
}

// Build produces the descriptor table: one descriptor per recognized
// callback per section. Any failure here is a ConfigError; startup
// aborts rather than running a partial table.
func (f *Factory) Build() (map[string]Descriptor, error) {

	jobs := make(map[string]Descriptor)

	// Deterministic section order so collisions are reported stably.
	sections := make([]string, 0, len(f.config.Sections))
	for section := range f.config.Sections {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	for _, section := range sections {
		options := f.config.Sections[section]

		module, ok := options.GetString("module")
		if !ok || module == "" {
			return nil, errtypes.NewConfigError(section, errors.New("missing module option"))
		}

		instance, err := f.registry.Build(module, options, f.queue, f.statsQueue, f.logger)
		if err != nil {
			return nil, errtypes.NewConfigError(section, err)
		}

		if legacy, ok := instance.(plugin.LegacyCollector); ok {
			f.logger.Sugar().Warnf(
				"%s's %q is deprecated, please change the method name to %q",
				module, plugin.MethodLegacy, plugin.MethodMetric)

			if err := f.add(jobs, section, options, KindLegacy, legacy.LoopedMethod); err != nil {
				return nil, err
			}
		}

		if metric, ok := instance.(plugin.MetricCollector); ok {
			if err := f.add(jobs, section, options, KindMetric, metric.BuildItems); err != nil {
				return nil, err
			}
			f.logger.Info("load plugin", "module", module, "interval", jobs[section+"-"+plugin.MethodMetric].Interval)
		}

		if discovery, ok := instance.(plugin.DiscoveryCollector); ok {
			if err := f.add(jobs, section, options, KindDiscovery, discovery.BuildDiscoveryItems); err != nil {
				return nil, err
			}
			f.logger.Info("load plugin", "module", module, "lld_interval", jobs[section+"-"+plugin.MethodDiscovery].Interval)
		}
	}

	return jobs, nil
}

func (f *Factory) add(jobs map[string]Descriptor, section string, options configtypes.Options, kind Kind, run func() error) error {

	name := section + "-" + kind.MethodName()
	if _, exists := jobs[name]; exists {
		return errtypes.NewConfigError(section, fmt.Errorf("duplicate job name %q", name))
	}

	interval, err := f.resolveInterval(section, options, kind)
	if err != nil {
		return err
	}

	jobs[name] = Descriptor{
		Name:     name,
		Kind:     kind,
		Interval: interval,
		Run:      run,
	}

	return nil
}

// resolveInterval applies the precedence section option > global option >
// kind default. An option that is present but not a positive number of
// seconds is rejected rather than silently skipped.
func (f *Factory) resolveInterval(section string, options configtypes.Options, kind Kind) (time.Duration, error) {

	key := kind.IntervalOption()

	if _, present := options[key]; present {
		interval, ok := options.GetSeconds(key)
		if !ok {
			return 0, errtypes.NewConfigError(section, fmt.Errorf("option %q must be a positive number of seconds", key))
		}
		return interval, nil
	}

	if _, present := f.config.Global.Raw[key]; present {
		interval, ok := f.config.Global.Raw.GetSeconds(key)
		if !ok {
			return 0, errtypes.NewConfigError("global", fmt.Errorf("option %q must be a positive number of seconds", key))
		}
		return interval, nil
	}

	return kind.DefaultInterval(), nil
}
