// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package system

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/vagrants/blackbird-go/internal/agent/item"
	"github.com/vagrants/blackbird-go/internal/agent/plugin"
	"github.com/vagrants/blackbird-go/internal/agent/queue"
	configtypes "github.com/vagrants/blackbird-go/internal/agent/types/config"
	"github.com/vagrants/blackbird-go/internal/util/logger"
)

const ModuleName = "system"

func init() {
	plugin.Default().RegisterWithStats(ModuleName, New)
}

// Collector gathers local host metrics (CPU, memory, load) and discovers
// mounted filesystems. Each collection also drops a heartbeat onto the
// stats queue for agent self-monitoring.
type Collector struct {
	options    configtypes.Options
	queue      *queue.Queue
	statsQueue *queue.Queue
	logger     logger.Logger
	hostname   string
}

func New(opts configtypes.Options, q, statsQueue *queue.Queue, log logger.Logger) (plugin.Collector, error) {

	hostname, _ := opts.GetString("hostname")

	return &Collector{
		options:    opts,
		queue:      q,
		statsQueue: statsQueue,
		logger:     log.WithName("system"),
		hostname:   hostname,
	}, nil
}

// BuildItems collects one snapshot of CPU, memory and load metrics.
func (c *Collector) BuildItems() error {

	cpuPercents, err := cpu.Percent(0, false)
	if err != nil {
		return plugin.NewError(ModuleName, err)
	}
	if len(cpuPercents) > 0 {
		c.queue.Put(item.NewMetricItem("system.cpu.percent", cpuPercents[0], c.hostname, 0))
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return plugin.NewError(ModuleName, err)
	}
	c.queue.Put(item.NewMetricItem("system.memory.total", vm.Total, c.hostname, 0))
	c.queue.Put(item.NewMetricItem("system.memory.available", vm.Available, c.hostname, 0))
	c.queue.Put(item.NewMetricItem("system.memory.used_percent", vm.UsedPercent, c.hostname, 0))

	avg, err := load.Avg()
	if err != nil {
		return plugin.NewError(ModuleName, err)
	}
	c.queue.Put(item.NewMetricItem("system.load.avg1", avg.Load1, c.hostname, 0))
	c.queue.Put(item.NewMetricItem("system.load.avg5", avg.Load5, c.hostname, 0))
	c.queue.Put(item.NewMetricItem("system.load.avg15", avg.Load15, c.hostname, 0))

	c.statsQueue.Put(item.NewMetricItem("blackbird.system.collected", 1, c.hostname, 0))

	return nil
}

// BuildDiscoveryItems emits one low level discovery item listing the
// mounted filesystems.
func (c *Collector) BuildDiscoveryItems() error {

	partitions, err := disk.Partitions(false)
	if err != nil {
		return plugin.NewError(ModuleName, err)
	}

	entities := make([]map[string]any, 0, len(partitions))
	for _, p := range partitions {
		entities = append(entities, map[string]any{
			"{#MOUNTPOINT}": p.Mountpoint,
			"{#FSTYPE}":     p.Fstype,
		})
	}

	discovery, err := item.NewDiscoveryItem("system.fs.discovery", entities, c.hostname, 0)
	if err != nil {
		return plugin.NewError(ModuleName, err)
	}
	c.queue.Put(discovery)

	return nil
}
