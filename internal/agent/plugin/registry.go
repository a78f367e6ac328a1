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

package plugin

import (
	"fmt"
	"sort"
	"sync"

	configtypes "github.com/vagrants/blackbird-go/internal/agent/types/config"
	"github.com/vagrants/blackbird-go/internal/agent/queue"
	"github.com/vagrants/blackbird-go/internal/util/logger"
)

// Factory constructs a collector instance for one config section.
type Factory func(opts configtypes.Options, q *queue.Queue, log logger.Logger) (Collector, error)

// StatsFactory constructs a collector that additionally wants the
// secondary self-monitoring stats queue. Registering with this signature
// is the capability declaration; the registry hands the stats queue only
// to factories that asked for it.
type StatsFactory func(opts configtypes.Options, q, statsQueue *queue.Queue, log logger.Logger) (Collector, error)

// Registry maps module names to collector factories.
type Registry struct {
	mutex     sync.RWMutex
	factories map[string]any
}

// Global registry instance, populated by the builtin plugin packages.
var globalRegistry = &Registry{
	factories: make(map[string]any),
}

// Default returns the global registry.
func Default() *Registry {
	return globalRegistry
}

// NewRegistry creates an empty registry, mainly for tests.
func NewRegistry() *Registry {

	return &Registry{
		factories: make(map[string]any),
	}
}

// Register adds a plain factory under the given module name. A later
// registration overwrites an earlier one.
func (r *Registry) Register(module string, factory Factory) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.factories[module] = factory
}

// RegisterWithStats adds a factory that receives the stats queue.
func (r *Registry) RegisterWithStats(module string, factory StatsFactory) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.factories[module] = factory
}

// Known reports whether a module name is registered.
func (r *Registry) Known(module string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, ok := r.factories[module]
	return ok
}

// Modules returns the sorted registered module names.
func (r *Registry) Modules() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs a collector instance for the module, passing the
// stats queue only to factories registered with the stats-aware
// signature.
func (r *Registry) Build(module string, opts configtypes.Options, q, statsQueue *queue.Queue, log logger.Logger) (Collector, error) {
	r.mutex.RLock()
	factory, ok := r.factories[module]
	r.mutex.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown module %q", module)
	}

	switch f := factory.(type) {
	case Factory:
		return f(opts, q, log)
	case StatsFactory:
		return f(opts, q, statsQueue, log)
	default:
		return nil, fmt.Errorf("module %q has an unsupported factory type %T", module, factory)
	}
}
