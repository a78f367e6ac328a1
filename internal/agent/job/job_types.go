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
	"time"

	"github.com/vagrants/blackbird-go/internal/agent/plugin"
)

// Kind tags the three collection callback variants a collector can
// expose. One collector instance may yield up to three descriptors at
// once; the fan-out is deliberate backward compatibility, not an error.
type Kind string

const (
	KindMetric    Kind = "metric"
	KindDiscovery Kind = "discovery"
	KindLegacy    Kind = "legacy"
)

// MethodName returns the callback name the kind maps to. Job names are
// derived as "<section>-<method name>".
func (k Kind) MethodName() string {

	switch k {
	case KindDiscovery:
		return plugin.MethodDiscovery
	case KindLegacy:
		return plugin.MethodLegacy
	default:
		return plugin.MethodMetric
	}
}

// IntervalOption returns the config option the kind reads its interval
// from, at section level first, then global.
func (k Kind) IntervalOption() string {

	if k == KindDiscovery {
		return "lld_interval"
	}
	return "interval"
}

// DefaultInterval returns the interval used when neither the section nor
// the global section carries the option.
func (k Kind) DefaultInterval() time.Duration {

	if k == KindDiscovery {
		return 600 * time.Second
	}
	return 60 * time.Second
}

// Descriptor is one named, interval-bound job: a zero-argument callback
// producing zero or more items per invocation. The name doubles as the
// worker liveness key, so it must be unique across the table.
type Descriptor struct {
	Name     string
	Kind     Kind
	Interval time.Duration
	Run      func() error
}
