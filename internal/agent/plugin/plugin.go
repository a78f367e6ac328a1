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
	"errors"
	"fmt"
)

// Collector is a constructed plugin instance. A collector exposes zero or
// more of the collection capabilities below; which ones it has is
// detected by interface assertion, not declared up front. Callbacks take
// no arguments and push the items they build onto the queue the instance
// was constructed with.
type Collector interface{}

// MetricCollector collects metric items each interval.
type MetricCollector interface {
	BuildItems() error
}

// DiscoveryCollector collects low level discovery items on its own,
// typically longer, interval.
type DiscoveryCollector interface {
	BuildDiscoveryItems() error
}

// LegacyCollector is the deprecated single-callback collection form.
//
// Deprecated: implement MetricCollector instead. In most cases only the
// method name needs to change.
type LegacyCollector interface {
	LoopedMethod() error
}

// Method names the job table derives job names from, one per capability.
const (
	MethodLegacy    = "looped_method"
	MethodMetric    = "build_items"
	MethodDiscovery = "build_discovery_items"
)

// Error is the distinguished failure kind a collector callback should
// return. A worker that sees it logs the failure and terminates, which
// makes the supervisor respawn the job on its next cycle.
type Error struct {
	Module string
	Err    error
}

func NewError(module string, err error) *Error {

	return &Error{Module: module, Err: err}
}

func (e *Error) Error() string {

	return fmt.Sprintf("plugin %s: %v", e.Module, e.Err)
}

func (e *Error) Unwrap() error {

	return e.Err
}

// Errorf builds a plugin Error from a format string.
func Errorf(module, format string, args ...any) *Error {

	return &Error{Module: module, Err: fmt.Errorf(format, args...)}
}

// IsError reports whether any error in err's chain is a plugin Error.
func IsError(err error) bool {

	var pe *Error
	return errors.As(err, &pe)
}
