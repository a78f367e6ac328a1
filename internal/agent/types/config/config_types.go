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

package config

import (
	"fmt"
	"strconv"
	"time"
)

// Options holds the raw option mapping of one config section. Values keep
// the types the YAML decoder produced; the accessors below normalize them.
type Options map[string]any

// AgentConfig is the full merged configuration: the mandatory global
// section plus one section per monitored target.
type AgentConfig struct {
	Global   GlobalOptions
	Sections map[string]Options
}

// GlobalOptions carries the settings of the global section that the core
// consumes directly. The raw section is kept alongside so interval
// fallbacks can read it with the same accessors as any other section.
type GlobalOptions struct {
	MaxQueueLength int
	LogLevel       string
	MetricsPort    int
	Hostname       string

	Raw Options
}

// GetString returns the option as a string, and whether it was present.
func (o Options) GetString(key string) (string, bool) {

	v, ok := o[key]
	if !ok {
		return "", false
	}

	switch s := v.(type) {
	case string:
		return s, true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

// GetInt returns the option as an int, and whether it was present and
// parseable.
func (o Options) GetInt(key string) (int, bool) {

	v, ok := o[key]
	if !ok {
		return 0, false
	}

	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// GetSeconds reads the option as a positive duration expressed in
// seconds. Fractional values are allowed.
func (o Options) GetSeconds(key string) (time.Duration, bool) {

	v, ok := o[key]
	if !ok {
		return 0, false
	}

	var secs float64
	switch n := v.(type) {
	case int:
		secs = float64(n)
	case int64:
		secs = float64(n)
	case float64:
		secs = n
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		secs = parsed
	default:
		return 0, false
	}

	if secs <= 0 {
		return 0, false
	}

	return time.Duration(secs * float64(time.Second)), true
}
