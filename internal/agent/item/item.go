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

package item

import (
	"encoding/json"
	"os"
	"time"
)

// Item is one unit of monitoring data produced by a collector and drained
// by the sender. Items are immutable after construction: the clock is a
// snapshot taken when the item was built, never re-evaluated.
type Item interface {
	Key() string
	Host() string
	Clock() int64
	Data() map[string]any
}

// base carries the fields shared by the metric and discovery variants.
type base struct {
	key   string
	host  string
	clock int64
}

func newBase(key, host string, clock int64) base {

	if host == "" {
		host, _ = os.Hostname()
	}

	if clock <= 0 {
		clock = time.Now().UTC().Unix()
	}

	return base{key: key, host: host, clock: clock}
}

func (b base) Key() string { return b.key }

func (b base) Host() string { return b.host }

func (b base) Clock() int64 { return b.clock }

// MetricItem is a plain key/value measurement.
type MetricItem struct {
	base
	value any
}

// NewMetricItem builds a metric item. An empty host defaults to the local
// hostname; a non-positive clock defaults to the construction-time UTC
// unix timestamp.
func NewMetricItem(key string, value any, host string, clock int64) *MetricItem {

	return &MetricItem{
		base:  newBase(key, host, clock),
		value: value,
	}
}

// Data returns the mapping handed to the sender: {key, value, host, clock},
// value used as-is.
func (m *MetricItem) Data() map[string]any {

	return map[string]any{
		"key":   m.key,
		"value": m.value,
		"host":  m.host,
		"clock": m.clock,
	}
}

// DiscoveryItem is a low level discovery item: its value is an ordered
// sequence of mappings describing discovered entities, JSON-encoded into
// a {"data": [...]} envelope when read.
type DiscoveryItem struct {
	base
	encodedValue string
}

// NewDiscoveryItem builds a discovery item. The value sequence must hold
// mappings only; that constraint is enforced by the discovery job kind,
// not here. Encoding happens once, at construction.
func NewDiscoveryItem(key string, value []map[string]any, host string, clock int64) (*DiscoveryItem, error) {

	envelope := map[string]any{
		"data": value,
	}

	encoded, err := json.Marshal(envelope)
	if err != nil {
		return nil, err
	}

	return &DiscoveryItem{
		base:         newBase(key, host, clock),
		encodedValue: string(encoded),
	}, nil
}

// Data returns the mapping {key, host, clock, value} where value is the
// JSON-encoded discovery envelope.
func (d *DiscoveryItem) Data() map[string]any {

	return map[string]any{
		"key":   d.key,
		"host":  d.host,
		"clock": d.clock,
		"value": d.encodedValue,
	}
}
