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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricItemData(t *testing.T) {
	it := NewMetricItem("cpu.load", 0.42, "web01", 1700000000)

	data := it.Data()
	assert.Len(t, data, 4)
	assert.Equal(t, "cpu.load", data["key"])
	assert.Equal(t, 0.42, data["value"])
	assert.Equal(t, "web01", data["host"])
	assert.Equal(t, int64(1700000000), data["clock"])
}

func TestMetricItemDefaults(t *testing.T) {
	before := time.Now().UTC().Unix()
	it := NewMetricItem("mem.free", 1024, "", 0)
	after := time.Now().UTC().Unix()

	hostname, err := os.Hostname()
	require.NoError(t, err)
	assert.Equal(t, hostname, it.Host())

	assert.GreaterOrEqual(t, it.Clock(), before)
	assert.LessOrEqual(t, it.Clock(), after)
}

func TestMetricItemClockIsSnapshot(t *testing.T) {
	it := NewMetricItem("disk.used", 1, "", 0)

	first := it.Clock()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, first, it.Clock())
	assert.Equal(t, first, it.Data()["clock"])
}

func TestDiscoveryItemData(t *testing.T) {
	entities := []map[string]any{
		{"{#MOUNTPOINT}": "/"},
		{"{#MOUNTPOINT}": "/var"},
	}

	it, err := NewDiscoveryItem("fs.discovery", entities, "web01", 1700000000)
	require.NoError(t, err)

	data := it.Data()
	assert.Len(t, data, 4)
	assert.Equal(t, "fs.discovery", data["key"])
	assert.Equal(t, "web01", data["host"])
	assert.Equal(t, int64(1700000000), data["clock"])

	encoded, ok := data["value"].(string)
	require.True(t, ok)

	var envelope map[string][]map[string]any
	require.NoError(t, json.Unmarshal([]byte(encoded), &envelope))
	require.Contains(t, envelope, "data")
	assert.Equal(t, entities, envelope["data"])
}

func TestDiscoveryItemExplicitClockHonored(t *testing.T) {
	it, err := NewDiscoveryItem("net.discovery", nil, "web01", 123456)
	require.NoError(t, err)

	assert.Equal(t, int64(123456), it.Clock())
	assert.Equal(t, int64(123456), it.Data()["clock"])
}

func TestDiscoveryItemEmptyValue(t *testing.T) {
	it, err := NewDiscoveryItem("empty.discovery", []map[string]any{}, "web01", 1)
	require.NoError(t, err)

	encoded := it.Data()["value"].(string)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal([]byte(encoded), &envelope))
	assert.Contains(t, envelope, "data")
}
