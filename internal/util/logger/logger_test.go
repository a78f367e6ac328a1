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

package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	loggertypes "github.com/vagrants/blackbird-go/internal/agent/types/logger"
)

func TestLogger(t *testing.T) {
	logger := NewLogger(os.Stdout, loggertypes.DefaultAgentLogging())
	logger.Info("kv msg", "key", "value")
	logger.Sugar().Infof("template %s %d", "string", 123)

	logger.WithName(string(loggertypes.LogComponentAgentScheduler)).WithValues("runner", "scheduler").Info("msg", "k", "v")

	defaultLogger := DefaultLogger(os.Stdout, loggertypes.LogLevelInfo)
	assert.NotNil(t, defaultLogger.logging)
	assert.NotNil(t, defaultLogger.sugaredLogger)

	fileLogger := FileLogger("/dev/stderr", "fl-test", loggertypes.LogLevelInfo)
	assert.NotNil(t, fileLogger.logging)
	assert.NotNil(t, fileLogger.sugaredLogger)
}

func TestLoggerComponentLevel(t *testing.T) {
	var buf bytes.Buffer

	config := loggertypes.DefaultAgentLogging()
	config.Level[loggertypes.LogComponentAgentScheduler] = loggertypes.LogLevelError

	logger := NewLogger(&buf, config).WithName(string(loggertypes.LogComponentAgentScheduler))
	logger.Info("quiet info message")
	assert.NotContains(t, buf.String(), "quiet info message")

	logger.Sugar().Errorf("loud error %d", 1)
	assert.Contains(t, buf.String(), "loud error 1")
}

func TestLoggerOutputContainsName(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger(&buf, loggertypes.DefaultAgentLogging()).WithName("sender")
	logger.Info("drained", "count", 3)

	out := buf.String()
	assert.Contains(t, out, "sender")
	assert.Contains(t, out, "drained")
}
