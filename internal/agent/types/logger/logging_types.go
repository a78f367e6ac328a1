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

// blackbird logger related types

type LogLevel string

const (
	// LogLevelTrace defines the "trace" logger level.
	LogLevelTrace LogLevel = "trace"

	// LogLevelDebug defines the "debug" logger level.
	LogLevelDebug LogLevel = "debug"

	// LogLevelInfo defines the "info" logger level.
	LogLevelInfo LogLevel = "info"

	// LogLevelWarn defines the "warn" logger level.
	LogLevelWarn LogLevel = "warn"

	// LogLevelError defines the "error" logger level.
	LogLevelError LogLevel = "error"
)

type AgentLogging struct {
	Level map[AgentLogComponent]LogLevel `json:"level,omitempty"`
}

type AgentLogComponent string

const (
	LogComponentAgentDefault AgentLogComponent = "default"

	LogComponentAgentScheduler AgentLogComponent = "scheduler"

	LogComponentAgentSender AgentLogComponent = "sender"

	LogComponentAgentJob AgentLogComponent = "job"
)

func DefaultAgentLogging() *AgentLogging {

	return &AgentLogging{
		Level: map[AgentLogComponent]LogLevel{
			LogComponentAgentDefault: LogLevelInfo,
		},
	}
}

func (logging *AgentLogging) DefaultAgentLoggingLevel(level LogLevel) LogLevel {

	if level != "" {
		return level
	}

	if logging.Level[LogComponentAgentDefault] != "" {

		return logging.Level[LogComponentAgentDefault]
	}

	return LogLevelInfo
}

func (logging *AgentLogging) SetAgentLoggingDefaults() {

	if logging != nil && logging.Level != nil && logging.Level[LogComponentAgentDefault] == "" {

		logging.Level[LogComponentAgentDefault] = LogLevelInfo
	}
}
