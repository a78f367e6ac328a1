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
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	loggertypes "github.com/vagrants/blackbird-go/internal/agent/types/logger"
)

type Logger struct {
	logr.Logger
	out           io.Writer
	logging       *loggertypes.AgentLogging
	sugaredLogger *zap.SugaredLogger
}

func NewLogger(w io.Writer, logging *loggertypes.AgentLogging) Logger {

	logger := initZapLogger(w, logging, logging.Level[loggertypes.LogComponentAgentDefault])

	return Logger{
		Logger:        zapr.NewLogger(logger),
		out:           w,
		logging:       logging,
		sugaredLogger: logger.Sugar(),
	}
}

func FileLogger(file, name string, level loggertypes.LogLevel) Logger {

	writer, err := os.OpenFile(file, os.O_WRONLY, 0o666)
	if err != nil {
		panic(err)
	}

	logging := loggertypes.DefaultAgentLogging()
	logger := initZapLogger(writer, logging, level)

	return Logger{
		Logger:        zapr.NewLogger(logger).WithName(name),
		logging:       logging,
		out:           writer,
		sugaredLogger: logger.Sugar(),
	}
}

func DefaultLogger(out io.Writer, level loggertypes.LogLevel) Logger {

	logging := loggertypes.DefaultAgentLogging()
	logger := initZapLogger(out, logging, level)

	return Logger{
		Logger:        zapr.NewLogger(logger),
		out:           out,
		logging:       logging,
		sugaredLogger: logger.Sugar(),
	}
}

// WithName returns a new Logger instance with the specified name element added
// to the Logger's name.  Successive calls with WithName append additional
// suffixes to the Logger's name.  It's strongly recommended that name segments
// contain only letters, digits, and hyphens (see the package documentation for
// more information).
func (l Logger) WithName(name string) Logger {

	logLevel := l.logging.Level[loggertypes.AgentLogComponent(name)]
	logger := initZapLogger(l.out, l.logging, logLevel)

	return Logger{
		Logger:        zapr.NewLogger(logger).WithName(name),
		logging:       l.logging,
		out:           l.out,
		sugaredLogger: logger.Sugar().Named(name),
	}
}

// WithValues returns a new Logger instance with additional key/value pairs.
// See Info for documentation on how key/value pairs work.
func (l Logger) WithValues(keysAndValues ...interface{}) Logger {

	l.Logger = l.Logger.WithValues(keysAndValues...)
	return l
}

// Sugar returns the wrapped zap SugaredLogger for printf-style logging.
func (l Logger) Sugar() *zap.SugaredLogger {

	return l.sugaredLogger
}

func initZapLogger(w io.Writer, logging *loggertypes.AgentLogging, level loggertypes.LogLevel) *zap.Logger {

	parseLevel, _ := zapcore.ParseLevel(string(logging.DefaultAgentLoggingLevel(level)))
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.AddSync(w), zap.NewAtomicLevelAt(parseLevel))

	return zap.New(core, zap.AddCaller())
}
