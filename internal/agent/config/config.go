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
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	configtypes "github.com/vagrants/blackbird-go/internal/agent/types/config"
	errtypes "github.com/vagrants/blackbird-go/internal/agent/types/err"
	loggertypes "github.com/vagrants/blackbird-go/internal/agent/types/logger"
	"github.com/vagrants/blackbird-go/internal/util/logger"
)

const (
	GlobalSection = "global"

	DefaultMaxQueueLength = 32767
	DefaultLogLevel       = "info"
	DefaultMetricsPort    = 10059
)

type Loader struct {
	cfgPath string
	logger  logger.Logger
}

func New(cfgPath string) *Loader {

	return &Loader{
		cfgPath: cfgPath,
	}
}

// LoadConfig reads the YAML config file: one mapping per section, with a
// mandatory global section. Non-global sections are kept raw; their
// options are interpreted during job resolution.
func (l *Loader) LoadConfig() (*configtypes.AgentConfig, error) {

	l.logger = logger.DefaultLogger(os.Stdout, loggertypes.LogLevelInfo).WithName("config-loader")

	if l.cfgPath == "" {
		l.logger.Info("agent-config-loader: path is empty")
		return nil, errors.New("agent-config-loader: path is empty")
	}

	if _, err := os.Stat(l.cfgPath); os.IsNotExist(err) {
		l.logger.Error(err, "agent-config-loader: file not exist", "path", l.cfgPath)
		return nil, err
	}

	file, err := os.Open(l.cfgPath)
	if err != nil {
		return nil, err
	}
	defer func(file *os.File) {
		err := file.Close()
		if err != nil {
			l.logger.Error(err, "close config file failed")
		}
	}(file)

	var raw map[string]configtypes.Options
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&raw); err != nil {
		l.logger.Error(err, "decode config file failed")
		return nil, err
	}

	global, ok := raw[GlobalSection]
	if !ok {
		return nil, errtypes.NewConfigError(GlobalSection, errors.New("global section is missing"))
	}
	delete(raw, GlobalSection)

	cfg := &configtypes.AgentConfig{
		Global:   configtypes.GlobalOptions{Raw: global},
		Sections: raw,
	}

	return cfg, nil
}

// ValidateConfig checks the global options and fills defaults. Section
// options are the job factory's concern.
func (l *Loader) ValidateConfig(cfg *configtypes.AgentConfig) error {

	if cfg == nil {
		l.logger.Error(errtypes.AgentConfigIsNil, "agent-config-loader is nil")
		return errtypes.AgentConfigIsNil
	}

	if _, present := cfg.Global.Raw["max_queue_length"]; present {
		length, ok := cfg.Global.Raw.GetInt("max_queue_length")
		if !ok || length <= 0 {
			l.logger.Error(errtypes.AgentQueueLengthIsNil, "max_queue_length must be a positive integer")
			return errtypes.NewConfigError(GlobalSection, errtypes.AgentQueueLengthIsNil)
		}
		cfg.Global.MaxQueueLength = length
	} else {
		cfg.Global.MaxQueueLength = DefaultMaxQueueLength
	}

	if level, ok := cfg.Global.Raw.GetString("log_level"); ok && level != "" {
		cfg.Global.LogLevel = level
	} else {
		cfg.Global.LogLevel = DefaultLogLevel
	}

	if port, ok := cfg.Global.Raw.GetInt("metrics_port"); ok && port > 0 {
		cfg.Global.MetricsPort = port
	} else {
		cfg.Global.MetricsPort = DefaultMetricsPort
	}

	if hostname, ok := cfg.Global.Raw.GetString("hostname"); ok {
		cfg.Global.Hostname = hostname
	}

	return nil
}
