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

package sshcmd

import (
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/vagrants/blackbird-go/internal/agent/item"
	"github.com/vagrants/blackbird-go/internal/agent/plugin"
	"github.com/vagrants/blackbird-go/internal/agent/queue"
	configtypes "github.com/vagrants/blackbird-go/internal/agent/types/config"
	"github.com/vagrants/blackbird-go/internal/util/logger"
)

const (
	ModuleName = "sshcmd"

	defaultPort    = 22
	defaultTimeout = 10 * time.Second
)

func init() {
	plugin.Default().Register(ModuleName, New)
}

// Collector runs one command on a remote host over SSH and enqueues the
// trimmed output as a single metric item.
type Collector struct {
	queue    *queue.Queue
	logger   logger.Logger
	hostname string

	address      string
	command      string
	key          string
	clientConfig *ssh.ClientConfig
}

func New(opts configtypes.Options, q *queue.Queue, log logger.Logger) (plugin.Collector, error) {

	host, ok := opts.GetString("host")
	if !ok {
		return nil, fmt.Errorf("host is required")
	}

	port, ok := opts.GetInt("port")
	if !ok {
		port = defaultPort
	}

	username, ok := opts.GetString("username")
	if !ok {
		return nil, fmt.Errorf("username is required")
	}

	command, ok := opts.GetString("command")
	if !ok {
		return nil, fmt.Errorf("command is required")
	}

	key, ok := opts.GetString("key")
	if !ok {
		return nil, fmt.Errorf("key is required")
	}

	timeout, ok := opts.GetSeconds("timeout")
	if !ok {
		timeout = defaultTimeout
	}

	hostname, _ := opts.GetString("hostname")

	clientConfig := &ssh.ClientConfig{
		User:            username,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // Note: In production, you should verify host keys
		Timeout:         timeout,
	}

	privateKey, hasKey := opts.GetString("private_key")
	password, hasPassword := opts.GetString("password")

	switch {
	case hasKey && strings.TrimSpace(privateKey) != "":
		signer, err := ssh.ParsePrivateKey([]byte(privateKey))
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		clientConfig.Auth = []ssh.AuthMethod{ssh.PublicKeys(signer)}
	case hasPassword:
		clientConfig.Auth = []ssh.AuthMethod{ssh.Password(password)}
	default:
		return nil, fmt.Errorf("either password or private key must be provided")
	}

	return &Collector{
		queue:        q,
		logger:       log.WithName("sshcmd"),
		hostname:     hostname,
		address:      net.JoinHostPort(host, fmt.Sprintf("%d", port)),
		command:      command,
		key:          key,
		clientConfig: clientConfig,
	}, nil
}

// BuildItems dials the target, runs the command and enqueues its output.
func (c *Collector) BuildItems() error {

	client, err := ssh.Dial("tcp", c.address, c.clientConfig)
	if err != nil {
		return plugin.NewError(ModuleName, fmt.Errorf("failed to connect to %s: %w", c.address, err))
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return plugin.NewError(ModuleName, fmt.Errorf("failed to create session: %w", err))
	}
	defer session.Close()

	output, err := session.Output(c.command)
	if err != nil {
		return plugin.NewError(ModuleName, fmt.Errorf("command execution failed: %w", err))
	}

	c.queue.Put(item.NewMetricItem(c.key, strings.TrimSpace(string(output)), c.hostname, 0))

	return nil
}
