package server

import (
	"io"

	configtypes "github.com/vagrants/blackbird-go/internal/agent/types/config"
	loggertypes "github.com/vagrants/blackbird-go/internal/agent/types/logger"
	"github.com/vagrants/blackbird-go/internal/util/logger"
)

const (
	BlackbirdAgentGoName = "BlackbirdAgentGoImpl"
)

type Server struct {
	Name   string
	Logger logger.Logger
	Config *configtypes.AgentConfig
}

func New(cfg *configtypes.AgentConfig, logOut io.Writer) *Server {

	level := loggertypes.LogLevel(cfg.Global.LogLevel)
	if level == "" {
		level = loggertypes.LogLevelInfo
	}

	return &Server{
		Config: cfg,
		Name:   BlackbirdAgentGoName,
		Logger: logger.DefaultLogger(logOut, level),
	}
}

func (s *Server) Validate() error {

	// something validate

	return nil
}
