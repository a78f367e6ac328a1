package err

import "errors"

// Agent Server Error Types
var (
	AgentConfigIsNil      = errors.New("agent config is nil")
	AgentQueueLengthIsNil = errors.New("agent max_queue_length is missing or not positive")
	AgentServerStop       = errors.New("agent server stop")
)

// Agent Banner Error Types
var (
	BannerPrintReaderError  = errors.New("print banner error")
	BannerPrintExecuteError = errors.New("print banner execute error")
)
