package root

import (
	"github.com/spf13/cobra"

	"github.com/vagrants/blackbird-go/internal/cmd"
)

func GetRootCommand() *cobra.Command {

	c := &cobra.Command{
		Use:   "blackbird-agent",
		Short: "Blackbird Agent Go",
		Long:  "Polling monitoring agent: runs pluggable collectors on their own intervals and queues the items they produce for delivery",
	}

	c.AddCommand(cmd.VersionCommand())
	c.AddCommand(cmd.ServerCommand())

	return c
}
