package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is the agent release version, overridable at build time with
// -ldflags "-X .../internal/cmd.Version=...".
var Version = "0.1.0-dev"

func VersionCommand() *cobra.Command {

	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"version", "v"},
		Short:   "Print the agent version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blackbird-agent %s (%s)\n", Version, runtime.Version())
		},
	}
}
