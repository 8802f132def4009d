package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/maxvaer/urlbypass/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "urlbypass %s\ncommit: %s\nbuilt:  %s\ngo:     %s\n",
				version.String(), version.Commit(), version.Date(), runtime.Version())
		},
	}
}
