package cli

import (
	"fmt"

	"github.com/jwulff/recite/internal/ui"
	"github.com/spf13/cobra"
)

func newPageCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "page",
		Short:  "Print the standalone welcome page",
		Hidden: true,
		Args:   cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), ui.StaticPage())
		},
	}
}
