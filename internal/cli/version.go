package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// Build variables, set with -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintf(out, "v%s\n", Version)
				return
			}
			fmt.Fprintln(out, "recite")
			fmt.Fprintln(out, strings.Repeat("-", 40))
			fmt.Fprintf(out, "Version:      v%s\n", Version)
			fmt.Fprintf(out, "Git Commit:   %s\n", GitCommit)
			fmt.Fprintf(out, "Build Time:   %s\n", BuildTime)
			fmt.Fprintf(out, "Go Version:   %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch:      %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintln(out, strings.Repeat("-", 40))
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "print just the version number")
	return cmd
}
