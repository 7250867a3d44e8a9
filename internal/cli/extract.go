package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jwulff/recite/internal/lattice"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "extract [FILE|-]",
		Short: "Print the readable text of a transcription lattice",
		Long: `Read a lattice JSON document from FILE, or stdin when FILE is "-" or
omitted, and print the concatenated words.

Without --strict a malformed document prints the generic parse error text,
as the panel does. With --strict the failing path is reported and the
command exits non-zero.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			text, err := lattice.Parse(raw)
			if err != nil {
				var se *lattice.StageError
				if strict && errors.As(err, &se) {
					return fmt.Errorf("extract: %w", err)
				}
				fmt.Fprintln(out, lattice.ParseErrorText)
				return nil
			}
			fmt.Fprintln(out, text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail with the offending path on malformed input")
	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("read lattice: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
