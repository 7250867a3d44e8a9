package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/jwulff/recite/internal/checkin"
	"github.com/spf13/cobra"
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var (
		limit    int
		checkIns bool
		user     string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent transcriptions or check-ins from the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("history is disabled (history.path is empty)")
			}
			defer store.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()

			if user != "" {
				total, err := store.TotalRecitedSeconds(user)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\n", user, checkin.FormatDuration(total))
				return nil
			}

			if checkIns {
				rows, err := store.RecentCheckIns(limit)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "WHEN\tUSER\tPAGES\tDURATION")
				for _, c := range rows {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						c.CreatedAt.Format("2006-01-02 15:04"), c.Username, c.RecitedPages, checkin.FormatDuration(c.ReciteDuration))
				}
				return nil
			}

			rows, err := store.RecentTranscriptions(limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "WHEN\tORDER\tFILE\tTEXT")
			for _, t := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					t.CreatedAt.Format("2006-01-02 15:04"), t.OrderID, t.FileName, t.Text)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&limit, "limit", "n", 10, "number of rows")
	f.BoolVar(&checkIns, "checkins", false, "list check-ins instead of transcriptions")
	f.StringVar(&user, "user", "", "print the total recited time for one user")
	return cmd
}
