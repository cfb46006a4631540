package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/eringen/pubcorpus"
)

func newIndexCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Sync the SQLite index with the post folders",
		Long: `Load and validate the corpus, then make the SQLite index match it.

Reports how many rows were inserted, updated, and removed, and names every post
whose body changed without a lastUpdatedDate bump.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := c.newApp()
			defer app.Close()

			if err := app.Open(cmd.Context()); err != nil {
				var rej *pubcorpus.RejectedError
				if errors.As(err, &rej) {
					for _, p := range rej.Problems {
						c.out.Error("%v", p)
					}
				}
				return err
			}

			snap := app.Snapshot()
			res := snap.Sync
			for _, s := range res.Stale {
				c.out.Warning("posts/%s: body changed but lastUpdatedDate is still %s", s.Folder, s.LastUpdatedDate)
			}
			for _, p := range snap.Corpus.Problems {
				c.out.Warning("%v", p)
			}
			c.out.Success("indexed %d posts into %s", snap.Corpus.Len(), c.cfg.DatabasePath)
			c.out.Print("  inserted:  %d", res.Inserted)
			c.out.Print("  updated:   %d", res.Updated)
			c.out.Print("  unchanged: %d", res.Unchanged)
			c.out.Print("  removed:   %d", res.Removed)
			c.out.Print("  stale:     %d", len(res.Stale))
			return nil
		},
	}
}
