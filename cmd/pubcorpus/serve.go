package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the corpus over a read-only JSON API",
		Long: `Load the corpus, sync the index, and serve it until interrupted.

With --watch the posts directory is watched and reloaded on change. A reload
that finds problems in strict mode is rejected and the previous corpus stays
in service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :3000)")
	cmd.Flags().String("base-url", "", "public URL used in API links")
	cmd.Flags().String("site-url", "", "public site the posts are rendered on")
	cmd.Flags().Bool("watch", false, "reload when post files change")
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	app := c.newApp()
	defer app.Close()
	if err := app.Open(ctx); err != nil {
		return err
	}
	c.out.Success("serving %d posts on %s", app.Corpus().Len(), c.cfg.Addr)
	return app.Start(ctx)
}
