package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/pubcorpus/post"
	"github.com/eringen/pubcorpus/scaffold"
)

func newNewCmd(c *cli) *cobra.Command {
	var (
		tags []string
		date string
	)
	cmd := &cobra.Command{
		Use:   "new <title-or-slug>",
		Short: "Scaffold a new post folder",
		Long: `Create posts/<slug>/metaData.json and posts/<slug>/content.md.

The argument may be a title ("My Next Post") or a slug ("my-next-post").
Both dates default to today.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, slug := titleAndSlug(args[0])
			if slug == "" {
				return fmt.Errorf("cannot derive a url path from %q", args[0])
			}
			if date == "" {
				date = post.Today(time.Now()).String()
			}

			postsDir := filepath.Join(c.cfg.ContentDir, filepath.FromSlash(c.cfg.PostsDir))
			created, err := scaffold.Write(postsDir, scaffold.Data{
				Title:   title,
				UrlPath: slug,
				Date:    date,
				Tags:    tags,
			})
			if err != nil {
				return err
			}
			for _, p := range created {
				c.out.Print("  created %s", p)
			}
			c.out.Success("new post %q at posts/%s", title, slug)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag to add (repeatable)")
	cmd.Flags().StringVar(&date, "date", "", "publish date, YYYY-MM-DD (default today)")
	return cmd
}

// titleAndSlug treats a canonical slug as a slug and anything else as a title.
func titleAndSlug(arg string) (title, slug string) {
	arg = strings.TrimSpace(arg)
	if post.CanonicalSlug(arg) {
		return cases.Title(language.English).String(strings.ReplaceAll(arg, "-", " ")), arg
	}
	return arg, post.Slugify(arg)
}
