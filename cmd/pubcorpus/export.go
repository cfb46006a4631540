package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newExportCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the renderer manifest as JSON",
		Long: `Write a JSON object keyed by urlPath holding every post's folder,
metadata, body, analysis, and cover. In strict mode nothing is written when the
corpus has problems.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			corpus, err := c.newApp().Loader().Load(cmd.Context())
			if corpus == nil {
				return err
			}
			if err != nil {
				if c.cfg.Strict {
					return fmt.Errorf("not exporting: %w", err)
				}
				c.out.Warning("exporting %d posts despite problems: %v", corpus.Len(), err)
			}

			if output == "" || output == "-" {
				return writeJSON(cmd.OutOrStdout(), corpus.Manifest())
			}
			if err := writeFileAtomic(output, func(f *os.File) error {
				return writeJSON(f, corpus.Manifest())
			}); err != nil {
				return err
			}
			c.out.Success("wrote %d posts to %s", corpus.Len(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, write func(*os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
