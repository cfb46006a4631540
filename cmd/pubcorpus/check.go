package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/pubcorpus"
	"github.com/eringen/pubcorpus/post"
)

// errProblems is returned by check when the corpus has problems.
var errProblems = errors.New("corpus has problems")

func newCheckCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate every post folder",
		Long: `Load every post folder and report problems and warnings.

Exits non-zero when any problem is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("invalid format %q: must be table or json", format)
			}
			corpus, err := c.newApp().Loader().Load(cmd.Context())
			if corpus == nil {
				return err
			}
			problems := post.Problems(err)

			if format == "json" {
				report := pubcorpus.ProblemReport{
					LoadedAt: time.Now().UTC(),
					Posts:    corpus.Len(),
					Problems: make([]string, 0, len(problems)),
					Warnings: corpus.Warnings,
				}
				for _, p := range problems {
					report.Problems = append(report.Problems, p.Error())
				}
				if report.Warnings == nil {
					report.Warnings = []post.Warning{}
				}
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else if err := c.printFindings(problems, corpus.Warnings); err != nil {
				return err
			}

			if len(problems) > 0 {
				return fmt.Errorf("%w: %d of them across %d valid posts", errProblems, len(problems), corpus.Len())
			}
			if format == "table" {
				c.out.Success("%d posts, %d warnings, no problems", corpus.Len(), len(corpus.Warnings))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format (table or json)")
	return cmd
}

func (c *cli) printFindings(problems []error, warnings []post.Warning) error {
	if len(problems) == 0 && len(warnings) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(problems)+len(warnings))
	for _, p := range problems {
		folder, field, msg := describeProblem(p)
		rows = append(rows, []string{folder, c.out.severity("problem"), field, msg})
	}
	for _, w := range warnings {
		rows = append(rows, []string{w.Folder, c.out.severity("warning"), w.Field, w.Message})
	}
	return c.out.table([]string{"folder", "level", "field", "message"}, rows)
}

// describeProblem splits a loader problem into its folder, field, and message.
func describeProblem(err error) (folder, field, msg string) {
	var dup *post.DuplicateRouteError
	if errors.As(err, &dup) {
		return dup.Folder, "urlPath", fmt.Sprintf("duplicate route %q, already used by %s", dup.UrlPath, dup.Existing)
	}
	inner := err
	var fe *post.FolderError
	if errors.As(err, &fe) {
		folder, inner = fe.Folder, fe.Err
	}
	var fieldErr *post.FieldError
	if errors.As(inner, &fieldErr) {
		return folder, fieldErr.Field, fieldErr.Err.Error()
	}
	return folder, "", inner.Error()
}
