// Package views renders the HTML lint report served at /report.
package views

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"
)

const reportStyle = `body{font:14px/1.5 system-ui,sans-serif;margin:2rem;color:#1c1917}
table{border-collapse:collapse;width:100%}th,td{text-align:left;padding:.35rem .6rem;border-bottom:1px solid #e7e5e4}
.badge{display:inline-block;padding:.1rem .5rem;border-radius:.25rem;font-weight:600}
.badge-ok{background:#dcfce7}.badge-warn{background:#fef9c3}.badge-error{background:#fee2e2}
code{font-size:12px}li{margin:.2rem 0}`

// Report renders the whole report page.
func Report(d ReportData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &htmlWriter{w: w}
		title := d.Title
		if title == "" {
			title = "Corpus report"
		}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`).text(title).raw(`</title><style>` + reportStyle + `</style></head><body>`)
		p.raw(`<h1>`).text(title).raw(`</h1>`)

		p.raw(`<p><span class="`).text(StatusClass(len(d.Problems), len(d.Warnings))).raw(`">`)
		p.text(Plural(len(d.Posts), "post", "posts")).raw(`, `)
		p.text(Plural(len(d.Problems), "problem", "problems")).raw(`, `)
		p.text(Plural(len(d.Warnings), "warning", "warnings")).raw(`</span>`)
		if !d.LoadedAt.IsZero() {
			p.raw(` loaded `).text(d.LoadedAt.UTC().Format(time.RFC3339))
		}
		if d.Strict {
			p.raw(` (strict)`)
		}
		p.raw(`</p>`)

		if len(d.Rejected) > 0 {
			p.raw(`<h2>Rejected reload</h2><p>The last reload was refused; the corpus below is the previous snapshot.</p>`)
			p.list(d.Rejected)
		}
		if len(d.Problems) > 0 {
			p.raw(`<h2>Problems</h2>`)
			p.list(d.Problems)
		}
		if len(d.Stale) > 0 {
			p.raw(`<h2>Stale dates</h2><ul>`)
			for _, s := range d.Stale {
				p.raw(`<li><code>`).text(s.UrlPath).raw(`</code> body changed, lastUpdatedDate still `).text(s.LastUpdatedDate).raw(`</li>`)
			}
			p.raw(`</ul>`)
		}
		if len(d.Warnings) > 0 {
			p.raw(`<h2>Warnings</h2><ul>`)
			for _, wn := range d.Warnings {
				p.raw(`<li><code>posts/`).text(wn.Folder).raw(`</code> `)
				if wn.Field != "" {
					p.raw(`<strong>`).text(wn.Field).raw(`</strong> `)
				}
				p.text(wn.Message).raw(`</li>`)
			}
			p.raw(`</ul>`)
		}

		p.raw(`<h2>Posts</h2><table><thead><tr><th>Route</th><th>Title</th><th>Published</th><th>Updated</th><th>Tags</th><th>Words</th><th>Warnings</th></tr></thead><tbody>`)
		for _, row := range d.Posts {
			p.raw(`<tr><td><a href="`).text(row.Link).raw(`"><code>`).text(row.UrlPath).raw(`</code></a></td>`)
			p.raw(`<td>`).text(row.Title).raw(`</td>`)
			p.raw(`<td>`).text(row.PublishDate).raw(`</td>`)
			p.raw(`<td>`).text(row.LastUpdatedDate).raw(`</td>`)
			p.raw(`<td>`).text(JoinTags(row.Tags)).raw(`</td>`)
			p.raw(`<td>`).text(strconv.Itoa(row.Words)).raw(` (`).text(strconv.Itoa(row.ReadingMinutes)).raw(` min)</td>`)
			p.raw(`<td><span class="`).text(StatusClass(0, row.Warnings)).raw(`">`).text(strconv.Itoa(row.Warnings)).raw(`</span></td></tr>`)
		}
		p.raw(`</tbody></table></body></html>`)
		return p.err
	})
}

// htmlWriter writes markup and escaped text, keeping the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) *htmlWriter {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
	return h
}

func (h *htmlWriter) text(s string) *htmlWriter {
	return h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) list(items []string) {
	h.raw(`<ul>`)
	for _, it := range items {
		h.raw(`<li>`).text(it).raw(`</li>`)
	}
	h.raw(`</ul>`)
}
