package pubcorpus

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/pubcorpus/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

func (a *App) handleReport(c echo.Context) error {
	return Render(c, views.Report(a.reportData()))
}

// reportData shapes the problem report and the current corpus for the HTML view.
func (a *App) reportData() views.ReportData {
	r := a.problemReport()
	d := views.ReportData{
		Title:    "Corpus report",
		LoadedAt: r.LoadedAt,
		Strict:   a.Config.Strict,
		Problems: r.Problems,
		Rejected: r.Rejected,
	}
	for _, w := range r.Warnings {
		d.Warnings = append(d.Warnings, views.ReportWarning{Folder: w.Folder, Field: w.Field, Message: w.Message})
	}
	for _, s := range r.Stale {
		d.Stale = append(d.Stale, views.ReportStale{UrlPath: s.UrlPath, Folder: s.Folder, LastUpdatedDate: s.LastUpdatedDate})
	}
	for _, p := range a.Corpus().Posts() {
		d.Posts = append(d.Posts, views.ReportPost{
			UrlPath:         p.Meta.UrlPath,
			Link:            BuildURL(a.Config.BaseURL, "api", "posts", p.Meta.UrlPath),
			Title:           p.Meta.Title,
			Folder:          p.Folder,
			PublishDate:     p.Meta.PublishDate.String(),
			LastUpdatedDate: p.Meta.LastUpdatedDate.String(),
			Tags:            p.Meta.Tags,
			Words:           p.Analysis.Words,
			ReadingMinutes:  p.Analysis.ReadingMinutes,
			Warnings:        len(p.Warnings),
		})
	}
	return d
}
