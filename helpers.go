package pubcorpus

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/eringen/pubcorpus/markdown"
	"github.com/eringen/pubcorpus/post"
)

// Page size bounds for list endpoints.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
// Segments are expected to be URL-safe already (see post.ValidSlug).
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// summarize turns an index row into the API list view.
func (a *App) summarize(p IndexedPost) PostSummary {
	return PostSummary{
		UrlPath:         p.UrlPath,
		Title:           p.Title,
		Teaser:          markdown.PlainText(p.Teaser),
		Description:     markdown.PlainText(p.Description),
		Tags:            p.Tags,
		PublishDate:     p.PublishDate,
		LastUpdatedDate: p.LastUpdatedDate,
		ReadingMinutes:  p.ReadingMinutes,
		Link:            BuildURL(a.Config.BaseURL, "api", "posts", p.UrlPath),
	}
}

// summarizePost builds the list view straight from a loaded post.
func (a *App) summarizePost(p *post.Post) PostSummary {
	tags := p.Meta.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostSummary{
		UrlPath:         p.Meta.UrlPath,
		Title:           p.Meta.Title,
		Teaser:          markdown.PlainText(p.Meta.Teaser),
		Description:     markdown.PlainText(p.Meta.Description),
		Tags:            tags,
		PublishDate:     p.Meta.PublishDate.String(),
		LastUpdatedDate: p.Meta.LastUpdatedDate.String(),
		ReadingMinutes:  p.Analysis.ReadingMinutes,
		Link:            BuildURL(a.Config.BaseURL, "api", "posts", p.Meta.UrlPath),
	}
}

func (a *App) detail(p *post.Post) PostDetail {
	return PostDetail{
		PostSummary: a.summarizePost(p),
		Folder:      p.Folder,
		Meta:        p.Meta,
		Body:        p.Body,
		BodyHash:    p.BodyHash,
		Analysis:    p.Analysis,
		Cover:       p.Cover,
		Warnings:    p.Warnings,
	}
}

// parsePaging reads page and limit query values. Invalid values fall back to
// the defaults; limit is capped at MaxPageLimit.
func parsePaging(pageParam, limitParam string) (page, limit int) {
	page, limit = 1, DefaultPageLimit
	if n, err := strconv.Atoi(pageParam); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(limitParam); err == nil && n > 0 {
		limit = min(n, MaxPageLimit)
	}
	return page, limit
}

// paginate returns the slice bounds for page within total items.
func paginate(total, page, limit int) (start, end int) {
	start = (page - 1) * limit
	if start > total {
		start = total
	}
	end = min(start+limit, total)
	return start, end
}
