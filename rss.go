package pubcorpus

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubcorpus/markdown"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
}

// handleFeed serves an RSS 2.0 feed of the newest posts, optionally
// filtered by ?tag=.
func (a *App) handleFeed(c echo.Context) error {
	base := a.Config.SiteURL
	_, limit := parsePaging("", c.QueryParam("limit"))
	posts := a.Corpus().ByTag(c.QueryParam("tag"))
	if len(posts) > limit {
		posts = posts[:limit]
	}

	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		link := BuildURL(base, p.Meta.UrlPath)
		if p.Meta.CanonicalPostOrigin != "" {
			link = p.Meta.CanonicalPostOrigin
		}
		items = append(items, rssItem{
			Title:       p.Meta.Title,
			Link:        link,
			Description: markdown.PlainText(p.Meta.Description),
			Categories:  p.Meta.Tags,
			PubDate:     p.Meta.PublishDate.Format(time.RFC1123Z),
			GUID:        link,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.SiteName,
			Link:        BuildURL(base),
			Description: a.Config.SiteName + " posts",
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
