package pubcorpus

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// handleSitemap lists the public route of every post, with LastUpdatedDate
// as lastmod. Posts with a canonical origin elsewhere are left out.
func (a *App) handleSitemap(c echo.Context) error {
	base := a.Config.SiteURL
	urls := []sitemapURL{{Loc: BuildURL(base)}}
	for _, p := range a.Corpus().Posts() {
		if p.Meta.CanonicalPostOrigin != "" {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, p.Meta.UrlPath),
			LastMod: p.Meta.LastUpdatedDate.String(),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
