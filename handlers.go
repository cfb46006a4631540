package pubcorpus

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/pubcorpus/post"
)

const headerRateLimitRemaining = "X-RateLimit-Remaining"

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/healthz", a.handleHealth)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: a.registry}))
	e.GET("/report", a.handleReport)

	api := e.Group("/api")
	api.GET("/posts", a.handleListPosts)
	api.GET("/posts/:urlPath", a.handleGetPost)
	api.GET("/posts/:urlPath/related", a.handleRelated)
	api.GET("/tags", a.handleTags)
	api.GET("/problems", a.handleProblems)
	api.GET("/manifest", a.handleManifest)
	api.GET("/feed.xml", a.handleFeed)
	api.GET("/sitemap.xml", a.handleSitemap)
	api.POST("/reload", a.handleReload)
}

func (a *App) handleHealth(c echo.Context) error {
	corpus := a.Corpus()
	indexed, err := a.Store.Count(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"posts":    corpus.Len(),
		"indexed":  indexed,
		"problems": problemCount(corpus),
	})
}

func problemCount(c *post.Corpus) int {
	if c == nil {
		return 0
	}
	return len(c.Problems)
}

func (a *App) handleListPosts(c echo.Context) error {
	tag := c.QueryParam("tag")
	page, limit := parsePaging(c.QueryParam("page"), c.QueryParam("limit"))

	posts, err := a.Cache.ListPosts(c.Request().Context(), tag)
	if err != nil {
		return err
	}
	start, end := paginate(len(posts), page, limit)
	out := PostPage{
		Posts: make([]PostSummary, 0, end-start),
		Tag:   post.NormalizeTag(tag),
		Page:  page,
		Limit: limit,
		Total: len(posts),
	}
	for _, p := range posts[start:end] {
		out.Posts = append(out.Posts, a.summarize(p))
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) lookup(c echo.Context) (*post.Post, error) {
	urlPath := c.Param("urlPath")
	p, ok := a.Corpus().Get(urlPath)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "post not found: "+urlPath)
	}
	return p, nil
}

func (a *App) handleGetPost(c echo.Context) error {
	p, err := a.lookup(c)
	if err != nil {
		return err
	}
	d := a.detail(p)
	row, err := a.Cache.GetPost(c.Request().Context(), p.Meta.UrlPath)
	switch {
	case err == nil:
		d.IndexedAt = &row.IndexedAt
	case !errors.Is(err, ErrNotFound):
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (a *App) handleRelated(c echo.Context) error {
	p, err := a.lookup(c)
	if err != nil {
		return err
	}
	_, limit := parsePaging("", c.QueryParam("limit"))
	related := a.Corpus().Related(p)
	if len(related) > limit {
		related = related[:limit]
	}
	out := make([]PostSummary, 0, len(related))
	for _, r := range related {
		out = append(out, a.summarizePost(r))
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleTags(c echo.Context) error {
	tags, err := a.Cache.ListTags(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

func (a *App) handleProblems(c echo.Context) error {
	return c.JSON(http.StatusOK, a.problemReport())
}

// problemReport collects the findings of the current snapshot and of the last
// rejected reload, if any.
func (a *App) problemReport() ProblemReport {
	r := ProblemReport{Problems: []string{}, Warnings: []post.Warning{}}
	if s := a.Snapshot(); s != nil {
		r.LoadedAt = s.LoadedAt
		r.Posts = s.Corpus.Len()
		r.Problems = append(r.Problems, problemStrings(s.Corpus.Problems)...)
		r.Warnings = append(r.Warnings, s.Corpus.Warnings...)
		r.Stale = s.Sync.Stale
	}
	if rejected := a.rejected.Load(); rejected != nil {
		r.Rejected = *rejected
	}
	return r
}

func (a *App) handleManifest(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Corpus().Manifest())
}

func (a *App) handleReload(c echo.Context) error {
	ip := c.RealIP()
	allowed := a.reloadLimiter.Allow(ip)
	c.Response().Header().Set(headerRateLimitRemaining, strconv.Itoa(a.reloadLimiter.Remaining(ip)))
	if !allowed {
		c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(int(a.Config.ReloadWindow.Seconds())))
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many reload requests")
	}

	snap, err := a.Reload(c.Request().Context())
	var rej *RejectedError
	if errors.As(err, &rej) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error":    "reload rejected",
			"problems": problemStrings(rej.Problems),
		})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"posts":    snap.Corpus.Len(),
		"problems": len(snap.Corpus.Problems),
		"warnings": len(snap.Corpus.Warnings),
		"sync":     snap.Sync,
	})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}
	if code >= 500 {
		a.Logger.Error("server error", zap.Error(err), zap.String("uri", c.Request().RequestURI))
		msg = http.StatusText(code)
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"error": msg})
}
