package post

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/eringen/pubcorpus/markdown"
)

// Corpus is an immutable, validated set of posts indexed by UrlPath.
type Corpus struct {
	posts  []*Post
	routes map[string]*Post

	// Problems lists every error found while building the corpus. Posts
	// named by a problem are not part of the corpus.
	Problems []error
	// Warnings lists non-fatal findings.
	Warnings []Warning
}

// NewCorpus indexes posts by UrlPath. When two posts share a route, the one
// whose folder sorts first keeps it and the other is recorded in Problems.
func NewCorpus(posts []*Post) *Corpus {
	byFolder := slices.Clone(posts)
	slices.SortStableFunc(byFolder, func(a, b *Post) int { return strings.Compare(a.Folder, b.Folder) })

	c := &Corpus{routes: make(map[string]*Post, len(posts))}
	for _, p := range byFolder {
		key := routeKey(p.Meta.UrlPath)
		if existing, ok := c.routes[key]; ok {
			c.Problems = append(c.Problems, &DuplicateRouteError{
				UrlPath:  p.Meta.UrlPath,
				Folder:   p.Folder,
				Existing: existing.Folder,
			})
			continue
		}
		c.routes[key] = p
		c.posts = append(c.posts, p)
	}
	slices.SortStableFunc(c.posts, comparePosts)
	for _, p := range c.posts {
		c.Warnings = append(c.Warnings, p.Warnings...)
	}
	return c
}

// comparePosts orders newest first, then by UrlPath.
func comparePosts(a, b *Post) int {
	if c := b.Meta.PublishDate.Compare(a.Meta.PublishDate.Time); c != 0 {
		return c
	}
	return strings.Compare(a.Meta.UrlPath, b.Meta.UrlPath)
}

// CheckUnique reports every post whose UrlPath is already claimed by a post
// in an earlier folder. Comparison ignores case.
func CheckUnique(posts []*Post) []error {
	return NewCorpus(posts).Problems
}

// Len returns the number of posts.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.posts)
}

// Get looks up a post by UrlPath, ignoring case.
func (c *Corpus) Get(urlPath string) (*Post, bool) {
	if c == nil {
		return nil, false
	}
	p, ok := c.routes[routeKey(urlPath)]
	return p, ok
}

// Posts returns all posts, newest first.
func (c *Corpus) Posts() []*Post {
	if c == nil {
		return nil
	}
	return slices.Clone(c.posts)
}

// ByTag returns posts carrying tag, newest first. An empty tag returns all posts.
func (c *Corpus) ByTag(tag string) []*Post {
	if NormalizeTag(tag) == "" {
		return c.Posts()
	}
	var out []*Post
	for _, p := range c.Posts() {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// TagCount is a normalized tag and the number of posts carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Tags returns every normalized tag in collation order.
func (c *Corpus) Tags() []TagCount {
	counts := make(map[string]int)
	for _, p := range c.Posts() {
		seen := make(map[string]struct{}, len(p.Meta.Tags))
		for _, t := range p.Meta.Tags {
			key := NormalizeTag(t)
			if _, dup := seen[key]; dup || key == "" {
				continue
			}
			seen[key] = struct{}{}
			counts[key]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	SortTags(out)
	return out
}

// SortTags orders tags for display: accents and case are secondary to the
// base letters, so "écriture" sorts between "blazor" and "jsinterop".
func SortTags(tags []TagCount) {
	col := collate.New(language.English, collate.Loose)
	slices.SortFunc(tags, func(a, b TagCount) int {
		if c := col.CompareString(a.Tag, b.Tag); c != 0 {
			return c
		}
		return strings.Compare(a.Tag, b.Tag)
	})
}

// Related returns the other posts sharing at least one tag with p, most
// shared tags first, then newest first.
func (c *Corpus) Related(p *Post) []*Post {
	if p == nil {
		return nil
	}
	mine := make(map[string]struct{}, len(p.Meta.Tags))
	for _, t := range p.Meta.Tags {
		mine[NormalizeTag(t)] = struct{}{}
	}

	type scored struct {
		post   *Post
		shared int
	}
	var hits []scored
	for _, other := range c.Posts() {
		if other == p || routeKey(other.Meta.UrlPath) == routeKey(p.Meta.UrlPath) {
			continue
		}
		seen := make(map[string]struct{})
		for _, t := range other.Meta.Tags {
			key := NormalizeTag(t)
			if _, ok := mine[key]; ok {
				seen[key] = struct{}{}
			}
		}
		if len(seen) > 0 {
			hits = append(hits, scored{other, len(seen)})
		}
	}
	slices.SortStableFunc(hits, func(a, b scored) int { return b.shared - a.shared })

	out := make([]*Post, len(hits))
	for i, h := range hits {
		out[i] = h.post
	}
	return out
}

// ManifestEntry is everything a renderer needs for one route.
type ManifestEntry struct {
	Folder   string            `json:"folder"`
	Meta     Metadata          `json:"meta"`
	Body     string            `json:"body"`
	BodyHash string            `json:"bodyHash"`
	Analysis markdown.Analysis `json:"analysis"`
	Cover    *Cover            `json:"cover,omitempty"`
}

// Manifest maps UrlPath to the joined post record.
type Manifest map[string]ManifestEntry

// Manifest returns the renderer hand-off for every post.
func (c *Corpus) Manifest() Manifest {
	m := make(Manifest, c.Len())
	for _, p := range c.Posts() {
		m[p.Meta.UrlPath] = ManifestEntry{
			Folder:   p.Folder,
			Meta:     p.Meta,
			Body:     p.Body,
			BodyHash: p.BodyHash,
			Analysis: p.Analysis,
			Cover:    p.Cover,
		}
	}
	return m
}
