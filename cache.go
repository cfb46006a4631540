package pubcorpus

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/eringen/pubcorpus/post"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = sql.ErrNoRows

// PostCache is an in-memory cache of indexed posts and tags with TTL.
type PostCache struct {
	mu      sync.RWMutex
	posts   []IndexedPost
	tags    []post.TagCount
	fetched time.Time
	ttl     time.Duration
	store   *Store
	now     func() time.Time
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl, now: time.Now}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *PostCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts(ctx, "")
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags(ctx)
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []IndexedPost{}
	}
	c.posts = posts
	c.tags = tags
	c.fetched = c.now()
	return nil
}

// ensureLoaded returns cached posts and tags after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]IndexedPost, []post.TagCount, error) {
	c.mu.RLock()
	if c.valid() {
		posts, tags := c.posts, c.tags
		c.mu.RUnlock()
		return posts, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, nil, err
	}
	return c.posts, c.tags, nil
}

// ListPosts returns indexed posts, optionally filtered by tag.
func (c *PostCache) ListPosts(ctx context.Context, tag string) ([]IndexedPost, error) {
	posts, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return posts, nil
	}
	normalized := post.NormalizeTag(tag)
	filtered := []IndexedPost{}
	for _, p := range posts {
		for _, t := range p.Tags {
			if t == normalized {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// ListTags returns all tags with their post counts.
func (c *PostCache) ListTags(ctx context.Context) ([]post.TagCount, error) {
	_, tags, err := c.ensureLoaded(ctx)
	return tags, err
}

// GetPost returns a single indexed post by UrlPath, ignoring case.
func (c *PostCache) GetPost(ctx context.Context, urlPath string) (IndexedPost, error) {
	posts, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return IndexedPost{}, err
	}
	for _, p := range posts {
		if strings.EqualFold(p.UrlPath, urlPath) {
			return p, nil
		}
	}
	return IndexedPost{}, ErrNotFound
}
