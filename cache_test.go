package pubcorpus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubcorpus/post"
)

func TestPostCacheTTL(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	clock := &fakeClock{t: syncTime}

	_, err := s.SyncCorpus(ctx, post.NewCorpus([]*post.Post{
		testPost("alpha", "2024-01-01", "2024-01-01", "# Alpha", "Go"),
	}), syncTime)
	require.NoError(t, err)

	c := NewPostCache(s, time.Minute)
	c.now = clock.Now

	posts, err := c.ListPosts(ctx, "")
	require.NoError(t, err)
	require.Len(t, posts, 1)

	// The index changes behind the cache's back.
	_, err = s.SyncCorpus(ctx, post.NewCorpus([]*post.Post{
		testPost("alpha", "2024-01-01", "2024-01-01", "# Alpha", "Go"),
		testPost("beta", "2024-02-01", "2024-02-01", "# Beta"),
	}), syncTime)
	require.NoError(t, err)

	posts, err = c.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, posts, 1, "cached result should be served within the TTL")

	clock.Advance(time.Minute)
	posts, err = c.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, posts, 2, "cache should refresh after the TTL")
}

func TestPostCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	c := NewPostCache(s, time.Hour)

	posts, err := c.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.NotNil(t, posts)

	_, err = s.SyncCorpus(ctx, post.NewCorpus([]*post.Post{
		testPost("alpha", "2024-01-01", "2024-01-01", "# Alpha", "Go"),
	}), syncTime)
	require.NoError(t, err)
	c.Invalidate()

	posts, err = c.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	tags, err := c.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []post.TagCount{{Tag: "go", Count: 1}}, tags)
}

func TestPostCacheFilterAndGet(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	_, err := s.SyncCorpus(ctx, post.NewCorpus([]*post.Post{
		testPost("alpha", "2024-01-01", "2024-01-01", "# Alpha", "Go"),
		testPost("beta", "2024-02-01", "2024-02-01", "# Beta", "Web"),
	}), syncTime)
	require.NoError(t, err)

	c := NewPostCache(s, time.Hour)

	tagged, err := c.ListPosts(ctx, " go ")
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "alpha", tagged[0].UrlPath)

	none, err := c.ListPosts(ctx, "rust")
	require.NoError(t, err)
	assert.Empty(t, none)

	p, err := c.GetPost(ctx, "BETA")
	require.NoError(t, err)
	assert.Equal(t, "beta", p.UrlPath)

	_, err = c.GetPost(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}
