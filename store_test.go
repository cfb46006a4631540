package pubcorpus

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubcorpus/post"
)

var syncTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "corpus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testPost(urlPath, published, updated, body string, tags ...string) *post.Post {
	return &post.Post{
		Folder: urlPath,
		Meta: post.Metadata{
			Title:           "Title of " + urlPath,
			UrlPath:         urlPath,
			Description:     "About " + urlPath,
			Teaser:          "Teaser",
			Tags:            tags,
			PublishDate:     post.MustDate(published),
			LastUpdatedDate: post.MustDate(updated),
		},
		Body:     body,
		BodyHash: post.HashBody([]byte(body)),
	}
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	require.NotNil(t, s.db)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestNewStoreInMemory(t *testing.T) {
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.SyncCorpus(context.Background(), post.NewCorpus([]*post.Post{
		testPost("in-memory", "2024-01-01", "2024-01-01", "# hi"),
	}), syncTime)
	require.NoError(t, err)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSyncCorpus(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	first := post.NewCorpus([]*post.Post{
		testPost("alpha", "2024-01-01", "2024-01-01", "# Alpha", "Go"),
		testPost("beta", "2024-02-01", "2024-02-01", "# Beta", "go", "Web"),
	})
	res, err := s.SyncCorpus(ctx, first, syncTime)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Inserted: 2}, res)

	res, err = s.SyncCorpus(ctx, first, syncTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Unchanged: 2}, res)

	second := post.NewCorpus([]*post.Post{
		testPost("alpha", "2024-01-01", "2024-03-01", "# Alpha, revised", "Go"),
		testPost("gamma", "2024-04-01", "2024-04-01", "# Gamma"),
	})
	res, err = s.SyncCorpus(ctx, second, syncTime.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Removed)
	assert.Empty(t, res.Stale)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	posts, err := s.ListPosts(ctx, "")
	require.NoError(t, err)
	for _, p := range posts {
		assert.NotEqual(t, "beta", p.UrlPath)
	}
}

func TestSyncCorpusStaleDate(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	_, err := s.SyncCorpus(ctx, post.NewCorpus([]*post.Post{
		testPost("alpha", "2024-01-01", "2024-01-05", "# Alpha"),
	}), syncTime)
	require.NoError(t, err)

	res, err := s.SyncCorpus(ctx, post.NewCorpus([]*post.Post{
		testPost("alpha", "2024-01-01", "2024-01-05", "# Alpha with a silent edit"),
	}), syncTime)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	require.Len(t, res.Stale, 1)
	assert.Equal(t, StaleDate{UrlPath: "alpha", Folder: "alpha", LastUpdatedDate: "2024-01-05"}, res.Stale[0])
}

func TestSyncCorpusStaleDatePersists(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	sync := func(alphaBody, alphaUpdated, betaBody string) SyncResult {
		t.Helper()
		res, err := s.SyncCorpus(ctx, post.NewCorpus([]*post.Post{
			testPost("alpha", "2024-01-01", alphaUpdated, alphaBody),
			testPost("beta", "2024-01-02", "2024-01-02", betaBody),
		}), syncTime)
		require.NoError(t, err)
		return res
	}
	stale := func(res SyncResult) []string {
		var out []string
		for _, st := range res.Stale {
			out = append(out, st.UrlPath)
		}
		return out
	}

	sync("# Alpha", "2024-01-05", "# Beta")

	res := sync("# Alpha, silently edited", "2024-01-05", "# Beta")
	assert.Equal(t, []string{"alpha"}, stale(res))
	assert.Equal(t, 1, res.Updated)

	// an edit elsewhere keeps the earlier finding
	res = sync("# Alpha, silently edited", "2024-01-05", "# Beta, silently edited")
	assert.Equal(t, []string{"alpha", "beta"}, stale(res))

	// an idle resync still reports both
	res = sync("# Alpha, silently edited", "2024-01-05", "# Beta, silently edited")
	assert.Equal(t, []string{"alpha", "beta"}, stale(res))
	assert.Equal(t, 2, res.Unchanged)

	// bumping the date clears it
	res = sync("# Alpha, silently edited", "2024-02-01", "# Beta, silently edited")
	assert.Equal(t, []string{"beta"}, stale(res))
	assert.Equal(t, 1, res.Updated)
}

func TestEnsureSchemaAddsStaleColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	_, err = s.db.Exec(`DROP TABLE posts; CREATE TABLE posts (
    url_path TEXT PRIMARY KEY COLLATE NOCASE, folder TEXT NOT NULL, title TEXT NOT NULL,
    description TEXT NOT NULL, teaser TEXT NOT NULL, image_path TEXT NOT NULL, tags TEXT NOT NULL,
    publish_date TEXT NOT NULL, last_updated_date TEXT NOT NULL, body_hash TEXT NOT NULL,
    meta_hash TEXT NOT NULL, words INTEGER NOT NULL, reading_minutes INTEGER NOT NULL,
    indexed_at TEXT NOT NULL)`)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.SyncCorpus(context.Background(), post.NewCorpus([]*post.Post{
		testPost("alpha", "2024-01-01", "2024-01-01", "# Alpha"),
	}), syncTime)
	require.NoError(t, err)
}

func TestSyncCorpusRouteCaseChange(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	_, err := s.SyncCorpus(ctx, post.NewCorpus([]*post.Post{
		testPost("Alpha", "2024-01-01", "2024-01-01", "# Alpha"),
	}), syncTime)
	require.NoError(t, err)

	res, err := s.SyncCorpus(ctx, post.NewCorpus([]*post.Post{
		testPost("alpha", "2024-01-01", "2024-01-01", "# Alpha"),
	}), syncTime)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Removed)

	posts, err := s.ListPosts(ctx, "")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "alpha", posts[0].UrlPath)
}

func TestStoreListPosts(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	_, err := s.SyncCorpus(ctx, post.NewCorpus([]*post.Post{
		testPost("old", "2023-01-01", "2023-01-01", "# Old", "Go"),
		testPost("new", "2024-01-01", "2024-01-01", "# New", "go", "Web"),
		testPost("mid", "2023-06-01", "2023-06-01", "# Mid", "Web"),
	}), syncTime)
	require.NoError(t, err)

	all, err := s.ListPosts(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{all[0].UrlPath, all[1].UrlPath, all[2].UrlPath})
	assert.Equal(t, []string{"go", "web"}, all[0].Tags)
	assert.True(t, all[0].IndexedAt.Equal(syncTime))

	tagged, err := s.ListPosts(ctx, "GO")
	require.NoError(t, err)
	require.Len(t, tagged, 2)
	assert.Equal(t, "new", tagged[0].UrlPath)
	assert.Equal(t, "old", tagged[1].UrlPath)

	none, err := s.ListPosts(ctx, "rust")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListTags(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	_, err := s.SyncCorpus(ctx, post.NewCorpus([]*post.Post{
		testPost("a", "2024-01-01", "2024-01-01", "# A", "Zeta", "blazor"),
		testPost("b", "2024-01-02", "2024-01-02", "# B", "Blazor", "écriture"),
	}), syncTime)
	require.NoError(t, err)

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []post.TagCount{
		{Tag: "blazor", Count: 2},
		{Tag: "écriture", Count: 1},
		{Tag: "zeta", Count: 1},
	}, tags)
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{",go,web,", []string{"go", "web"}},
		{",single,", []string{"single"}},
		{",,", []string{}},
		{"", []string{}},
		{"go, web", []string{"go", "web"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTags(tt.input), "ParseTags(%q)", tt.input)
	}
}

func TestJoinTags(t *testing.T) {
	assert.Equal(t, ",go,web,", joinTags([]string{"Go", " web ", "GO", ""}))
	assert.Equal(t, ",,", joinTags(nil))
}
