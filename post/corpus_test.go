package post

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func urlPaths(posts []*Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Meta.UrlPath)
	}
	return out
}

func TestNewCorpusOrdering(t *testing.T) {
	c := NewCorpus([]*Post{
		newPost("b", "b-post", "2023-01-01"),
		newPost("a", "a-post", "2023-01-01"),
		newPost("c", "c-post", "2024-06-30"),
	})
	want := []string{"c-post", "a-post", "b-post"}
	if diff := cmp.Diff(want, urlPaths(c.Posts())); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckUnique(t *testing.T) {
	posts := []*Post{
		newPost("second", cancelSlug, "2023-01-01"),
		newPost("first", "Cancelling-Long-Running-JSInterop-Calls", "2023-01-01"),
		newPost("other", "other", "2023-01-01"),
	}
	errs := CheckUnique(posts)
	if len(errs) != 1 {
		t.Fatalf("expected 1 duplicate, got %d: %v", len(errs), errs)
	}
	var dup *DuplicateRouteError
	if !errors.As(errs[0], &dup) {
		t.Fatalf("expected DuplicateRouteError, got %T", errs[0])
	}
	if dup.Existing != "first" || dup.Folder != "second" {
		t.Errorf("duplicate = %+v, want first folder to keep the route", dup)
	}

	if errs := CheckUnique(posts[1:]); len(errs) != 0 {
		t.Errorf("expected no duplicates, got %v", errs)
	}
}

func TestCorpusGetIgnoresCase(t *testing.T) {
	c := NewCorpus([]*Post{newPost("p", "Mixed-Case", "2023-01-01")})
	if _, ok := c.Get("mixed-case"); !ok {
		t.Error("Get should ignore case")
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get should miss unknown routes")
	}
}

func TestCorpusByTagAndTags(t *testing.T) {
	c := NewCorpus([]*Post{
		newPost("p1", "p1", "2023-01-03", "Blazor", "JSInterop"),
		newPost("p2", "p2", "2023-01-02", "blazor ", "Écriture"),
		newPost("p3", "p3", "2023-01-01", "zeta", "Zeta"),
	})

	if diff := cmp.Diff([]string{"p1", "p2"}, urlPaths(c.ByTag("BLAZOR"))); diff != "" {
		t.Errorf("ByTag mismatch (-want +got):\n%s", diff)
	}
	if got := len(c.ByTag("")); got != 3 {
		t.Errorf("ByTag(\"\") returned %d posts, want 3", got)
	}

	want := []TagCount{
		{Tag: "blazor", Count: 2},
		{Tag: "écriture", Count: 1},
		{Tag: "jsinterop", Count: 1},
		{Tag: "zeta", Count: 1},
	}
	if diff := cmp.Diff(want, c.Tags()); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}
}

func TestCorpusRelated(t *testing.T) {
	p1 := newPost("p1", "p1", "2023-01-04", "blazor", "jsinterop")
	c := NewCorpus([]*Post{
		p1,
		newPost("p2", "p2", "2023-01-03", "Blazor"),
		newPost("p3", "p3", "2023-01-02", "blazor", "JSInterop"),
		newPost("p4", "p4", "2023-01-01", "dotnet"),
	})
	if diff := cmp.Diff([]string{"p3", "p2"}, urlPaths(c.Related(p1))); diff != "" {
		t.Errorf("Related mismatch (-want +got):\n%s", diff)
	}
	if got := c.Related(nil); got != nil {
		t.Errorf("Related(nil) = %v, want nil", got)
	}
}

func TestCorpusManifest(t *testing.T) {
	c := NewCorpus([]*Post{
		newPost(compressionSlug, compressionSlug, "2023-03-17", "blazor"),
		newPost("zz-dup", compressionSlug, "2023-03-18"),
	})
	m := c.Manifest()
	if len(m) != 1 {
		t.Fatalf("expected 1 manifest entry, got %d", len(m))
	}
	entry, ok := m[compressionSlug]
	if !ok {
		t.Fatalf("manifest missing %s", compressionSlug)
	}
	if entry.Folder != compressionSlug {
		t.Errorf("entry folder = %s, want %s", entry.Folder, compressionSlug)
	}
	if len(c.Problems) != 1 {
		t.Errorf("expected duplicate recorded in Problems, got %v", c.Problems)
	}
}

func TestNilCorpus(t *testing.T) {
	var c *Corpus
	if c.Len() != 0 || c.Posts() != nil || len(c.Tags()) != 0 || len(c.Manifest()) != 0 {
		t.Error("nil corpus should behave as empty")
	}
	if _, ok := c.Get("x"); ok {
		t.Error("nil corpus Get should miss")
	}
}
