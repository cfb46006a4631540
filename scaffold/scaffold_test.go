package scaffold

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/eringen/pubcorpus/post"
)

func TestRender(t *testing.T) {
	files, err := Render(Data{
		Title:   `Quoting "things" in Go`,
		UrlPath: "quoting-things-in-go",
		Date:    "2024-05-01",
		Tags:    []string{"go"},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}

	meta, err := post.DecodeMetadata(files[post.MetadataFile])
	if err != nil {
		t.Fatalf("scaffolded metadata does not decode: %v", err)
	}
	if meta.Title != `Quoting "things" in Go` {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.UrlPath != "quoting-things-in-go" {
		t.Errorf("UrlPath = %q", meta.UrlPath)
	}
	if got := meta.PublishDate.String(); got != "2024-05-01" {
		t.Errorf("PublishDate = %s", got)
	}
	if diff := cmp.Diff([]string{"go"}, meta.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(string(files[post.ContentFile]), `# Quoting "things" in Go`) {
		t.Errorf("content should start with the title heading, got %q", files[post.ContentFile])
	}
}

func TestRenderNoTags(t *testing.T) {
	files, err := Render(Data{Title: "Untagged", UrlPath: "untagged", Date: "2024-05-01"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(string(files[post.MetadataFile]), `"tags": []`) {
		t.Errorf("nil tags should render as an empty array:\n%s", files[post.MetadataFile])
	}
}

func TestRenderRejectsBadDate(t *testing.T) {
	_, err := Render(Data{Title: "Bad", UrlPath: "bad", Date: "May 1st"})
	if !errors.Is(err, post.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestWrite(t *testing.T) {
	postsDir := filepath.Join(t.TempDir(), "posts")
	d := Data{Title: "Hello", UrlPath: "hello", Date: "2024-05-01"}

	created, err := Write(postsDir, d)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := []string{
		filepath.Join(postsDir, "hello", post.ContentFile),
		filepath.Join(postsDir, "hello", post.MetadataFile),
	}
	if diff := cmp.Diff(want, created); diff != "" {
		t.Errorf("created mismatch (-want +got):\n%s", diff)
	}
	for _, p := range created {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}

	if _, err := Write(postsDir, d); !errors.Is(err, ErrExists) {
		t.Errorf("second Write should fail with ErrExists, got %v", err)
	}
}

func TestWriteInvalidSlug(t *testing.T) {
	_, err := Write(t.TempDir(), Data{Title: "x", UrlPath: "has space", Date: "2024-05-01"})
	if !errors.Is(err, post.ErrInvalidSlug) {
		t.Fatalf("expected ErrInvalidSlug, got %v", err)
	}
}
