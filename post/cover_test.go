package post

import (
	"bytes"
	"image"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestInspectCover(t *testing.T) {
	fsys := fstest.MapFS{
		"posts/p/cover.png":   {Data: pngBytes(t, 3, 2)},
		"images/shared.png":   {Data: pngBytes(t, 8, 4)},
		"posts/p/diagram.svg": {Data: []byte("<svg/>")},
		"posts/p/broken.png":  {Data: []byte("not a png")},
	}

	tests := []struct {
		name      string
		imagePath string
		want      *Cover
		err       bool
	}{
		{"post relative", "cover.png", &Cover{Path: "posts/p/cover.png", Format: "png", Width: 3, Height: 2}, false},
		{"root relative", "/images/shared.png?v=2", &Cover{Path: "images/shared.png", Format: "png", Width: 8, Height: 4}, false},
		{"root fallback", "images/shared.png", &Cover{Path: "images/shared.png", Format: "png", Width: 8, Height: 4}, false},
		{"svg", "diagram.svg", &Cover{Path: "posts/p/diagram.svg", Format: "svg"}, false},
		{"remote", "https://cdn.example.com/x.png", nil, false},
		{"empty", "", nil, false},
		{"missing", "nope.png", nil, true},
		{"escape", "../../../etc/passwd", nil, true},
		{"undecodable", "broken.png", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InspectCover(fsys, "posts", "p", tt.imagePath)
			if tt.err {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("InspectCover failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("cover mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
