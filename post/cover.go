package post

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Cover describes a post's cover image as found on disk.
type Cover struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// InspectCover resolves imagePath against the post folder first and the
// content root second, then decodes the image header. Remote URLs and empty
// paths return (nil, nil).
func InspectCover(fsys fs.FS, postsDir, folder, imagePath string) (*Cover, error) {
	p := strings.TrimSpace(imagePath)
	if p == "" || isRemote(p) {
		return nil, nil
	}
	found, ok := resolveAsset(fsys, postsDir, folder, p)
	if !ok {
		return nil, fmt.Errorf("cover image %q not found", imagePath)
	}
	return decodeCover(fsys, found)
}

// resolveAsset finds a local file referenced from a post, trying the post
// folder and then the content root.
func resolveAsset(fsys fs.FS, postsDir, folder, ref string) (string, bool) {
	p := ref
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "", false
	}
	var candidates []string
	if !strings.HasPrefix(p, "/") {
		candidates = append(candidates, path.Join(postsDir, folder, p))
	}
	candidates = append(candidates, path.Clean(strings.TrimPrefix(p, "/")))

	for _, c := range candidates {
		if !fs.ValidPath(c) {
			continue
		}
		if _, err := fs.Stat(fsys, c); err == nil {
			return c, true
		}
	}
	return "", false
}

func decodeCover(fsys fs.FS, p string) (*Cover, error) {
	if strings.EqualFold(path.Ext(p), ".svg") {
		return &Cover{Path: p, Format: "svg"}, nil
	}
	f, err := fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open cover image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("decode cover image %s: %w", p, err)
	}
	return &Cover{
		Path:   p,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

func isRemote(p string) bool {
	lower := strings.ToLower(p)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "//") || strings.HasPrefix(lower, "data:")
}
