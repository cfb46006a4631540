// Package scaffold writes new post folders from embedded templates.
package scaffold

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/eringen/pubcorpus/post"
)

// Templates contains the files of a new post folder.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

const templateRoot = "templates"

// ErrExists is returned when the target post folder is already present.
var ErrExists = errors.New("post folder already exists")

// Data holds the template variables passed to every scaffold template.
type Data struct {
	Title   string
	UrlPath string
	Date    string
	Tags    []string
}

var funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}

// Render executes every template and returns the output keyed by file name.
func Render(d Data) (map[string][]byte, error) {
	if d.Tags == nil {
		d.Tags = []string{}
	}
	out := make(map[string][]byte)
	err := fs.WalkDir(Templates, templateRoot, func(p string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		content, err := Templates.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		tmpl, err := template.New(path.Base(p)).Funcs(funcs).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", p, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, d); err != nil {
			return fmt.Errorf("execute template %s: %w", p, err)
		}
		rel := strings.TrimPrefix(p, templateRoot+"/")
		out[strings.TrimSuffix(rel, ".tmpl")] = buf.Bytes()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if _, err := post.DecodeMetadata(out[post.MetadataFile]); err != nil {
		return nil, fmt.Errorf("scaffolded metadata is invalid: %w", err)
	}
	return out, nil
}

// Write creates postsDir/<UrlPath>/ and fills it with the rendered
// templates. It returns the paths it created.
func Write(postsDir string, d Data) ([]string, error) {
	if !post.ValidSlug(d.UrlPath) {
		return nil, fmt.Errorf("%w: %q", post.ErrInvalidSlug, d.UrlPath)
	}
	dir := filepath.Join(postsDir, d.UrlPath)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, dir)
	}

	files, err := Render(d)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	// content.md lands before metaData.json
	slices.Sort(names)

	created := make([]string, 0, len(names))
	for _, name := range names {
		outPath := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.WriteFile(outPath, files[name], 0o644); err != nil {
			return created, fmt.Errorf("create %s: %w", outPath, err)
		}
		created = append(created, outPath)
	}
	return created, nil
}
