package post

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/pubcorpus/markdown"
)

// DefaultPostsDir is the directory below the content root holding post folders.
const DefaultPostsDir = "posts"

// Loader reads post folders from a file system.
type Loader struct {
	fsys        fs.FS
	postsDir    string
	concurrency int
	logger      *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for load summaries and folder diagnostics.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithPostsDir overrides the posts directory, relative to the file system root.
func WithPostsDir(dir string) LoaderOption {
	return func(ld *Loader) {
		if dir = strings.Trim(path.Clean(strings.TrimSpace(dir)), "/"); dir != "" {
			ld.postsDir = dir
		}
	}
}

// WithConcurrency bounds the number of folders parsed at once. Zero or less
// means twice GOMAXPROCS.
func WithConcurrency(n int) LoaderOption {
	return func(ld *Loader) { ld.concurrency = n }
}

func NewLoader(fsys fs.FS, opts ...LoaderOption) *Loader {
	ld := &Loader{
		fsys:     fsys,
		postsDir: DefaultPostsDir,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ld)
	}
	if ld.concurrency <= 0 {
		ld.concurrency = runtime.GOMAXPROCS(0) * 2
	}
	return ld
}

type folderResult struct {
	post     *Post
	errs     []error
	warnings []Warning
}

// Load parses every folder under the posts directory. It always returns the
// valid posts it found; the error joins every problem encountered. A nil
// corpus means the posts directory itself could not be read or ctx ended.
func (l *Loader) Load(ctx context.Context) (*Corpus, error) {
	start := time.Now()
	entries, err := fs.ReadDir(l.fsys, l.postsDir)
	if err != nil {
		return nil, fmt.Errorf("read posts dir %s: %w", l.postsDir, err)
	}

	var (
		folders  []string
		warnings []Warning
	)
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !e.IsDir() {
			warnings = append(warnings, Warning{Folder: name, Message: "not a post folder; ignored"})
			continue
		}
		folders = append(folders, name)
	}

	results := make([]folderResult, len(folders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, name := range folders {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = l.loadFolder(name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		posts    []*Post
		problems []error
	)
	for _, r := range results {
		problems = append(problems, r.errs...)
		warnings = append(warnings, r.warnings...)
		if r.post != nil {
			posts = append(posts, r.post)
		}
	}

	c := NewCorpus(posts)
	c.Problems = append(problems, c.Problems...)
	c.Warnings = warnings

	l.logger.Info("corpus loaded",
		zap.String("dir", l.postsDir),
		zap.Int("folders", len(folders)),
		zap.Int("posts", c.Len()),
		zap.Int("problems", len(c.Problems)),
		zap.Int("warnings", len(c.Warnings)),
		zap.Duration("took", time.Since(start)),
	)
	return c, errors.Join(c.Problems...)
}

func (l *Loader) loadFolder(name string) folderResult {
	var r folderResult
	fail := func(err error) {
		for _, e := range Problems(err) {
			r.errs = append(r.errs, &FolderError{Folder: name, Err: e})
		}
	}
	warn := func(field, format string, args ...any) {
		r.warnings = append(r.warnings, Warning{Folder: name, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	dir := path.Join(l.postsDir, name)
	entries, err := fs.ReadDir(l.fsys, dir)
	if err != nil {
		fail(fmt.Errorf("read folder: %w", err))
		return r
	}

	metaName, metaErr := findCompanion(entries, MetadataFile)
	contentName, contentErr := findCompanion(entries, ContentFile)
	if metaErr != nil || contentErr != nil {
		fail(errors.Join(metaErr, contentErr))
		return r
	}
	for _, pair := range [][2]string{{metaName, MetadataFile}, {contentName, ContentFile}} {
		if pair[0] != pair[1] {
			warn("", "companion file %q should be named %q", pair[0], pair[1])
		}
	}

	data, err := fs.ReadFile(l.fsys, path.Join(dir, metaName))
	if err != nil {
		fail(fmt.Errorf("read %s: %w", metaName, err))
		return r
	}
	meta, metaErr := DecodeMetadata(data)
	if metaErr != nil {
		fail(metaErr)
	}

	raw, err := fs.ReadFile(l.fsys, path.Join(dir, contentName))
	if err != nil {
		fail(fmt.Errorf("read %s: %w", contentName, err))
		return r
	}
	body, bodyErr := readBody(raw, warn)
	if bodyErr != nil {
		fail(fmt.Errorf("%s: %w", contentName, bodyErr))
	}
	if len(r.errs) > 0 {
		l.logger.Debug("post rejected", zap.String("folder", name), zap.Int("problems", len(r.errs)))
		return r
	}

	p := &Post{
		Folder:   name,
		Meta:     meta,
		Body:     string(body),
		BodyHash: HashBody(raw),
		Analysis: markdown.Analyze(body),
	}
	r.warnings = append(r.warnings, meta.lint(name)...)
	if strings.TrimSpace(meta.LegacyContent) != "" {
		warn("content", "legacy inline content is ignored; %s is authoritative", ContentFile)
	}

	cover, err := InspectCover(l.fsys, l.postsDir, name, meta.ImagePath)
	if err != nil {
		warn("imagePath", "%v", err)
	}
	p.Cover = cover

	for _, img := range p.Analysis.Images {
		if img == "" || isRemote(img) {
			continue
		}
		if _, ok := resolveAsset(l.fsys, l.postsDir, name, img); !ok {
			warn(ContentFile, "image %q not found", img)
		}
	}
	if p.Analysis.HasScript {
		warn(ContentFile, "body embeds a <script> element")
	}

	p.Warnings = r.warnings
	r.post = p
	return r
}

// readBody validates encoding and content, stripping a BOM and any stray
// front matter.
func readBody(raw []byte, warn func(field, format string, args ...any)) ([]byte, error) {
	body := bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(body) {
		return nil, ErrInvalidEncoding
	}
	rest, found, err := markdown.StripFrontMatter(body)
	switch {
	case err != nil:
		warn(ContentFile, "unparseable front matter left in place: %v", err)
	case found:
		warn(ContentFile, "front matter stripped; metadata belongs in %s", MetadataFile)
		body = rest
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyContent
	}
	return body, nil
}

// findCompanion locates want among a folder's files. An exact name wins only
// when no other file matches case-insensitively.
func findCompanion(entries []fs.DirEntry, want string) (string, error) {
	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(e.Name(), want) {
			matches = append(matches, e.Name())
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrMissingCompanion, want)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %s", ErrAmbiguousCompanion, want, strings.Join(matches, ", "))
	}
}
