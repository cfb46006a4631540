package pubcorpus

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/pubcorpus/post"
)

// Store wraps the SQLite index of the corpus. The index is derived data: it
// is rebuilt from the post folders by SyncCorpus and never edited directly.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the API read while a reload writes; writers wait on
	// busy_timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	if path == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    url_path TEXT PRIMARY KEY COLLATE NOCASE,
    folder TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    teaser TEXT NOT NULL,
    image_path TEXT NOT NULL,
    tags TEXT NOT NULL,
    publish_date TEXT NOT NULL,
    last_updated_date TEXT NOT NULL,
    body_hash TEXT NOT NULL,
    meta_hash TEXT NOT NULL,
    words INTEGER NOT NULL,
    reading_minutes INTEGER NOT NULL,
    indexed_at TEXT NOT NULL,
    stale INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS posts_by_date ON posts (publish_date DESC, url_path);
`)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`ALTER TABLE posts ADD COLUMN stale INTEGER NOT NULL DEFAULT 0;`); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
			return nil
		}
		return err
	}
	return nil
}

type indexedState struct {
	bodyHash    string
	metaHash    string
	lastUpdated string
	stale       bool
}

// SyncCorpus makes the index match c in a single transaction. A post whose
// body hash changed while its LastUpdatedDate did not is marked stale, and it
// is reported on every sync until its LastUpdatedDate changes.
func (s *Store) SyncCorpus(ctx context.Context, c *post.Corpus, now time.Time) (SyncResult, error) {
	var res SyncResult
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin sync: %w", err)
	}
	defer tx.Rollback()

	existing, err := loadIndexedState(ctx, tx)
	if err != nil {
		return res, err
	}

	upsert, err := tx.PrepareContext(ctx, `INSERT INTO posts
		(url_path, folder, title, description, teaser, image_path, tags, publish_date, last_updated_date, body_hash, meta_hash, words, reading_minutes, indexed_at, stale)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url_path) DO UPDATE SET
			url_path = excluded.url_path,
			folder = excluded.folder,
			title = excluded.title,
			description = excluded.description,
			teaser = excluded.teaser,
			image_path = excluded.image_path,
			tags = excluded.tags,
			publish_date = excluded.publish_date,
			last_updated_date = excluded.last_updated_date,
			body_hash = excluded.body_hash,
			meta_hash = excluded.meta_hash,
			words = excluded.words,
			reading_minutes = excluded.reading_minutes,
			indexed_at = excluded.indexed_at,
			stale = excluded.stale`)
	if err != nil {
		return res, fmt.Errorf("prepare upsert: %w", err)
	}
	defer upsert.Close()

	indexedAt := now.UTC().Format(time.RFC3339)
	for _, p := range c.Posts() {
		key := strings.ToLower(p.Meta.UrlPath)
		metaHash := hashMetadata(p)
		prev, seen := existing[key]
		delete(existing, key)

		lastUpdated := p.Meta.LastUpdatedDate.String()
		stale := false
		if seen && prev.lastUpdated == lastUpdated {
			stale = prev.stale || prev.bodyHash != p.BodyHash
		}
		if stale {
			res.Stale = append(res.Stale, StaleDate{
				UrlPath:         p.Meta.UrlPath,
				Folder:          p.Folder,
				LastUpdatedDate: lastUpdated,
			})
		}

		switch {
		case !seen:
			res.Inserted++
		case prev.bodyHash == p.BodyHash && prev.metaHash == metaHash && prev.stale == stale:
			res.Unchanged++
			continue
		default:
			res.Updated++
		}

		if _, err := upsert.ExecContext(ctx,
			p.Meta.UrlPath, p.Folder, p.Meta.Title, p.Meta.Description, p.Meta.Teaser, p.Meta.ImagePath,
			joinTags(p.Meta.Tags), p.Meta.PublishDate.String(), lastUpdated,
			p.BodyHash, metaHash, p.Analysis.Words, p.Analysis.ReadingMinutes, indexedAt, stale,
		); err != nil {
			return res, fmt.Errorf("index %s: %w", p.Meta.UrlPath, err)
		}
	}

	for key := range existing {
		if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE url_path = ?`, key); err != nil {
			return res, fmt.Errorf("remove %s: %w", key, err)
		}
		res.Removed++
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit sync: %w", err)
	}
	return res, nil
}

func loadIndexedState(ctx context.Context, tx *sql.Tx) (map[string]indexedState, error) {
	rows, err := tx.QueryContext(ctx, `SELECT url_path, body_hash, meta_hash, last_updated_date, stale FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	defer rows.Close()

	out := make(map[string]indexedState)
	for rows.Next() {
		var urlPath string
		var st indexedState
		if err := rows.Scan(&urlPath, &st.bodyHash, &st.metaHash, &st.lastUpdated, &st.stale); err != nil {
			return nil, err
		}
		out[strings.ToLower(urlPath)] = st
	}
	return out, rows.Err()
}

const postColumns = `url_path, folder, title, description, teaser, image_path, tags, publish_date, last_updated_date, body_hash, words, reading_minutes, indexed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIndexedPost(r rowScanner) (IndexedPost, error) {
	var p IndexedPost
	var tags, indexedAt string
	err := r.Scan(&p.UrlPath, &p.Folder, &p.Title, &p.Description, &p.Teaser, &p.ImagePath,
		&tags, &p.PublishDate, &p.LastUpdatedDate, &p.BodyHash, &p.Words, &p.ReadingMinutes, &indexedAt)
	if err != nil {
		return IndexedPost{}, err
	}
	p.Tags = ParseTags(tags)
	p.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
	return p, nil
}

// ListPosts returns indexed posts, newest first. If tag is non-empty, results
// are filtered to posts carrying that tag.
func (s *Store) ListPosts(ctx context.Context, tag string) ([]IndexedPost, error) {
	var rows *sql.Rows
	var err error
	if tag == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY publish_date DESC, url_path`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts WHERE instr(tags, ',' || ? || ',') > 0 ORDER BY publish_date DESC, url_path`, post.NormalizeTag(tag))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []IndexedPost
	for rows.Next() {
		p, err := scanIndexedPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListTags returns every indexed tag with its post count, in display order.
func (s *Store) ListTags(ctx context.Context) ([]post.TagCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tags FROM posts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			counts[t]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result := make([]post.TagCount, 0, len(counts))
	for t, n := range counts {
		result = append(result, post.TagCount{Tag: t, Count: n})
	}
	post.SortTags(result)
	return result, nil
}

// Count returns the number of indexed posts.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n)
	return n, err
}

// joinTags normalizes and dedupes tags into the ",a,b," column format.
func joinTags(tags []string) string {
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, t := range tags {
		n := post.NormalizeTag(t)
		if _, dup := seen[n]; dup || n == "" {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return "," + strings.Join(out, ",") + ","
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return []string{}
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func hashMetadata(p *post.Post) string {
	b, _ := json.Marshal(p.Meta)
	sum := sha256.Sum256(append(b, p.Folder...))
	return hex.EncodeToString(sum[:])
}
