package pubcorpus

import (
	"time"

	"github.com/eringen/pubcorpus/markdown"
	"github.com/eringen/pubcorpus/post"
)

// IndexedPost is one row of the SQLite index.
type IndexedPost struct {
	UrlPath         string    `json:"urlPath"`
	Folder          string    `json:"folder"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Teaser          string    `json:"teaser"`
	ImagePath       string    `json:"imagePath,omitempty"`
	Tags            []string  `json:"tags"`
	PublishDate     string    `json:"publishDate"`
	LastUpdatedDate string    `json:"lastUpdatedDate"`
	BodyHash        string    `json:"bodyHash"`
	Words           int       `json:"words"`
	ReadingMinutes  int       `json:"readingMinutes"`
	IndexedAt       time.Time `json:"indexedAt"`
}

// PostSummary is the list view of a post returned by the API.
type PostSummary struct {
	UrlPath         string   `json:"urlPath"`
	Title           string   `json:"title"`
	Teaser          string   `json:"teaser"`
	Description     string   `json:"description"`
	Tags            []string `json:"tags"`
	PublishDate     string   `json:"publishDate"`
	LastUpdatedDate string   `json:"lastUpdatedDate"`
	ReadingMinutes  int      `json:"readingMinutes"`
	Link            string   `json:"link"`
}

// PostDetail is a full post as returned by the API.
type PostDetail struct {
	PostSummary
	Folder   string            `json:"folder"`
	Meta     post.Metadata     `json:"meta"`
	Body     string            `json:"body"`
	BodyHash string            `json:"bodyHash"`
	Analysis markdown.Analysis `json:"analysis"`
	Cover    *post.Cover       `json:"cover,omitempty"`
	Warnings []post.Warning    `json:"warnings,omitempty"`
	// IndexedAt is when the index last wrote this post, if it has.
	IndexedAt *time.Time `json:"indexedAt,omitempty"`
}

// PostPage is one page of post summaries.
type PostPage struct {
	Posts []PostSummary `json:"posts"`
	Tag   string        `json:"tag,omitempty"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int           `json:"total"`
}

// ProblemReport lists what the last load found.
type ProblemReport struct {
	LoadedAt time.Time      `json:"loadedAt"`
	Posts    int            `json:"posts"`
	Problems []string       `json:"problems"`
	Warnings []post.Warning `json:"warnings"`
	Stale    []StaleDate    `json:"stale,omitempty"`
	// Rejected holds the problems of the last reload refused in strict mode.
	Rejected []string `json:"rejected,omitempty"`
}

// StaleDate names a post whose body changed without a LastUpdatedDate bump.
type StaleDate struct {
	UrlPath         string `json:"urlPath"`
	Folder          string `json:"folder"`
	LastUpdatedDate string `json:"lastUpdatedDate"`
}

// SyncResult counts the changes applied to the index by one sync.
type SyncResult struct {
	Inserted  int         `json:"inserted"`
	Updated   int         `json:"updated"`
	Unchanged int         `json:"unchanged"`
	Removed   int         `json:"removed"`
	Stale     []StaleDate `json:"stale,omitempty"`
}
