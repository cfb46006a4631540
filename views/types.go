package views

import "time"

// ReportData is everything the lint report page shows.
type ReportData struct {
	Title    string
	LoadedAt time.Time
	Strict   bool
	Posts    []ReportPost
	Problems []string
	Warnings []ReportWarning
	Stale    []ReportStale
	// Rejected holds the problems of a reload refused in strict mode.
	Rejected []string
}

// ReportPost is one row of the post table.
type ReportPost struct {
	UrlPath         string
	Link            string
	Title           string
	Folder          string
	PublishDate     string
	LastUpdatedDate string
	Tags            []string
	Words           int
	ReadingMinutes  int
	Warnings        int
}

// ReportWarning is a non-fatal finding.
type ReportWarning struct {
	Folder  string
	Field   string
	Message string
}

// ReportStale names a post whose body changed without a date bump.
type ReportStale struct {
	UrlPath         string
	Folder          string
	LastUpdatedDate string
}
