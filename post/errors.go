package post

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ways a post folder can be invalid.
var (
	ErrMalformedJSON      = errors.New("malformed metadata json")
	ErrMissingField       = errors.New("missing required field")
	ErrMissingCompanion   = errors.New("missing companion file")
	ErrAmbiguousCompanion = errors.New("ambiguous companion file")
	ErrInvalidDate        = errors.New("invalid date")
	ErrDateOrder          = errors.New("last updated date is before publish date")
	ErrInvalidSlug        = errors.New("url path is not url-safe")
	ErrEmptyTag           = errors.New("empty tag")
	ErrEmptyContent       = errors.New("empty content")
	ErrInvalidEncoding    = errors.New("invalid utf-8")
)

// FieldError ties a validation failure to a metadata field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// FolderError ties a failure to the post folder it was found in.
type FolderError struct {
	Folder string
	Err    error
}

func (e *FolderError) Error() string {
	return fmt.Sprintf("posts/%s: %v", e.Folder, e.Err)
}

func (e *FolderError) Unwrap() error { return e.Err }

// DuplicateRouteError is returned when two post folders declare the same UrlPath.
// Existing is the folder that keeps the route.
type DuplicateRouteError struct {
	UrlPath  string
	Folder   string
	Existing string
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("duplicate route %q: posts/%s collides with posts/%s", e.UrlPath, e.Folder, e.Existing)
}

// Problems flattens an error produced by errors.Join (possibly nested) into
// its leaf errors. A nil error yields nil.
func Problems(err error) []error {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	var out []error
	for _, e := range joined.Unwrap() {
		out = append(out, Problems(e)...)
	}
	return out
}

// Warning is a non-fatal finding about a post.
type Warning struct {
	Folder  string `json:"folder"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Field == "" {
		return fmt.Sprintf("posts/%s: %s", w.Folder, w.Message)
	}
	return fmt.Sprintf("posts/%s: %s: %s", w.Folder, w.Field, w.Message)
}
