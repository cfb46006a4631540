package post

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Metadata is the content of a post's metaData.json.
type Metadata struct {
	Title               string    `json:"title"`
	UrlPath             string    `json:"urlPath"`
	Description         string    `json:"description"`
	Teaser              string    `json:"teaser"`
	ImagePath           string    `json:"imagePath"`
	Tags                []string  `json:"tags"`
	AdditionalMetaTags  []MetaTag `json:"additionalMetaTags"`
	CanonicalPostOrigin string    `json:"canonicalPostOrigin,omitempty"`
	LegacyContent       string    `json:"content,omitempty"`
	PublishDate         Date      `json:"publishDate"`
	LastUpdatedDate     Date      `json:"lastUpdatedDate"`
}

// MetaTag is one extra key/value pair, typically emitted as an HTML <meta> tag.
type MetaTag struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func (m *MetaTag) UnmarshalJSON(b []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	lower := make(map[string]string, len(raw))
	for k, v := range raw {
		lower[strings.ToLower(k)] = v
	}
	for _, key := range []string{"name", "key", "property"} {
		if v, ok := lower[key]; ok {
			m.Name = v
			break
		}
	}
	for _, key := range []string{"content", "value"} {
		if v, ok := lower[key]; ok {
			m.Content = v
			break
		}
	}
	if m.Name == "" && len(raw) == 1 {
		for k, v := range raw {
			m.Name, m.Content = k, v
		}
	}
	return nil
}

// wireMetadata mirrors Metadata with pointers where presence matters.
type wireMetadata struct {
	Title               *string   `json:"title"`
	UrlPath             *string   `json:"urlPath"`
	Description         string    `json:"description"`
	Teaser              string    `json:"teaser"`
	ImagePath           string    `json:"imagePath"`
	Tags                *[]string `json:"tags"`
	AdditionalMetaTags  []MetaTag `json:"additionalMetaTags"`
	CanonicalPostOrigin *string   `json:"canonicalPostOrigin"`
	Content             *string   `json:"content"`
	PublishDate         *string   `json:"publishDate"`
	LastUpdatedDate     *string   `json:"lastUpdatedDate"`
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeMetadata parses and validates a metaData.json document. Field names
// match case-insensitively. All field problems are reported together.
func DecodeMetadata(data []byte) (Metadata, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return Metadata{}, fmt.Errorf("metaData.json: %w", ErrInvalidEncoding)
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return Metadata{}, fmt.Errorf("%w: root is not an object", ErrMalformedJSON)
	}
	var w wireMetadata
	if err := json.Unmarshal(data, &w); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	var errs []error
	m := Metadata{
		Description:        w.Description,
		Teaser:             w.Teaser,
		ImagePath:          strings.TrimSpace(w.ImagePath),
		AdditionalMetaTags: w.AdditionalMetaTags,
	}
	if w.Title != nil {
		m.Title = strings.TrimSpace(*w.Title)
	}
	if w.UrlPath != nil {
		m.UrlPath = strings.TrimSpace(*w.UrlPath)
	}
	if w.Tags != nil {
		m.Tags = *w.Tags
		if m.Tags == nil {
			m.Tags = []string{}
		}
	} else {
		errs = append(errs, &FieldError{Field: "tags", Err: ErrMissingField})
	}
	if w.CanonicalPostOrigin != nil {
		m.CanonicalPostOrigin = strings.TrimSpace(*w.CanonicalPostOrigin)
	}
	if w.Content != nil {
		m.LegacyContent = *w.Content
	}
	m.PublishDate, errs = decodeDate("publishDate", w.PublishDate, errs)
	m.LastUpdatedDate, errs = decodeDate("lastUpdatedDate", w.LastUpdatedDate, errs)

	if err := m.validate(errs); err != nil {
		return m, err
	}
	return m, nil
}

func decodeDate(field string, raw *string, errs []error) (Date, []error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return Date{}, append(errs, &FieldError{Field: field, Err: ErrMissingField})
	}
	d, err := ParseDate(*raw)
	if err != nil {
		return Date{}, append(errs, &FieldError{Field: field, Err: err})
	}
	return d, errs
}

// Validate checks the invariants of an already decoded Metadata value.
func (m Metadata) Validate() error {
	var errs []error
	if m.PublishDate.IsZero() {
		errs = append(errs, &FieldError{Field: "publishDate", Err: ErrMissingField})
	}
	if m.LastUpdatedDate.IsZero() {
		errs = append(errs, &FieldError{Field: "lastUpdatedDate", Err: ErrMissingField})
	}
	if m.Tags == nil {
		errs = append(errs, &FieldError{Field: "tags", Err: ErrMissingField})
	}
	return m.validate(errs)
}

func (m Metadata) validate(errs []error) error {
	if m.Title == "" {
		errs = append(errs, &FieldError{Field: "title", Err: ErrMissingField})
	}
	switch {
	case m.UrlPath == "":
		errs = append(errs, &FieldError{Field: "urlPath", Err: ErrMissingField})
	case !ValidSlug(m.UrlPath):
		errs = append(errs, &FieldError{Field: "urlPath", Err: fmt.Errorf("%w: %q", ErrInvalidSlug, m.UrlPath)})
	}
	for i, t := range m.Tags {
		if strings.TrimSpace(t) == "" {
			errs = append(errs, &FieldError{Field: fmt.Sprintf("tags[%d]", i), Err: ErrEmptyTag})
		}
	}
	if !m.PublishDate.IsZero() && !m.LastUpdatedDate.IsZero() && m.LastUpdatedDate.Before(m.PublishDate) {
		errs = append(errs, &FieldError{
			Field: "lastUpdatedDate",
			Err:   fmt.Errorf("%w: %s < %s", ErrDateOrder, m.LastUpdatedDate, m.PublishDate),
		})
	}
	return errors.Join(errs...)
}

// lint returns non-fatal findings about presentational fields.
func (m Metadata) lint(folder string) []Warning {
	var ws []Warning
	if m.UrlPath != "" && ValidSlug(m.UrlPath) && !CanonicalSlug(m.UrlPath) {
		ws = append(ws, Warning{Folder: folder, Field: "urlPath", Message: fmt.Sprintf("%q is not lowercase kebab-case", m.UrlPath)})
	}
	if m.UrlPath != "" && m.UrlPath != folder {
		ws = append(ws, Warning{Folder: folder, Field: "urlPath", Message: fmt.Sprintf("%q differs from folder name", m.UrlPath)})
	}
	seen := make(map[string]struct{}, len(m.Tags))
	for _, t := range m.Tags {
		key := NormalizeTag(t)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			ws = append(ws, Warning{Folder: folder, Field: "tags", Message: fmt.Sprintf("duplicate tag %q", t)})
		}
		seen[key] = struct{}{}
	}
	if m.CanonicalPostOrigin != "" {
		u, err := url.Parse(m.CanonicalPostOrigin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			ws = append(ws, Warning{Folder: folder, Field: "canonicalPostOrigin", Message: fmt.Sprintf("%q is not an absolute http(s) url", m.CanonicalPostOrigin)})
		}
	}
	if strings.TrimSpace(m.Description) == "" {
		ws = append(ws, Warning{Folder: folder, Field: "description", Message: "empty"})
	}
	return ws
}

// NormalizeTag lowercases and trims a tag for comparison.
func NormalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
