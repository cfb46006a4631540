// Package post models a blog post corpus stored as one directory per post,
// each holding a metaData.json sidecar and a content.md body.
package post

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/eringen/pubcorpus/markdown"
)

// Companion file names expected in every post folder.
const (
	MetadataFile = "metaData.json"
	ContentFile  = "content.md"
)

// Post is a metadata record joined with its body by folder identity.
type Post struct {
	Folder   string            `json:"folder"`
	Meta     Metadata          `json:"meta"`
	Body     string            `json:"body"`
	BodyHash string            `json:"bodyHash"`
	Analysis markdown.Analysis `json:"analysis"`
	Cover    *Cover            `json:"cover,omitempty"`
	Warnings []Warning         `json:"warnings,omitempty"`
}

// HasTag reports whether p carries tag, compared after NormalizeTag.
func (p *Post) HasTag(tag string) bool {
	want := NormalizeTag(tag)
	for _, t := range p.Meta.Tags {
		if NormalizeTag(t) == want {
			return true
		}
	}
	return false
}

// HashBody returns the hex sha256 of body.
func HashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
