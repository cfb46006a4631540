// Package markdown inspects post bodies: it parses Markdown with goldmark and
// reports structure (headings, images, links, code languages, raw HTML)
// without rendering anything.
package markdown

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// WordsPerMinute is the reading speed used for ReadingMinutes.
const WordsPerMinute = 200

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	strict = bluemonday.StrictPolicy()

	reScript = regexp.MustCompile(`(?i)<script[\s>]`)
	reSpace  = regexp.MustCompile(`\s+`)
)

// Heading is one ATX or setext heading.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id,omitempty"`
}

// Analysis summarises a Markdown body.
type Analysis struct {
	Headings       []Heading `json:"headings"`
	Images         []string  `json:"images"`
	Links          []string  `json:"links"`
	CodeLanguages  []string  `json:"codeLanguages"`
	Words          int       `json:"words"`
	ReadingMinutes int       `json:"readingMinutes"`
	HasRawHTML     bool      `json:"hasRawHtml"`
	HasScript      bool      `json:"hasScript"`
}

// Analyze parses body and walks the resulting AST.
func Analyze(body []byte) Analysis {
	doc := md.Parser().Parse(text.NewReader(body))

	var a Analysis
	langs := make(map[string]struct{})
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			h := Heading{Level: node.Level, Text: nodeText(node, body)}
			if id, ok := node.AttributeString("id"); ok {
				if b, ok := id.([]byte); ok {
					h.ID = string(b)
				}
			}
			a.Headings = append(a.Headings, h)
		case *ast.Image:
			a.Images = append(a.Images, string(node.Destination))
		case *ast.Link:
			a.Links = append(a.Links, string(node.Destination))
		case *ast.AutoLink:
			a.Links = append(a.Links, string(node.URL(body)))
		case *ast.FencedCodeBlock:
			if lang := strings.ToLower(string(node.Language(body))); lang != "" {
				if _, seen := langs[lang]; !seen {
					langs[lang] = struct{}{}
					a.CodeLanguages = append(a.CodeLanguages, lang)
				}
			}
		case *ast.HTMLBlock:
			a.HasRawHTML = true
			if reScript.Match(blockText(node, body)) {
				a.HasScript = true
			}
		case *ast.RawHTML:
			a.HasRawHTML = true
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				if reScript.Match(seg.Value(body)) {
					a.HasScript = true
				}
			}
		case *ast.Text:
			a.Words += len(strings.Fields(string(node.Segment.Value(body))))
		}
		return ast.WalkContinue, nil
	})

	if a.Words > 0 {
		a.ReadingMinutes = (a.Words + WordsPerMinute - 1) / WordsPerMinute
	}
	return a
}

// nodeText concatenates the literal text below n.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func blockText(n *ast.HTMLBlock, src []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	if n.HasClosure() {
		buf.Write(n.ClosureLine.Value(src))
	}
	return buf.Bytes()
}

// StripFrontMatter removes a leading YAML or TOML front matter block. found
// reports whether one was present; a block that fails to decode is left in
// place and returned as err.
func StripFrontMatter(body []byte) (rest []byte, found bool, err error) {
	if !hasFrontMatterDelimiter(body) {
		return body, false, nil
	}
	var fm map[string]any
	rest, err = frontmatter.Parse(bytes.NewReader(body), &fm)
	if err != nil {
		return body, false, err
	}
	return rest, len(rest) != len(body), nil
}

func hasFrontMatterDelimiter(body []byte) bool {
	first, _, _ := bytes.Cut(bytes.TrimLeft(body, "\r\n"), []byte("\n"))
	switch string(bytes.TrimRight(first, " \t\r")) {
	case "---", "+++":
		return true
	}
	return false
}

// PlainText strips all markup from s and collapses whitespace.
func PlainText(s string) string {
	clean := html.UnescapeString(strict.Sanitize(s))
	return strings.TrimSpace(reSpace.ReplaceAllString(clean, " "))
}
