package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates a cell could not be converted to HTML.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultCodeLanguage is the lexer used for code cells.
const DefaultCodeLanguage = "python"

// Converter turns cell sources into HTML fragments with goldmark.
type Converter struct {
	md       goldmark.Markdown
	language string
}

// NewConverter creates a Converter with GFM extensions and chroma
// highlighting. Headings get no automatic ids: section titles in the
// sidecar are matched on bare <hN> tags.
func NewConverter() *Converter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)
	return &Converter{md: md, language: DefaultCodeLanguage}
}

// Markdown converts a markdown cell source.
func (c *Converter) Markdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return buf.String(), nil
}

// Code converts a code cell source into a highlighted block.
func (c *Converter) Code(source string) (string, error) {
	fence := codeFence(source)
	doc := fence + c.language + "\n" + strings.TrimRight(source, "\n") + "\n" + fence + "\n"
	return c.Markdown(doc)
}

// codeFence returns a backtick fence longer than any backtick run in source.
func codeFence(source string) string {
	longest, run := 0, 0
	for _, r := range source {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	n := 3
	if longest >= n {
		n = longest + 1
	}
	return strings.Repeat("`", n)
}
