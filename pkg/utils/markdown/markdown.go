// Package markdown renders trusted and untrusted markdown to sanitized HTML.
package markdown

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// Markdown wraps markdown source and caches its rendered forms.
type Markdown struct {
	// Source is the markdown source code.
	Source string
	// renderedHTML caches the HTML rendered from the markdown source.
	renderedHTML *template.HTML
	// renderedText is the plain text content rendered from the markdown source.
	renderedText *template.HTML
}

var (
	bfRenderer = blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.Safelink | blackfriday.NofollowLinks | blackfriday.HrefTargetBlank | blackfriday.Smartypants | blackfriday.SmartypantsFractions | blackfriday.SmartypantsDashes | blackfriday.SmartypantsLatexDashes,
	})
	bfExtensions = blackfriday.NoIntraEmphasis | blackfriday.Tables | blackfriday.FencedCode | blackfriday.Autolink | blackfriday.Strikethrough | blackfriday.SpaceHeadings | blackfriday.NoEmptyLineBeforeBlock | blackfriday.HeadingIDs | blackfriday.AutoHeadingIDs
	policy       = bluemonday.UGCPolicy()
)

func NewMarkdown(source string) *Markdown {
	return &Markdown{Source: source}
}

func (m *Markdown) html() []byte {
	return blackfriday.Run([]byte(m.Source),
		blackfriday.WithRenderer(bfRenderer),
		blackfriday.WithExtensions(bfExtensions),
	)
}

// Render converts the Markdown Source into sanitized HTML.
func (m *Markdown) Render() template.HTML {
	if m.renderedHTML != nil {
		return *m.renderedHTML
	}

	safe := policy.SanitizeBytes(m.html())
	html := template.HTML(bytes.TrimSpace(safe))
	m.renderedHTML = &html
	return html
}

// PlainText renders the source with every tag removed.
func (m *Markdown) PlainText() template.HTML {
	if m.renderedText != nil {
		return *m.renderedText
	}

	safe := bytes.TrimSpace(bluemonday.StrictPolicy().SanitizeBytes(m.html()))
	h := template.HTML(safe)
	m.renderedText = &h

	return *m.renderedText
}

// Append adds blocks to the source, separated by blank lines.
func (m *Markdown) Append(blocks ...string) {
	parts := []string{strings.TrimRight(m.Source, "\n")}
	for _, b := range blocks {
		parts = append(parts, strings.TrimSpace(b))
	}
	m.Source = strings.TrimLeft(strings.Join(parts, "\n\n"), "\n") + "\n"
	m.renderedHTML = nil
	m.renderedText = nil
}

// Table builds a markdown table. Pipes in cells are escaped.
func Table(headers []string, rows [][]string) string {
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(strings.ReplaceAll(c, "|", `\|`))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	writeRow(headers)
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	for _, r := range rows {
		writeRow(r)
	}
	return b.String()
}

// MarshalJSON encodes the source as a JSON string.
func (m Markdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Source)
}

// UnmarshalJSON implements json.Unmarshaler so Markdown can be decoded from JSON.
func (m *Markdown) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("Markdown.UnmarshalJSON: %w", err)
	}
	m.Source = s
	m.renderedHTML = nil
	m.renderedText = nil
	return nil
}
