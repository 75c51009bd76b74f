// Package static embeds the web assets served under /static/.
package static

import "embed"

//go:embed help.md darkroom.css
var FS embed.FS

// HelpMarkdown is the source of the help page.
func HelpMarkdown() string {
	b, err := FS.ReadFile("help.md")
	if err != nil {
		return ""
	}
	return string(b)
}
