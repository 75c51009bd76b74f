package content

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/cmd/web/templates"
	"thirdcoast.systems/darkroom/pkg/shortcuts"
	"thirdcoast.systems/darkroom/pkg/utils/markdown"
	"thirdcoast.systems/darkroom/static"
)

// HelpMarkdown returns the help page source with the shortcut table.
func HelpMarkdown() *markdown.Markdown {
	rows := make([][]string, 0, len(shortcuts.Bindings))
	for _, b := range shortcuts.Bindings {
		rows = append(rows, []string{"`" + b.Chord() + "`", b.Label})
	}
	md := markdown.NewMarkdown(static.HelpMarkdown())
	md.Append(
		"Shortcuts work anywhere on the page.",
		markdown.Table([]string{"Keys", "Action"}, rows),
	)
	return md
}

// HandleHelpPage renders the help page.
func HandleHelpPage() echo.HandlerFunc {
	page := templates.Help(string(HelpMarkdown().Render()))
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		c.Response().WriteHeader(http.StatusOK)
		return page.Render(c.Request().Context(), c.Response())
	}
}
