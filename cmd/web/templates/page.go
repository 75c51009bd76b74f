// Package templates holds the HTML components of the web editor. Components
// are built with templ.ComponentFunc and rendered like any templ component.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// DatastarScript is the datastar client bundle the pages load.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// write emits parts in order and stops at the first error.
func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

// attr renders name="value" with value escaped.
func attr(name, value string) string {
	return " " + name + `="` + templ.EscapeString(value) + `"`
}

// Page wraps body in the shared document shell.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		err := write(w,
			"<!doctype html>\n<html lang=\"en\">\n<head>\n",
			"<meta charset=\"utf-8\">\n",
			"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n",
			"<title>", templ.EscapeString(title), "</title>\n",
			"<link rel=\"stylesheet\" href=\"/static/darkroom.css\">\n",
			"<script type=\"module\"", attr("src", DatastarScript), "></script>\n",
			"</head>\n<body>\n",
		)
		if err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		return write(w, "\n</body>\n</html>\n")
	})
}

// Help renders the help page around already sanitized HTML.
func Help(html string) templ.Component {
	return Page("Darkroom help", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<main class="help"><nav><a href="/">Back to the editor</a></nav>`, "\n"); err != nil {
			return err
		}
		if err := templ.Raw(html).Render(ctx, w); err != nil {
			return err
		}
		return write(w, "\n</main>")
	}))
}
