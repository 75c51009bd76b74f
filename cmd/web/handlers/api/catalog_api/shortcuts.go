package catalog_api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/pkg/shortcuts"
)

type shortcutEntry struct {
	shortcuts.Binding
	Chord string `json:"chord"`
}

// HandleShortcuts returns the global keyboard shortcut table.
func HandleShortcuts() echo.HandlerFunc {
	return func(c echo.Context) error {
		out := make([]shortcutEntry, 0, len(shortcuts.Bindings))
		for _, b := range shortcuts.Bindings {
			out = append(out, shortcutEntry{Binding: b, Chord: b.Chord()})
		}
		return c.JSON(http.StatusOK, out)
	}
}
