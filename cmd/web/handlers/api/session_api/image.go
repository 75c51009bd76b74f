package session_api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/common"
	"thirdcoast.systems/darkroom/internal/editor"
)

// HandleImage serves the displayed image. The preview composites are
// applied client-side on top of it.
func HandleImage(sm *auth.SessionManager, mgr *editor.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := common.CurrentSession(c, sm, mgr)
		if err != nil {
			return err
		}
		img := s.State().Displayed
		if img.IsZero() {
			return common.ErrNotFound("no image loaded")
		}

		etag := `"` + img.Digest() + `"`
		if c.Request().Header.Get("If-None-Match") == etag {
			return c.NoContent(http.StatusNotModified)
		}
		c.Response().Header().Set("ETag", etag)
		c.Response().Header().Set(echo.HeaderCacheControl, "private, no-cache")
		return c.Blob(http.StatusOK, img.MediaType(), img.Bytes())
	}
}
