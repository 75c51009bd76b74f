package session_api

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/common"
	"thirdcoast.systems/darkroom/internal/editor"
	"thirdcoast.systems/darkroom/pkg/render"
)

// HandleExport renders the displayed image with every filter, the transform
// and the post-processing passes and serves it as a JPEG download.
func HandleExport(sm *auth.SessionManager, mgr *editor.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := common.CurrentSession(c, sm, mgr)
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		data, err := s.Export(ctx, render.Options{})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			state, out := s.ExportFailed(ctx, err)
			return common.Respond(c, state, out, http.StatusUnprocessableEntity)
		}

		c.Response().Header().Set(echo.HeaderContentDisposition,
			mime.FormatMediaType("attachment", map[string]string{"filename": render.ExportFilename}))
		return c.Blob(http.StatusOK, render.ExportMediaType, data)
	}
}
