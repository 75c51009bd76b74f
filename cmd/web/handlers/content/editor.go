package content

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/common"
	"thirdcoast.systems/darkroom/cmd/web/templates"
	"thirdcoast.systems/darkroom/internal/editor"
)

// HandleEditorPage renders the editor seeded with the current session, so a
// reload shows the same image and adjustments.
func HandleEditorPage(sm *auth.SessionManager, mgr *editor.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := common.CurrentSession(c, sm, mgr)
		if err != nil {
			return err
		}

		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		c.Response().WriteHeader(http.StatusOK)
		return templates.Editor(templates.NewEditorData(s.State().View())).Render(c.Request().Context(), c.Response())
	}
}
