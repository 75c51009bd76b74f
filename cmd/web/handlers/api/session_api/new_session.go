package session_api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/common"
)

// HandleNewSession drops the browser's binding to its edit session. The old
// session is left to expire; the page reloads and is given a fresh one.
func HandleNewSession(sm *auth.SessionManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id, err := sm.EditSession(c.Request()); err == nil {
			slog.Info("edit session abandoned", "session", id,
				"cookie_issued", sm.GetSessionCreatedAt(c.Request()))
		}
		if err := sm.ClearSession(c.Response().Writer, c.Request()); err != nil {
			slog.Error("failed to clear session cookie", "error", err)
			return common.ErrInternal("failed to clear session")
		}
		return c.JSON(http.StatusOK, map[string]string{"href": "/"})
	}
}
