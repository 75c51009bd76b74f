package session_api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/common"
	"thirdcoast.systems/darkroom/internal/editor"
)

// HandleReset restores filters and transform and drops both histories. The
// displayed image is kept.
func HandleReset(sm *auth.SessionManager, mgr *editor.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := common.CurrentSession(c, sm, mgr)
		if err != nil {
			return err
		}
		state, out := s.Do(c.Request().Context(), editor.Reset{})
		return common.Respond(c, state, out, http.StatusBadRequest)
	}
}
