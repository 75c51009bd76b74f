package session_api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/common"
	"thirdcoast.systems/darkroom/internal/editor"
)

// HandleClearEffects resets filters and drops both histories.
func HandleClearEffects(sm *auth.SessionManager, mgr *editor.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := common.CurrentSession(c, sm, mgr)
		if err != nil {
			return err
		}
		state, out := s.Do(c.Request().Context(), editor.ClearEffects{})
		return common.Respond(c, state, out, http.StatusBadRequest)
	}
}
