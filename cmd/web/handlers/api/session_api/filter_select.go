package session_api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/common"
	"thirdcoast.systems/darkroom/internal/editor"
)

// HandleFilterSelect binds the slider to the filter in the route.
func HandleFilterSelect(sm *auth.SessionManager, mgr *editor.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		name, err := common.RequireFilterParam(c, "name")
		if err != nil {
			return err
		}
		s, err := common.CurrentSession(c, sm, mgr)
		if err != nil {
			return err
		}
		state, out := s.Do(c.Request().Context(), editor.SelectFilter{Name: name})
		return common.Respond(c, state, out, http.StatusBadRequest)
	}
}
