package session_api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/common"
	"thirdcoast.systems/darkroom/internal/editor"
	"thirdcoast.systems/darkroom/internal/effects"
)

// HandleEffect applies the effect named in the route to the displayed image.
func HandleEffect(sm *auth.SessionManager, mgr *editor.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := common.CurrentSession(c, sm, mgr)
		if err != nil {
			return err
		}
		name, err := effects.ParseName(c.Param("name"))
		if err != nil {
			// Let the reducer produce the "not available" notice.
			name = effects.Name(c.Param("name"))
		}
		state, out := s.Do(c.Request().Context(), editor.ApplyEffect{Effect: name})
		return common.Respond(c, state, out, http.StatusBadGateway)
	}
}
