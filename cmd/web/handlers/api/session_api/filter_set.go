package session_api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/common"
	"thirdcoast.systems/darkroom/internal/editor"
)

type filterSetRequest struct {
	Value *float64 `json:"value" form:"value"`
}

// HandleFilterSet moves the slider of the filter in the route. Values
// outside the filter range are clamped.
func HandleFilterSet(sm *auth.SessionManager, mgr *editor.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		name, err := common.RequireFilterParam(c, "name")
		if err != nil {
			return err
		}
		var req filterSetRequest
		if err := c.Bind(&req); err != nil || req.Value == nil {
			return common.ErrBadRequest("value is required")
		}
		s, err := common.CurrentSession(c, sm, mgr)
		if err != nil {
			return err
		}
		state, out := s.Do(c.Request().Context(), editor.SetFilter{Name: name, Value: *req.Value})
		return common.Respond(c, state, out, http.StatusBadRequest)
	}
}
