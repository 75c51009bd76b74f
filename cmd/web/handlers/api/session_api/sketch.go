package session_api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/common"
	"thirdcoast.systems/darkroom/internal/editor"
	"thirdcoast.systems/darkroom/internal/effects"
)

const (
	maxBlurSigma = 50
	maxSharpen   = 10
)

type sketchRequest struct {
	Variation string   `json:"variation" form:"variation"`
	BlurSigma *float64 `json:"blur_sigma" form:"blur_sigma"`
	Sharpen   *float64 `json:"sharpen" form:"sharpen"`
}

// HandleSketch applies a sketch variation, either a named preset or explicit
// blur sigma and sharpen strength. The request returns once the effect
// server has answered.
func HandleSketch(sm *auth.SessionManager, mgr *editor.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req sketchRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("invalid sketch request")
		}

		action := editor.ApplySketch{Variation: req.Variation}
		switch {
		case req.Variation != "":
			v, ok := effects.LookupVariation(req.Variation)
			if !ok {
				return common.ErrBadRequest("unknown sketch variation")
			}
			action.BlurSigma, action.Sharpen = v.BlurSigma, v.Sharpen
		case req.BlurSigma != nil && req.Sharpen != nil:
			if *req.BlurSigma <= 0 || *req.BlurSigma > maxBlurSigma || *req.Sharpen < 0 || *req.Sharpen > maxSharpen {
				return common.ErrBadRequest("sketch parameters out of range")
			}
			action.BlurSigma, action.Sharpen = *req.BlurSigma, *req.Sharpen
		default:
			return common.ErrBadRequest("variation or blur_sigma and sharpen are required")
		}

		s, err := common.CurrentSession(c, sm, mgr)
		if err != nil {
			return err
		}
		state, out := s.Do(c.Request().Context(), action)
		return common.Respond(c, state, out, http.StatusBadGateway)
	}
}
