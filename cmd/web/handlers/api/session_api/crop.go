package session_api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/common"
	"thirdcoast.systems/darkroom/internal/editor"
	"thirdcoast.systems/darkroom/pkg/utils/crops"
)

type cropRequest struct {
	AspectRatio string   `json:"aspect_ratio"`
	X           *float64 `json:"x"`
	Y           *float64 `json:"y"`
	Width       *float64 `json:"width"`
	Height      *float64 `json:"height"`
}

// HandleCrop applies a finished crop selection to the displayed image. The
// body is either an aspect ratio, cropped as large as possible around the
// centre, or a normalized region.
func HandleCrop(sm *auth.SessionManager, mgr *editor.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req cropRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("invalid crop request")
		}
		s, err := common.CurrentSession(c, sm, mgr)
		if err != nil {
			return err
		}

		var crop crops.Crop
		switch {
		case req.X != nil && req.Y != nil && req.Width != nil && req.Height != nil:
			crop = crops.Crop{AspectRatio: "custom", X: *req.X, Y: *req.Y, Width: *req.Width, Height: *req.Height}
		case req.AspectRatio != "":
			if _, _, err := crops.ParseAspectRatio(req.AspectRatio); err != nil {
				return common.ErrBadRequest(err.Error())
			}
			img := s.State().Displayed
			crop = crops.CalculateCropForAspectRatio(img.Width(), img.Height(), req.AspectRatio)
		default:
			return common.ErrBadRequest("aspect_ratio or x, y, width and height are required")
		}

		state, out := s.Crop(c.Request().Context(), crop)
		return common.Respond(c, state, out, http.StatusUnprocessableEntity)
	}
}
