package common

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/internal/editor"
	"thirdcoast.systems/darkroom/internal/effects"
	"thirdcoast.systems/darkroom/pkg/filters"
	"thirdcoast.systems/darkroom/pkg/imageio"
	"thirdcoast.systems/darkroom/pkg/transform"
	"thirdcoast.systems/darkroom/pkg/utils/crops"
)

// Result is the body of every session mutation response.
type Result struct {
	Session editor.View    `json:"session"`
	Notice  *editor.Notice `json:"notice,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Respond writes state and the outcome notice. Rejected actions become an
// *echo.HTTPError carrying the same body; failStatus is used for errors that
// are not input problems (remote dispatch, rendering).
func Respond(c echo.Context, state editor.State, out editor.Outcome, failStatus int) error {
	body := Result{Session: state.View(), Notice: out.Notice}
	if out.Err == nil {
		return c.JSON(http.StatusOK, body)
	}
	body.Error = out.Err.Error()
	return echo.NewHTTPError(StatusFor(out.Err, failStatus), body)
}

// StatusFor maps err to an HTTP status.
func StatusFor(err error, fallback int) int {
	var verr *imageio.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, editor.ErrNoImage),
		errors.Is(err, filters.ErrUnknownFilter),
		errors.Is(err, transform.ErrUnknownOp),
		errors.Is(err, crops.ErrInvalidCrop):
		return http.StatusBadRequest
	case errors.Is(err, effects.ErrUnknownEffect):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrInFlight):
		return http.StatusConflict
	}
	return fallback
}
