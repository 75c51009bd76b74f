package common

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/internal/editor"
	"thirdcoast.systems/darkroom/pkg/filters"
)

// RequireFilterParam extracts a filter name route parameter or returns a 400 error.
func RequireFilterParam(c echo.Context, param string) (filters.Name, error) {
	name, err := filters.ParseName(c.Param(param))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid "+param)
	}
	return name, nil
}

// CurrentSession returns the edit session bound to the request cookie. A new
// session is created, and the cookie issued, when the cookie is missing or
// its session has expired.
func CurrentSession(c echo.Context, sm *auth.SessionManager, mgr *editor.Manager) (*editor.Session, error) {
	id, _ := sm.EditSession(c.Request())

	s, created, err := mgr.GetOrCreate(c.Request().Context(), id)
	if err != nil {
		slog.Error("failed to open edit session", "session", id, "error", err)
		return nil, ErrInternal("failed to open edit session")
	}
	if created {
		if id != uuid.Nil {
			slog.Info("edit session expired; starting a new one", "session", id,
				"cookie_issued", sm.GetSessionCreatedAt(c.Request()))
		}
		if err := sm.SaveEditSession(c.Response().Writer, c.Request(), s.ID()); err != nil {
			slog.Error("failed to save session cookie", "error", err)
			return nil, ErrInternal("failed to save session")
		}
	}
	return s, nil
}
