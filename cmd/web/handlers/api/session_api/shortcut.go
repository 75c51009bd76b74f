package session_api

import (
	"encoding/json"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/starfederation/datastar-go/datastar"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/common"
	"thirdcoast.systems/darkroom/cmd/web/templates"
	"thirdcoast.systems/darkroom/internal/editor"
	"thirdcoast.systems/darkroom/pkg/shortcuts"
)

const exportPath = "/api/session/export"

type shortcutSignals struct {
	Shortcut shortcuts.Action `json:"shortcut"`
	Href     string           `json:"href,omitempty"`
	Session  *editor.View     `json:"session,omitempty"`
	Notice   *editor.Notice   `json:"notice,omitempty"`
}

// HandleShortcut resolves a key press to a global shortcut. Reset runs on
// the server; export and open are handed back to the page as signals.
func HandleShortcut(sm *auth.SessionManager, mgr *editor.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		ev := &shortcuts.KeyEvent{}
		if err := datastar.ReadSignals(c.Request(), ev); err != nil {
			return common.ErrBadRequest("invalid signals")
		}

		s, err := common.CurrentSession(c, sm, mgr)
		if err != nil {
			return err
		}

		action, ok := shortcuts.Match(*ev)
		out := shortcutSignals{Shortcut: action}
		if ok {
			switch action {
			case shortcuts.ActionReset:
				state, res := s.Do(c.Request().Context(), editor.Reset{})
				view := state.View()
				out.Session, out.Notice = &view, res.Notice
			case shortcuts.ActionExport:
				out.Href = exportPath
			}
		}

		payload, err := json.Marshal(out)
		if err != nil {
			return common.ErrInternal("failed to encode signals")
		}

		// NewSSE flushes headers, so it comes after ReadSignals.
		common.SetSSEHeaders(c)
		sse := datastar.NewSSE(c.Response().Writer, c.Request())
		if err := sse.PatchSignals(payload); err != nil {
			slog.Debug("failed to patch shortcut signals", "error", err)
			return nil
		}
		if out.Notice != nil {
			if err := sse.PatchElementTempl(templates.Toast(out.Notice)); err != nil {
				slog.Debug("failed to patch toast", "error", err)
			}
		}
		return nil
	}
}
