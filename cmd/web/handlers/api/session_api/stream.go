package session_api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/starfederation/datastar-go/datastar"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/common"
	"thirdcoast.systems/darkroom/cmd/web/internal/preview"
	"thirdcoast.systems/darkroom/internal/editor"
)

// HandleStream streams live preview signals for the current session: the
// session view, with its filter and transform composites, after every change.
func HandleStream(sm *auth.SessionManager, mgr *editor.Manager, hub *preview.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := common.CurrentSession(c, sm, mgr)
		if err != nil {
			return err
		}

		resp := c.Response()
		flusher, ok := resp.Writer.(http.Flusher)
		if !ok {
			return c.String(500, "streaming unsupported")
		}

		ch, unsubscribe := hub.Subscribe(s.ID())
		defer unsubscribe()

		common.SetSSEHeaders(c)
		sse := datastar.NewSSE(resp, c.Request())

		initial, err := preview.Encode(s.State(), nil)
		if err != nil {
			return err
		}
		_ = sse.PatchSignals(initial)

		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-c.Request().Context().Done():
				return nil
			case data, ok := <-ch:
				if !ok {
					return nil
				}
				_ = sse.PatchSignals(data)
				flusher.Flush()
			case <-ticker.C:
				s.Touch()
				_, _ = fmt.Fprintf(resp, ": keepalive\n\n")
				flusher.Flush()
			}
		}
	}
}
