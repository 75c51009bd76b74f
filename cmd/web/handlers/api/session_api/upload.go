package session_api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/common"
	"thirdcoast.systems/darkroom/internal/editor"
	"thirdcoast.systems/darkroom/pkg/imageio"
)

// HandleUpload replaces the session image with the multipart "file" part.
// Invalid uploads leave the session untouched.
func HandleUpload(sm *auth.SessionManager, mgr *editor.Manager, maxBytes int64) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := common.CurrentSession(c, sm, mgr)
		if err != nil {
			return err
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return rejectUpload(c, s, &imageio.ValidationError{Err: imageio.ErrNotImage, Message: "Please select a valid image file."})
		}
		declared := fh.Header.Get(echo.HeaderContentType)
		if err := imageio.Check(declared, fh.Size, maxBytes); err != nil {
			return rejectUpload(c, s, err)
		}

		f, err := fh.Open()
		if err != nil {
			return common.ErrInternal("failed to read upload")
		}
		defer f.Close()

		up, err := imageio.Read(f, declared, maxBytes)
		if err != nil {
			return rejectUpload(c, s, err)
		}
		slog.Info("image uploaded", "session", s.ID(), "image", imageio.Describe(up.Snapshot), "camera", up.Exif.Camera)

		state, out := s.Do(c.Request().Context(), editor.Upload{Image: up.Snapshot, Exif: up.Exif})
		return common.Respond(c, state, out, http.StatusBadRequest)
	}
}

func rejectUpload(c echo.Context, s *editor.Session, err error) error {
	var verr *imageio.ValidationError
	if !errors.As(err, &verr) {
		slog.Error("upload failed", "session", s.ID(), "error", err)
		return common.ErrInternal("failed to read upload")
	}
	out := editor.Outcome{
		Notice: &editor.Notice{Level: editor.LevelError, Message: verr.Message},
		Err:    err,
	}
	return common.Respond(c, s.State(), out, http.StatusBadRequest)
}
