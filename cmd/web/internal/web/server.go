package web

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/api/catalog_api"
	"thirdcoast.systems/darkroom/cmd/web/handlers/api/session_api"
	"thirdcoast.systems/darkroom/cmd/web/handlers/content"
	"thirdcoast.systems/darkroom/cmd/web/internal/preview"
	staticpkg "thirdcoast.systems/darkroom/cmd/web/internal/web/utils/static"
	"thirdcoast.systems/darkroom/internal/editor"
	"thirdcoast.systems/darkroom/pkg/imageio"
)

const streamPath = "/api/session/stream"

type Webserver struct {
	*echo.Echo
	sessionManager *auth.SessionManager
	editor         *editor.Manager
	previewHub     *preview.Hub
	staticCache    *staticpkg.StaticCache
	uploadMaxBytes int64
}

// Options configures a Webserver.
type Options struct {
	SessionManager *auth.SessionManager
	Editor         *editor.Manager
	PreviewHub     *preview.Hub
	UploadMaxBytes int64
}

func NewWebserver(ctx context.Context, opts Options) (*Webserver, error) {
	e := echo.New()

	staticCache, err := staticpkg.NewStaticCache()
	if err != nil {
		return nil, err
	}

	hub := opts.PreviewHub
	if hub == nil {
		hub = preview.NewHub()
	}
	maxBytes := opts.UploadMaxBytes
	if maxBytes <= 0 {
		maxBytes = imageio.DefaultMaxBytes
	}

	webserver := &Webserver{
		Echo:           e,
		sessionManager: opts.SessionManager,
		editor:         opts.Editor,
		previewHub:     hub,
		staticCache:    staticCache,
		uploadMaxBytes: maxBytes,
	}
	webserver.editor.Listen(hub.Listener())

	if err = webserver.registerRoutes(); err != nil {
		return nil, err
	}

	if err = webserver.setupMiddleware(); err != nil {
		return nil, err
	}

	return webserver, nil
}

// bodyLimit leaves room for the multipart envelope so oversized uploads are
// rejected by the upload handler with its own message.
func (s *Webserver) bodyLimit() string {
	return strconv.FormatInt((s.uploadMaxBytes+(1<<20))/1024, 10) + "K"
}

func (s *Webserver) setupMiddleware() error {
	s.HideBanner = true
	s.HidePort = true
	s.Use(middleware.BodyLimit(s.bodyLimit()))
	s.Use(middleware.Recover())
	s.Use(middleware.RequestID())
	s.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Streams flush per event and images are already compressed.
			switch c.Path() {
			case streamPath, "/api/session/image", "/api/session/export":
				return true
			default:
				return false
			}
		},
	}))
	s.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == streamPath || c.Path() == "/healthz"
		},
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			slog.Info("request", fields...)
			return nil
		},
	}))

	return nil
}

func (s *Webserver) registerRoutes() error {
	sm, mgr := s.sessionManager, s.editor

	apiGroup := s.Group("/api")
	apiGroup.GET("/filters", catalog_api.HandleFilters())
	apiGroup.GET("/effects", catalog_api.HandleEffects())
	apiGroup.GET("/shortcuts", catalog_api.HandleShortcuts())

	sessionGroup := apiGroup.Group("/session")
	sessionGroup.GET("", session_api.HandleView(sm, mgr))
	sessionGroup.POST("/upload", session_api.HandleUpload(sm, mgr, s.uploadMaxBytes))
	sessionGroup.GET("/image", session_api.HandleImage(sm, mgr))
	sessionGroup.POST("/filters/:name/select", session_api.HandleFilterSelect(sm, mgr))
	sessionGroup.PUT("/filters/:name", session_api.HandleFilterSet(sm, mgr))
	sessionGroup.POST("/transform/:op", session_api.HandleTransform(sm, mgr))
	sessionGroup.POST("/reset", session_api.HandleReset(sm, mgr))
	sessionGroup.POST("/clear-effects", session_api.HandleClearEffects(sm, mgr))
	sessionGroup.POST("/sketch", session_api.HandleSketch(sm, mgr))
	sessionGroup.POST("/effects/:name", session_api.HandleEffect(sm, mgr))
	sessionGroup.POST("/undo/sketch", session_api.HandleUndoSketch(sm, mgr))
	sessionGroup.POST("/undo/effect", session_api.HandleUndoEffect(sm, mgr))
	sessionGroup.POST("/crop", session_api.HandleCrop(sm, mgr))
	sessionGroup.GET("/export", session_api.HandleExport(sm, mgr))
	sessionGroup.POST("/shortcut", session_api.HandleShortcut(sm, mgr))
	sessionGroup.POST("/new", session_api.HandleNewSession(sm))
	sessionGroup.GET("/stream", session_api.HandleStream(sm, mgr, s.previewHub))

	// Health check
	s.GET("/healthz", func(c echo.Context) error {
		return c.String(200, "ok")
	})

	// Static file serving
	s.GET("/static/*", s.staticCache.ServeStaticFile("/static/"))

	s.GET("/", content.HandleEditorPage(sm, mgr))
	s.GET("/help", content.HandleHelpPage())

	return nil
}
