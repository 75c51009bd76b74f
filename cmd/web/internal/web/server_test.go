package web

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/handlers/common"
	"thirdcoast.systems/darkroom/internal/editor"
	"thirdcoast.systems/darkroom/internal/effects"
	"thirdcoast.systems/darkroom/pkg/snapshot"
)

type dispatcher struct {
	calls atomic.Int32
	fn    func(req effects.Request) (snapshot.Snapshot, error)
}

func (d *dispatcher) Dispatch(_ context.Context, req effects.Request) (snapshot.Snapshot, error) {
	d.calls.Add(1)
	return d.fn(req)
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestServer(t *testing.T, d *dispatcher) *client {
	t.Helper()

	mgr := editor.NewManager(editor.Options{Dispatcher: d, IdleTimeout: time.Hour})
	ws, err := NewWebserver(context.Background(), Options{
		SessionManager: auth.NewSessionManager("test-secret", time.Hour),
		Editor:         mgr,
		UploadMaxBytes: 1 << 20,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(ws)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path string, body io.Reader, contentType string) *http.Response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *client) json(method, path string, payload any) (*http.Response, common.Result) {
	c.t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(b)
	}
	resp := c.do(method, path, body, "application/json")
	var res common.Result
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&res))
	return resp, res
}

func (c *client) upload(filename, contentType string, data []byte) (*http.Response, common.Result) {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(c.t, err)
	_, err = part.Write(data)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	resp := c.do(http.MethodPost, "/api/session/upload", &buf, mw.FormDataContentType())
	var res common.Result
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&res))
	return resp, res
}

func okDispatcher(t *testing.T) *dispatcher {
	result := pngBytes(t, 8, 6, color.Black)
	return &dispatcher{fn: func(effects.Request) (snapshot.Snapshot, error) {
		return snapshot.New(result, "image/png")
	}}
}

func TestSession_CookieBindsSession(t *testing.T) {
	c := newTestServer(t, okDispatcher(t))

	resp, first := c.json(http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.False(t, first.Session.HasImage)
	require.Equal(t, "rotate(0deg) scale(1, 1)", first.Session.Preview.Transform)

	_, second := c.json(http.MethodGet, "/api/session", nil)
	require.Equal(t, first.Session.ID, second.Session.ID)
}

func TestUpload(t *testing.T) {
	c := newTestServer(t, okDispatcher(t))

	t.Run("rejects non-images", func(t *testing.T) {
		resp, res := c.upload("notes.txt", "text/plain", []byte("hello"))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.NotNil(t, res.Notice)
		require.Equal(t, "Please select a valid image file.", res.Notice.Message)
		require.False(t, res.Session.HasImage)
	})

	t.Run("rejects oversized files", func(t *testing.T) {
		big := append(pngBytes(t, 2, 2, color.White), make([]byte, 1<<20)...)
		resp, res := c.upload("big.png", "image/png", big)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "File size must be less than 1MB.", res.Notice.Message)
	})

	t.Run("accepts images", func(t *testing.T) {
		resp, res := c.upload("photo.png", "image/png", pngBytes(t, 10, 6, color.White))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, res.Session.HasImage)
		require.Equal(t, 10, res.Session.Image.Width)
		require.Equal(t, "Image uploaded successfully!", res.Notice.Message)

		img := c.do(http.MethodGet, "/api/session/image", nil, "")
		require.Equal(t, http.StatusOK, img.StatusCode)
		require.Equal(t, "image/png", img.Header.Get("Content-Type"))
	})
}

func TestFiltersAndTransform(t *testing.T) {
	c := newTestServer(t, okDispatcher(t))

	resp, res := c.json(http.MethodPut, "/api/session/filters/brightness", map[string]any{"value": 150})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 150.0, res.Session.Filters.Brightness)

	_, res = c.json(http.MethodPut, "/api/session/filters/hue", map[string]any{"value": 999})
	require.Equal(t, 360.0, res.Session.Filters.Hue)
	require.Contains(t, res.Session.Preview.Filter, "brightness(150%)")
	require.Contains(t, res.Session.Preview.Filter, "hue-rotate(360deg)")

	resp = c.do(http.MethodPut, "/api/session/filters/sharpness", strings.NewReader(`{"value":1}`), "application/json")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, res = c.json(http.MethodPost, "/api/session/filters/sepia/select", nil)
	require.Equal(t, "sepia", string(res.Session.ActiveFilter))

	_, res = c.json(http.MethodPost, "/api/session/transform/rotate_left", nil)
	_, res = c.json(http.MethodPost, "/api/session/transform/flip_x", nil)
	require.Equal(t, "rotate(-90deg) scale(-1, 1)", res.Session.Preview.Transform)
	require.Equal(t, "Applied flip x transformation", res.Notice.Message)

	resp, _ = c.json(http.MethodPost, "/api/session/transform/skew", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, res = c.json(http.MethodPost, "/api/session/reset", nil)
	require.Equal(t, "rotate(0deg) scale(1, 1)", res.Session.Preview.Transform)
	require.Equal(t, 100.0, res.Session.Filters.Brightness)
	require.Equal(t, "All changes reset", res.Notice.Message)
}

func TestSketchAndUndo(t *testing.T) {
	d := okDispatcher(t)
	c := newTestServer(t, d)

	resp, res := c.json(http.MethodPost, "/api/session/sketch", map[string]any{"variation": "classic"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, editor.LevelWarning, res.Notice.Level)
	require.Zero(t, d.calls.Load())

	_, uploaded := c.upload("photo.png", "image/png", pngBytes(t, 10, 6, color.White))
	before := uploaded.Session.Image.Digest

	resp, res = c.json(http.MethodPost, "/api/session/sketch", map[string]any{"blur_sigma": 2.0, "sharpen": 1.0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, res.Session.SketchUndo)
	require.NotEqual(t, before, res.Session.Image.Digest)
	require.Equal(t, effects.SketchVariationSuccess, res.Notice.Message)

	_, res = c.json(http.MethodPost, "/api/session/undo/sketch", nil)
	require.Equal(t, before, res.Session.Image.Digest)
	require.Equal(t, 0, res.Session.SketchUndo)
	require.Equal(t, "Sketch effect undone", res.Notice.Message)

	resp, res = c.json(http.MethodPost, "/api/session/undo/sketch", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, editor.LevelWarning, res.Notice.Level)
	require.Equal(t, "No sketch to undo.", res.Notice.Message)

	resp = c.do(http.MethodPost, "/api/session/sketch", strings.NewReader(`{"variation":"smudge"}`), "application/json")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEffect_DispatchFailure(t *testing.T) {
	d := &dispatcher{fn: func(effects.Request) (snapshot.Snapshot, error) {
		return snapshot.Snapshot{}, &effects.StatusError{Code: 500, Status: "500 Internal Server Error"}
	}}
	c := newTestServer(t, d)

	_, uploaded := c.upload("photo.png", "image/png", pngBytes(t, 10, 6, color.White))

	resp, res := c.json(http.MethodPost, "/api/session/effects/background_removal", nil)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Equal(t, editor.LevelError, res.Notice.Level)
	require.Equal(t, "Operation failed: HTTP 500: Internal Server Error", res.Notice.Message)
	require.Equal(t, uploaded.Session.Image.Digest, res.Session.Image.Digest)
	require.Empty(t, res.Session.Pending)

	resp, res = c.json(http.MethodPost, "/api/session/effects/teleport", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Effect not available", res.Notice.Message)
}

func TestEffect_AppliesAndUndoes(t *testing.T) {
	d := okDispatcher(t)
	c := newTestServer(t, d)

	_, uploaded := c.upload("photo.png", "image/png", pngBytes(t, 10, 6, color.White))

	resp, res := c.json(http.MethodPost, "/api/session/effects/oil_painting", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, res.Session.EffectUndo)
	require.Equal(t, "oil_painting", res.Session.ActiveEffect)

	_, res = c.json(http.MethodPost, "/api/session/undo/effect", nil)
	require.Equal(t, uploaded.Session.Image.Digest, res.Session.Image.Digest)
	require.Equal(t, "AI effect undone", res.Notice.Message)
}

func TestCrop(t *testing.T) {
	c := newTestServer(t, okDispatcher(t))

	resp, res := c.json(http.MethodPost, "/api/session/crop", map[string]any{"aspect_ratio": "1:1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Please upload an image first!", res.Notice.Message)

	c.upload("photo.png", "image/png", pngBytes(t, 10, 6, color.White))

	resp, res = c.json(http.MethodPost, "/api/session/crop", map[string]any{"aspect_ratio": "1:1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 6, res.Session.Image.Width)
	require.Equal(t, 6, res.Session.Image.Height)
	require.Equal(t, "Crop applied successfully!", res.Notice.Message)

	resp = c.do(http.MethodPost, "/api/session/crop", strings.NewReader(`{"aspect_ratio":"wide"}`), "application/json")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExport(t *testing.T) {
	c := newTestServer(t, okDispatcher(t))

	resp := c.do(http.MethodGet, "/api/session/export", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var failed common.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&failed))
	require.Equal(t, editor.LevelWarning, failed.Notice.Level)
	require.Equal(t, "Please upload an image first.", failed.Notice.Message)
	require.False(t, failed.Session.HasImage)

	c.upload("photo.png", "image/png", pngBytes(t, 10, 6, color.White))
	c.json(http.MethodPut, "/api/session/filters/vignette", map[string]any{"value": 50})

	resp = c.do(http.MethodGet, "/api/session/export", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	require.Equal(t, `attachment; filename=edited-image.jpg`, resp.Header.Get("Content-Disposition"))

	img, format, err := image.Decode(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	require.Equal(t, image.Rect(0, 0, 10, 6), img.Bounds())
}

func TestShortcut(t *testing.T) {
	c := newTestServer(t, okDispatcher(t))
	c.json(http.MethodPut, "/api/session/filters/contrast", map[string]any{"value": 20})

	resp := c.do(http.MethodPost, "/api/session/shortcut", strings.NewReader(`{"key":"z","ctrl":true}`), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "datastar-patch-signals")
	assert.Contains(t, string(body), "All changes reset")
	assert.Contains(t, string(body), "datastar-patch-elements")
	assert.Contains(t, string(body), `id="toast"`)

	_, res := c.json(http.MethodGet, "/api/session", nil)
	require.Equal(t, 100.0, res.Session.Filters.Contrast)

	resp = c.do(http.MethodPost, "/api/session/shortcut", strings.NewReader(`{"key":"s","meta":true}`), "application/json")
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "/api/session/export")
}

func TestCatalogues(t *testing.T) {
	c := newTestServer(t, okDispatcher(t))

	resp := c.do(http.MethodGet, "/api/filters", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var filtersBody struct {
		Filters []struct {
			Name string `json:"name"`
		} `json:"filters"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&filtersBody))
	require.Len(t, filtersBody.Filters, 11)

	resp = c.do(http.MethodGet, "/api/shortcuts", nil, "")
	var shortcutsBody []struct {
		Chord string `json:"chord"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&shortcutsBody))
	require.Len(t, shortcutsBody, 3)
	require.Equal(t, "Ctrl/⌘+Z", shortcutsBody[0].Chord)

	resp = c.do(http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPages(t *testing.T) {
	c := newTestServer(t, okDispatcher(t))
	c.upload("photo.png", "image/png", pngBytes(t, 10, 6, color.White))

	resp := c.do(http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	page := string(body)
	assert.Contains(t, page, "data-signals=")
	assert.Contains(t, page, "@get(&#39;/api/session/stream&#39;)")
	assert.Contains(t, page, "&#34;has_image&#34;:true")
	assert.Contains(t, page, `id="toast"`)

	resp = c.do(http.MethodGet, "/help", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<table>")
	assert.Contains(t, string(body), `href="/"`)
}

func TestNewSession(t *testing.T) {
	c := newTestServer(t, okDispatcher(t))
	_, first := c.upload("photo.png", "image/png", pngBytes(t, 10, 6, color.White))
	require.True(t, first.Session.HasImage)

	resp := c.do(http.MethodPost, "/api/session/new", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cleared *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == auth.SessionName {
			cleared = ck
		}
	}
	require.NotNil(t, cleared)
	require.True(t, cleared.MaxAge < 0)
	var body struct {
		Href string `json:"href"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "/", body.Href)

	_, second := c.json(http.MethodGet, "/api/session", nil)
	require.NotEqual(t, first.Session.ID, second.Session.ID)
	require.False(t, second.Session.HasImage)
}
