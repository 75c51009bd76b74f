package effects

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"thirdcoast.systems/darkroom/pkg/render"
	"thirdcoast.systems/darkroom/pkg/snapshot"
)

const (
	defaultBaseURL = "http://localhost:5000"
	defaultTimeout = 60 * time.Second
	// maxResponseBytes bounds effect server responses.
	maxResponseBytes = 64 << 20
)

// ErrNotImage is returned when the effect server answers with something that
// is not an image.
var ErrNotImage = errors.New("effect server returned a non-image response")

// StatusError is a non-2xx answer from the effect server.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	text := strings.TrimSpace(strings.TrimPrefix(e.Status, strconv.Itoa(e.Code)))
	if text == "" {
		text = http.StatusText(e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, text)
}

// Params are the optional named parameters of an effect.
type Params struct {
	BlurSigma *float64 `json:"blur_sigma,omitempty"`
	Sharpen   *float64 `json:"sharpen,omitempty"`
}

// Request asks for one effect to be applied to Image.
type Request struct {
	Effect Name
	Image  snapshot.Snapshot
	Params Params
}

type Client struct {
	baseURL string
	http    *http.Client
	quality int
}

// NewClient returns a client for the effect server at baseURL. A zero timeout
// uses the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
		quality: render.DefaultQuality,
	}
}

// BaseURL returns the effect server root.
func (c *Client) BaseURL() string { return c.baseURL }

// Dispatch applies req.Effect to req.Image and returns the replacement image.
func (c *Client) Dispatch(ctx context.Context, req Request) (snapshot.Snapshot, error) {
	spec, err := Lookup(req.Effect)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	if req.Image.IsZero() {
		return snapshot.Snapshot{}, render.ErrEmptyImage
	}
	if spec.Local {
		return c.local(spec, req.Image)
	}

	body, contentType, err := encodeForm(spec, req)
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+spec.Endpoint, body)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "image/*")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
		return snapshot.Snapshot{}, &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(b))}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("effects: read response: %w", err)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return snapshot.Snapshot{}, fmt.Errorf("%w (%s)", ErrNotImage, mt.String())
	}
	return snapshot.New(data, mt.String())
}

func (c *Client) local(spec Spec, img snapshot.Snapshot) (snapshot.Snapshot, error) {
	switch spec.Name {
	case Enhancer:
		return render.EnhanceSnapshot(img, c.quality)
	default:
		return snapshot.Snapshot{}, fmt.Errorf("%w: %q has no local implementation", ErrUnknownEffect, string(spec.Name))
	}
}

func encodeForm(spec Spec, req Request) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, spec.Filename))
	h.Set("Content-Type", req.Image.MediaType())
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, req.Image.Reader()); err != nil {
		return nil, "", err
	}

	if v := req.Params.BlurSigma; v != nil {
		if err := mw.WriteField("blurSigma", strconv.FormatFloat(*v, 'f', -1, 64)); err != nil {
			return nil, "", err
		}
	}
	if v := req.Params.Sharpen; v != nil {
		if err := mw.WriteField("sharpenValue", strconv.FormatFloat(*v, 'f', -1, 64)); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
