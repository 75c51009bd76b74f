// Package imageio validates uploaded images before they enter an edit session.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"thirdcoast.systems/darkroom/pkg/snapshot"
	"thirdcoast.systems/darkroom/pkg/utils/format"
)

// DefaultMaxBytes is the upload size ceiling.
const DefaultMaxBytes int64 = 10 << 20

var (
	ErrNotImage = errors.New("not an image")
	ErrTooLarge = errors.New("image too large")
)

// ValidationError carries the user-facing rejection message.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Err }

func notImage() error {
	return &ValidationError{Err: ErrNotImage, Message: "Please select a valid image file."}
}

func tooLarge(limit int64) error {
	return &ValidationError{
		Err:     ErrTooLarge,
		Message: fmt.Sprintf("File size must be less than %s.", format.Limit(limit)),
	}
}

// Upload is a validated image ready to become the session original.
type Upload struct {
	Snapshot snapshot.Snapshot
	Exif     ExifSummary
}

// Check validates the declared media type and size of an upload before its
// body is read.
func Check(declaredType string, size, limit int64) error {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(declaredType)), "image/") {
		return notImage()
	}
	if size > limit {
		return tooLarge(limit)
	}
	return nil
}

// Read validates and loads an upload. The declared type must be image/*, the
// sniffed content must be an image and at most limit bytes are accepted.
func Read(r io.Reader, declaredType string, limit int64) (Upload, error) {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	if err := Check(declaredType, 0, limit); err != nil {
		return Upload{}, err
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Upload{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return Upload{}, tooLarge(limit)
	}
	if len(data) == 0 {
		return Upload{}, notImage()
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Upload{}, notImage()
	}

	snap, err := snapshot.New(data, mt.String())
	if err != nil {
		return Upload{}, err
	}
	if snap.Width() == 0 || snap.Height() == 0 {
		// Sniffed as an image but the header is unreadable.
		return Upload{}, notImage()
	}

	summary, err := Exif(bytes.NewReader(data))
	if err != nil {
		summary = ExifSummary{}
	}
	return Upload{Snapshot: snap, Exif: summary}, nil
}

// Describe renders a short human description of an upload for logs and
// notices, e.g. "image/jpeg 1920x1080 (2.1 MB)".
func Describe(s snapshot.Snapshot) string {
	return fmt.Sprintf("%s %dx%d (%s)", s.MediaType(), s.Width(), s.Height(), humanize.Bytes(uint64(s.Size())))
}
