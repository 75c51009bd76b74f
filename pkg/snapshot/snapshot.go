// Package snapshot provides immutable handles to complete encoded images.
package snapshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrEmpty is returned when constructing a snapshot without image data.
var ErrEmpty = errors.New("snapshot: empty image data")

// Snapshot is an encoded image captured at one point in time. It is never
// mutated after construction; Bytes hands out copies.
type Snapshot struct {
	id        uuid.UUID
	mediaType string
	data      []byte
	width     int
	height    int
	digest    string
}

// New copies data into a snapshot. When mediaType is empty it is sniffed from
// the content. Dimensions come from the image header and are the displayed
// ones, after the JPEG EXIF orientation is applied; undecodable headers leave
// them at zero, which export treats as "not loaded".
func New(data []byte, mediaType string) (Snapshot, error) {
	if len(data) == 0 {
		return Snapshot{}, ErrEmpty
	}
	buf := bytes.Clone(data)
	if mediaType == "" {
		mediaType = mimetype.Detect(buf).String()
	}
	sum := sha256.Sum256(buf)

	s := Snapshot{
		id:        uuid.New(),
		mediaType: mediaType,
		data:      buf,
		digest:    hex.EncodeToString(sum[:]),
	}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(buf)); err == nil {
		s.width, s.height = cfg.Width, cfg.Height
		if format == "jpeg" && swapsAxes(orientation(buf)) {
			s.width, s.height = s.height, s.width
		}
	}
	return s, nil
}

// Restore rebuilds a snapshot loaded from storage, keeping its id and the
// recorded dimensions.
func Restore(id uuid.UUID, data []byte, mediaType string, width, height int) (Snapshot, error) {
	s, err := New(data, mediaType)
	if err != nil {
		return Snapshot{}, err
	}
	s.id = id
	s.width, s.height = width, height
	return s, nil
}

func (s Snapshot) ID() uuid.UUID     { return s.id }
func (s Snapshot) MediaType() string { return s.mediaType }
func (s Snapshot) Width() int        { return s.width }
func (s Snapshot) Height() int       { return s.height }
func (s Snapshot) Digest() string    { return s.digest }
func (s Snapshot) Size() int         { return len(s.data) }

// IsZero reports whether s holds no image.
func (s Snapshot) IsZero() bool { return len(s.data) == 0 }

// Bytes returns a copy of the encoded image.
func (s Snapshot) Bytes() []byte { return bytes.Clone(s.data) }

// Reader streams the encoded image without copying it.
func (s Snapshot) Reader() *bytes.Reader { return bytes.NewReader(s.data) }

// Same reports whether both snapshots hold byte-identical images.
func (s Snapshot) Same(o Snapshot) bool {
	return s.digest == o.digest
}
