package editor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"thirdcoast.systems/darkroom/internal/effects"
	"thirdcoast.systems/darkroom/pkg/snapshot"
)

func imageSnapshot(t *testing.T, w, h int, c color.Color) snapshot.Snapshot {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	s, err := snapshot.New(buf.Bytes(), "")
	require.NoError(t, err)
	return s
}

func loaded(t *testing.T) (State, snapshot.Snapshot) {
	t.Helper()
	img := imageSnapshot(t, 4, 4, color.White)
	s, out := Reduce(NewState(uuid.New()), Upload{Image: img})
	require.NoError(t, out.Err)
	return s, img
}

type dispatchFunc func(ctx context.Context, req effects.Request) (snapshot.Snapshot, error)

func (f dispatchFunc) Dispatch(ctx context.Context, req effects.Request) (snapshot.Snapshot, error) {
	return f(ctx, req)
}
