package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJPEG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func decodeConfig(t *testing.T, path string) (image.Config, string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg, format
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeJPEG(t, dir, 40, 20)
	out := filepath.Join(dir, "out.jpg")

	stdout := run(t, "export", in, "--brightness", "150", "--rotate", "90", "--crop", "1:1", "--noise", "20", "--seed", "7", "-o", out)

	cfg, format := decodeConfig(t, out)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
	assert.Contains(t, stdout, "brightness(150%)")
	assert.Contains(t, stdout, "rotate(90deg)")
	assert.Contains(t, stdout, "noise")
}

func TestExportCommandRejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(in, []byte("not an image"), 0o644))

	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"export", in, "-o", filepath.Join(dir, "out.jpg")})
	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please select a valid image file.")
}

func TestEffectCommand(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		img := image.NewGray(image.Rect(0, 0, 8, 8))
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, img)
	}))
	defer srv.Close()

	dir := t.TempDir()
	in := writeJPEG(t, dir, 16, 16)

	stdout := run(t, "effect", "oil_painting", in, "--url", srv.URL)

	assert.Equal(t, "/oil_paint", gotPath)
	out := filepath.Join(dir, "photo-oil_painting.png")
	cfg, format := decodeConfig(t, out)
	assert.Equal(t, "png", format)
	assert.Equal(t, 8, cfg.Width)
	assert.Contains(t, stdout, "Oil painting effect applied!")
}

func TestFiltersCommand(t *testing.T) {
	stdout := run(t, "filters")
	assert.Contains(t, stdout, "--brightness")
	assert.Contains(t, stdout, "export only")
	assert.Contains(t, stdout, "--variation classic")
	assert.Contains(t, stdout, "Ctrl/⌘+S")
}

func TestInfoCommand(t *testing.T) {
	in := writeJPEG(t, t.TempDir(), 12, 10)
	stdout := run(t, "info", in)
	assert.Contains(t, stdout, "12x10")
	assert.Contains(t, stdout, "exif")
}
