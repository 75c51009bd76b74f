package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"thirdcoast.systems/darkroom/pkg/imageio"
)

const defaultMaxSize = "50MB"

func addMaxSizeFlag(cmd *cobra.Command) {
	cmd.Flags().String("max-size", defaultMaxSize, "largest input accepted, e.g. 10MB")
}

func maxSize(cmd *cobra.Command) (int64, error) {
	raw, _ := cmd.Flags().GetString("max-size")
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid --max-size %q: %w", raw, err)
	}
	return int64(n), nil
}

// loadImage reads and validates the image at path the same way the web
// service validates uploads.
func loadImage(path string, limit int64) (imageio.Upload, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return imageio.Upload{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return imageio.Upload{}, err
	}
	defer f.Close()

	up, err := imageio.Read(f, mt.String(), limit)
	if err != nil {
		return imageio.Upload{}, fmt.Errorf("%s: %w", path, err)
	}
	return up, nil
}
