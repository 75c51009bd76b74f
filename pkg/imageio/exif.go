package imageio

import (
	"io"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// ExifSummary is the subset of EXIF metadata surfaced to the editor.
type ExifSummary struct {
	Camera   string `json:"camera,omitempty"`
	Taken    string `json:"taken,omitempty"`
	HasGPS   bool   `json:"has_gps"`
	TagCount int    `json:"tag_count"`
}

// Exif scans rs for EXIF metadata. Images without EXIF yield an empty summary.
func Exif(rs io.ReadSeeker) (ExifSummary, error) {
	summary := ExifSummary{}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return summary, err
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if errorsIsNoExif(err) {
			return summary, nil
		}
		return summary, err
	}

	var maker, model string
	for _, tag := range tags {
		summary.TagCount++
		name := tag.TagName

		if strings.HasPrefix(name, "GPS") || strings.Contains(tag.IfdPath, "GPS") {
			summary.HasGPS = true
		}
		switch name {
		case "Make":
			maker = strings.TrimSpace(tag.Formatted)
		case "Model", "CameraModelName":
			model = strings.TrimSpace(tag.Formatted)
		case "DateTimeOriginal":
			summary.Taken = strings.TrimSpace(tag.Formatted)
		case "DateTime":
			if summary.Taken == "" {
				summary.Taken = strings.TrimSpace(tag.Formatted)
			}
		}
	}

	switch {
	case model != "" && maker != "" && !strings.HasPrefix(model, maker):
		summary.Camera = maker + " " + model
	case model != "":
		summary.Camera = model
	default:
		summary.Camera = maker
	}
	return summary, nil
}

func errorsIsNoExif(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
