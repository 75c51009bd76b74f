package snapshot

import (
	exif "github.com/dsoprea/go-exif/v3"
)

// orientation returns the EXIF orientation (1-8) of a JPEG, or 1 when the
// image carries none. Decoding applies the same tag, so the recorded size
// must follow it.
func orientation(data []byte) int {
	raw, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return 1
	}
	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return 1
	}
	for _, tag := range tags {
		if tag.TagName != "Orientation" || tag.IfdPath != "IFD" {
			continue
		}
		if v, ok := tag.Value.([]uint16); ok && len(v) > 0 && v[0] >= 1 && v[0] <= 8 {
			return int(v[0])
		}
	}
	return 1
}

// swapsAxes reports whether orientation o turns the stored image by 90
// degrees.
func swapsAxes(o int) bool { return o >= 5 && o <= 8 }
