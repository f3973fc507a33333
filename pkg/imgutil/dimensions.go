package imgutil

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strconv"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// Dimensions is an image's pixel size as reported by its metadata.
type Dimensions struct {
	Width  float64
	Height float64
}

// ShortSide returns the smaller of width and height.
func (d Dimensions) ShortSide() float64 {
	if d.Width < d.Height {
		return d.Width
	}
	return d.Height
}

// Tag pairs in order of preference. The Exif sub-IFD pixel dimensions
// describe the stored image; IFD0 width/length is the TIFF fallback.
var dimensionTags = [][2]string{
	{"PixelXDimension", "PixelYDimension"},
	{"ImageWidth", "ImageLength"},
}

// Measure reads just enough of the file at path to learn its pixel size.
// The boolean is false when the file is missing, corrupt, or carries no
// usable size metadata.
func Measure(path string) (Dimensions, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, false
	}
	defer f.Close()

	return MeasureReader(f)
}

// MeasureReader is Measure over an already open file. EXIF tags are consulted
// first; JPEG and PNG fall back to their header without decoding pixels.
func MeasureReader(rs io.ReadSeeker) (Dimensions, bool) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Dimensions{}, false
	}
	kind, err := SniffReader(rs)
	if err != nil || kind == KindUnknown {
		return Dimensions{}, false
	}

	if dims, ok := exifDimensions(rs); ok {
		return dims, true
	}

	switch kind {
	case KindJPEG, KindPNG:
		return headerDimensions(rs)
	default:
		return Dimensions{}, false
	}
}

func exifDimensions(rs io.ReadSeeker) (Dimensions, bool) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Dimensions{}, false
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		return Dimensions{}, false
	}

	// First occurrence wins so that IFD0 beats the thumbnail IFD.
	values := make(map[string]interface{})
	for _, tag := range tags {
		if _, seen := values[tag.TagName]; !seen {
			values[tag.TagName] = tag.Value
		}
	}

	for _, pair := range dimensionTags {
		w, okW := numeric(values[pair[0]])
		h, okH := numeric(values[pair[1]])
		if okW && okH && w > 0 && h > 0 {
			return Dimensions{Width: w, Height: h}, true
		}
	}
	return Dimensions{}, false
}

func headerDimensions(rs io.ReadSeeker) (Dimensions, bool) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Dimensions{}, false
	}
	cfg, _, err := image.DecodeConfig(rs)
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return Dimensions{}, false
	}
	return Dimensions{Width: float64(cfg.Width), Height: float64(cfg.Height)}, true
}

// numeric coerces a metadata value of any numeric representation into a
// float. Slices contribute their first element.
func numeric(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case exifcommon.Rational:
		if n.Denominator == 0 {
			return 0, false
		}
		return float64(n.Numerator) / float64(n.Denominator), true
	case exifcommon.SignedRational:
		if n.Denominator == 0 {
			return 0, false
		}
		return float64(n.Numerator) / float64(n.Denominator), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case []uint8:
		return first(n)
	case []uint16:
		return first(n)
	case []uint32:
		return first(n)
	case []int32:
		return first(n)
	case []float32:
		return first(n)
	case []float64:
		return first(n)
	case []exifcommon.Rational:
		return first(n)
	case []exifcommon.SignedRational:
		return first(n)
	default:
		return 0, false
	}
}

func first[T any](values []T) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return numeric(values[0])
}
