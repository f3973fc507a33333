package imgutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

func TestMeasurePNGHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	writePNG(t, path, 30, 20)

	dims, ok := Measure(path)
	if !ok {
		t.Fatal("expected PNG dimensions")
	}
	if dims.Width != 30 || dims.Height != 20 {
		t.Fatalf("got %vx%v, want 30x20", dims.Width, dims.Height)
	}
	if dims.ShortSide() != 20 {
		t.Fatalf("short side = %v, want 20", dims.ShortSide())
	}
}

func TestMeasureJPEGHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.jpg")
	img := image.NewRGBA(image.Rect(0, 0, 16, 48))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	dims, ok := Measure(path)
	if !ok || dims.Width != 16 || dims.Height != 48 {
		t.Fatalf("got %+v ok=%v, want 16x48", dims, ok)
	}
}

func TestMeasureExifDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exif.jpg")
	if err := os.WriteFile(path, buildJPEGWithDimensions(4032, 3024), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	dims, ok := Measure(path)
	if !ok {
		t.Fatal("expected EXIF dimensions")
	}
	if dims.Width != 4032 || dims.Height != 3024 {
		t.Fatalf("got %vx%v, want 4032x3024", dims.Width, dims.Height)
	}
}

func TestMeasureUnreadable(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "broken.jpg")
	if err := os.WriteFile(garbage, []byte("definitely not an image file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := Measure(garbage); ok {
		t.Fatal("expected measure failure for non-image bytes")
	}

	truncated := filepath.Join(dir, "truncated.png")
	if err := os.WriteFile(truncated, pngSig, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := Measure(truncated); ok {
		t.Fatal("expected measure failure for truncated PNG")
	}

	if _, ok := Measure(filepath.Join(dir, "missing.png")); ok {
		t.Fatal("expected measure failure for missing file")
	}
}

func TestNumericCoercion(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{"uint16 slice", []uint16{1200}, 1200, true},
		{"uint32 slice", []uint32{4000}, 4000, true},
		{"float64", 812.5, 812.5, true},
		{"float32 slice", []float32{640}, 640, true},
		{"rational", []exifcommon.Rational{{Numerator: 3000, Denominator: 2}}, 1500, true},
		{"zero denominator", []exifcommon.Rational{{Numerator: 1, Denominator: 0}}, 0, false},
		{"numeric string", " 1080 ", 1080, true},
		{"text", "wide", 0, false},
		{"empty slice", []uint16{}, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tc := range cases {
		got, ok := numeric(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("%s: numeric(%v) = %v, %v; want %v, %v", tc.name, tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDetectHeaderHEIF(t *testing.T) {
	header := append([]byte{0x00, 0x00, 0x00, 0x18}, []byte("ftypheic")...)
	kind, err := DetectHeader(header)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if kind != KindHEIF {
		t.Fatalf("kind = %s, want heif", kind)
	}

	mp4 := append([]byte{0x00, 0x00, 0x00, 0x18}, []byte("ftypisom")...)
	if kind, _ := DetectHeader(mp4); kind != KindUnknown {
		t.Fatalf("kind = %s, want unknown", kind)
	}
}

func TestSupportedExtensions(t *testing.T) {
	for _, ext := range []string{".jpg", ".JPEG", ".png", ".HeIc", ".heif", ".tif", ".TIFF"} {
		if !Supported(ext) {
			t.Errorf("expected %s to be supported", ext)
		}
	}
	for _, ext := range []string{".txt", ".gif", ".webp", "", "jpg"} {
		if Supported(ext) {
			t.Errorf("expected %s to be unsupported", ext)
		}
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 0xff, A: 0xff})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// buildJPEGWithDimensions writes a JPEG shell whose only payload is an APP1
// EXIF segment with IFD0 ImageWidth (SHORT) and ImageLength (LONG).
func buildJPEGWithDimensions(width uint16, height uint32) []byte {
	var tiff bytes.Buffer
	tiff.Write([]byte{0x49, 0x49, 0x2a, 0x00})
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0100))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(3))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(1))
	_ = binary.Write(&tiff, binary.LittleEndian, width)
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0101))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(4))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(1))
	_ = binary.Write(&tiff, binary.LittleEndian, height)
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(0))

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xd8})
	buf.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(payload)+2))
	buf.Write(payload)
	buf.Write([]byte{0xff, 0xd9})
	return buf.Bytes()
}
