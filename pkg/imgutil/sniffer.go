package imgutil

import (
	"errors"
	"io"
	"strings"
)

// Kind identifies a supported image type.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindTIFF
	KindHEIF
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindTIFF:
		return "tiff"
	case KindHEIF:
		return "heif"
	default:
		return "unknown"
	}
}

// headerSize is enough to cover every signature below, including the ISO BMFF
// ftyp box brand used by HEIC/HEIF.
const headerSize = 12

var (
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	tiffSigLE = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE = []byte{0x4d, 0x4d, 0x00, 0x2a}
	ftypBox   = []byte("ftyp")
)

var heifBrands = map[string]bool{
	"heic": true,
	"heix": true,
	"heim": true,
	"heis": true,
	"hevc": true,
	"hevx": true,
	"mif1": true,
	"msf1": true,
}

var extensions = map[string]Kind{
	".jpg":  KindJPEG,
	".jpeg": KindJPEG,
	".png":  KindPNG,
	".heic": KindHEIF,
	".heif": KindHEIF,
	".tif":  KindTIFF,
	".tiff": KindTIFF,
}

// KindForExtension maps a file extension (with leading dot, any case) to the
// kind it advertises. Unsupported extensions report KindUnknown.
func KindForExtension(ext string) Kind {
	return extensions[strings.ToLower(ext)]
}

// Supported reports whether ext is one of the accepted corpus extensions.
func Supported(ext string) bool {
	return KindForExtension(ext) != KindUnknown
}

// DetectHeader inspects the first bytes of a file for known signatures.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) < headerSize {
		return KindUnknown, errors.New("header too short")
	}

	if hasPrefix(header, jpegSig) {
		return KindJPEG, nil
	}
	if hasPrefix(header, pngSig) {
		return KindPNG, nil
	}
	if hasPrefix(header, tiffSigLE) || hasPrefix(header, tiffSigBE) {
		return KindTIFF, nil
	}
	if hasPrefix(header[4:], ftypBox) && heifBrands[string(header[8:12])] {
		return KindHEIF, nil
	}

	return KindUnknown, nil
}

// SniffReader reads the header from r and determines its type.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return KindUnknown, err
	}

	return DetectHeader(header)
}

func hasPrefix(buf, prefix []byte) bool {
	if len(buf) < len(prefix) {
		return false
	}
	for i := range prefix {
		if buf[i] != prefix[i] {
			return false
		}
	}
	return true
}
