package admitcard

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// maxLogoSide bounds the longest edge of an embedded logo in pixels.
const maxLogoSide = 512

// LogoFile resolves logoPath inside staticDir. Paths cannot escape staticDir.
func LogoFile(staticDir, logoPath string) string {
	if logoPath == "" {
		return ""
	}
	return filepath.Join(staticDir, filepath.FromSlash(path.Clean("/"+logoPath)))
}

// loadLogo reads and normalises the logo to PNG. ok is false when the file is
// missing or does not decode; the card is then drawn without a logo.
func loadLogo(file string) (data []byte, ok bool) {
	if file == "" {
		return nil, false
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, false
	}
	return NormaliseLogo(raw)
}

// NormaliseLogo decodes png, jpeg, gif or webp bytes, scales them down to
// maxLogoSide and re-encodes them as PNG.
func NormaliseLogo(raw []byte) ([]byte, bool) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, false
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, false
	}

	w, h := b.Dx(), b.Dy()
	if w > maxLogoSide || h > maxLogoSide {
		if w >= h {
			h = h * maxLogoSide / w
			w = maxLogoSide
		} else {
			w = w * maxLogoSide / h
			h = maxLogoSide
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}
