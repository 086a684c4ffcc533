package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"io"
	"math"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// MaxSourcePixels rejects images whose declared size would exhaust memory
// when decoded.
const MaxSourcePixels = 60_000_000

// Codec decodes, resizes and encodes rasters.
type Codec interface {
	Decode(data []byte) (image.Image, string, error)
	Resize(src image.Image, width, height int) image.Image
	Encode(w io.Writer, img image.Image, quality float64) error
}

// DefaultCodec decodes PNG, JPEG, GIF, WebP, BMP and TIFF and always
// encodes JPEG.
type DefaultCodec struct{}

func (DefaultCodec) Decode(data []byte) (image.Image, string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, "", fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)
	}
	return image.Decode(bytes.NewReader(data))
}

// Resize draws src onto a white canvas of the given size. JPEG has no
// alpha channel so transparent areas come out white.
func (DefaultCodec) Resize(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func (DefaultCodec) Encode(w io.Writer, img image.Image, quality float64) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality(quality)})
}

// jpegQuality maps a 0..1 quality to the 1..100 scale of image/jpeg.
func jpegQuality(q float64) int {
	v := int(math.Round(q * 100))
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

// ScaledSize fits width x height into maxW x maxH keeping the aspect ratio.
// Images are never upscaled and each side is at least 1px.
func ScaledSize(width, height, maxW, maxH int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	scale := math.Min(math.Min(float64(maxW)/float64(width), float64(maxH)/float64(height)), 1)
	w := clampSide(int(math.Floor(float64(width)*scale+0.5)), maxW)
	h := clampSide(int(math.Floor(float64(height)*scale+0.5)), maxH)
	return w, h
}

func clampSide(v, limit int) int {
	if limit > 0 && v > limit {
		v = limit
	}
	if v < 1 {
		v = 1
	}
	return v
}
