// Package imaging shrinks uploaded branding images before they are stored.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Downscale fits data into a maxDimension square, keeping the aspect ratio.
// Images already small enough are returned untouched with ok=false. Scaled
// images are re-encoded as PNG, or JPEG when the source was JPEG.
func Downscale(data []byte, maxDimension int) (out []byte, contentType string, ok bool, err error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxDimension && height <= maxDimension {
		return data, "", false, nil
	}

	newWidth, newHeight := maxDimension, maxDimension
	if width > height {
		newHeight = max(1, height*maxDimension/width)
	} else {
		newWidth = max(1, width*maxDimension/height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if format == "jpeg" {
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
			return nil, "", false, fmt.Errorf("failed to encode jpeg: %w", err)
		}
		return buf.Bytes(), "image/jpeg", true, nil
	}
	if err := png.Encode(&buf, dst); err != nil {
		return nil, "", false, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), "image/png", true, nil
}
