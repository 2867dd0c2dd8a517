// Package imageutil validates, normalizes and inspects the photos that flow
// through the styling workflow.
package imageutil

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WEBP decoder
)

// DefaultMaxDimension is the longest edge of a normalized upload.
const DefaultMaxDimension = 1024

// JPEGQuality is the encoder quality for normalized uploads.
const JPEGQuality = 85

// MaxPixels caps the declared width*height of any decoded image.
const MaxPixels = 50_000_000

// ErrUnsupportedFormat is returned for images outside JPEG, PNG and WEBP.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrTooManyPixels is returned when an image header declares more than
// MaxPixels pixels.
var ErrTooManyPixels = errors.New("image dimensions too large")

var allowedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"webp": true,
}

// Validate fully decodes data and returns its format name ("jpeg", "png",
// "webp"). Header sniffing alone is not enough: a truncated payload must fail.
func Validate(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty image data")
	}
	_, format, err := decode(data)
	if err != nil {
		return "", err
	}
	return format, nil
}

// decode reads the header first so oversized or unsupported images are
// rejected before any pixel buffer is allocated.
func decode(data []byte) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if !allowedFormats[format] {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// MIMEType maps a decoder format name to its MIME type.
func MIMEType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// DecodeBase64 decodes a base64 image string. A leading data URL header
// ("data:image/png;base64,") is stripped.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx == -1 {
			return nil, errors.New("malformed data URL")
		}
		s = s[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image: %w", err)
	}
	return data, nil
}

// Normalize decodes an upload, flattens transparency onto white, downscales it
// so the longest edge is at most maxDimension, and re-encodes it as JPEG.
// Images already within bounds are re-encoded without resizing.
func Normalize(data []byte, maxDimension int) ([]byte, error) {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}

	src, format, err := decode(data)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	origWidth, origHeight := bounds.Dx(), bounds.Dy()
	newWidth, newHeight := ScaledDimensions(origWidth, origHeight, maxDimension)

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if newWidth == origWidth && newHeight == origHeight {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image as JPEG: %w", err)
	}

	log.Debug().
		Str("format", format).
		Int("orig_width", origWidth).
		Int("orig_height", origHeight).
		Int("new_width", newWidth).
		Int("new_height", newHeight).
		Int("output_size", buf.Len()).
		Msg("Image normalized")

	return buf.Bytes(), nil
}

// ScaledDimensions returns dimensions that fit within maxDimension while
// keeping the aspect ratio. Smaller images are returned unchanged.
func ScaledDimensions(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}

	if width > height {
		newHeight := int(float64(height) * float64(maxDimension) / float64(width))
		return maxDimension, max(newHeight, 1)
	}

	newWidth := int(float64(width) * float64(maxDimension) / float64(height))
	return max(newWidth, 1), maxDimension
}
