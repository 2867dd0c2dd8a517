package imageutil

import (
	"bytes"
	"image"
	"strings"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog"
)

// Info describes an uploaded photo for logging.
type Info struct {
	Format      string
	Width       int
	Height      int
	Bytes       int
	CameraMake  string
	CameraModel string
}

// Inspect reads the image header and, when present, EXIF camera make and
// model. It is best effort: missing metadata leaves fields empty.
func Inspect(data []byte) Info {
	info := Info{Bytes: len(data)}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil {
		info.Format = format
		info.Width = cfg.Width
		info.Height = cfg.Height
	}

	// imagemeta only reads the metadata block, not the pixels.
	if exif, err := imagemeta.Decode(bytes.NewReader(data)); err == nil {
		info.CameraMake = strings.TrimSpace(exif.Make)
		info.CameraModel = strings.TrimSpace(exif.Model)
	}

	return info
}

// MarshalZerologObject lets Info be logged with Object("image", info).
func (i Info) MarshalZerologObject(e *zerolog.Event) {
	e.Str("format", i.Format).
		Int("width", i.Width).
		Int("height", i.Height).
		Int("bytes", i.Bytes)
	if i.CameraMake != "" || i.CameraModel != "" {
		e.Str("camera", strings.TrimSpace(i.CameraMake+" "+i.CameraModel))
	}
}
