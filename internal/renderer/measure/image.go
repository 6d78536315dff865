package measure

import (
	"fmt"
	"image"
	"io"

	// Decoders for the formats an inserted image may use.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageInfo is the intrinsic size of an encoded image.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// SniffImage reads just enough of r to report the image format and size.
func SniffImage(r io.Reader) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("sniff image: %w", err)
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// MIMEType returns the media type for the image format.
func (i ImageInfo) MIMEType() string {
	switch i.Format {
	case "":
		return "application/octet-stream"
	default:
		return "image/" + i.Format
	}
}
