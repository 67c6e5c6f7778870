// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging validates and downsizes uploaded category cover images.
// Covers wider than the configured maximum are scaled down and re-encoded
// as JPEG; smaller covers are stored untouched.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// DefaultCoverWidth is the widest cover the dashboard stores.
	DefaultCoverWidth = 1200

	// coverQuality is the JPEG quality for downsized covers.
	coverQuality = 85

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000
)

// ErrUnsupportedType is returned for uploads that are not a raster image
// the dashboard accepts.
var ErrUnsupportedType = errors.New("imaging: unsupported image type")

// allowedTypes lists the cover formats accepted for upload.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Cover is a processed cover image ready for upload.
type Cover struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Ext returns the file extension matching the cover's content type.
func (c *Cover) Ext() string {
	switch c.ContentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

// ProcessCover sniffs the upload, rejects non-image data and scales
// images wider than maxWidth down to maxWidth, preserving aspect ratio.
func ProcessCover(src []byte, maxWidth int) (*Cover, error) {
	if maxWidth <= 0 {
		maxWidth = DefaultCoverWidth
	}

	contentType := http.DetectContentType(src)
	if !allowedTypes[contentType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	// Decode config first to check dimensions without full decode.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxImagePixels)
	}

	if cfg.Width <= maxWidth {
		return &Cover{Data: src, ContentType: contentType, Width: cfg.Width, Height: cfg.Height}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	newHeight := max(1, int(float64(bounds.Dy())*ratio))

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: coverQuality}); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}

	return &Cover{Data: buf.Bytes(), ContentType: "image/jpeg", Width: maxWidth, Height: newHeight}, nil
}
