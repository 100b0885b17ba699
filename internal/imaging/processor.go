// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging processes uploaded images: EXIF auto-orientation,
// re-encoding without metadata, and resized variants.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/notary-go/internal/model"
)

// Result describes one stored image file.
type Result struct {
	Variant  string
	Width    int
	Height   int
	Size     int64
	FilePath string
}

// Processor stores images under uploadDir, one subdirectory per variant and
// object key.
type Processor struct {
	uploadDir string
}

// NewProcessor creates a processor rooted at uploadDir.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{uploadDir: uploadDir}
}

// ProcessOriginal decodes the upload, applies EXIF orientation, re-encodes
// without metadata and stores it under originals/<key>/.
func (p *Processor) ProcessOriginal(data []byte, key, filename string) (*Result, error) {
	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img = applyOrientation(img, exifOrientation(data))

	encoded, err := encode(img, format, 95)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	path, err := p.save(filepath.Join("originals", key), filename, encoded)
	if err != nil {
		return nil, fmt.Errorf("saving original: %w", err)
	}

	bounds := img.Bounds()
	return &Result{
		Variant:  "original",
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Size:     int64(len(encoded)),
		FilePath: path,
	}, nil
}

// CreateVariants derives every configured variant from the stored original.
// A variant is skipped when the source is already smaller than its target;
// individual failures do not stop the remaining variants.
func (p *Processor) CreateVariants(sourcePath, key, filename string) ([]*Result, error) {
	img, err := imaging.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("opening source image: %w", err)
	}
	bounds := img.Bounds()

	var results []*Result
	var errs []string
	for variant, cfg := range model.ImageVariants {
		if bounds.Dx() <= cfg.Width && bounds.Dy() <= cfg.Height && !cfg.Crop {
			continue
		}

		var resized image.Image
		if cfg.Crop {
			resized = imaging.Fill(img, cfg.Width, cfg.Height, imaging.Center, imaging.Lanczos)
		} else {
			resized = imaging.Fit(img, cfg.Width, cfg.Height, imaging.Lanczos)
		}

		encoded, err := encode(resized, formatFromFilename(filename), cfg.Quality)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", variant, err))
			continue
		}
		path, err := p.save(filepath.Join(variant, key), filename, encoded)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", variant, err))
			continue
		}

		rb := resized.Bounds()
		results = append(results, &Result{
			Variant:  variant,
			Width:    rb.Dx(),
			Height:   rb.Dy(),
			Size:     int64(len(encoded)),
			FilePath: path,
		})
	}

	if len(errs) > 0 && len(results) == 0 {
		return nil, fmt.Errorf("all variants failed: %s", strings.Join(errs, "; "))
	}
	return results, nil
}

// DetectMimeType sniffs the MIME type of image data.
func (p *Processor) DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// DeleteFiles removes the original and every variant of one object key.
func (p *Processor) DeleteFiles(key string) error {
	dirs := []string{"originals"}
	for variant := range model.ImageVariants {
		dirs = append(dirs, variant)
	}
	for _, dir := range dirs {
		target := filepath.Join(p.uploadDir, dir, key)
		if err := os.RemoveAll(target); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("deleting %s: %w", target, err)
		}
	}
	return nil
}

// exifOrientation returns the EXIF orientation tag, 1 when unknown.
func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encode writes the image in the given format. WebP sources are re-encoded
// as JPEG since pure Go has no WebP encoder.
func encode(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// detectFormat sniffs the format from raw bytes. TIFF is rejected
// (CVE-2023-36308 in the resize library).
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

func formatFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	default:
		return "jpeg"
	}
}

// save writes image data below uploadDir, refusing path escapes.
func (p *Processor) save(subDir, filename string, data []byte) (string, error) {
	safeName := filepath.Base(filename)
	if safeName == "." || safeName == ".." || safeName == "" {
		return "", fmt.Errorf("invalid filename")
	}

	cleanSub := filepath.Clean(subDir)
	if strings.Contains(cleanSub, "..") || filepath.IsAbs(cleanSub) {
		return "", fmt.Errorf("invalid subdirectory path")
	}

	absBase, err := filepath.Abs(p.uploadDir)
	if err != nil {
		return "", fmt.Errorf("resolving upload directory: %w", err)
	}
	absTarget := filepath.Join(absBase, cleanSub)
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("path traversal detected")
	}

	if err := os.MkdirAll(absTarget, 0755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	path := filepath.Join(absTarget, safeName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return path, nil
}
