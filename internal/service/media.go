// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds application services that sit between handlers and
// the store.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/olegiv/notary-go/internal/imaging"
	"github.com/olegiv/notary-go/internal/model"
	"github.com/olegiv/notary-go/internal/store"
)

// MaxUploadSize caps uploads at 5MB.
const MaxUploadSize = 5 * 1024 * 1024

// Upload validation errors, mapped to localized messages at the boundary.
var (
	ErrUploadTooLarge  = fmt.Errorf("file exceeds the %d byte upload limit", MaxUploadSize)
	ErrUnsupportedType = fmt.Errorf("unsupported file type")
	ErrEmptyUpload     = fmt.Errorf("empty upload")
)

// UploadResult is the outcome of a successful upload.
type UploadResult struct {
	Media    store.Media
	Variants []*imaging.Result
}

// MediaService validates, processes and records image uploads.
type MediaService struct {
	queries   *store.Queries
	processor *imaging.Processor
	logger    *slog.Logger
}

// NewMediaService creates a media service storing files under uploadDir.
func NewMediaService(db *sql.DB, uploadDir string, logger *slog.Logger) *MediaService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaService{
		queries:   store.New(db),
		processor: imaging.NewProcessor(uploadDir),
		logger:    logger,
	}
}

// Upload stores one image upload: size and MIME validation, EXIF-safe
// re-encode, variant generation, database record.
func (s *MediaService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, userID int64) (*UploadResult, error) {
	if header.Size > MaxUploadSize {
		return nil, ErrUploadTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	if len(data) > MaxUploadSize {
		return nil, ErrUploadTooLarge
	}

	// Trust the sniffed type, not the client header.
	mimeType := s.processor.DetectMimeType(data)
	if !model.IsSupportedMimeType(mimeType) {
		return nil, ErrUnsupportedType
	}

	key := uuid.New().String()
	filename := sanitizeFilename(header.Filename)

	original, err := s.processor.ProcessOriginal(data, key, filename)
	if err != nil {
		return nil, fmt.Errorf("processing image: %w", err)
	}

	id, err := s.queries.CreateMedia(ctx, store.CreateMediaParams{
		Filename:     filepath.Join(key, filename),
		OriginalName: header.Filename,
		MimeType:     mimeType,
		Size:         original.Size,
		Width:        int64(original.Width),
		Height:       int64(original.Height),
		UploadedBy:   userID,
	})
	if err != nil {
		_ = s.processor.DeleteFiles(key)
		return nil, fmt.Errorf("recording media: %w", err)
	}

	variants, err := s.processor.CreateVariants(original.FilePath, key, filename)
	if err != nil {
		// The original is stored; missing variants are tolerable.
		s.logger.Warn("media variant generation failed", "media_id", id, "error", err)
	}

	media, err := s.queries.GetMedia(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reloading media record: %w", err)
	}

	return &UploadResult{Media: media, Variants: variants}, nil
}

// Delete removes the database record and all stored files.
func (s *MediaService) Delete(ctx context.Context, id int64) error {
	media, err := s.queries.GetMedia(ctx, id)
	if err != nil {
		return err
	}
	if err := s.queries.DeleteMedia(ctx, id); err != nil {
		return err
	}
	key := filepath.Dir(media.Filename)
	if key != "." && key != "" {
		if err := s.processor.DeleteFiles(key); err != nil {
			s.logger.Warn("media file cleanup failed", "media_id", id, "error", err)
		}
	}
	return nil
}

// PublicURL returns the serving path of the stored original.
func PublicURL(m store.Media) string {
	return "/uploads/originals/" + filepath.ToSlash(m.Filename)
}

// VariantURL returns the serving path of a named variant.
func VariantURL(m store.Media, variant string) string {
	return "/uploads/" + variant + "/" + filepath.ToSlash(m.Filename)
}

// sanitizeFilename strips directories and awkward characters from an upload
// name, keeping the extension.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}
