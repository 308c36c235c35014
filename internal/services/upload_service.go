package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"salemre/backend/internal/apperrors"
	"salemre/backend/internal/config"
	"salemre/backend/internal/logging"
	"salemre/backend/internal/storage"
)

// IUploadService defines the interface for image uploads.
type IUploadService interface {
	Upload(ctx context.Context, files []UploadFile, actor *Actor) ([]UploadResult, error)
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// UploadFile is one file of a multipart upload.
type UploadFile struct {
	Filename string
	Data     []byte
}

// UploadResult describes a stored upload.
type UploadResult struct {
	URL          string `json:"url"`
	PublicID     string `json:"publicId"`
	OriginalName string `json:"originalname"`
}

type uploadService struct {
	store    storage.FileStore
	tasks    TaskEnqueuer
	maxBytes int64
	log      zerolog.Logger
}

// NewUploadService creates a new UploadService. tasks may be nil.
func NewUploadService(store storage.FileStore, cfg *config.Config, tasks TaskEnqueuer) IUploadService {
	return &uploadService{
		store:    store,
		tasks:    tasks,
		maxBytes: cfg.UploadMaxBytes,
		log:      logging.Component("uploads"),
	}
}

// sniff returns the detected image content type of data, or "" for non-images.
func sniff(data []byte) string {
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return ""
	}
	return ct
}

// Upload checks every file before storing any of them.
func (s *uploadService) Upload(ctx context.Context, files []UploadFile, actor *Actor) ([]UploadResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, apperrors.NewValidationError("no files uploaded")
	}

	var problems []string
	types := make([]string, len(files))
	for i, f := range files {
		if s.maxBytes > 0 && int64(len(f.Data)) > s.maxBytes {
			problems = append(problems, fmt.Sprintf("%s exceeds the %d MB limit", f.Filename, s.maxBytes>>20))
			continue
		}
		if types[i] = sniff(f.Data); types[i] == "" {
			problems = append(problems, fmt.Sprintf("%s is not an image", f.Filename))
		}
	}
	if len(problems) > 0 {
		return nil, apperrors.NewValidationError(problems...)
	}

	results := make([]UploadResult, 0, len(files))
	for i, f := range files {
		publicID, name := storage.NewName(f.Filename)
		url, err := s.store.Put(ctx, name, types[i], f.Data)
		if err != nil {
			return nil, apperrors.NewExternalError("failed to store upload", err)
		}
		results = append(results, UploadResult{URL: url, PublicID: publicID, OriginalName: f.Filename})
		s.log.Info().Str("name", name).Int("bytes", len(f.Data)).Int64("by", actor.UserID).Msg("image uploaded")

		if s.tasks != nil {
			if err := s.tasks.EnqueueThumbnail(ctx, name); err != nil {
				s.log.Error().Err(err).Str("name", name).Msg("failed to enqueue thumbnail")
			}
		}
	}
	return results, nil
}

func (s *uploadService) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if !storage.ValidName(name) {
		return nil, "", apperrors.NewNotFoundError("file not found")
	}
	rc, ct, err := s.store.Open(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", apperrors.NewNotFoundError("file not found")
	}
	if err != nil {
		return nil, "", apperrors.NewExternalError("failed to read upload", err)
	}
	return rc, ct, nil
}
