package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// MediaStore uploads MMS attachments to a Google Cloud Storage bucket
// and returns publicly addressable URLs for the telephony provider to
// fetch.
type MediaStore struct {
	client *gcs.Client
	bucket string
}

// NewMediaStore creates a media store for the given bucket. An empty
// bucket name disables uploads.
func NewMediaStore(ctx context.Context, bucket string) (*MediaStore, error) {
	if bucket == "" {
		logger.Base().Warn("Media bucket not configured, MMS attachments disabled")
		return &MediaStore{}, nil
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &MediaStore{client: client, bucket: bucket}, nil
}

// Enabled reports whether attachment uploads are configured.
func (s *MediaStore) Enabled() bool {
	return s.client != nil && s.bucket != ""
}

// Upload stores one attachment under a month-partitioned prefix and
// returns its public URL.
func (s *MediaStore) Upload(ctx context.Context, r io.Reader, contentType string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("media storage is not configured")
	}

	object := fmt.Sprintf("mms_attachments/%s/%s", time.Now().Format("2006-01"), uuid.New().String())
	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize attachment: %w", err)
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, object)
	logger.Base().Info("Attachment uploaded", zap.String("url", url))
	return url, nil
}

// Close releases the underlying storage client.
func (s *MediaStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
