package b2

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kurin/blazer/b2"
	"github.com/rs/zerolog"
)

// Config holds Backblaze B2 credentials.
type Config struct {
	KeyID  string
	AppKey string
	Bucket string
}

// Storage keeps uploads in a public B2 bucket. References are the public
// download URLs of the objects.
type Storage struct {
	bucket *b2.Bucket
	prefix string
	logger zerolog.Logger
}

// New authorises against B2 and resolves the bucket.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Storage, error) {
	if cfg.KeyID == "" || cfg.AppKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("b2 credentials must be provided")
	}

	client, err := b2.NewClient(ctx, cfg.KeyID, cfg.AppKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create b2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &Storage{
		bucket: bucket,
		prefix: fmt.Sprintf("%s/file/%s/", strings.TrimRight(bucket.BaseURL(), "/"), bucket.Name()),
		logger: logger.With().Str("component", "b2").Logger(),
	}, nil
}

// Upload writes the object and returns its public URL.
func (s *Storage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	key := objectKey(name, time.Now())

	w := s.bucket.Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, reader); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	s.logger.Info().Str("key", key).Msg("file uploaded to b2")
	return s.prefix + key, nil
}

// Delete removes the object behind a URL returned by Upload.
func (s *Storage) Delete(ctx context.Context, ref string) error {
	key, err := s.keyFromRef(ref)
	if err != nil {
		return err
	}

	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Open streams the object through the API.
func (s *Storage) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	key, err := s.keyFromRef(ref)
	if err != nil {
		return nil, err
	}

	return s.bucket.Object(key).NewReader(ctx), nil
}

func (s *Storage) keyFromRef(ref string) (string, error) {
	return keyFromRef(s.prefix, ref)
}

func keyFromRef(prefix, ref string) (string, error) {
	if !strings.HasPrefix(ref, prefix) {
		return "", fmt.Errorf("reference %q is not stored in this bucket", ref)
	}
	key := strings.TrimPrefix(ref, prefix)
	if key == "" {
		return "", fmt.Errorf("reference %q has no object key", ref)
	}
	return key, nil
}

func objectKey(name string, now time.Time) string {
	base := path.Base(filepath.ToSlash(strings.TrimSpace(name)))
	if base == "." || base == "/" {
		base = "upload.bin"
	}
	return path.Join(now.UTC().Format("2006/01"), uuid.NewString()[:8]+"_"+base)
}
