package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// ErrInvalidReference indicates a reference escaping the storage root.
var ErrInvalidReference = errors.New("invalid file reference")

// Local stores blobs on a filesystem rooted at a base directory. References
// are slash separated paths relative to that root.
type Local struct {
	fs     afero.Fs
	logger zerolog.Logger
	now    func() time.Time
}

// NewLocal builds a local store rooted at dir on the OS filesystem.
func NewLocal(dir string, logger zerolog.Logger) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("local storage path must be provided")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return NewLocalFs(afero.NewBasePathFs(afero.NewOsFs(), dir), logger), nil
}

// NewLocalFs wraps an arbitrary afero filesystem, typically a memory fs in tests.
func NewLocalFs(fs afero.Fs, logger zerolog.Logger) *Local {
	return &Local{
		fs:     fs,
		logger: logger.With().Str("component", "local_storage").Logger(),
		now:    time.Now,
	}
}

// Upload writes the payload under a date partitioned, collision free name.
func (l *Local) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := l.now().UTC().Format("2006/01")
	ref := path.Join(dir, fmt.Sprintf("%s_%s", uuid.NewString()[:8], path.Base(filepath.ToSlash(name))))

	if err := l.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	file, err := l.fs.Create(ref)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		_ = file.Close()
		_ = l.fs.Remove(ref)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}

	l.logger.Debug().Str("ref", ref).Msg("file stored")
	return ref, nil
}

// Delete removes the blob. Missing files are not an error.
func (l *Local) Delete(ctx context.Context, ref string) error {
	clean, err := cleanRef(ref)
	if err != nil {
		return err
	}

	if err := l.fs.Remove(clean); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", clean, err)
	}
	return nil
}

// Open returns a reader for the blob.
func (l *Local) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	clean, err := cleanRef(ref)
	if err != nil {
		return nil, err
	}

	file, err := l.fs.Open(clean)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func cleanRef(ref string) (string, error) {
	ref = strings.TrimSpace(filepath.ToSlash(ref))
	if ref == "" {
		return "", ErrInvalidReference
	}
	clean := path.Clean("/" + ref)
	if clean == "/" {
		return "", ErrInvalidReference
	}
	return strings.TrimPrefix(clean, "/"), nil
}
