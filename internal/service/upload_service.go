package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/educonnect-api/internal/observability"
)

var (
	// ErrUploadMissing indicates no file was attached.
	ErrUploadMissing = fmt.Errorf("%w: no file selected", ErrValidation)
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = fmt.Errorf("%w: file exceeds maximum allowed size", ErrValidation)
	// ErrUploadTypeNotAllowed indicates the extension or content type is not permitted.
	ErrUploadTypeNotAllowed = fmt.Errorf("%w: file type not allowed", ErrValidation)
)

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// FileOpener is implemented by stores that can stream blobs back.
type FileOpener interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// UploadPolicy lists the extensions and sniffed content types accepted for a
// kind of upload.
type UploadPolicy struct {
	Name       string
	Extensions []string
	MIMETypes  []string
}

// Upload policies.
var (
	SolutionImagePolicy = UploadPolicy{
		Name:       "solution",
		Extensions: []string{".jpg", ".jpeg", ".png"},
		MIMETypes:  []string{"image/jpeg", "image/png"},
	}
	PaperPolicy = UploadPolicy{
		Name:       "paper",
		Extensions: []string{".pdf"},
		MIMETypes:  []string{"application/pdf"},
	}
	AvatarPolicy = UploadPolicy{
		Name:       "avatar",
		Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
		MIMETypes:  []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	}
)

func (p UploadPolicy) allowsExtension(ext string) bool {
	for _, allowed := range p.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func (p UploadPolicy) allowsMIME(m *mimetype.MIME) bool {
	for _, allowed := range p.MIMETypes {
		if m.Is(allowed) {
			return true
		}
	}
	return false
}

// InspectedFile is an upload that passed inspection and is ready to store.
type InspectedFile struct {
	OriginalName string
	Name         string
	MIMEType     string
	SizeBytes    int64
	Checksum     string
	payload      []byte
}

// UploadService inspects, stores and removes uploaded files.
type UploadService interface {
	Inspect(ctx context.Context, file *multipart.FileHeader, policy UploadPolicy) (InspectedFile, error)
	Store(ctx context.Context, file InspectedFile) (string, error)
	Discard(ctx context.Context, refs ...string)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

type uploadService struct {
	storage FileStorage
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewUploadService constructs an upload service.
func NewUploadService(storage FileStorage, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &uploadService{
		storage: storage,
		logger:  logger.With().Str("component", "upload_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/noah-isme/educonnect-api/internal/service/upload"),
	}
}

func (s *uploadService) Inspect(ctx context.Context, file *multipart.FileHeader, policy UploadPolicy) (InspectedFile, error) {
	_, span := s.tracer.Start(ctx, "upload.inspect")
	defer span.End()

	span.SetAttributes(
		attribute.String("upload.policy", policy.Name),
		attribute.Int64("upload.max_bytes", s.maxSize),
	)

	if file == nil || strings.TrimSpace(file.Filename) == "" {
		span.SetStatus(codes.Error, "validation failed")
		return InspectedFile{}, ErrUploadMissing
	}
	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !policy.allowsExtension(ext) {
		return InspectedFile{}, s.reject(span, "extension", fmt.Errorf("%w: %s", ErrUploadTypeNotAllowed, file.Filename))
	}

	if file.Size > s.maxSize {
		return InspectedFile{}, s.reject(span, "size", ErrUploadTooLarge)
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return InspectedFile{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return InspectedFile{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		return InspectedFile{}, s.reject(span, "size", ErrUploadTooLarge)
	}

	detected := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("upload.detected_mime", detected.String()))
	if !policy.allowsMIME(detected) {
		return InspectedFile{}, s.reject(span, "type", fmt.Errorf("%w: %s", ErrUploadTypeNotAllowed, file.Filename))
	}

	checksum := sha256.Sum256(buf.Bytes())
	sanitizedName := sanitizeFileName(file.Filename)
	span.SetAttributes(
		attribute.String("upload.sanitized_name", sanitizedName),
		attribute.Int64("upload.size_bytes", int64(buf.Len())),
	)

	return InspectedFile{
		OriginalName: file.Filename,
		Name:         sanitizedName,
		MIMEType:     detected.String(),
		SizeBytes:    int64(buf.Len()),
		Checksum:     hex.EncodeToString(checksum[:]),
		payload:      buf.Bytes(),
	}, nil
}

func (s *uploadService) Store(ctx context.Context, file InspectedFile) (string, error) {
	ctx, span := s.tracer.Start(ctx, "upload.store")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	ref, err := s.storage.Upload(ctx, file.Name, bytes.NewReader(file.payload))
	if err != nil {
		return "", s.reject(span, "storage", err)
	}

	span.SetStatus(codes.Ok, "stored")
	s.logger.Debug().Str("ref", ref).Str("checksum", file.Checksum).Int64("size", file.SizeBytes).Msg("file stored")
	return ref, nil
}

// Discard removes blobs best effort; failures are logged only.
func (s *uploadService) Discard(ctx context.Context, refs ...string) {
	for _, ref := range refs {
		if strings.TrimSpace(ref) == "" {
			continue
		}
		if err := s.storage.Delete(ctx, ref); err != nil {
			s.logger.Warn().Err(err).Str("ref", ref).Msg("failed to delete stored file")
		}
	}
}

func (s *uploadService) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	opener, ok := s.storage.(FileOpener)
	if !ok {
		return nil, ErrFileNotFound
	}

	reader, err := opener.Open(ctx, ref)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return reader, nil
}

func (s *uploadService) reject(span trace.Span, reason string, err error) error {
	observability.UploadRejected().WithLabelValues(reason).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	return err
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(filepath.ToSlash(name)), filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}
