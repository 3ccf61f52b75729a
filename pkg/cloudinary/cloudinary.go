package cloudinary

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service stores papers, solution pages and avatars on Cloudinary.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		folder: cfg.Folder,
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload sends the file to Cloudinary and returns a secure URL.
func (s *Service) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	folder := strings.Trim(s.folder, "/")
	publicID := buildPublicID(name)

	params := uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("file uploaded to cloudinary")

	return result.SecureURL, nil
}

// Delete destroys the asset behind a secure URL previously returned by Upload.
func (s *Service) Delete(ctx context.Context, ref string) error {
	resourceType, publicID, err := parseAssetURL(ref)
	if err != nil {
		return err
	}

	result, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to destroy asset: %w", err)
	}

	s.logger.Info().Str("public_id", publicID).Str("result", result.Result).Msg("file removed from cloudinary")
	return nil
}

// parseAssetURL splits a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1712/folder/name.png into its
// resource type and public id.
func parseAssetURL(ref string) (string, string, error) {
	parsed, err := url.Parse(ref)
	if err != nil || parsed.Host == "" {
		return "", "", fmt.Errorf("not a cloudinary url: %q", ref)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	idx := -1
	for i, segment := range segments {
		if segment == "upload" && i > 0 {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(segments) {
		return "", "", fmt.Errorf("not a cloudinary url: %q", ref)
	}

	resourceType := segments[idx-1]
	rest := segments[idx+1:]
	if len(rest) > 1 && isVersionSegment(rest[0]) {
		rest = rest[1:]
	}

	publicID := strings.Join(rest, "/")
	publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	if publicID == "" {
		return "", "", fmt.Errorf("not a cloudinary url: %q", ref)
	}

	return resourceType, publicID, nil
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// buildPublicID turns an upload name into a lowercase slug with a short random
// suffix, so two students uploading "page1.png" never collide.
func buildPublicID(name string) string {
	base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	var b strings.Builder
	dash := false
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "upload"
	}

	return slug + "-" + uuid.NewString()[:8]
}
