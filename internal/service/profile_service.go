package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/educonnect-api/internal/dto"
	"github.com/noah-isme/educonnect-api/internal/models"
	"github.com/noah-isme/educonnect-api/internal/repository"
)

// ProfileService lets users manage their own account.
type ProfileService interface {
	Get(ctx context.Context, username string) (dto.ProfileResponse, error)
	Update(ctx context.Context, actor ActivityActor, req dto.ProfileUpdateRequest, avatar *multipart.FileHeader) (dto.ProfileResponse, error)
}

type profileService struct {
	users     repository.UserRepository
	uploads   UploadService
	auth      AuthService
	validator *validator.Validate
	activity  ActivityRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(users repository.UserRepository, uploads UploadService, auth AuthService, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) ProfileService {
	return &profileService{
		users:     users,
		uploads:   uploads,
		auth:      auth,
		validator: validate,
		activity:  activity,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, username string) (dto.ProfileResponse, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	return dto.ProfileResponse{User: dto.NewUserResponse(user)}, nil
}

// Update validates everything up front, then renames the account (if
// requested) and applies the remaining profile fields in one transaction.
func (s *profileService) Update(ctx context.Context, actor ActivityActor, req dto.ProfileUpdateRequest, avatar *multipart.FileHeader) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProfileResponse{}, err
	}
	if req.Password != req.ConfirmPassword {
		return dto.ProfileResponse{}, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}

	current, err := s.lookup(ctx, actor.Username)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	var update repository.ProfileUpdate
	if req.Name != nil {
		name := strings.TrimSpace(s.sanitizer.Sanitize(*req.Name))
		if name == "" {
			return dto.ProfileResponse{}, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		update.Name = &name
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return dto.ProfileResponse{}, err
		}
		hashed := string(hash)
		update.PasswordHash = &hashed
	}

	var inspected *InspectedFile
	if avatar != nil && strings.TrimSpace(avatar.Filename) != "" {
		file, err := s.uploads.Inspect(ctx, avatar, AvatarPolicy)
		if err != nil {
			return dto.ProfileResponse{}, err
		}
		inspected = &file
	}

	username := current.Username
	renamed := false
	if req.Username != nil {
		if target := strings.TrimSpace(*req.Username); target != "" && target != current.Username {
			username = target
			renamed = true
		}
	}

	// The avatar is stored before anything commits so a blob failure leaves the
	// account untouched; rename and column updates then commit together.
	var previousAvatar string
	if inspected != nil {
		ref, err := s.uploads.Store(ctx, *inspected)
		if err != nil {
			return dto.ProfileResponse{}, err
		}
		update.ProfilePic = &ref
		if current.ProfilePic != nil {
			previousAvatar = *current.ProfilePic
		}
	}

	err = s.users.Transaction(ctx, func(users repository.UserRepository) error {
		if renamed {
			if err := users.Rename(ctx, current.Username, username); err != nil {
				return err
			}
		}
		return users.UpdateProfile(ctx, username, update)
	})
	if err != nil {
		if update.ProfilePic != nil {
			s.uploads.Discard(ctx, *update.ProfilePic)
		}
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return dto.ProfileResponse{}, ErrUsernameTaken
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.ProfileResponse{}, ErrUserNotFound
		default:
			return dto.ProfileResponse{}, err
		}
	}
	if previousAvatar != "" {
		s.uploads.Discard(ctx, previousAvatar)
	}

	if renamed {
		recordActivity(ctx, s.activity, s.logger, ActivityEntry{
			Actor:      username,
			ActorRole:  current.Role,
			Action:     ActionUserRenamed,
			EntityType: "user",
			EntityID:   username,
			Metadata:   map[string]interface{}{"from": current.Username},
		})
	}

	user, err := s.lookup(ctx, username)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	response := dto.ProfileResponse{User: dto.NewUserResponse(user)}
	if renamed {
		token, expiresAt, err := s.auth.IssueToken(user)
		if err != nil {
			return dto.ProfileResponse{}, err
		}
		response.Token = &token
		response.ExpiresAt = &expiresAt
	}

	return response, nil
}

func (s *profileService) lookup(ctx context.Context, username string) (models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
