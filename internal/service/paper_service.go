package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/educonnect-api/internal/dto"
	"github.com/noah-isme/educonnect-api/internal/models"
	"github.com/noah-isme/educonnect-api/internal/repository"
)

// PaperService manages the paper catalog.
type PaperService interface {
	List(ctx context.Context) ([]dto.PaperResponse, error)
	Get(ctx context.Context, id uint) (models.Paper, error)
	Upload(ctx context.Context, actor ActivityActor, title string, file *multipart.FileHeader) (dto.PaperResponse, error)
	Rename(ctx context.Context, actor ActivityActor, id uint, req dto.PaperRenameRequest) (dto.PaperResponse, error)
	Delete(ctx context.Context, actor ActivityActor, id uint) (dto.PaperDeleteResponse, error)
}

type paperService struct {
	repo      repository.PaperRepository
	uploads   UploadService
	validator *validator.Validate
	activity  ActivityRecorder
	events    EventPublisher
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPaperService constructs the paper service.
func NewPaperService(repo repository.PaperRepository, uploads UploadService, validate *validator.Validate, activity ActivityRecorder, events EventPublisher, logger zerolog.Logger) PaperService {
	return &paperService{
		repo:      repo,
		uploads:   uploads,
		validator: validate,
		activity:  activity,
		events:    events,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "paper_service").Logger(),
		now:       time.Now,
	}
}

func (s *paperService) List(ctx context.Context) ([]dto.PaperResponse, error) {
	papers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewPaperResponses(papers), nil
}

func (s *paperService) Get(ctx context.Context, id uint) (models.Paper, error) {
	paper, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Paper{}, ErrPaperNotFound
		}
		return models.Paper{}, err
	}
	return paper, nil
}

func (s *paperService) Upload(ctx context.Context, actor ActivityActor, title string, file *multipart.FileHeader) (dto.PaperResponse, error) {
	title, err := s.cleanTitle(title)
	if err != nil {
		return dto.PaperResponse{}, err
	}

	inspected, err := s.uploads.Inspect(ctx, file, PaperPolicy)
	if err != nil {
		return dto.PaperResponse{}, err
	}

	ref, err := s.uploads.Store(ctx, inspected)
	if err != nil {
		return dto.PaperResponse{}, err
	}

	paper := models.Paper{
		Title:      title,
		Filename:   ref,
		UploadedBy: actor.Username,
		UploadedAt: s.now(),
	}
	if err := s.repo.Create(ctx, &paper); err != nil {
		s.uploads.Discard(ctx, ref)
		return dto.PaperResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor.Username,
		ActorRole:  actor.Role,
		Action:     ActionPaperUploaded,
		EntityType: "paper",
		EntityID:   fmt.Sprint(paper.ID),
		Metadata:   map[string]interface{}{"title": paper.Title},
	})

	return dto.NewPaperResponse(paper), nil
}

func (s *paperService) Rename(ctx context.Context, actor ActivityActor, id uint, req dto.PaperRenameRequest) (dto.PaperResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PaperResponse{}, err
	}
	title, err := s.cleanTitle(req.Title)
	if err != nil {
		return dto.PaperResponse{}, err
	}

	if err := s.repo.Rename(ctx, id, title); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaperResponse{}, ErrPaperNotFound
		}
		return dto.PaperResponse{}, err
	}

	paper, err := s.Get(ctx, id)
	if err != nil {
		return dto.PaperResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor.Username,
		ActorRole:  actor.Role,
		Action:     ActionPaperRenamed,
		EntityType: "paper",
		EntityID:   fmt.Sprint(id),
		Metadata:   map[string]interface{}{"title": title},
	})

	return dto.NewPaperResponse(paper), nil
}

// Delete removes the paper with its submission groups, then deletes the
// blobs that are no longer referenced.
func (s *paperService) Delete(ctx context.Context, actor ActivityActor, id uint) (dto.PaperDeleteResponse, error) {
	refs, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaperDeleteResponse{}, ErrPaperNotFound
		}
		return dto.PaperDeleteResponse{}, err
	}

	s.uploads.Discard(ctx, refs...)

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor.Username,
		ActorRole:  actor.Role,
		Action:     ActionPaperDeleted,
		EntityType: "paper",
		EntityID:   fmt.Sprint(id),
		Metadata:   map[string]interface{}{"removed_files": len(refs)},
	})
	publishEvent(ctx, s.events, Event{
		Type:     EventPaperDeleted,
		Actor:    actor.Username,
		EntityID: fmt.Sprint(id),
	})

	return dto.PaperDeleteResponse{ID: id, RemovedFiles: len(refs)}, nil
}

func (s *paperService) cleanTitle(raw string) (string, error) {
	title := strings.TrimSpace(s.sanitizer.Sanitize(raw))
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(title) > 255 {
		return "", fmt.Errorf("%w: title is too long", ErrValidation)
	}
	return title, nil
}
