package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/educonnect-api/internal/dto"
	"github.com/noah-isme/educonnect-api/internal/models"
	"github.com/noah-isme/educonnect-api/internal/observability"
	"github.com/noah-isme/educonnect-api/internal/repository"
)

// SubmissionService manages the student side of the submission store.
type SubmissionService interface {
	Create(ctx context.Context, actor ActivityActor, paperID uint, files []*multipart.FileHeader) (dto.SubmissionCreateResponse, error)
	ListGroup(ctx context.Context, groupID string) ([]models.Solution, error)
	GroupPage(ctx context.Context, groupID string, page int) (dto.GroupPageResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	papers      repository.PaperRepository
	uploads     UploadService
	activity    ActivityRecorder
	events      EventPublisher
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, papers repository.PaperRepository, uploads UploadService, activity ActivityRecorder, events EventPublisher, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		papers:      papers,
		uploads:     uploads,
		activity:    activity,
		events:      events,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/educonnect-api/internal/service/submission"),
		now:         time.Now,
	}
}

// Create validates every file, stores them and inserts the group with one
// row per file. Nothing is persisted unless every file is accepted.
func (s *submissionService) Create(ctx context.Context, actor ActivityActor, paperID uint, files []*multipart.FileHeader) (dto.SubmissionCreateResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.create")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("submission.paper_id", int64(paperID)),
		attribute.String("submission.student", actor.Username),
	)

	named := make([]*multipart.FileHeader, 0, len(files))
	for _, file := range files {
		if file != nil && strings.TrimSpace(file.Filename) != "" {
			named = append(named, file)
		}
	}
	span.SetAttributes(attribute.Int("submission.files", len(named)))

	if _, err := s.papers.GetByID(ctx, paperID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "paper_not_found")
			return dto.SubmissionCreateResponse{}, ErrPaperNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "paper_lookup_failed")
		return dto.SubmissionCreateResponse{}, err
	}

	exists, err := s.submissions.ExistsForPaperAndStudent(ctx, paperID, actor.Username)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "duplicate_check_failed")
		return dto.SubmissionCreateResponse{}, err
	}
	if exists {
		span.SetStatus(codes.Error, "duplicate")
		return dto.SubmissionCreateResponse{}, ErrDuplicateSubmission
	}

	if len(named) == 0 {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionCreateResponse{}, ErrUploadMissing
	}

	inspected := make([]InspectedFile, 0, len(named))
	for _, file := range named {
		result, err := s.uploads.Inspect(ctx, file, SolutionImagePolicy)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "validation_failed")
			return dto.SubmissionCreateResponse{}, err
		}
		inspected = append(inspected, result)
	}

	refs := make([]string, 0, len(inspected))
	for _, file := range inspected {
		ref, err := s.uploads.Store(ctx, file)
		if err != nil {
			s.uploads.Discard(ctx, refs...)
			span.RecordError(err)
			span.SetStatus(codes.Error, "storage_failed")
			return dto.SubmissionCreateResponse{}, fmt.Errorf("store %s: %w", file.OriginalName, err)
		}
		refs = append(refs, ref)
	}

	group := models.SubmissionGroup{
		ID:              uuid.NewString(),
		PaperID:         paperID,
		StudentUsername: actor.Username,
		SubmittedAt:     s.now().Truncate(time.Minute),
	}
	rows := make([]models.Solution, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, models.Solution{Filename: ref})
	}

	if err := s.submissions.CreateGroup(ctx, &group, rows); err != nil {
		s.uploads.Discard(ctx, refs...)
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			span.SetStatus(codes.Error, "duplicate")
			return dto.SubmissionCreateResponse{}, ErrDuplicateSubmission
		case errors.Is(err, repository.ErrGroupPaperMissing):
			span.SetStatus(codes.Error, "paper_not_found")
			return dto.SubmissionCreateResponse{}, ErrPaperNotFound
		case errors.Is(err, repository.ErrGroupStudentMissing):
			span.SetStatus(codes.Error, "student_not_found")
			return dto.SubmissionCreateResponse{}, ErrUserNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence_failed")
		return dto.SubmissionCreateResponse{}, err
	}

	observability.SubmissionsCreated().Inc()
	span.SetAttributes(attribute.String("submission.group_id", group.ID))

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor.Username,
		ActorRole:  actor.Role,
		Action:     ActionSubmissionCreated,
		EntityType: "submission",
		EntityID:   group.ID,
		Metadata: map[string]interface{}{
			"paper_id": paperID,
			"files":    len(rows),
		},
	})
	publishEvent(ctx, s.events, Event{
		Type:     EventSubmissionCreated,
		Actor:    actor.Username,
		EntityID: group.ID,
		Payload: map[string]interface{}{
			"paper_id": paperID,
			"student":  actor.Username,
			"files":    len(rows),
		},
	})

	s.logger.Info().
		Str("group_id", group.ID).
		Uint("paper_id", paperID).
		Str("student", actor.Username).
		Int("files", len(rows)).
		Msg("submission group created")

	return dto.SubmissionCreateResponse{
		GroupID:     group.ID,
		PaperID:     paperID,
		Files:       len(rows),
		SubmittedAt: group.SubmittedAt,
	}, nil
}

func (s *submissionService) ListGroup(ctx context.Context, groupID string) ([]models.Solution, error) {
	rows, err := s.submissions.ListGroup(ctx, strings.TrimSpace(groupID))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrSubmissionNotFound
	}
	return rows, nil
}

func (s *submissionService) GroupPage(ctx context.Context, groupID string, page int) (dto.GroupPageResponse, error) {
	rows, err := s.ListGroup(ctx, groupID)
	if err != nil {
		return dto.GroupPageResponse{}, err
	}

	page = ClampPage(page, len(rows))
	row := rows[page-1]

	return dto.GroupPageResponse{
		GroupID:         row.GroupKey(),
		PaperID:         row.PaperID,
		StudentUsername: row.StudentUsername,
		SubmittedAt:     row.SubmittedAt,
		Page:            page,
		TotalPages:      len(rows),
		File:            row.Filename,
		Grading:         row.Grading,
	}, nil
}

// ClampPage moves page into [1, count]. It returns 0 only when count is 0.
func ClampPage(page, count int) int {
	if count <= 0 {
		return 0
	}
	if page < 1 {
		return 1
	}
	if page > count {
		return count
	}
	return page
}
