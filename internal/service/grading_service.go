package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/educonnect-api/internal/dto"
	"github.com/noah-isme/educonnect-api/internal/models"
	"github.com/noah-isme/educonnect-api/internal/observability"
	"github.com/noah-isme/educonnect-api/internal/repository"
)

// GradingService applies teacher grading to submission groups.
type GradingService interface {
	Grade(ctx context.Context, actor ActivityActor, groupID string, req dto.GradeRequest) (dto.GradeResponse, error)
}

type gradingService struct {
	repo     repository.SubmissionRepository
	activity ActivityRecorder
	events   EventPublisher
	logger   zerolog.Logger
	now      func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(repo repository.SubmissionRepository, activity ActivityRecorder, events EventPublisher, logger zerolog.Logger) GradingService {
	return &gradingService{
		repo:     repo,
		activity: activity,
		events:   events,
		logger:   logger.With().Str("component", "grading_service").Logger(),
		now:      time.Now,
	}
}

// Grade writes the same grading fields to every row of the group. An unknown
// group is a no-op; the derived status is returned either way.
func (s *gradingService) Grade(ctx context.Context, actor ActivityActor, groupID string, req dto.GradeRequest) (dto.GradeResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/educonnect-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.apply")
	defer span.End()

	groupID = strings.TrimSpace(groupID)
	grading := ParseGradeForm(req)
	status := *grading.ResultStatus
	span.SetAttributes(
		attribute.String("grading.group_id", groupID),
		attribute.String("grading.actor", actor.Username),
		attribute.Float64("grading.obtained_marks", *grading.ObtainedMarks),
		attribute.String("grading.status", status),
	)

	affected, err := s.repo.ApplyGrading(ctx, groupID, grading, s.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grading_update_failed")
		return dto.GradeResponse{}, err
	}
	span.SetAttributes(attribute.Int64("grading.rows", affected))

	response := dto.GradeResponse{
		GroupID:      groupID,
		ResultStatus: status,
		UpdatedRows:  affected,
		Grading:      grading,
	}

	if affected == 0 {
		s.logger.Debug().Str("group_id", groupID).Msg("grading skipped for unknown group")
		return response, nil
	}

	observability.SubmissionsGraded().WithLabelValues(status).Inc()
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor.Username,
		ActorRole:  actor.Role,
		Action:     ActionSubmissionGraded,
		EntityType: "submission",
		EntityID:   groupID,
		Metadata: map[string]interface{}{
			"obtained_marks": *grading.ObtainedMarks,
			"passing_marks":  *grading.PassingMarks,
			"result_status":  status,
			"rows":           affected,
		},
	})
	publishEvent(ctx, s.events, Event{
		Type:     EventSubmissionGraded,
		Actor:    actor.Username,
		EntityID: groupID,
		Payload: map[string]interface{}{
			"result_status":  status,
			"obtained_marks": *grading.ObtainedMarks,
		},
	})

	return response, nil
}

// ParseGradeForm converts raw form values into grading fields. Missing or
// malformed numbers become zero.
func ParseGradeForm(req dto.GradeRequest) models.Grading {
	totalQuestions := lenientInt(req.TotalQuestions)
	attempted := lenientInt(req.Attempted)
	correct := lenientInt(req.Correct)
	incorrect := lenientInt(req.Incorrect)
	totalMarks := lenientFloat(req.TotalMarks)
	obtained := lenientFloat(req.ObtainedMarks)
	passing := lenientFloat(req.PassingMarks)
	status := DeriveStatus(obtained, passing)

	return models.Grading{
		TotalQuestions: &totalQuestions,
		Attempted:      &attempted,
		Correct:        &correct,
		Incorrect:      &incorrect,
		TotalMarks:     &totalMarks,
		ObtainedMarks:  &obtained,
		PassingMarks:   &passing,
		ResultStatus:   &status,
	}
}

// DeriveStatus returns PASS when obtained marks reach the passing mark.
func DeriveStatus(obtained, passing float64) string {
	if obtained >= passing {
		return models.ResultPass
	}
	return models.ResultFail
}

func lenientInt(raw dto.GradeValue) int {
	value, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0
	}
	return value
}

func lenientFloat(raw dto.GradeValue) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}
