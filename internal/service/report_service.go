package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/educonnect-api/internal/report"
	"github.com/noah-isme/educonnect-api/internal/repository"
)

// RenderedReport is a generated PDF ready to be sent to the client.
type RenderedReport struct {
	Filename string
	Content  []byte
}

// ReportService produces graded submission reports.
type ReportService interface {
	Generate(ctx context.Context, actor ActivityActor, groupID string) (RenderedReport, error)
}

type reportService struct {
	submissions repository.SubmissionRepository
	papers      repository.PaperRepository
	users       repository.UserRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(submissions repository.SubmissionRepository, papers repository.PaperRepository, users repository.UserRepository, logger zerolog.Logger) ReportService {
	return &reportService{
		submissions: submissions,
		papers:      papers,
		users:       users,
		logger:      logger.With().Str("component", "report_service").Logger(),
		now:         time.Now,
	}
}

func (s *reportService) Generate(ctx context.Context, actor ActivityActor, groupID string) (RenderedReport, error) {
	rows, err := s.submissions.ListGroup(ctx, groupID)
	if err != nil {
		return RenderedReport{}, err
	}
	groups := GroupSubmissions(rows)
	if len(groups) == 0 {
		return RenderedReport{}, ErrSubmissionNotFound
	}
	group := groups[0]

	if !actor.IsTeacher() && group.StudentUsername != actor.Username {
		return RenderedReport{}, ErrForbidden
	}
	if !group.Graded() {
		return RenderedReport{}, ErrReportNotReady
	}

	title := unknownPaperTitle
	paper, err := s.papers.GetByID(ctx, group.PaperID)
	switch {
	case err == nil:
		title = paper.Title
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return RenderedReport{}, err
	}

	studentName := group.StudentUsername
	student, err := s.users.GetByUsername(ctx, group.StudentUsername)
	switch {
	case err == nil:
		studentName = displayName(student)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return RenderedReport{}, err
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, report.Data{
		StudentName: studentName,
		PaperTitle:  title,
		GeneratedAt: s.now(),
		Grading:     group.Grading,
	}); err != nil {
		s.logger.Error().Err(err).Str("group_id", groupID).Msg("failed to render report")
		return RenderedReport{}, err
	}

	return RenderedReport{
		Filename: fmt.Sprintf("report_%s.pdf", group.Key),
		Content:  buf.Bytes(),
	}, nil
}
