package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/educonnect-api/internal/dto"
	"github.com/noah-isme/educonnect-api/internal/models"
	"github.com/noah-isme/educonnect-api/internal/repository"
)

const unknownPaperTitle = "Unknown"

// DashboardService builds the read-side views. Everything is recomputed per
// request from the stores.
type DashboardService interface {
	TeacherDashboard(ctx context.Context) (dto.TeacherDashboardResponse, error)
	Analytics(ctx context.Context) (dto.AnalyticsResponse, error)
	StudentDashboard(ctx context.Context, username string) (dto.StudentDashboardResponse, error)
	StudentResults(ctx context.Context, username string) ([]dto.StudentResultResponse, error)
}

type dashboardService struct {
	papers      repository.PaperRepository
	submissions repository.SubmissionRepository
	users       repository.UserRepository
	logger      zerolog.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(papers repository.PaperRepository, submissions repository.SubmissionRepository, users repository.UserRepository, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		papers:      papers,
		submissions: submissions,
		users:       users,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
	}
}

type lookup struct {
	titles map[uint]string
	names  map[string]string
}

func newLookup(papers []models.Paper, students []models.User) lookup {
	l := lookup{
		titles: make(map[uint]string, len(papers)),
		names:  make(map[string]string, len(students)),
	}
	for _, paper := range papers {
		l.titles[paper.ID] = paper.Title
	}
	for _, student := range students {
		l.names[student.Username] = displayName(student)
	}
	return l
}

func (l lookup) title(paperID uint) string {
	if title, ok := l.titles[paperID]; ok {
		return title
	}
	return unknownPaperTitle
}

func (l lookup) name(username string) string {
	if name, ok := l.names[username]; ok {
		return name
	}
	return username
}

func (l lookup) groupResponse(group GroupView) dto.SubmissionGroupResponse {
	return dto.SubmissionGroupResponse{
		GroupID:         group.Key,
		PaperID:         group.PaperID,
		PaperTitle:      l.title(group.PaperID),
		StudentUsername: group.StudentUsername,
		StudentName:     l.name(group.StudentUsername),
		SubmittedAt:     group.SubmittedAt,
		Files:           group.Files,
		ObtainedMarks:   group.Grading.ObtainedMarks,
		ResultStatus:    group.Grading.ResultStatus,
	}
}

func (l lookup) groupResponses(groups []GroupView) []dto.SubmissionGroupResponse {
	responses := make([]dto.SubmissionGroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, l.groupResponse(group))
	}
	return responses
}

func (s *dashboardService) load(ctx context.Context, filter repository.SubmissionFilter) ([]models.Paper, []models.User, []GroupView, error) {
	papers, err := s.papers.List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	students, err := s.users.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, nil, nil, err
	}

	rows, err := s.submissions.ListRows(ctx, filter)
	if err != nil {
		return nil, nil, nil, err
	}

	return papers, students, GroupSubmissions(rows), nil
}

func (s *dashboardService) TeacherDashboard(ctx context.Context) (dto.TeacherDashboardResponse, error) {
	papers, students, groups, err := s.load(ctx, repository.SubmissionFilter{})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load teacher dashboard")
		return dto.TeacherDashboardResponse{}, err
	}
	names := newLookup(papers, students)

	queue := UngradedQueue(groups)
	graded := len(groups) - len(queue)
	coverage := PaperCoverage(len(papers), groups)

	stats := StudentStatistics(students, groups)
	statResponses := make([]dto.StudentStatResponse, 0, len(stats))
	for _, stat := range stats {
		statResponses = append(statResponses, newStudentStatResponse(stat))
	}

	var best *dto.StudentStatResponse
	if stat := BestStudent(stats); stat != nil {
		response := newStudentStatResponse(*stat)
		best = &response
	}

	byStudent := make([]dto.StudentGroupsResponse, 0)
	position := make(map[string]int)
	for _, group := range groups {
		pos, ok := position[group.StudentUsername]
		if !ok {
			pos = len(byStudent)
			position[group.StudentUsername] = pos
			byStudent = append(byStudent, dto.StudentGroupsResponse{
				Username: group.StudentUsername,
				Name:     names.name(group.StudentUsername),
				Groups:   []dto.SubmissionGroupResponse{},
			})
		}
		byStudent[pos].Groups = append(byStudent[pos].Groups, names.groupResponse(group))
	}

	return dto.TeacherDashboardResponse{
		Papers:        dto.NewPaperResponses(papers),
		UngradedQueue: names.groupResponses(queue),
		Totals: dto.DashboardTotals{
			Papers:           len(papers),
			SolutionGroups:   len(groups),
			GradedGroups:     graded,
			NotGradedGroups:  maxInt(len(groups)-graded, 0),
			Students:         len(students),
			AnsweredPapers:   coverage.Answered,
			UnansweredPapers: coverage.NotAnswered,
		},
		OverallAverage:  OverallAverage(groups),
		StudentStats:    statResponses,
		BestStudent:     best,
		GroupsByStudent: byStudent,
	}, nil
}

func (s *dashboardService) Analytics(ctx context.Context) (dto.AnalyticsResponse, error) {
	papers, students, groups, err := s.load(ctx, repository.SubmissionFilter{})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load analytics")
		return dto.AnalyticsResponse{}, err
	}

	studentAverages := StudentAverages(students, groups)
	studentResponses := make([]dto.StudentAverageResponse, 0, len(studentAverages))
	for _, avg := range studentAverages {
		studentResponses = append(studentResponses, dto.StudentAverageResponse{
			Username:    avg.Username,
			Name:        avg.Name,
			GradedCount: avg.GradedCount,
			Average:     avg.Average,
		})
	}

	paperAverages := PaperAverages(papers, groups)
	paperResponses := make([]dto.PaperAverageResponse, 0, len(paperAverages))
	for _, avg := range paperAverages {
		paperResponses = append(paperResponses, dto.PaperAverageResponse{
			PaperID:     avg.PaperID,
			Title:       avg.Title,
			Groups:      avg.Groups,
			GradedCount: avg.GradedCount,
			Average:     avg.Average,
		})
	}

	return dto.AnalyticsResponse{Students: studentResponses, Papers: paperResponses}, nil
}

func (s *dashboardService) StudentDashboard(ctx context.Context, username string) (dto.StudentDashboardResponse, error) {
	papers, students, groups, err := s.load(ctx, repository.SubmissionFilter{StudentUsername: &username})
	if err != nil {
		s.logger.Error().Err(err).Str("student", username).Msg("failed to load student dashboard")
		return dto.StudentDashboardResponse{}, err
	}
	names := newLookup(papers, students)

	submitted := make(map[uint]struct{})
	submittedIDs := make([]uint, 0)
	for _, group := range groups {
		if _, ok := submitted[group.PaperID]; ok {
			continue
		}
		submitted[group.PaperID] = struct{}{}
		submittedIDs = append(submittedIDs, group.PaperID)
	}

	available := make([]models.Paper, 0, len(papers))
	for _, paper := range papers {
		if _, ok := submitted[paper.ID]; !ok {
			available = append(available, paper)
		}
	}

	return dto.StudentDashboardResponse{
		Papers:            dto.NewPaperResponses(papers),
		Submissions:       names.groupResponses(groups),
		SubmittedPaperIDs: submittedIDs,
		AvailablePapers:   dto.NewPaperResponses(available),
		HasPapersLeft:     len(available) > 0,
	}, nil
}

func (s *dashboardService) StudentResults(ctx context.Context, username string) ([]dto.StudentResultResponse, error) {
	papers, students, groups, err := s.load(ctx, repository.SubmissionFilter{StudentUsername: &username})
	if err != nil {
		s.logger.Error().Err(err).Str("student", username).Msg("failed to load student results")
		return nil, err
	}
	names := newLookup(papers, students)

	results := make([]dto.StudentResultResponse, 0, len(groups))
	for _, group := range groups {
		results = append(results, dto.StudentResultResponse{
			GroupID:     group.Key,
			PaperID:     group.PaperID,
			PaperTitle:  names.title(group.PaperID),
			SubmittedAt: group.SubmittedAt,
			Files:       group.Files,
			Graded:      group.Graded(),
			Grading:     group.Grading,
		})
	}
	return results, nil
}

func newStudentStatResponse(stat StudentStat) dto.StudentStatResponse {
	return dto.StudentStatResponse{
		Username:    stat.Username,
		Name:        stat.Name,
		GradedCount: stat.GradedCount,
		Average:     stat.Average,
	}
}
