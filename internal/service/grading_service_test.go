package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educonnect-api/internal/dto"
	"github.com/noah-isme/educonnect-api/internal/models"
	"github.com/noah-isme/educonnect-api/internal/repository"
)

func TestParseGradeFormIsLenient(t *testing.T) {
	grading := ParseGradeForm(dto.GradeRequest{
		TotalQuestions: "10",
		Attempted:      " 9 ",
		Correct:        "four",
		TotalMarks:     "100",
		ObtainedMarks:  "NaN",
		PassingMarks:   "",
	})

	require.Equal(t, 10, *grading.TotalQuestions)
	require.Equal(t, 9, *grading.Attempted)
	require.Equal(t, 0, *grading.Correct)
	require.Equal(t, 0, *grading.Incorrect)
	require.Equal(t, 100.0, *grading.TotalMarks)
	require.Equal(t, 0.0, *grading.ObtainedMarks)
	require.Equal(t, 0.0, *grading.PassingMarks)
	require.Equal(t, models.ResultPass, *grading.ResultStatus, "0 >= 0 passes")
}

func TestDeriveStatus(t *testing.T) {
	require.Equal(t, models.ResultPass, DeriveStatus(50, 50))
	require.Equal(t, models.ResultPass, DeriveStatus(50.5, 50))
	require.Equal(t, models.ResultFail, DeriveStatus(49.99, 50))
}

func TestGradingServiceRegradeFlipsStatusAcrossGroup(t *testing.T) {
	db := newTestDB(t)
	submissions := repository.NewSubmissionRepository(db)
	activity := &memoryActivityRepo{}
	svc := NewGradingService(submissions, NewActivityService(activity, testLogger()), nil, testLogger())

	paper := seedPaper(t, db, "paper-7")
	seedUser(t, db, "alice", "alice", models.RoleStudent, "Alice")
	group := models.SubmissionGroup{ID: "group-alice", PaperID: paper.ID, StudentUsername: "alice", SubmittedAt: time.Now()}
	require.NoError(t, submissions.CreateGroup(context.Background(), &group, []models.Solution{{Filename: "1.png"}, {Filename: "2.png"}, {Filename: "3.png"}}))

	actor := ActivityActor{Username: "admin", Role: models.RoleTeacher}
	resp, err := svc.Grade(context.Background(), actor, group.ID, dto.GradeRequest{TotalMarks: "100", ObtainedMarks: "42", PassingMarks: "50"})
	require.NoError(t, err)
	require.Equal(t, models.ResultFail, resp.ResultStatus)
	require.Equal(t, int64(3), resp.UpdatedRows)
	assertUniformStatus(t, submissions, group.ID, models.ResultFail, 42)

	resp, err = svc.Grade(context.Background(), actor, group.ID, dto.GradeRequest{TotalMarks: "100", ObtainedMarks: "60", PassingMarks: "50"})
	require.NoError(t, err)
	require.Equal(t, models.ResultPass, resp.ResultStatus)
	assertUniformStatus(t, submissions, group.ID, models.ResultPass, 60)

	require.Equal(t, []string{ActionSubmissionGraded, ActionSubmissionGraded}, activity.actions())
}

func TestGradingServiceUnknownGroupIsNoop(t *testing.T) {
	db := newTestDB(t)
	activity := &memoryActivityRepo{}
	svc := NewGradingService(repository.NewSubmissionRepository(db), NewActivityService(activity, testLogger()), nil, testLogger())

	resp, err := svc.Grade(context.Background(), ActivityActor{Username: "admin", Role: models.RoleTeacher}, "missing", dto.GradeRequest{ObtainedMarks: "70", PassingMarks: "50"})
	require.NoError(t, err)
	require.Equal(t, models.ResultPass, resp.ResultStatus)
	require.Zero(t, resp.UpdatedRows)
	require.Empty(t, activity.entries)
}

func assertUniformStatus(t *testing.T, repo repository.SubmissionRepository, groupID, status string, obtained float64) {
	t.Helper()
	rows, err := repo.ListGroup(context.Background(), groupID)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	for _, row := range rows {
		require.Equal(t, rows[0].Grading, row.Grading)
		require.Equal(t, status, *row.Grading.ResultStatus)
		require.Equal(t, obtained, *row.Grading.ObtainedMarks)
	}
}
