package service

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educonnect-api/internal/dto"
	"github.com/noah-isme/educonnect-api/internal/models"
	"github.com/noah-isme/educonnect-api/internal/repository"
)

func TestPaperServiceLifecycle(t *testing.T) {
	db := newTestDB(t)
	submissionsRepo := repository.NewSubmissionRepository(db)
	papersRepo := repository.NewPaperRepository(db, submissionsRepo)
	uploads, fs := newMemoryUploads(t, 5)
	activity := &memoryActivityRepo{}
	recorder := NewActivityService(activity, testLogger())

	papers := NewPaperService(papersRepo, uploads, validator.New(), recorder, nil, testLogger())
	submissions := NewSubmissionService(submissionsRepo, papersRepo, uploads, recorder, nil, testLogger())
	teacher := ActivityActor{Username: "admin", Role: models.RoleTeacher}
	seedUser(t, db, "alice", "alice", models.RoleStudent, "Alice")

	_, err := papers.Upload(context.Background(), teacher, "<b></b>", buildFileHeader(t, "paper.pdf", pdfHeader))
	require.ErrorIs(t, err, ErrValidation)

	_, err = papers.Upload(context.Background(), teacher, "Algebra", buildFileHeader(t, "paper.png", pngHeader))
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)

	created, err := papers.Upload(context.Background(), teacher, "<i>Algebra</i> mid-term", buildFileHeader(t, "paper.pdf", pdfHeader))
	require.NoError(t, err)
	require.Equal(t, "Algebra mid-term", created.Title)
	require.Equal(t, "admin", created.UploadedBy)

	renamed, err := papers.Rename(context.Background(), teacher, created.ID, dto.PaperRenameRequest{Title: "Algebra final"})
	require.NoError(t, err)
	require.Equal(t, "Algebra final", renamed.Title)

	_, err = papers.Rename(context.Background(), teacher, created.ID+50, dto.PaperRenameRequest{Title: "x"})
	require.ErrorIs(t, err, ErrPaperNotFound)

	submitted, err := submissions.Create(context.Background(), alice(), created.ID, []*multipart.FileHeader{
		buildFileHeader(t, "p1.png", pngHeader),
		buildFileHeader(t, "p2.png", pngHeader),
	})
	require.NoError(t, err)
	require.Equal(t, 3, countBlobs(t, fs))

	deleted, err := papers.Delete(context.Background(), teacher, created.ID)
	require.NoError(t, err)
	require.Equal(t, 3, deleted.RemovedFiles)
	require.Zero(t, countBlobs(t, fs))

	_, err = submissions.ListGroup(context.Background(), submitted.GroupID)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
	_, err = submissions.GroupPage(context.Background(), submitted.GroupID, 1)
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	_, err = papers.Delete(context.Background(), teacher, created.ID)
	require.ErrorIs(t, err, ErrPaperNotFound)

	require.Equal(t, []string{ActionPaperUploaded, ActionPaperRenamed, ActionSubmissionCreated, ActionPaperDeleted}, activity.actions())
}
