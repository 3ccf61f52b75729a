package service

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/educonnect-api/internal/dto"
	"github.com/noah-isme/educonnect-api/internal/models"
	"github.com/noah-isme/educonnect-api/internal/repository"
)

func TestProfileServiceRenameCascadesAndReissuesToken(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice", "alice", models.RoleStudent, "Alice")
	seedUser(t, db, "bob", "bob", models.RoleStudent, "Bob")

	submissionsRepo := repository.NewSubmissionRepository(db)
	papersRepo := repository.NewPaperRepository(db, submissionsRepo)
	users := repository.NewUserRepository(db, submissionsRepo)
	uploads, _ := newMemoryUploads(t, 5)
	activity := &memoryActivityRepo{}
	recorder := NewActivityService(activity, testLogger())
	validate := validator.New()
	auth := NewAuthService(users, validate, "secret", time.Hour, testLogger())
	profiles := NewProfileService(users, uploads, auth, validate, recorder, testLogger())
	submissions := NewSubmissionService(submissionsRepo, papersRepo, uploads, recorder, nil, testLogger())

	paper := seedPaper(t, db, "seven")
	created, err := submissions.Create(context.Background(), alice(), paper.ID, []*multipart.FileHeader{buildFileHeader(t, "p1.png", pngHeader)})
	require.NoError(t, err)

	taken := "bob"
	_, err = profiles.Update(context.Background(), alice(), dto.ProfileUpdateRequest{Username: &taken}, nil)
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = profiles.Update(context.Background(), alice(), dto.ProfileUpdateRequest{Password: "newpass", ConfirmPassword: "other"}, nil)
	require.ErrorIs(t, err, ErrValidation)

	target := "alice2"
	name := "Alice Liddell"
	resp, err := profiles.Update(context.Background(), alice(), dto.ProfileUpdateRequest{
		Username:        &target,
		Name:            &name,
		Password:        "newpass",
		ConfirmPassword: "newpass",
	}, buildFileHeader(t, "me.png", pngHeader))
	require.NoError(t, err)
	require.Equal(t, "alice2", resp.User.Username)
	require.Equal(t, "Alice Liddell", resp.User.Name)
	require.NotNil(t, resp.User.ProfilePic)
	require.NotNil(t, resp.Token)

	rows, err := submissions.ListGroup(context.Background(), created.GroupID)
	require.NoError(t, err)
	require.Equal(t, "alice2", rows[0].StudentUsername)

	var stored models.User
	require.NoError(t, db.First(&stored, "username = ?", "alice2").Error)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("newpass")))

	_, err = profiles.Get(context.Background(), "alice")
	require.ErrorIs(t, err, ErrUserNotFound)

	require.Contains(t, activity.actions(), ActionUserRenamed)
}

type unavailableStorage struct{}

func (unavailableStorage) Upload(context.Context, string, io.Reader) (string, error) {
	return "", errors.New("blob store unavailable")
}

func (unavailableStorage) Delete(context.Context, string) error { return nil }

func TestProfileServiceAvatarFailureLeavesAccountUntouched(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice", "alice", models.RoleStudent, "Alice")

	submissionsRepo := repository.NewSubmissionRepository(db)
	users := repository.NewUserRepository(db, submissionsRepo)
	activity := &memoryActivityRepo{}
	validate := validator.New()
	auth := NewAuthService(users, validate, "secret", time.Hour, testLogger())
	uploads := NewUploadService(unavailableStorage{}, 5, testLogger())
	profiles := NewProfileService(users, uploads, auth, validate, NewActivityService(activity, testLogger()), testLogger())

	target := "alice2"
	name := "Alice Liddell"
	_, err := profiles.Update(context.Background(), alice(), dto.ProfileUpdateRequest{
		Username:        &target,
		Name:            &name,
		Password:        "newpass",
		ConfirmPassword: "newpass",
	}, buildFileHeader(t, "me.png", pngHeader))
	require.Error(t, err)

	current, err := profiles.Get(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "Alice", current.User.Name)
	require.Nil(t, current.User.ProfilePic)

	_, err = profiles.Get(context.Background(), "alice2")
	require.ErrorIs(t, err, ErrUserNotFound)

	stored, err := users.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("alice")))
	require.Empty(t, activity.actions())
}
