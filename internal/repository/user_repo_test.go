package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/educonnect-api/internal/models"
)

func TestUserRepositoryRenameCascades(t *testing.T) {
	db := newTestDB(t)
	submissions := NewSubmissionRepository(db)
	repo := NewUserRepository(db, submissions)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "alice", Password: "x", Role: models.RoleStudent, Name: "Alice"}))
	require.NoError(t, repo.Create(ctx, &models.User{Username: "bob", Password: "x", Role: models.RoleStudent, Name: "Bob"}))
	paper := seedPaper(t, db, "maths")
	group := createGroup(t, db, submissions, paper.ID, "alice", "1.png", "2.png")

	require.ErrorIs(t, repo.Rename(ctx, "alice", "bob"), gorm.ErrDuplicatedKey)
	require.ErrorIs(t, repo.Rename(ctx, "alice", "BOB"), gorm.ErrDuplicatedKey)
	require.ErrorIs(t, repo.Rename(ctx, "nobody", "someone"), gorm.ErrRecordNotFound)

	require.NoError(t, repo.Rename(ctx, "alice", "alice2"))

	_, err := repo.GetByUsername(ctx, "alice")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	renamed, err := repo.GetByUsername(ctx, "alice2")
	require.NoError(t, err)
	require.Equal(t, "Alice", renamed.Name)

	rows, err := submissions.ListGroup(ctx, group.ID)
	require.NoError(t, err)
	for _, row := range rows {
		require.Equal(t, "alice2", row.StudentUsername)
	}

	var stored models.SubmissionGroup
	require.NoError(t, db.First(&stored, "id = ?", group.ID).Error)
	require.Equal(t, "alice2", stored.StudentUsername)
}

func TestUserRepositoryFindForLoginIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, NewSubmissionRepository(db))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "Rakhi", Password: "x", Role: models.RoleStudent, Name: "Rakhi"}))

	user, err := repo.FindForLogin(ctx, "rakhi", models.RoleStudent)
	require.NoError(t, err)
	require.Equal(t, "Rakhi", user.Username)

	_, err = repo.FindForLogin(ctx, "rakhi", models.RoleTeacher)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	name := "Rakhi K"
	require.NoError(t, repo.UpdateProfile(ctx, "Rakhi", ProfileUpdate{Name: &name}))
	require.ErrorIs(t, repo.UpdateProfile(ctx, "ghost", ProfileUpdate{Name: &name}), gorm.ErrRecordNotFound)

	students, err := repo.ListByRole(ctx, models.RoleStudent)
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, "Rakhi K", students[0].Name)
}

func TestUserRepositoryRenameAllowsCaseChangeOfOwnName(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, NewSubmissionRepository(db))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "rakhi", Password: "x", Role: models.RoleStudent, Name: "Rakhi"}))
	require.NoError(t, repo.Rename(ctx, "rakhi", "Rakhi"))

	user, err := repo.FindForLogin(ctx, "RAKHI", models.RoleStudent)
	require.NoError(t, err)
	require.Equal(t, "Rakhi", user.Username)
}

func TestUserRepositoryTransactionRollsBackRename(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, NewSubmissionRepository(db))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "alice", Password: "x", Role: models.RoleStudent, Name: "Alice"}))

	name := "Alice Renamed"
	err := repo.Transaction(ctx, func(users UserRepository) error {
		require.NoError(t, users.Rename(ctx, "alice", "alice2"))
		require.NoError(t, users.UpdateProfile(ctx, "alice2", ProfileUpdate{Name: &name}))
		return gorm.ErrInvalidTransaction
	})
	require.ErrorIs(t, err, gorm.ErrInvalidTransaction)

	user, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "Alice", user.Name)
	_, err = repo.GetByUsername(ctx, "alice2")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
