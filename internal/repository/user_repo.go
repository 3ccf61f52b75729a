package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/educonnect-api/internal/models"
)

// ProfileUpdate lists the optional profile columns to change.
type ProfileUpdate struct {
	Name         *string
	PasswordHash *string
	ProfilePic   *string
}

// UserRepository provides access to the user directory.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (models.User, error)
	FindForLogin(ctx context.Context, username, role string) (models.User, error)
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, username string, update ProfileUpdate) error
	Rename(ctx context.Context, oldUsername, newUsername string) error
	// Transaction runs fn against a repository bound to one transaction.
	Transaction(ctx context.Context, fn func(users UserRepository) error) error
}

type userRepository struct {
	db          *gorm.DB
	submissions SubmissionRepository
}

// NewUserRepository constructs a user repository. Renames cascade into the
// submission store inside the same transaction.
func NewUserRepository(db *gorm.DB, submissions SubmissionRepository) UserRepository {
	return &userRepository{db: db, submissions: submissions}
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) FindForLogin(ctx context.Context, username, role string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		Where("role = ?", role).
		First(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) UpdateProfile(ctx context.Context, username string, update ProfileUpdate) error {
	columns := map[string]interface{}{}
	if update.Name != nil {
		columns["name"] = *update.Name
	}
	if update.PasswordHash != nil {
		columns["password"] = *update.PasswordHash
	}
	if update.ProfilePic != nil {
		columns["profile_pic"] = *update.ProfilePic
	}
	if len(columns) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) Transaction(ctx context.Context, fn func(users UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&userRepository{db: tx, submissions: r.submissions})
	})
}

// Rename changes the primary key of a user and every solution row and
// submission group referencing it, atomically. Usernames are unique ignoring
// case, matching login; it returns gorm.ErrDuplicatedKey when another account
// already holds the new name in any case.
func (r *userRepository) Rename(ctx context.Context, oldUsername, newUsername string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).
			Where("LOWER(username) = ?", strings.ToLower(newUsername)).
			Where("username <> ?", oldUsername).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return gorm.ErrDuplicatedKey
		}

		result := tx.Model(&models.User{}).Where("username = ?", oldUsername).Update("username", newUsername)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return r.submissions.WithTx(tx).RenameStudent(ctx, oldUsername, newUsername)
	})
}
