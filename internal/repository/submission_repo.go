package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/educonnect-api/internal/models"
)

// Errors returned by CreateGroup when the group would reference a missing row.
var (
	ErrGroupPaperMissing   = errors.New("submission references a missing paper")
	ErrGroupStudentMissing = errors.New("submission references a missing student")
)

// SubmissionFilter allows narrowing solution row queries.
type SubmissionFilter struct {
	PaperID         *uint
	StudentUsername *string
}

// SubmissionRepository is the submission store: submission groups and the
// solution rows they own.
type SubmissionRepository interface {
	// WithTx binds the repository to an open transaction owned by the caller.
	WithTx(tx *gorm.DB) SubmissionRepository
	CreateGroup(ctx context.Context, group *models.SubmissionGroup, files []models.Solution) error
	ExistsForPaperAndStudent(ctx context.Context, paperID uint, username string) (bool, error)
	ListGroup(ctx context.Context, groupID string) ([]models.Solution, error)
	ListRows(ctx context.Context, filter SubmissionFilter) ([]models.Solution, error)
	ApplyGrading(ctx context.Context, groupID string, grading models.Grading, gradedAt time.Time) (int64, error)
	DeleteByPaper(ctx context.Context, paperID uint) ([]string, error)
	RenameStudent(ctx context.Context, oldUsername, newUsername string) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) WithTx(tx *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: tx}
}

func (r *submissionRepository) CreateGroup(ctx context.Context, group *models.SubmissionGroup, files []models.Solution) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the referenced rows so a concurrent paper delete or student
		// rename cannot commit between this check and the insert.
		var paper models.Paper
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&paper, group.PaperID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupPaperMissing
			}
			return err
		}

		var student models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("username").
			Where("username = ?", group.StudentUsername).
			First(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupStudentMissing
			}
			return err
		}

		if err := tx.Omit("Files").Create(group).Error; err != nil {
			return err
		}

		for i := range files {
			files[i].GroupID = &group.ID
			files[i].PaperID = group.PaperID
			files[i].StudentUsername = group.StudentUsername
			files[i].SubmittedAt = group.SubmittedAt
		}

		return tx.Create(&files).Error
	})
}

func (r *submissionRepository) ExistsForPaperAndStudent(ctx context.Context, paperID uint, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Solution{}).
		Where("paper_id = ? AND student_username = ?", paperID, username).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *submissionRepository) ListGroup(ctx context.Context, groupID string) ([]models.Solution, error) {
	query := r.db.WithContext(ctx).Model(&models.Solution{})
	if rowID, ok := models.ParseLegacyGroupKey(groupID); ok {
		query = query.Where("id = ? AND submission_group IS NULL", rowID)
	} else {
		query = query.Where("submission_group = ?", groupID)
	}

	var rows []models.Solution
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *submissionRepository) ListRows(ctx context.Context, filter SubmissionFilter) ([]models.Solution, error) {
	query := r.db.WithContext(ctx).Model(&models.Solution{})

	if filter.PaperID != nil {
		query = query.Where("paper_id = ?", *filter.PaperID)
	}

	if filter.StudentUsername != nil {
		query = query.Where("student_username = ?", *filter.StudentUsername)
	}

	var rows []models.Solution
	if err := query.Order("submitted_at DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *submissionRepository) ApplyGrading(ctx context.Context, groupID string, grading models.Grading, gradedAt time.Time) (int64, error) {
	columns := gradingColumns(grading)
	var affected int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if rowID, ok := models.ParseLegacyGroupKey(groupID); ok {
			result := tx.Model(&models.Solution{}).
				Where("id = ? AND submission_group IS NULL", rowID).
				Updates(columns)
			affected = result.RowsAffected
			return result.Error
		}

		groupColumns := gradingColumns(grading)
		groupColumns["graded_at"] = gradedAt
		if err := tx.Model(&models.SubmissionGroup{}).
			Where("id = ?", groupID).
			Updates(groupColumns).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Solution{}).
			Where("submission_group = ?", groupID).
			Updates(columns)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, err
	}

	return affected, nil
}

func (r *submissionRepository) DeleteByPaper(ctx context.Context, paperID uint) ([]string, error) {
	db := r.db.WithContext(ctx)

	var filenames []string
	if err := db.Model(&models.Solution{}).
		Where("paper_id = ?", paperID).
		Order("id ASC").
		Pluck("filename", &filenames).Error; err != nil {
		return nil, err
	}

	if err := db.Where("paper_id = ?", paperID).Delete(&models.Solution{}).Error; err != nil {
		return nil, err
	}

	if err := db.Where("paper_id = ?", paperID).Delete(&models.SubmissionGroup{}).Error; err != nil {
		return nil, err
	}

	return filenames, nil
}

func (r *submissionRepository) RenameStudent(ctx context.Context, oldUsername, newUsername string) error {
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Solution{}).
		Where("student_username = ?", oldUsername).
		Update("student_username", newUsername).Error; err != nil {
		return err
	}

	return db.Model(&models.SubmissionGroup{}).
		Where("student_username = ?", oldUsername).
		Update("student_username", newUsername).Error
}

func gradingColumns(g models.Grading) map[string]interface{} {
	return map[string]interface{}{
		"total_questions": g.TotalQuestions,
		"attempted":       g.Attempted,
		"correct":         g.Correct,
		"incorrect":       g.Incorrect,
		"total_marks":     g.TotalMarks,
		"obtained_marks":  g.ObtainedMarks,
		"passing_marks":   g.PassingMarks,
		"result_status":   g.ResultStatus,
	}
}
