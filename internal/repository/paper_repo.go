package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/educonnect-api/internal/models"
)

// PaperRepository defines persistence operations for the paper catalog.
type PaperRepository interface {
	List(ctx context.Context) ([]models.Paper, error)
	GetByID(ctx context.Context, id uint) (models.Paper, error)
	Create(ctx context.Context, paper *models.Paper) error
	Rename(ctx context.Context, id uint, title string) error
	Delete(ctx context.Context, id uint) ([]string, error)
}

type paperRepository struct {
	db          *gorm.DB
	submissions SubmissionRepository
}

// NewPaperRepository instantiates a GORM-backed repository. Deletes cascade
// into the submission store inside the same transaction.
func NewPaperRepository(db *gorm.DB, submissions SubmissionRepository) PaperRepository {
	return &paperRepository{db: db, submissions: submissions}
}

func (r *paperRepository) List(ctx context.Context) ([]models.Paper, error) {
	var papers []models.Paper
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&papers).Error; err != nil {
		return nil, err
	}

	return papers, nil
}

func (r *paperRepository) GetByID(ctx context.Context, id uint) (models.Paper, error) {
	var paper models.Paper
	if err := r.db.WithContext(ctx).First(&paper, id).Error; err != nil {
		return models.Paper{}, err
	}

	return paper, nil
}

func (r *paperRepository) Create(ctx context.Context, paper *models.Paper) error {
	return r.db.WithContext(ctx).Create(paper).Error
}

func (r *paperRepository) Rename(ctx context.Context, id uint, title string) error {
	result := r.db.WithContext(ctx).Model(&models.Paper{}).Where("id = ?", id).Update("title", title)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the paper and every solution row and submission group
// referencing it. The returned slice holds the blob references that are no
// longer referenced, paper file first.
func (r *paperRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var removed []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var paper models.Paper
		if err := tx.First(&paper, id).Error; err != nil {
			return err
		}

		filenames, err := r.submissions.WithTx(tx).DeleteByPaper(ctx, id)
		if err != nil {
			return err
		}

		if err := tx.Delete(&models.Paper{}, id).Error; err != nil {
			return err
		}

		removed = append([]string{paper.Filename}, filenames...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}
