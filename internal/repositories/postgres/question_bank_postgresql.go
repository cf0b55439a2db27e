package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/repositories"
)

type QuestionBankPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQuestionBankPostgreSQL(db *gorm.DB) repositories.QuestionBankRepository {
	return &QuestionBankPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// SaveBatch upserts bank entries: replace by id when present, append otherwise.
func (q *QuestionBankPostgreSQL) SaveBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, question := range questions {
			if err := tx.Save(question).Error; err != nil {
				return fmt.Errorf("failed to save bank question: %w", err)
			}
		}
		return nil
	})
}

func (q *QuestionBankPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var questions []*models.Question
	err := q.db.WithContext(ctx).
		Where("id IN ? AND section_id IS NULL", ids).
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get bank questions: %w", err)
	}
	return questions, nil
}

// List returns global entries (no school) plus entries scoped to the school.
func (q *QuestionBankPostgreSQL) List(ctx context.Context, schoolID string, filters repositories.BankFilters) ([]*models.Question, int64, error) {
	query := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("section_id IS NULL").
		Where("school_id IS NULL OR school_id = ?", schoolID)
	query = q.helpers.ApplyBankFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bank questions: %w", err)
	}

	var questions []*models.Question
	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bank questions: %w", err)
	}

	return questions, total, nil
}

func (q *QuestionBankPostgreSQL) Delete(ctx context.Context, id string) error {
	result := q.db.WithContext(ctx).
		Where("id = ? AND section_id IS NULL", id).
		Delete(&models.Question{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete bank question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
