package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/examflow-ng/paper-service/internal/cache"
	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/repositories"
)

type PaperPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewPaperPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.PaperRepository {
	return &PaperPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (p *PaperPostgreSQL) Create(ctx context.Context, paper *models.ExamPaper) error {
	if err := p.db.WithContext(ctx).Create(paper).Error; err != nil {
		return fmt.Errorf("failed to create paper: %w", err)
	}
	p.cacheManager.InvalidatePaper(ctx, paper.ID, paper.QRCodeData, paper.SchoolID)
	return nil
}

// Save replaces the whole paper aggregate by id. The update is guarded by
// the version the caller read: a stale version leaves the row untouched and
// returns ErrStaleVersion instead of clobbering a newer write.
func (p *PaperPostgreSQL) Save(ctx context.Context, paper *models.ExamPaper) error {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"author_name":         paper.AuthorName,
			"status":              paper.Status,
			"feedback":            paper.Feedback,
			"compliance_report":   paper.ComplianceReport,
			"header_school_name":  paper.Header.SchoolName,
			"header_class_name":   paper.Header.ClassName,
			"header_subject":      paper.Header.Subject,
			"header_term":         paper.Header.Term,
			"header_duration":     paper.Header.Duration,
			"header_exam_type":    paper.Header.ExamType,
			"header_instructions": paper.Header.GeneralInstructions,
			"version":             paper.Version + 1,
		}

		result := tx.Model(&models.ExamPaper{}).
			Where("id = ? AND version = ?", paper.ID, paper.Version).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update paper: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.ExamPaper{}).Where("id = ?", paper.ID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check paper existence: %w", err)
			}
			if count == 0 {
				return repositories.ErrNotFound
			}
			return repositories.ErrStaleVersion
		}

		// Replace the section/question tree
		sectionIDs := tx.Model(&models.ExamSection{}).Select("id").Where("paper_id = ?", paper.ID)
		if err := tx.Where("section_id IN (?)", sectionIDs).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to clear questions: %w", err)
		}
		if err := tx.Where("paper_id = ?", paper.ID).Delete(&models.ExamSection{}).Error; err != nil {
			return fmt.Errorf("failed to clear sections: %w", err)
		}

		for i := range paper.Sections {
			section := &paper.Sections[i]
			section.PaperID = paper.ID
			section.Position = i

			questions := section.Questions
			section.Questions = nil
			if err := tx.Create(section).Error; err != nil {
				section.Questions = questions
				return fmt.Errorf("failed to save section: %w", err)
			}
			section.Questions = questions

			for j := range section.Questions {
				question := &section.Questions[j]
				sectionID := section.ID
				question.SectionID = &sectionID
				question.Position = j
				if err := tx.Create(question).Error; err != nil {
					return fmt.Errorf("failed to save question: %w", err)
				}
			}
		}

		return nil
	})

	if err != nil {
		return err
	}

	paper.Version++
	p.cacheManager.InvalidatePaper(ctx, paper.ID, paper.QRCodeData, paper.SchoolID)
	return nil
}

func (p *PaperPostgreSQL) GetByID(ctx context.Context, id string) (*models.ExamPaper, error) {
	var paper models.ExamPaper
	err := p.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("exam_sections.position ASC")
		}).
		Preload("Sections.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		First(&paper, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}
	return &paper, nil
}

// GetByQRCode resolves a scanned token through the paper cache.
func (p *PaperPostgreSQL) GetByQRCode(ctx context.Context, qrData string) (*models.ExamPaper, error) {
	cacheKey := fmt.Sprintf("qr:%s", qrData)
	var paper models.ExamPaper

	err := p.cacheManager.Paper.CacheOrExecute(ctx, cacheKey, &paper, cache.PaperCacheConfig.TTL, func() (interface{}, error) {
		var dbPaper models.ExamPaper
		err := p.db.WithContext(ctx).
			Preload("Sections", func(db *gorm.DB) *gorm.DB {
				return db.Order("exam_sections.position ASC")
			}).
			Preload("Sections.Questions", func(db *gorm.DB) *gorm.DB {
				return db.Order("questions.position ASC")
			}).
			Where("qr_code_data = ?", qrData).
			First(&dbPaper).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.ErrNotFound
			}
			return nil, fmt.Errorf("failed to get paper by QR: %w", err)
		}
		return &dbPaper, nil
	})

	if err != nil {
		return nil, err
	}

	return &paper, nil
}

func (p *PaperPostgreSQL) Delete(ctx context.Context, id string) error {
	paper, err := p.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := p.db.WithContext(ctx).Delete(&models.ExamPaper{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete paper: %w", err)
	}

	p.cacheManager.InvalidatePaper(ctx, paper.ID, paper.QRCodeData, paper.SchoolID)
	return nil
}

func (p *PaperPostgreSQL) List(ctx context.Context, filters repositories.PaperFilters) ([]*models.ExamPaper, int64, error) {
	query := p.db.WithContext(ctx).Model(&models.ExamPaper{})
	query = p.helpers.ApplyPaperFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count papers: %w", err)
	}

	var papers []*models.ExamPaper
	query = p.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&papers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list papers: %w", err)
	}

	return papers, total, nil
}

// CountByStatus aggregates a school's papers for the dashboard, cached
// briefly since it is recomputed on every dashboard load.
func (p *PaperPostgreSQL) CountByStatus(ctx context.Context, schoolID string) (*repositories.PaperCounts, error) {
	cacheKey := fmt.Sprintf("school:%s", schoolID)
	var counts repositories.PaperCounts

	err := p.cacheManager.Counts.CacheOrExecute(ctx, cacheKey, &counts, cache.CountsCacheConfig.TTL, func() (interface{}, error) {
		type row struct {
			Status models.PaperStatus
			Count  int64
		}
		var rows []row
		err := p.db.WithContext(ctx).
			Model(&models.ExamPaper{}).
			Select("status, count(*) as count").
			Where("school_id = ?", schoolID).
			Group("status").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count papers by status: %w", err)
		}

		var result repositories.PaperCounts
		for _, r := range rows {
			result.Total += r.Count
			switch r.Status {
			case models.StatusDraft:
				result.Draft = r.Count
			case models.StatusPendingReview:
				result.PendingReview = r.Count
			case models.StatusApproved:
				result.Approved = r.Count
			case models.StatusRejected:
				result.Rejected = r.Count
			}
		}
		return &result, nil
	})

	if err != nil {
		return nil, err
	}

	return &counts, nil
}
