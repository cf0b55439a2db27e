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

type SchoolPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSchoolPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SchoolRepository {
	return &SchoolPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (s *SchoolPostgreSQL) Create(ctx context.Context, school *models.School) error {
	if err := s.db.WithContext(ctx).Create(school).Error; err != nil {
		return fmt.Errorf("failed to create school: %w", err)
	}
	return nil
}

func (s *SchoolPostgreSQL) Update(ctx context.Context, school *models.School) error {
	if err := s.db.WithContext(ctx).Save(school).Error; err != nil {
		return fmt.Errorf("failed to update school: %w", err)
	}
	s.cacheManager.InvalidateSchool(ctx, school.ID)
	return nil
}

// GetByID reads through the school cache; templates are read on every
// print/preview so this is the hottest school path.
func (s *SchoolPostgreSQL) GetByID(ctx context.Context, id string) (*models.School, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	var school models.School

	err := s.cacheManager.School.CacheOrExecute(ctx, cacheKey, &school, cache.SchoolCacheConfig.TTL, func() (interface{}, error) {
		var dbSchool models.School
		err := s.db.WithContext(ctx).First(&dbSchool, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.ErrNotFound
			}
			return nil, fmt.Errorf("failed to get school: %w", err)
		}
		return &dbSchool, nil
	})

	if err != nil {
		return nil, err
	}

	return &school, nil
}
