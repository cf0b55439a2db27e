package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/repositories"
	"github.com/examflow-ng/paper-service/internal/validator"
)

type schoolService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSchoolService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) SchoolService {
	return &schoolService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *schoolService) GetSchool(ctx context.Context, actor Actor) (*models.School, error) {
	school, err := s.repo.School().GetByID(ctx, actor.SchoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to get school: %w", err)
	}
	return school, nil
}

// UpdateTemplate replaces the school's print template. Officer only.
func (s *schoolService) UpdateTemplate(ctx context.Context, actor Actor, req *TemplateRequest) (*models.School, error) {
	if !actor.IsExamOfficer() {
		return nil, NewPermissionError(actor.UserID, "school", actor.SchoolID, "update", "requires exam officer role")
	}
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	school, err := s.repo.School().GetByID(ctx, actor.SchoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to get school: %w", err)
	}

	tpl := models.PrintTemplate{
		HeaderLayout: req.HeaderLayout,
		ShowExamType: req.ShowExamType,
		FooterText:   req.FooterText,
		FontFamily:   req.FontFamily,
		ThemeColor:   req.ThemeColor,
	}
	if err := school.SetPrintTemplate(tpl); err != nil {
		return nil, fmt.Errorf("failed to encode template: %w", err)
	}
	school.LogoURL = req.LogoURL

	if err := s.repo.School().Update(ctx, school); err != nil {
		return nil, fmt.Errorf("failed to update school: %w", err)
	}

	s.logger.Info("Print template updated", "school_id", school.ID, "user_id", actor.UserID)
	return school, nil
}
