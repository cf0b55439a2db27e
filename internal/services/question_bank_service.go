package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/repositories"
	"github.com/examflow-ng/paper-service/internal/validator"
)

type questionBankService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionBankService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) QuestionBankService {
	return &questionBankService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// SaveToBank copies questions out of a paper into the bank. Bank entries
// are detached copies with fresh ids; later edits to the paper do not
// touch them.
func (s *questionBankService) SaveToBank(ctx context.Context, actor Actor, paperID string, req *SaveToBankRequest) ([]*models.Question, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	paper, err := s.repo.Paper().GetByID(ctx, paperID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}
	if !canViewPaper(actor, paper) {
		return nil, NewPermissionError(actor.UserID, "paper", paperID, "read", "not the author or a reviewer of this school")
	}

	wanted := make(map[string]bool, len(req.QuestionIDs))
	for _, id := range req.QuestionIDs {
		wanted[id] = true
	}

	var entries []*models.Question
	for i := range paper.Sections {
		for j := range paper.Sections[i].Questions {
			source := paper.Sections[i].Questions[j]
			if !wanted[source.ID] {
				continue
			}
			entry := source
			entry.ID = uuid.New().String()
			entry.SectionID = nil
			entry.Position = 0
			if req.Global && actor.IsExamOfficer() {
				entry.SchoolID = nil
			} else {
				schoolID := actor.SchoolID
				entry.SchoolID = &schoolID
			}
			if entry.Subject == nil && paper.Header.Subject != "" {
				subject := paper.Header.Subject
				entry.Subject = &subject
			}
			entries = append(entries, &entry)
		}
	}

	if len(entries) == 0 {
		return nil, ErrQuestionNotFound
	}

	if err := s.repo.QuestionBank().SaveBatch(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to save bank entries: %w", err)
	}

	s.logger.Info("Questions saved to bank", "paper_id", paperID, "count", len(entries), "user_id", actor.UserID)
	return entries, nil
}

func (s *questionBankService) ListBank(ctx context.Context, actor Actor, filters repositories.BankFilters) (*BankListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	questions, total, err := s.repo.QuestionBank().List(ctx, actor.SchoolID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank: %w", err)
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}
	return &BankListResponse{
		Questions: questions,
		Total:     total,
		Page:      page,
		Size:      filters.Limit,
	}, nil
}

// ImportFromBank copies bank entries into a section of a paper. The bank
// entries themselves are untouched.
func (s *questionBankService) ImportFromBank(ctx context.Context, actor Actor, paperID, sectionID string, req *ImportFromBankRequest) (*PaperResponse, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	paper, err := s.repo.Paper().GetByID(ctx, paperID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}
	if !canEditPaper(actor, paper) {
		return nil, NewPermissionError(actor.UserID, "paper", paperID, "update", "paper not editable by this user in its current state")
	}
	section := paper.Section(sectionID)
	if section == nil {
		return nil, ErrSectionNotFound
	}

	entries, err := s.repo.QuestionBank().GetByIDs(ctx, req.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrQuestionNotFound
	}

	for _, entry := range entries {
		// Entries scoped to another school are not importable.
		if entry.SchoolID != nil && *entry.SchoolID != actor.SchoolID {
			continue
		}
		copied := *entry
		copied.ID = uuid.New().String()
		copied.SchoolID = nil
		copied.SectionID = nil
		copied.Position = len(section.Questions)
		section.Questions = append(section.Questions, copied)
	}
	normalizePositions(paper)

	if err := s.repo.Paper().Save(ctx, paper); err != nil {
		if repositories.IsStaleVersionError(err) {
			return nil, ErrPaperConflict
		}
		return nil, fmt.Errorf("failed to save paper: %w", err)
	}

	s.logger.Info("Bank entries imported", "paper_id", paperID, "section_id", sectionID, "count", len(entries))
	return buildPaperResponse(actor, paper), nil
}

func (s *questionBankService) DeleteFromBank(ctx context.Context, actor Actor, id string) error {
	if !actor.IsExamOfficer() {
		return NewPermissionError(actor.UserID, "bank question", id, "delete", "requires exam officer role")
	}
	if err := s.repo.QuestionBank().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete bank entry: %w", err)
	}
	s.logger.Info("Bank entry deleted", "question_id", id, "user_id", actor.UserID)
	return nil
}
