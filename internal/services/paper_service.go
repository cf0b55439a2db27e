package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/examflow-ng/paper-service/internal/events"
	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/repositories"
	"github.com/examflow-ng/paper-service/internal/validator"
)

type paperService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewPaperService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) PaperService {
	return &paperService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE OPERATIONS =====

func (s *paperService) Create(ctx context.Context, actor Actor, req *CreatePaperRequest) (*PaperResponse, error) {
	s.logger.Info("Creating paper", "author_id", actor.UserID, "school_id", actor.SchoolID)

	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	school, err := s.repo.School().GetByID(ctx, actor.SchoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to load school: %w", err)
	}

	paper := &models.ExamPaper{
		ID:         uuid.New().String(),
		SchoolID:   actor.SchoolID,
		AuthorID:   actor.UserID,
		AuthorName: actor.Name,
		Status:     models.StatusDraft,
		QRCodeData: models.NewQRToken(),
		Version:    1,
		Header: models.ExamHeader{
			SchoolName: school.Name,
		},
		Sections: []models.ExamSection{
			{
				ID:       uuid.New().String(),
				Title:    "Section A",
				Position: 0,
			},
		},
	}
	applyHeader(&paper.Header, &req.Header)

	if err := s.repo.Paper().Create(ctx, paper); err != nil {
		return nil, fmt.Errorf("failed to create paper: %w", err)
	}

	s.publishEvent(ctx, events.TopicPaperCreated, paper, actor)
	s.logger.Info("Paper created", "paper_id", paper.ID)

	return buildPaperResponse(actor, paper), nil
}

func (s *paperService) GetByID(ctx context.Context, actor Actor, id string) (*PaperResponse, error) {
	paper, err := s.getPaper(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewPaper(actor, paper) {
		return nil, NewPermissionError(actor.UserID, "paper", id, "read", "not the author or a reviewer of this school")
	}
	return buildPaperResponse(actor, paper), nil
}

// Save persists a whole edited aggregate at once. The client sends back the
// version it read; a stale version is rejected as a conflict.
func (s *paperService) Save(ctx context.Context, actor Actor, edited *models.ExamPaper) (*PaperResponse, error) {
	current, err := s.getPaper(ctx, edited.ID)
	if err != nil {
		return nil, err
	}
	if !canEditPaper(actor, current) {
		return nil, NewPermissionError(actor.UserID, "paper", edited.ID, "update", "paper not editable by this user in its current state")
	}

	// Ownership, status and the QR token are never client-writable.
	current.Header = edited.Header
	current.Sections = edited.Sections
	current.Version = edited.Version
	normalizePositions(current)

	if err := s.savePaper(ctx, current); err != nil {
		return nil, err
	}
	return buildPaperResponse(actor, current), nil
}

func (s *paperService) Delete(ctx context.Context, actor Actor, id string) error {
	paper, err := s.getPaper(ctx, id)
	if err != nil {
		return err
	}
	if !canEditPaper(actor, paper) {
		return NewPermissionError(actor.UserID, "paper", id, "delete", "paper not editable by this user in its current state")
	}

	if err := s.repo.Paper().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete paper: %w", err)
	}

	s.logger.Info("Paper deleted", "paper_id", id, "user_id", actor.UserID)
	return nil
}

func (s *paperService) List(ctx context.Context, actor Actor, filters repositories.PaperFilters) (*PaperListResponse, error) {
	// Teachers see their own papers; officers see the whole school.
	filters.SchoolID = &actor.SchoolID
	if !actor.IsExamOfficer() {
		filters.AuthorID = &actor.UserID
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	papers, total, err := s.repo.Paper().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}

	responses := make([]*PaperResponse, 0, len(papers))
	for _, paper := range papers {
		responses = append(responses, buildPaperResponse(actor, paper))
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}
	return &PaperListResponse{
		Papers: responses,
		Total:  total,
		Page:   page,
		Size:   filters.Limit,
	}, nil
}

// ===== LIFECYCLE TRANSITIONS =====

func (s *paperService) Submit(ctx context.Context, actor Actor, id string) (*PaperResponse, error) {
	paper, err := s.getPaper(ctx, id)
	if err != nil {
		return nil, err
	}
	if paper.AuthorID != actor.UserID {
		return nil, NewPermissionError(actor.UserID, "paper", id, "submit", "only the author may submit")
	}
	if errors := s.validator.GetBusinessValidator().ValidateStatusTransition(paper.Status, models.StatusPendingReview); len(errors) > 0 {
		return nil, errors
	}

	// Rejection feedback survives resubmission; approval clears it.
	paper.Status = models.StatusPendingReview
	if err := s.savePaper(ctx, paper); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicPaperSubmitted, paper, actor)
	s.logger.Info("Paper submitted", "paper_id", id, "author_id", actor.UserID)

	return buildPaperResponse(actor, paper), nil
}

func (s *paperService) Approve(ctx context.Context, actor Actor, id string) (*PaperResponse, error) {
	paper, err := s.reviewable(ctx, actor, id, "approve")
	if err != nil {
		return nil, err
	}
	if errors := s.validator.GetBusinessValidator().ValidateStatusTransition(paper.Status, models.StatusApproved); len(errors) > 0 {
		return nil, errors
	}

	paper.Status = models.StatusApproved
	paper.Feedback = nil
	if err := s.savePaper(ctx, paper); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicPaperApproved, paper, actor)
	s.logger.Info("Paper approved", "paper_id", id, "officer_id", actor.UserID)

	return buildPaperResponse(actor, paper), nil
}

func (s *paperService) Reject(ctx context.Context, actor Actor, id string, req *RejectPaperRequest) (*PaperResponse, error) {
	paper, err := s.reviewable(ctx, actor, id, "reject")
	if err != nil {
		return nil, err
	}
	if errors := s.validator.GetBusinessValidator().ValidateRejection(req.Comment); len(errors) > 0 {
		return nil, errors
	}
	if errors := s.validator.GetBusinessValidator().ValidateStatusTransition(paper.Status, models.StatusRejected); len(errors) > 0 {
		return nil, errors
	}

	comment := req.Comment
	paper.Status = models.StatusRejected
	paper.Feedback = &comment
	if err := s.savePaper(ctx, paper); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicPaperRejected, paper, actor)
	s.logger.Info("Paper rejected", "paper_id", id, "officer_id", actor.UserID)

	return buildPaperResponse(actor, paper), nil
}

// ===== EDITOR MUTATIONS =====

func (s *paperService) UpdateHeader(ctx context.Context, actor Actor, id string, req *PaperHeaderRequest) (*PaperResponse, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}
	return s.mutate(ctx, actor, id, func(paper *models.ExamPaper) error {
		applyHeader(&paper.Header, req)
		return nil
	})
}

func (s *paperService) AddSection(ctx context.Context, actor Actor, id string, req *AddSectionRequest) (*PaperResponse, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}
	return s.mutate(ctx, actor, id, func(paper *models.ExamPaper) error {
		title := req.Title
		if title == "" {
			title = fmt.Sprintf("Section %c", 'A'+len(paper.Sections))
		}
		paper.Sections = append(paper.Sections, models.ExamSection{
			ID:           uuid.New().String(),
			PaperID:      paper.ID,
			Title:        title,
			Instructions: req.Instructions,
			Position:     len(paper.Sections),
		})
		return nil
	})
}

func (s *paperService) RenameSection(ctx context.Context, actor Actor, id, sectionID string, req *RenameSectionRequest) (*PaperResponse, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}
	return s.mutate(ctx, actor, id, func(paper *models.ExamPaper) error {
		section := paper.Section(sectionID)
		if section == nil {
			return ErrSectionNotFound
		}
		section.Title = req.Title
		return nil
	})
}

func (s *paperService) DeleteSection(ctx context.Context, actor Actor, id, sectionID string) (*PaperResponse, error) {
	return s.mutate(ctx, actor, id, func(paper *models.ExamPaper) error {
		for i := range paper.Sections {
			if paper.Sections[i].ID == sectionID {
				paper.Sections = append(paper.Sections[:i], paper.Sections[i+1:]...)
				normalizePositions(paper)
				return nil
			}
		}
		return ErrSectionNotFound
	})
}

func (s *paperService) ReorderSections(ctx context.Context, actor Actor, id string, req *ReorderSectionsRequest) (*PaperResponse, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}
	return s.mutate(ctx, actor, id, func(paper *models.ExamPaper) error {
		n := len(paper.Sections)
		if req.FromIndex >= n || req.ToIndex >= n {
			return validator.ValidationErrors{{
				Field:   "to_index",
				Message: "index out of range",
				Rule:    "reorder_bounds",
			}}
		}
		section := paper.Sections[req.FromIndex]
		paper.Sections = append(paper.Sections[:req.FromIndex], paper.Sections[req.FromIndex+1:]...)

		rest := make([]models.ExamSection, 0, n)
		rest = append(rest, paper.Sections[:req.ToIndex]...)
		rest = append(rest, section)
		rest = append(rest, paper.Sections[req.ToIndex:]...)
		paper.Sections = rest
		normalizePositions(paper)
		return nil
	})
}

// MergeSections appends every question of the source section to the target
// and removes the source.
func (s *paperService) MergeSections(ctx context.Context, actor Actor, id, targetID, sourceID string) (*PaperResponse, error) {
	if targetID == sourceID {
		return nil, validator.ValidationErrors{{
			Field:   "source_id",
			Message: "cannot merge a section into itself",
			Rule:    "merge_distinct",
		}}
	}
	return s.mutate(ctx, actor, id, func(paper *models.ExamPaper) error {
		target := paper.Section(targetID)
		if target == nil {
			return ErrSectionNotFound
		}
		sourceIdx := -1
		for i := range paper.Sections {
			if paper.Sections[i].ID == sourceID {
				sourceIdx = i
				break
			}
		}
		if sourceIdx < 0 {
			return ErrSectionNotFound
		}

		target.Questions = append(target.Questions, paper.Sections[sourceIdx].Questions...)
		paper.Sections = append(paper.Sections[:sourceIdx], paper.Sections[sourceIdx+1:]...)
		normalizePositions(paper)
		return nil
	})
}

func (s *paperService) AddQuestion(ctx context.Context, actor Actor, id, sectionID string, req *AddQuestionRequest) (*PaperResponse, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}
	return s.mutate(ctx, actor, id, func(paper *models.ExamPaper) error {
		section := paper.Section(sectionID)
		if section == nil {
			return ErrSectionNotFound
		}
		question := models.Question{
			ID:       uuid.New().String(),
			Type:     req.Type,
			Marks:    1,
			Position: len(section.Questions),
		}
		if req.Type == models.QuestionObjective {
			if err := question.SetOptions([]string{"", "", "", ""}); err != nil {
				return err
			}
		}
		section.Questions = append(section.Questions, question)
		return nil
	})
}

func (s *paperService) UpdateQuestion(ctx context.Context, actor Actor, id, sectionID, questionID string, req *QuestionPatchRequest) (*PaperResponse, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}
	return s.mutate(ctx, actor, id, func(paper *models.ExamPaper) error {
		section := paper.Section(sectionID)
		if section == nil {
			return ErrSectionNotFound
		}
		question := findQuestion(section, questionID)
		if question == nil {
			return ErrQuestionNotFound
		}
		return applyQuestionPatch(question, req)
	})
}

func (s *paperService) DeleteQuestion(ctx context.Context, actor Actor, id, sectionID, questionID string) (*PaperResponse, error) {
	return s.mutate(ctx, actor, id, func(paper *models.ExamPaper) error {
		section := paper.Section(sectionID)
		if section == nil {
			return ErrSectionNotFound
		}
		for i := range section.Questions {
			if section.Questions[i].ID == questionID {
				section.Questions = append(section.Questions[:i], section.Questions[i+1:]...)
				normalizePositions(paper)
				return nil
			}
		}
		return ErrQuestionNotFound
	})
}

func (s *paperService) ReorderQuestions(ctx context.Context, actor Actor, id string, req *ReorderQuestionsRequest) (*PaperResponse, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}
	return s.mutate(ctx, actor, id, func(paper *models.ExamPaper) error {
		from := paper.Section(req.FromSectionID)
		to := paper.Section(req.ToSectionID)
		if from == nil || to == nil {
			return ErrSectionNotFound
		}
		if req.FromIndex >= len(from.Questions) {
			return ErrQuestionNotFound
		}

		question := from.Questions[req.FromIndex]
		from.Questions = append(from.Questions[:req.FromIndex], from.Questions[req.FromIndex+1:]...)

		toIndex := req.ToIndex
		if toIndex > len(to.Questions) {
			toIndex = len(to.Questions)
		}
		rest := make([]models.Question, 0, len(to.Questions)+1)
		rest = append(rest, to.Questions[:toIndex]...)
		rest = append(rest, question)
		rest = append(rest, to.Questions[toIndex:]...)
		to.Questions = rest
		normalizePositions(paper)
		return nil
	})
}

// ===== RENDERING AND ACCESS =====

func (s *paperService) GetPrintView(ctx context.Context, actor Actor, id string) (*PrintView, error) {
	paper, err := s.getPaper(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewPaper(actor, paper) {
		return nil, NewPermissionError(actor.UserID, "paper", id, "print", "not the author or a reviewer of this school")
	}
	return s.buildPrintView(ctx, paper)
}

// GetPaperByQR resolves a scanned token. It requires no actor: the token
// itself is the credential.
func (s *paperService) GetPaperByQR(ctx context.Context, qrData string) (*PrintView, error) {
	paper, err := s.repo.Paper().GetByQRCode(ctx, qrData)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to resolve qr token: %w", err)
	}
	return s.buildPrintView(ctx, paper)
}

// ===== HELPERS =====

func (s *paperService) getPaper(ctx context.Context, id string) (*models.ExamPaper, error) {
	paper, err := s.repo.Paper().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}
	return paper, nil
}

func (s *paperService) savePaper(ctx context.Context, paper *models.ExamPaper) error {
	if err := s.repo.Paper().Save(ctx, paper); err != nil {
		if repositories.IsStaleVersionError(err) {
			return ErrPaperConflict
		}
		if repositories.IsNotFoundError(err) {
			return ErrPaperNotFound
		}
		return fmt.Errorf("failed to save paper: %w", err)
	}
	return nil
}

// mutate loads a paper, checks the edit permission for its current state,
// applies fn and persists the whole aggregate.
func (s *paperService) mutate(ctx context.Context, actor Actor, id string, fn func(*models.ExamPaper) error) (*PaperResponse, error) {
	paper, err := s.getPaper(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canEditPaper(actor, paper) {
		return nil, NewPermissionError(actor.UserID, "paper", id, "update", "paper not editable by this user in its current state")
	}
	if err := fn(paper); err != nil {
		return nil, err
	}
	if err := s.savePaper(ctx, paper); err != nil {
		return nil, err
	}
	return buildPaperResponse(actor, paper), nil
}

func (s *paperService) reviewable(ctx context.Context, actor Actor, id, action string) (*models.ExamPaper, error) {
	paper, err := s.getPaper(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsExamOfficer() || actor.SchoolID != paper.SchoolID {
		return nil, NewPermissionError(actor.UserID, "paper", id, action, "requires an exam officer of the paper's school")
	}
	return paper, nil
}

func canViewPaper(actor Actor, paper *models.ExamPaper) bool {
	if actor.SchoolID != paper.SchoolID {
		return false
	}
	return actor.IsExamOfficer() || paper.AuthorID == actor.UserID
}

// canEditPaper implements the state-derived mutation right: the author
// while DRAFT or REJECTED, the reviewing officer while PENDING_REVIEW.
// Approved papers are read-only for everyone.
func canEditPaper(actor Actor, paper *models.ExamPaper) bool {
	switch paper.Status {
	case models.StatusDraft, models.StatusRejected:
		return paper.AuthorID == actor.UserID
	case models.StatusPendingReview:
		return actor.IsExamOfficer() && actor.SchoolID == paper.SchoolID
	default:
		return false
	}
}

func buildPaperResponse(actor Actor, paper *models.ExamPaper) *PaperResponse {
	return &PaperResponse{
		ExamPaper: paper,
		CanEdit:   canEditPaper(actor, paper),
		CanDelete: canEditPaper(actor, paper),
		CanReview: actor.IsExamOfficer() && paper.Status == models.StatusPendingReview,
	}
}

func (s *paperService) buildPrintView(ctx context.Context, paper *models.ExamPaper) (*PrintView, error) {
	school, err := s.repo.School().GetByID(ctx, paper.SchoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to load school: %w", err)
	}
	return &PrintView{
		Paper:      paper,
		Template:   school.PrintTemplate(),
		SchoolName: school.Name,
		LogoURL:    school.LogoURL,
		TotalMarks: paper.TotalMarks(),
	}, nil
}

func (s *paperService) publishEvent(ctx context.Context, topic string, paper *models.ExamPaper, actor Actor) {
	if s.publisher == nil {
		return
	}
	event := &events.PaperEvent{
		PaperID:    paper.ID,
		SchoolID:   paper.SchoolID,
		AuthorID:   paper.AuthorID,
		ActorID:    actor.UserID,
		Status:     string(paper.Status),
		Subject:    paper.Header.Subject,
		OccurredAt: time.Now(),
	}
	if paper.Feedback != nil {
		event.Feedback = *paper.Feedback
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Error("Failed to publish paper event", "topic", topic, "paper_id", paper.ID, "error", err)
	}
}

func applyHeader(header *models.ExamHeader, req *PaperHeaderRequest) {
	if req == nil {
		return
	}
	if req.SchoolName != nil {
		header.SchoolName = *req.SchoolName
	}
	if req.ClassName != nil {
		header.ClassName = *req.ClassName
	}
	if req.Subject != nil {
		header.Subject = *req.Subject
	}
	if req.Term != nil {
		header.Term = *req.Term
	}
	if req.Duration != nil {
		header.Duration = *req.Duration
	}
	if req.ExamType != nil {
		header.ExamType = *req.ExamType
	}
	if req.GeneralInstructions != nil {
		header.GeneralInstructions = *req.GeneralInstructions
	}
}

func applyQuestionPatch(question *models.Question, req *QuestionPatchRequest) error {
	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.Marks != nil {
		question.Marks = *req.Marks
	}
	if req.Options != nil {
		if err := question.SetOptions(req.Options); err != nil {
			return err
		}
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = req.CorrectAnswer
	}
	if req.Rubric != nil {
		question.Rubric = req.Rubric
	}
	if req.Type != nil {
		question.Type = *req.Type
	}
	if req.Difficulty != nil {
		question.Difficulty = req.Difficulty
	}
	if req.BloomsLevel != nil {
		question.BloomsLevel = req.BloomsLevel
	}
	return nil
}

func findQuestion(section *models.ExamSection, id string) *models.Question {
	for i := range section.Questions {
		if section.Questions[i].ID == id {
			return &section.Questions[i]
		}
	}
	return nil
}

// normalizePositions rewrites section and question positions after any
// structural edit so order survives the round trip through storage.
func normalizePositions(paper *models.ExamPaper) {
	for i := range paper.Sections {
		paper.Sections[i].Position = i
		paper.Sections[i].PaperID = paper.ID
		for j := range paper.Sections[i].Questions {
			paper.Sections[i].Questions[j].Position = j
		}
	}
}
