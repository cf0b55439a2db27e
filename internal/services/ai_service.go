package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/examflow-ng/paper-service/internal/ai"
	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/repositories"
	"github.com/examflow-ng/paper-service/internal/validator"
)

type aiService struct {
	repo      repositories.Repository
	provider  ai.Provider
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAIService(repo repositories.Repository, provider ai.Provider, logger *slog.Logger, validator *validator.Validator) AIService {
	return &aiService{
		repo:      repo,
		provider:  provider,
		logger:    logger,
		validator: validator,
	}
}

// Wire shape the model is prompted to return.

type wireQuestion struct {
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Marks         int      `json:"marks,omitempty"`
}

type wireSection struct {
	Title        string         `json:"title"`
	Instructions string         `json:"instructions,omitempty"`
	Questions    []wireQuestion `json:"questions"`
}

func (s *aiService) GenerateQuestions(ctx context.Context, actor Actor, req *GenerateQuestionsRequest) ([]*GeneratedSection, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	s.logger.Info("Generating questions",
		"user_id", actor.UserID, "subject", req.Subject, "topic", req.Topic, "count", req.Count)

	prompt := ai.GenerateQuestionsPrompt(req.Subject, req.Topic, string(req.Difficulty), string(req.Type), req.Count, req.LessonPlan)
	raw, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		return nil, NewGenerationError("question generation", err)
	}

	sections, err := s.decodeSections(raw)
	if err != nil {
		return nil, NewGenerationError("question generation", err)
	}

	// Stamp request metadata onto every generated question.
	subject := req.Subject
	topic := req.Topic
	difficulty := req.Difficulty
	for _, section := range sections {
		for _, q := range section.Questions {
			q.Subject = &subject
			q.Topic = &topic
			q.Difficulty = &difficulty
		}
	}

	if req.PaperID != nil {
		if err := s.appendSections(ctx, actor, *req.PaperID, sections); err != nil {
			return nil, err
		}
	}
	return sections, nil
}

func (s *aiService) ExtractFromImage(ctx context.Context, actor Actor, req *OCRExtractRequest) ([]*GeneratedSection, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		return nil, validator.ValidationErrors{{
			Field:   "image",
			Message: "must be base64-encoded",
			Rule:    "base64",
		}}
	}

	s.logger.Info("Extracting questions from image", "user_id", actor.UserID, "bytes", len(image))

	raw, err := s.provider.GenerateWithImage(ctx, ai.OCRPrompt(), image, req.MimeType)
	if err != nil {
		return nil, NewGenerationError("ocr extraction", err)
	}

	sections, err := s.decodeSections(raw)
	if err != nil {
		return nil, NewGenerationError("ocr extraction", err)
	}

	if req.PaperID != nil {
		if err := s.appendSections(ctx, actor, *req.PaperID, sections); err != nil {
			return nil, err
		}
	}
	return sections, nil
}

// RewriteQuestion replaces one question's content in place, keeping its id.
func (s *aiService) RewriteQuestion(ctx context.Context, actor Actor, paperID string, req *RewriteQuestionRequest) (*PaperResponse, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	paper, err := s.getEditablePaper(ctx, actor, paperID)
	if err != nil {
		return nil, err
	}
	section := paper.Section(req.SectionID)
	if section == nil {
		return nil, ErrSectionNotFound
	}
	question := findQuestion(section, req.QuestionID)
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	original := wireQuestion{
		Text:    question.Text,
		Type:    string(question.Type),
		Options: question.OptionList(),
		Marks:   question.Marks,
	}
	if question.CorrectAnswer != nil {
		original.CorrectAnswer = *question.CorrectAnswer
	}
	originalJSON, err := json.Marshal(original)
	if err != nil {
		return nil, fmt.Errorf("failed to encode question: %w", err)
	}

	raw, err := s.provider.Generate(ctx, ai.RewriteQuestionPrompt(string(originalJSON), string(req.Mode), string(question.Type)))
	if err != nil {
		return nil, NewGenerationError("question rewrite", err)
	}

	var rewritten wireQuestion
	if err := json.Unmarshal([]byte(ai.StripCodeFence(raw)), &rewritten); err != nil {
		return nil, NewGenerationError("question rewrite", fmt.Errorf("undecodable model response: %w", err))
	}

	if rewritten.Text != "" {
		question.Text = rewritten.Text
	}
	if t := models.QuestionType(rewritten.Type); t == models.QuestionObjective || t == models.QuestionFillInBlank || t == models.QuestionTheory {
		question.Type = t
	}
	if err := question.SetOptions(rewritten.Options); err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	if rewritten.CorrectAnswer != "" {
		answer := rewritten.CorrectAnswer
		question.CorrectAnswer = &answer
	}
	if rewritten.Marks > 0 {
		question.Marks = rewritten.Marks
	}

	if err := s.savePaper(ctx, paper); err != nil {
		return nil, err
	}

	s.logger.Info("Question rewritten", "paper_id", paperID, "question_id", req.QuestionID, "mode", req.Mode)
	return buildPaperResponse(actor, paper), nil
}

func (s *aiService) RefineText(ctx context.Context, actor Actor, req *RefineTextRequest) (string, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return "", errors
	}

	raw, err := s.provider.Generate(ctx, ai.RefinePrompt(req.Text, string(req.Mode)))
	if err != nil {
		return "", NewGenerationError("text refinement", err)
	}
	return ai.StripCodeFence(raw), nil
}

// AnalyzeMetadata classifies question text by difficulty and Bloom's level.
// Unrecognized values fall back to Medium/Remember.
func (s *aiService) AnalyzeMetadata(ctx context.Context, actor Actor, req *AnalyzeMetadataRequest) (*QuestionMetadata, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	raw, err := s.provider.Generate(ctx, ai.AnalyzeMetadataPrompt(req.Text))
	if err != nil {
		return nil, NewGenerationError("metadata analysis", err)
	}

	var wire struct {
		Difficulty string `json:"difficulty"`
		Blooms     string `json:"blooms"`
	}
	if err := json.Unmarshal([]byte(ai.StripCodeFence(raw)), &wire); err != nil {
		return nil, NewGenerationError("metadata analysis", fmt.Errorf("undecodable model response: %w", err))
	}

	meta := &QuestionMetadata{
		Difficulty:  models.DifficultyMedium,
		BloomsLevel: models.BloomsRemember,
	}
	switch d := models.DifficultyLevel(wire.Difficulty); d {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		meta.Difficulty = d
	}
	switch b := models.BloomsLevel(wire.Blooms); b {
	case models.BloomsRemember, models.BloomsUnderstand, models.BloomsApply,
		models.BloomsAnalyze, models.BloomsEvaluate, models.BloomsCreate:
		meta.BloomsLevel = b
	}
	return meta, nil
}

// ImproveDistractors regenerates an objective question's option set. The
// model must return exactly 4 options including the stored correct answer;
// anything else leaves the question untouched.
func (s *aiService) ImproveDistractors(ctx context.Context, actor Actor, paperID string, req *ImproveDistractorsRequest) (*PaperResponse, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	paper, err := s.getEditablePaper(ctx, actor, paperID)
	if err != nil {
		return nil, err
	}
	section := paper.Section(req.SectionID)
	if section == nil {
		return nil, ErrSectionNotFound
	}
	question := findQuestion(section, req.QuestionID)
	if question == nil {
		return nil, ErrQuestionNotFound
	}
	if question.Type != models.QuestionObjective {
		return nil, validator.ValidationErrors{{
			Field:   "question_id",
			Message: "only objective questions have distractors",
			Rule:    "question_type",
		}}
	}

	answer := ""
	if question.CorrectAnswer != nil {
		answer = *question.CorrectAnswer
	}
	raw, err := s.provider.Generate(ctx, ai.ImproveDistractorsPrompt(question.Text, answer, question.OptionList()))
	if err != nil {
		return nil, NewGenerationError("distractor improvement", err)
	}

	var options []string
	if err := json.Unmarshal([]byte(ai.StripCodeFence(raw)), &options); err != nil {
		return nil, NewGenerationError("distractor improvement", fmt.Errorf("undecodable model response: %w", err))
	}
	if len(options) != 4 {
		return nil, NewGenerationError("distractor improvement", fmt.Errorf("expected 4 options, got %d", len(options)))
	}
	if answer != "" && !containsString(options, answer) {
		return nil, NewGenerationError("distractor improvement", fmt.Errorf("correct answer missing from option set"))
	}

	if err := question.SetOptions(options); err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	if err := s.savePaper(ctx, paper); err != nil {
		return nil, err
	}

	s.logger.Info("Distractors improved", "paper_id", paperID, "question_id", req.QuestionID)
	return buildPaperResponse(actor, paper), nil
}

// GenerateRubric writes a marking rubric onto a question.
func (s *aiService) GenerateRubric(ctx context.Context, actor Actor, paperID string, req *GenerateRubricRequest) (*PaperResponse, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	paper, err := s.getEditablePaper(ctx, actor, paperID)
	if err != nil {
		return nil, err
	}
	section := paper.Section(req.SectionID)
	if section == nil {
		return nil, ErrSectionNotFound
	}
	question := findQuestion(section, req.QuestionID)
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	subject := paper.Header.Subject
	if question.Subject != nil && *question.Subject != "" {
		subject = *question.Subject
	}
	raw, err := s.provider.Generate(ctx, ai.RubricPrompt(subject, question.Text, question.Marks))
	if err != nil {
		return nil, NewGenerationError("rubric generation", err)
	}
	rubric := ai.StripCodeFence(raw)
	if rubric == "" {
		return nil, NewGenerationError("rubric generation", fmt.Errorf("empty model response"))
	}
	question.Rubric = &rubric

	if err := s.savePaper(ctx, paper); err != nil {
		return nil, err
	}

	s.logger.Info("Rubric generated", "paper_id", paperID, "question_id", req.QuestionID)
	return buildPaperResponse(actor, paper), nil
}

// RunComplianceCheck audits a paper and stores the report on it. The
// previous report is overwritten whole.
func (s *aiService) RunComplianceCheck(ctx context.Context, actor Actor, paperID string) (*models.ComplianceReport, error) {
	paper, err := s.repo.Paper().GetByID(ctx, paperID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}
	if !canViewPaper(actor, paper) {
		return nil, NewPermissionError(actor.UserID, "paper", paperID, "audit", "not the author or a reviewer of this school")
	}

	sectionsJSON, err := json.Marshal(paper.Sections)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sections: %w", err)
	}

	raw, err := s.provider.Generate(ctx, ai.CompliancePrompt(string(sectionsJSON)))
	if err != nil {
		return nil, NewGenerationError("compliance check", err)
	}

	var report models.ComplianceReport
	if err := json.Unmarshal([]byte(ai.StripCodeFence(raw)), &report); err != nil {
		return nil, NewGenerationError("compliance check", fmt.Errorf("undecodable model response: %w", err))
	}
	if report.Score < 0 {
		report.Score = 0
	}
	if report.Score > 100 {
		report.Score = 100
	}

	if err := paper.SetReport(report); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}
	if err := s.savePaper(ctx, paper); err != nil {
		return nil, err
	}

	s.logger.Info("Compliance check stored", "paper_id", paperID, "score", report.Score)
	return &report, nil
}

// ===== HELPERS =====

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func (s *aiService) decodeSections(raw string) ([]*GeneratedSection, error) {
	var wire []wireSection
	if err := json.Unmarshal([]byte(ai.StripCodeFence(raw)), &wire); err != nil {
		return nil, fmt.Errorf("undecodable model response: %w", err)
	}

	sections := make([]*GeneratedSection, 0, len(wire))
	for _, ws := range wire {
		section := &GeneratedSection{
			Title:        ws.Title,
			Instructions: ws.Instructions,
		}
		for i, wq := range ws.Questions {
			question := &models.Question{
				ID:       uuid.New().String(),
				Type:     models.QuestionType(wq.Type),
				Text:     wq.Text,
				Marks:    wq.Marks,
				Position: i,
			}
			if question.Marks <= 0 {
				question.Marks = 1
			}
			switch question.Type {
			case models.QuestionObjective, models.QuestionFillInBlank, models.QuestionTheory:
			default:
				question.Type = models.QuestionTheory
			}
			if len(wq.Options) > 0 {
				if err := question.SetOptions(wq.Options); err != nil {
					return nil, err
				}
			}
			if wq.CorrectAnswer != "" {
				answer := wq.CorrectAnswer
				question.CorrectAnswer = &answer
			}
			section.Questions = append(section.Questions, question)
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func (s *aiService) appendSections(ctx context.Context, actor Actor, paperID string, sections []*GeneratedSection) error {
	paper, err := s.getEditablePaper(ctx, actor, paperID)
	if err != nil {
		return err
	}

	for _, generated := range sections {
		section := models.ExamSection{
			ID:           uuid.New().String(),
			PaperID:      paper.ID,
			Title:        generated.Title,
			Instructions: generated.Instructions,
			Position:     len(paper.Sections),
		}
		for _, q := range generated.Questions {
			section.Questions = append(section.Questions, *q)
		}
		paper.Sections = append(paper.Sections, section)
	}
	normalizePositions(paper)

	return s.savePaper(ctx, paper)
}

func (s *aiService) getEditablePaper(ctx context.Context, actor Actor, paperID string) (*models.ExamPaper, error) {
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
	return paper, nil
}

func (s *aiService) savePaper(ctx context.Context, paper *models.ExamPaper) error {
	if err := s.repo.Paper().Save(ctx, paper); err != nil {
		if repositories.IsStaleVersionError(err) {
			return ErrPaperConflict
		}
		return fmt.Errorf("failed to save paper: %w", err)
	}
	return nil
}
