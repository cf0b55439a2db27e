package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/examflow-ng/paper-service/internal/models"
)

// BusinessValidator implements paper lifecycle and content business rules
type BusinessValidator struct {
	validate *validator.Validate
}

// ValidationError represents a business validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	bv := &BusinessValidator{validate: validator.New()}
	bv.registerBusinessRules()
	return bv
}

// Validate validates a struct against its tags plus registered custom rules
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	var errors ValidationErrors

	err := bv.validate.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			errors = append(errors, ValidationError{
				Field:   err.Field(),
				Message: bv.getErrorMessage(err),
				Value:   err.Value(),
				Rule:    err.Tag(),
			})
		}
	}

	return errors
}

// paperTransitions enumerates the legal lifecycle moves. Approved papers
// have no outgoing edges; rejected papers may be resubmitted.
var paperTransitions = map[models.PaperStatus][]models.PaperStatus{
	models.StatusDraft:         {models.StatusPendingReview},
	models.StatusRejected:      {models.StatusPendingReview},
	models.StatusPendingReview: {models.StatusApproved, models.StatusRejected},
	models.StatusApproved:      {},
}

// ValidateStatusTransition validates a paper lifecycle transition
func (bv *BusinessValidator) ValidateStatusTransition(currentStatus, newStatus models.PaperStatus) ValidationErrors {
	var errors ValidationErrors

	allowed := false
	for _, allowedStatus := range paperTransitions[currentStatus] {
		if newStatus == allowedStatus {
			allowed = true
			break
		}
	}

	if !allowed {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", currentStatus, newStatus),
			Value:   newStatus,
			Rule:    "status_transition",
		})
	}

	return errors
}

// ValidateRejection checks the reviewer comment required to reject a paper
func (bv *BusinessValidator) ValidateRejection(comment string) ValidationErrors {
	var errors ValidationErrors

	if strings.TrimSpace(comment) == "" {
		errors = append(errors, ValidationError{
			Field:   "comment",
			Message: "a rejection comment is required",
			Rule:    "rejection_comment",
		})
	}

	return errors
}

// ValidateRegistration applies registration rules beyond struct tags
func (bv *BusinessValidator) ValidateRegistration(req *RegisterSchoolRequest) ValidationErrors {
	errors := bv.Validate(req)

	if strings.TrimSpace(req.SchoolName) == "" {
		errors = append(errors, ValidationError{
			Field:   "school_name",
			Message: "school name must not be blank",
			Rule:    "business_logic",
		})
	}

	return errors
}

// registerBusinessRules registers custom field validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		switch models.QuestionType(fl.Field().String()) {
		case models.QuestionObjective, models.QuestionFillInBlank, models.QuestionTheory:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("difficulty_level", func(fl validator.FieldLevel) bool {
		switch models.DifficultyLevel(fl.Field().String()) {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("blooms_level", func(fl validator.FieldLevel) bool {
		switch models.BloomsLevel(fl.Field().String()) {
		case models.BloomsRemember, models.BloomsUnderstand, models.BloomsApply,
			models.BloomsAnalyze, models.BloomsEvaluate, models.BloomsCreate:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("paper_status", func(fl validator.FieldLevel) bool {
		switch models.PaperStatus(fl.Field().String()) {
		case models.StatusDraft, models.StatusPendingReview, models.StatusApproved, models.StatusRejected:
			return true
		}
		return false
	})
}

// getErrorMessage converts validator errors to readable messages
func (bv *BusinessValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "question_type":
		return "must be a valid question type (OBJ, FILL, THEORY)"
	case "difficulty_level":
		return "must be a valid difficulty (Easy, Medium, Hard)"
	case "blooms_level":
		return "must be a valid Bloom's taxonomy level"
	case "hexcolor":
		return "must be a hex color value"
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}
