package repositories

import (
	"time"

	"github.com/examflow-ng/paper-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type PaperFilters struct {
	Status    *models.PaperStatus `json:"status"`
	SchoolID  *string             `json:"school_id"`
	AuthorID  *string             `json:"author_id"`
	Subject   *string             `json:"subject"`
	DateFrom  *time.Time          `json:"date_from"`
	DateTo    *time.Time          `json:"date_to"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
	SortBy    string              `json:"sort_by"`    // "created_at", "updated_at", "status"
	SortOrder string              `json:"sort_order"` // "asc", "desc"
}

type BankFilters struct {
	Type       *models.QuestionType    `json:"type"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Subject    *string                 `json:"subject"`
	Topic      *string                 `json:"topic"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"`
	SortOrder  string                  `json:"sort_order"`
}

type UserFilters struct {
	SchoolID *string          `json:"school_id"`
	Role     *models.UserRole `json:"role"`
	Query    string           `json:"query"` // name or email substring
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type PaperCounts struct {
	Total         int64 `json:"total"`
	Draft         int64 `json:"draft"`
	PendingReview int64 `json:"pending_review"`
	Approved      int64 `json:"approved"`
	Rejected      int64 `json:"rejected"`
}
