package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaperStatus string

const (
	StatusDraft         PaperStatus = "DRAFT"
	StatusPendingReview PaperStatus = "PENDING_REVIEW"
	StatusApproved      PaperStatus = "APPROVED"
	StatusRejected      PaperStatus = "REJECTED"
)

// ExamHeader holds the free-form display metadata printed above the sections.
type ExamHeader struct {
	SchoolName          string `json:"school_name" gorm:"column:header_school_name;size:200"`
	ClassName           string `json:"class_name" gorm:"column:header_class_name;size:50"`
	Subject             string `json:"subject" gorm:"column:header_subject;size:100"`
	Term                string `json:"term" gorm:"column:header_term;size:50"`
	Duration            string `json:"duration" gorm:"column:header_duration;size:50"`
	ExamType            string `json:"exam_type" gorm:"column:header_exam_type;size:50"`
	GeneralInstructions string `json:"general_instructions" gorm:"column:header_instructions;type:text"`
}

// ComplianceReport is the result of an AI audit, attached to a paper and
// overwritten whole on each run, never merged.
type ComplianceReport struct {
	Score       int      `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

type ExamSection struct {
	ID      string `json:"id" gorm:"primaryKey;size:36"`
	PaperID string `json:"paper_id" gorm:"not null;index;size:36"`

	Title        string `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	Instructions string `json:"instructions" gorm:"type:text"`
	Position     int    `json:"position" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Questions []Question `json:"questions" gorm:"foreignKey:SectionID"`
}

func (ExamSection) TableName() string {
	return "exam_sections"
}

type ExamPaper struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	SchoolID   string `json:"school_id" gorm:"not null;index;size:36" validate:"required"`
	AuthorID   string `json:"author_id" gorm:"not null;index;size:36" validate:"required"`
	AuthorName string `json:"author_name" gorm:"size:100"`

	Status   PaperStatus `json:"status" gorm:"not null;default:DRAFT;index" validate:"omitempty,oneof=DRAFT PENDING_REVIEW APPROVED REJECTED"`
	Feedback *string     `json:"feedback,omitempty" gorm:"type:text"`

	Header ExamHeader `json:"header" gorm:"embedded"`

	// Opaque scan-to-open token, unique across all papers
	QRCodeData string `json:"qr_code_data" gorm:"uniqueIndex;not null;size:64"`

	// Latest AI audit, JSONB, nil until the first run
	ComplianceReport datatypes.JSON `json:"compliance_report,omitempty" gorm:"type:jsonb"`

	// Optimistic concurrency: saves carry the version they read; stale
	// writes are rejected instead of silently overwriting
	Version int `json:"version" gorm:"not null;default:1"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Sections []ExamSection `json:"sections" gorm:"foreignKey:PaperID"`
}

func (ExamPaper) TableName() string {
	return "exam_papers"
}

// NewQRToken mints the opaque per-paper scan token.
func NewQRToken() string {
	return fmt.Sprintf("EXAM-%s", uuid.New().String())
}

// Report decodes the JSONB compliance report; nil when no audit has run.
func (p *ExamPaper) Report() *ComplianceReport {
	if len(p.ComplianceReport) == 0 {
		return nil
	}
	var report ComplianceReport
	if err := json.Unmarshal(p.ComplianceReport, &report); err != nil {
		return nil
	}
	return &report
}

// SetReport overwrites the stored compliance report.
func (p *ExamPaper) SetReport(report ComplianceReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	p.ComplianceReport = data
	return nil
}

// Section returns the section with the given id, or nil.
func (p *ExamPaper) Section(id string) *ExamSection {
	for i := range p.Sections {
		if p.Sections[i].ID == id {
			return &p.Sections[i]
		}
	}
	return nil
}

// TotalMarks sums marks over every question in the paper.
func (p *ExamPaper) TotalMarks() int {
	total := 0
	for i := range p.Sections {
		for j := range p.Sections[i].Questions {
			total += p.Sections[i].Questions[j].Marks
		}
	}
	return total
}

// QuestionCount counts questions across all sections.
func (p *ExamPaper) QuestionCount() int {
	count := 0
	for i := range p.Sections {
		count += len(p.Sections[i].Questions)
	}
	return count
}
