package validator

import (
	"github.com/examflow-ng/paper-service/internal/models"
)

// RegisterSchoolRequest creates a school and its first exam officer.
type RegisterSchoolRequest struct {
	SchoolName  string `json:"school_name" validate:"required,max=200"`
	OfficerName string `json:"officer_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateTeacherRequest struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"omitempty,min=6,max=72"`
	Subjects []string `json:"subjects" validate:"omitempty,dive,max=100"`
	Classes  []string `json:"classes" validate:"omitempty,dive,max=50"`
}

// BulkImportRequest carries the raw roster text described in the import
// contract: Name, Email, Password, Subjects(|), Classes(|) per line.
type BulkImportRequest struct {
	CSV string `json:"csv" validate:"required"`
}

type CreatePaperRequest struct {
	Header PaperHeaderRequest `json:"header"`
}

type PaperHeaderRequest struct {
	SchoolName          *string `json:"school_name" validate:"omitempty,max=200"`
	ClassName           *string `json:"class_name" validate:"omitempty,max=50"`
	Subject             *string `json:"subject" validate:"omitempty,max=100"`
	Term                *string `json:"term" validate:"omitempty,max=50"`
	Duration            *string `json:"duration" validate:"omitempty,max=50"`
	ExamType            *string `json:"exam_type" validate:"omitempty,max=50"`
	GeneralInstructions *string `json:"general_instructions" validate:"omitempty,max=2000"`
}

type AddSectionRequest struct {
	Title        string `json:"title" validate:"omitempty,max=200"`
	Instructions string `json:"instructions" validate:"omitempty,max=2000"`
}

type RenameSectionRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type AddQuestionRequest struct {
	Type models.QuestionType `json:"type" validate:"required,question_type"`
}

// QuestionPatchRequest updates individual question fields; nil fields are
// left untouched.
type QuestionPatchRequest struct {
	Text          *string                 `json:"text" validate:"omitempty,max=4000"`
	Marks         *int                    `json:"marks" validate:"omitempty,min=0,max=100"`
	Options       []string                `json:"options" validate:"omitempty,max=10,dive,max=500"`
	CorrectAnswer *string                 `json:"correct_answer" validate:"omitempty,max=2000"`
	Rubric        *string                 `json:"rubric" validate:"omitempty,max=4000"`
	Type          *models.QuestionType    `json:"type" validate:"omitempty,question_type"`
	Difficulty    *models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	BloomsLevel   *models.BloomsLevel     `json:"blooms_level" validate:"omitempty,blooms_level"`
}

type ReorderSectionsRequest struct {
	FromIndex int `json:"from_index" validate:"min=0"`
	ToIndex   int `json:"to_index" validate:"min=0"`
}

type ReorderQuestionsRequest struct {
	FromSectionID string `json:"from_section_id" validate:"required"`
	ToSectionID   string `json:"to_section_id" validate:"required"`
	FromIndex     int    `json:"from_index" validate:"min=0"`
	ToIndex       int    `json:"to_index" validate:"min=0"`
}

type RejectPaperRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

type TemplateRequest struct {
	HeaderLayout models.HeaderLayout `json:"header_layout" validate:"required,oneof=LEFT CENTER"`
	ShowExamType bool                `json:"show_exam_type"`
	FooterText   string              `json:"footer_text" validate:"max=200"`
	FontFamily   string              `json:"font_family" validate:"required,oneof=sans serif mono"`
	ThemeColor   string              `json:"theme_color" validate:"required,hexcolor"`
	LogoURL      *string             `json:"logo_url" validate:"omitempty,url,max=500"`
}

type GenerateQuestionsRequest struct {
	Subject    string                 `json:"subject" validate:"required,max=100"`
	Topic      string                 `json:"topic" validate:"required,max=200"`
	Difficulty models.DifficultyLevel `json:"difficulty" validate:"required,difficulty_level"`
	Type       models.QuestionType    `json:"type" validate:"required,question_type"`
	Count      int                    `json:"count" validate:"required,min=1,max=50"`
	LessonPlan string                 `json:"lesson_plan" validate:"omitempty,max=10000"`
	PaperID    *string                `json:"paper_id"`
}

type OCRExtractRequest struct {
	Image    string  `json:"image" validate:"required"` // base64
	MimeType string  `json:"mime_type" validate:"omitempty,max=50"`
	PaperID  *string `json:"paper_id"`
}

type RewriteMode string

const (
	RewriteHarder   RewriteMode = "HARDER"
	RewriteContext  RewriteMode = "CONTEXT"
	RewriteTypeSwap RewriteMode = "TYPE_SWAP"
)

type RewriteQuestionRequest struct {
	SectionID  string      `json:"section_id" validate:"required"`
	QuestionID string      `json:"question_id" validate:"required"`
	Mode       RewriteMode `json:"mode" validate:"required,oneof=HARDER CONTEXT TYPE_SWAP"`
}

type RefineMode string

const (
	RefineFix     RefineMode = "FIX"
	RefineRewrite RefineMode = "REWRITE"
	RefineMarking RefineMode = "MARKING"
)

type RefineTextRequest struct {
	Text string     `json:"text" validate:"required,max=10000"`
	Mode RefineMode `json:"mode" validate:"required,oneof=FIX REWRITE MARKING"`
}

type AnalyzeMetadataRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type ImproveDistractorsRequest struct {
	SectionID  string `json:"section_id" validate:"required"`
	QuestionID string `json:"question_id" validate:"required"`
}

type GenerateRubricRequest struct {
	SectionID  string `json:"section_id" validate:"required"`
	QuestionID string `json:"question_id" validate:"required"`
}

// GenerateCredentialsRequest creates one teacher account per class with a
// derived email and a random password.
type GenerateCredentialsRequest struct {
	Subject string   `json:"subject" validate:"required,max=100"`
	Classes []string `json:"classes" validate:"required,min=1,dive,required,max=50"`
}

type SaveToBankRequest struct {
	QuestionIDs []string `json:"question_ids" validate:"required,min=1"`
	Global      bool     `json:"global"`
}

type ImportFromBankRequest struct {
	QuestionIDs []string `json:"question_ids" validate:"required,min=1"`
	PaperID     *string  `json:"paper_id"`
}
