package services

import (
	"context"

	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/repositories"
	"github.com/examflow-ng/paper-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type RegisterSchoolRequest = validator.RegisterSchoolRequest
type LoginRequest = validator.LoginRequest
type CreateTeacherRequest = validator.CreateTeacherRequest
type BulkImportRequest = validator.BulkImportRequest
type CreatePaperRequest = validator.CreatePaperRequest
type PaperHeaderRequest = validator.PaperHeaderRequest
type AddSectionRequest = validator.AddSectionRequest
type RenameSectionRequest = validator.RenameSectionRequest
type AddQuestionRequest = validator.AddQuestionRequest
type QuestionPatchRequest = validator.QuestionPatchRequest
type ReorderSectionsRequest = validator.ReorderSectionsRequest
type ReorderQuestionsRequest = validator.ReorderQuestionsRequest
type RejectPaperRequest = validator.RejectPaperRequest
type TemplateRequest = validator.TemplateRequest
type GenerateQuestionsRequest = validator.GenerateQuestionsRequest
type OCRExtractRequest = validator.OCRExtractRequest
type RewriteQuestionRequest = validator.RewriteQuestionRequest
type RefineTextRequest = validator.RefineTextRequest
type AnalyzeMetadataRequest = validator.AnalyzeMetadataRequest
type ImproveDistractorsRequest = validator.ImproveDistractorsRequest
type GenerateRubricRequest = validator.GenerateRubricRequest
type GenerateCredentialsRequest = validator.GenerateCredentialsRequest
type SaveToBankRequest = validator.SaveToBankRequest
type ImportFromBankRequest = validator.ImportFromBankRequest

const (
	RewriteHarder   = validator.RewriteHarder
	RewriteContext  = validator.RewriteContext
	RewriteTypeSwap = validator.RewriteTypeSwap

	RefineFix     = validator.RefineFix
	RefineRewrite = validator.RefineRewrite
	RefineMarking = validator.RefineMarking
)

// Actor identifies the authenticated user behind a service call.
type Actor struct {
	UserID   string          `json:"user_id"`
	SchoolID string          `json:"school_id"`
	Role     models.UserRole `json:"role"`
	Name     string          `json:"name"`
}

func (a Actor) IsExamOfficer() bool {
	return a.Role == models.RoleExamOfficer
}

type AuthResponse struct {
	Token  string         `json:"token"`
	User   *models.User   `json:"user"`
	School *models.School `json:"school"`
}

type PaperResponse struct {
	*models.ExamPaper
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	CanReview bool `json:"can_review"`
}

type PaperListResponse struct {
	Papers []*PaperResponse `json:"papers"`
	Total  int64            `json:"total"`
	Page   int              `json:"page"`
	Size   int              `json:"size"`
}

// PrintView is everything the renderer needs for one paper: the paper
// itself plus the school's template and logo.
type PrintView struct {
	Paper      *models.ExamPaper    `json:"paper"`
	Template   models.PrintTemplate `json:"template"`
	SchoolName string               `json:"school_name"`
	LogoURL    *string              `json:"logo_url,omitempty"`
	TotalMarks int                  `json:"total_marks"`
}

type GeneratedSection struct {
	Title        string             `json:"title"`
	Instructions string             `json:"instructions"`
	Questions    []*models.Question `json:"questions"`
}

type TeacherCredentials struct {
	User     *models.User `json:"user"`
	Password string       `json:"password"`
}

// QuestionMetadata is the AI's classification of one question's text.
type QuestionMetadata struct {
	Difficulty  models.DifficultyLevel `json:"difficulty"`
	BloomsLevel models.BloomsLevel     `json:"blooms_level"`
}

// BulkImportResult reports the outcome of one roster import. Failed lines
// never abort the rest of the file.
type BulkImportResult struct {
	Imported []*models.User    `json:"imported"`
	Errors   []BulkImportError `json:"errors"`
}

type BulkImportError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type BankListResponse struct {
	Questions []*models.Question `json:"questions"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Size      int                `json:"size"`
}

type DashboardResponse struct {
	Counts      *repositories.PaperCounts `json:"counts"`
	ReviewQueue []*PaperResponse          `json:"review_queue,omitempty"`
	Recent      []*PaperResponse          `json:"recent"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	RegisterSchool(ctx context.Context, req *RegisterSchoolRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)

	// Token verification, used by the auth middleware
	VerifyToken(ctx context.Context, token string) (*Actor, error)
}

type PaperService interface {
	// Core operations
	Create(ctx context.Context, actor Actor, req *CreatePaperRequest) (*PaperResponse, error)
	GetByID(ctx context.Context, actor Actor, id string) (*PaperResponse, error)
	Save(ctx context.Context, actor Actor, paper *models.ExamPaper) (*PaperResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	List(ctx context.Context, actor Actor, filters repositories.PaperFilters) (*PaperListResponse, error)

	// Lifecycle transitions
	Submit(ctx context.Context, actor Actor, id string) (*PaperResponse, error)
	Approve(ctx context.Context, actor Actor, id string) (*PaperResponse, error)
	Reject(ctx context.Context, actor Actor, id string, req *RejectPaperRequest) (*PaperResponse, error)

	// Editor mutations
	UpdateHeader(ctx context.Context, actor Actor, id string, req *PaperHeaderRequest) (*PaperResponse, error)
	AddSection(ctx context.Context, actor Actor, id string, req *AddSectionRequest) (*PaperResponse, error)
	RenameSection(ctx context.Context, actor Actor, id, sectionID string, req *RenameSectionRequest) (*PaperResponse, error)
	DeleteSection(ctx context.Context, actor Actor, id, sectionID string) (*PaperResponse, error)
	ReorderSections(ctx context.Context, actor Actor, id string, req *ReorderSectionsRequest) (*PaperResponse, error)
	MergeSections(ctx context.Context, actor Actor, id, targetID, sourceID string) (*PaperResponse, error)
	AddQuestion(ctx context.Context, actor Actor, id, sectionID string, req *AddQuestionRequest) (*PaperResponse, error)
	UpdateQuestion(ctx context.Context, actor Actor, id, sectionID, questionID string, req *QuestionPatchRequest) (*PaperResponse, error)
	DeleteQuestion(ctx context.Context, actor Actor, id, sectionID, questionID string) (*PaperResponse, error)
	ReorderQuestions(ctx context.Context, actor Actor, id string, req *ReorderQuestionsRequest) (*PaperResponse, error)

	// Rendering and access
	GetPrintView(ctx context.Context, actor Actor, id string) (*PrintView, error)
	GetPaperByQR(ctx context.Context, qrData string) (*PrintView, error)
}

type AIService interface {
	GenerateQuestions(ctx context.Context, actor Actor, req *GenerateQuestionsRequest) ([]*GeneratedSection, error)
	ExtractFromImage(ctx context.Context, actor Actor, req *OCRExtractRequest) ([]*GeneratedSection, error)
	RewriteQuestion(ctx context.Context, actor Actor, paperID string, req *RewriteQuestionRequest) (*PaperResponse, error)
	RefineText(ctx context.Context, actor Actor, req *RefineTextRequest) (string, error)
	AnalyzeMetadata(ctx context.Context, actor Actor, req *AnalyzeMetadataRequest) (*QuestionMetadata, error)
	ImproveDistractors(ctx context.Context, actor Actor, paperID string, req *ImproveDistractorsRequest) (*PaperResponse, error)
	GenerateRubric(ctx context.Context, actor Actor, paperID string, req *GenerateRubricRequest) (*PaperResponse, error)
	RunComplianceCheck(ctx context.Context, actor Actor, paperID string) (*models.ComplianceReport, error)
}

type UserService interface {
	CreateTeacher(ctx context.Context, actor Actor, req *CreateTeacherRequest) (*TeacherCredentials, error)
	GenerateTeacherCredentials(ctx context.Context, actor Actor, req *GenerateCredentialsRequest) ([]*TeacherCredentials, error)
	BulkImportTeachers(ctx context.Context, actor Actor, req *BulkImportRequest) (*BulkImportResult, error)
	ListTeachers(ctx context.Context, actor Actor) ([]*models.User, error)
	GetByID(ctx context.Context, actor Actor, id string) (*models.User, error)
}

type QuestionBankService interface {
	SaveToBank(ctx context.Context, actor Actor, paperID string, req *SaveToBankRequest) ([]*models.Question, error)
	ListBank(ctx context.Context, actor Actor, filters repositories.BankFilters) (*BankListResponse, error)
	ImportFromBank(ctx context.Context, actor Actor, paperID, sectionID string, req *ImportFromBankRequest) (*PaperResponse, error)
	DeleteFromBank(ctx context.Context, actor Actor, id string) error
}

type SchoolService interface {
	GetSchool(ctx context.Context, actor Actor) (*models.School, error)
	UpdateTemplate(ctx context.Context, actor Actor, req *TemplateRequest) (*models.School, error)
}

type DashboardService interface {
	GetDashboard(ctx context.Context, actor Actor) (*DashboardResponse, error)
}

type ImportExportService interface {
	ImportTeachersFromExcel(ctx context.Context, actor Actor, data []byte) (*BulkImportResult, error)
	ExportTeachersToExcel(ctx context.Context, actor Actor) ([]byte, error)
	ExportBankToExcel(ctx context.Context, actor Actor, filters repositories.BankFilters) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Paper() PaperService
	AI() AIService
	User() UserService
	QuestionBank() QuestionBankService
	School() SchoolService
	Dashboard() DashboardService
	ImportExport() ImportExportService
	Autosave() *AutosaveManager

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
