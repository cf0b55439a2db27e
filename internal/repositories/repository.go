package repositories

import (
	"context"

	"github.com/examflow-ng/paper-service/internal/models"
)

// Repository aggregates the collection-level repositories.
type Repository interface {
	User() UserRepository
	School() SchoolRepository
	Paper() PaperRepository
	QuestionBank() QuestionBankRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager owns repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// UserRepository covers user records. Users are never deleted.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Email lookups are case-insensitive
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	GetSchoolTeachers(ctx context.Context, schoolID string) ([]*models.User, error)
}

type SchoolRepository interface {
	Create(ctx context.Context, school *models.School) error
	Update(ctx context.Context, school *models.School) error
	GetByID(ctx context.Context, id string) (*models.School, error)
}

// PaperRepository persists the ExamPaper aggregate (paper, sections,
// questions) as a unit: Save replaces the whole tree by paper id.
type PaperRepository interface {
	Create(ctx context.Context, paper *models.ExamPaper) error
	Save(ctx context.Context, paper *models.ExamPaper) error
	GetByID(ctx context.Context, id string) (*models.ExamPaper, error)
	GetByQRCode(ctx context.Context, qrData string) (*models.ExamPaper, error)
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters PaperFilters) ([]*models.ExamPaper, int64, error)
	CountByStatus(ctx context.Context, schoolID string) (*PaperCounts, error)
}

// QuestionBankRepository covers reusable bank questions (SectionID == nil).
type QuestionBankRepository interface {
	SaveBatch(ctx context.Context, questions []*models.Question) error
	GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error)

	// List returns global entries plus entries scoped to the given school
	List(ctx context.Context, schoolID string, filters BankFilters) ([]*models.Question, int64, error)
	Delete(ctx context.Context, id string) error
}
