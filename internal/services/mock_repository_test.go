package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/repositories"
)

// memRepository is an in-memory Repository for service tests. Paper saves
// enforce the same version guard as the PostgreSQL implementation.
type memRepository struct {
	mu      sync.Mutex
	users   map[string]*models.User
	schools map[string]*models.School
	papers  map[string]*models.ExamPaper
	bank    map[string]*models.Question
}

func newMemRepository() *memRepository {
	return &memRepository{
		users:   make(map[string]*models.User),
		schools: make(map[string]*models.School),
		papers:  make(map[string]*models.ExamPaper),
		bank:    make(map[string]*models.Question),
	}
}

func (r *memRepository) User() repositories.UserRepository { return &memUserRepo{r} }
func (r *memRepository) School() repositories.SchoolRepository {
	return &memSchoolRepo{r}
}
func (r *memRepository) Paper() repositories.PaperRepository { return &memPaperRepo{r} }
func (r *memRepository) QuestionBank() repositories.QuestionBankRepository {
	return &memBankRepo{r}
}

func (r *memRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *memRepository) Ping(ctx context.Context) error { return nil }
func (r *memRepository) Close() error                   { return nil }

func cloneVia[T any](src *T) *T {
	data, _ := json.Marshal(src)
	out := new(T)
	_ = json.Unmarshal(data, out)
	return out
}

// ===== USERS =====

type memUserRepo struct{ r *memRepository }

func (u *memUserRepo) Create(ctx context.Context, user *models.User) error {
	u.r.mu.Lock()
	defer u.r.mu.Unlock()
	for _, existing := range u.r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("duplicate email %s", user.Email)
		}
	}
	stored := *user
	u.r.users[user.ID] = &stored
	return nil
}

func (u *memUserRepo) Update(ctx context.Context, user *models.User) error {
	u.r.mu.Lock()
	defer u.r.mu.Unlock()
	if _, ok := u.r.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *user
	u.r.users[user.ID] = &stored
	return nil
}

func (u *memUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u.r.mu.Lock()
	defer u.r.mu.Unlock()
	user, ok := u.r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (u *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u.r.mu.Lock()
	defer u.r.mu.Unlock()
	for _, user := range u.r.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (u *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u.r.mu.Lock()
	defer u.r.mu.Unlock()
	for _, user := range u.r.users {
		if strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (u *memUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	u.r.mu.Lock()
	defer u.r.mu.Unlock()
	var out []*models.User
	for _, user := range u.r.users {
		if filters.SchoolID != nil && user.SchoolID != *filters.SchoolID {
			continue
		}
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		copied := *user
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (u *memUserRepo) GetSchoolTeachers(ctx context.Context, schoolID string) ([]*models.User, error) {
	u.r.mu.Lock()
	defer u.r.mu.Unlock()
	var out []*models.User
	for _, user := range u.r.users {
		if user.SchoolID == schoolID && user.Role == models.RoleTeacher {
			copied := *user
			out = append(out, &copied)
		}
	}
	return out, nil
}

// ===== SCHOOLS =====

type memSchoolRepo struct{ r *memRepository }

func (s *memSchoolRepo) Create(ctx context.Context, school *models.School) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	stored := *school
	s.r.schools[school.ID] = &stored
	return nil
}

func (s *memSchoolRepo) Update(ctx context.Context, school *models.School) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if _, ok := s.r.schools[school.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *school
	s.r.schools[school.ID] = &stored
	return nil
}

func (s *memSchoolRepo) GetByID(ctx context.Context, id string) (*models.School, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	school, ok := s.r.schools[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *school
	return &copied, nil
}

// ===== PAPERS =====

type memPaperRepo struct{ r *memRepository }

func (p *memPaperRepo) Create(ctx context.Context, paper *models.ExamPaper) error {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	p.r.papers[paper.ID] = cloneVia(paper)
	return nil
}

func (p *memPaperRepo) Save(ctx context.Context, paper *models.ExamPaper) error {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	stored, ok := p.r.papers[paper.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if stored.Version != paper.Version {
		return repositories.ErrStaleVersion
	}
	paper.Version++
	p.r.papers[paper.ID] = cloneVia(paper)
	return nil
}

func (p *memPaperRepo) GetByID(ctx context.Context, id string) (*models.ExamPaper, error) {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	paper, ok := p.r.papers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneVia(paper), nil
}

func (p *memPaperRepo) GetByQRCode(ctx context.Context, qrData string) (*models.ExamPaper, error) {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	for _, paper := range p.r.papers {
		if paper.QRCodeData == qrData {
			return cloneVia(paper), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (p *memPaperRepo) Delete(ctx context.Context, id string) error {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	if _, ok := p.r.papers[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(p.r.papers, id)
	return nil
}

func (p *memPaperRepo) List(ctx context.Context, filters repositories.PaperFilters) ([]*models.ExamPaper, int64, error) {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	var out []*models.ExamPaper
	for _, paper := range p.r.papers {
		if filters.SchoolID != nil && paper.SchoolID != *filters.SchoolID {
			continue
		}
		if filters.AuthorID != nil && paper.AuthorID != *filters.AuthorID {
			continue
		}
		if filters.Status != nil && paper.Status != *filters.Status {
			continue
		}
		if filters.Subject != nil && paper.Header.Subject != *filters.Subject {
			continue
		}
		out = append(out, cloneVia(paper))
	}
	total := int64(len(out))
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, total, nil
}

func (p *memPaperRepo) CountByStatus(ctx context.Context, schoolID string) (*repositories.PaperCounts, error) {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	counts := &repositories.PaperCounts{}
	for _, paper := range p.r.papers {
		if paper.SchoolID != schoolID {
			continue
		}
		counts.Total++
		switch paper.Status {
		case models.StatusDraft:
			counts.Draft++
		case models.StatusPendingReview:
			counts.PendingReview++
		case models.StatusApproved:
			counts.Approved++
		case models.StatusRejected:
			counts.Rejected++
		}
	}
	return counts, nil
}

// ===== QUESTION BANK =====

type memBankRepo struct{ r *memRepository }

func (b *memBankRepo) SaveBatch(ctx context.Context, questions []*models.Question) error {
	b.r.mu.Lock()
	defer b.r.mu.Unlock()
	for _, q := range questions {
		b.r.bank[q.ID] = cloneVia(q)
	}
	return nil
}

func (b *memBankRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error) {
	b.r.mu.Lock()
	defer b.r.mu.Unlock()
	var out []*models.Question
	for _, id := range ids {
		if q, ok := b.r.bank[id]; ok {
			out = append(out, cloneVia(q))
		}
	}
	return out, nil
}

func (b *memBankRepo) List(ctx context.Context, schoolID string, filters repositories.BankFilters) ([]*models.Question, int64, error) {
	b.r.mu.Lock()
	defer b.r.mu.Unlock()
	var out []*models.Question
	for _, q := range b.r.bank {
		if q.SchoolID != nil && *q.SchoolID != schoolID {
			continue
		}
		if filters.Type != nil && q.Type != *filters.Type {
			continue
		}
		if filters.Subject != nil && (q.Subject == nil || *q.Subject != *filters.Subject) {
			continue
		}
		out = append(out, cloneVia(q))
	}
	total := int64(len(out))
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, total, nil
}

func (b *memBankRepo) Delete(ctx context.Context, id string) error {
	b.r.mu.Lock()
	defer b.r.mu.Unlock()
	if _, ok := b.r.bank[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(b.r.bank, id)
	return nil
}
