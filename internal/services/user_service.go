package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/repositories"
	"github.com/examflow-ng/paper-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *userService) CreateTeacher(ctx context.Context, actor Actor, req *CreateTeacherRequest) (*TeacherCredentials, error) {
	if !actor.IsExamOfficer() {
		return nil, NewPermissionError(actor.UserID, "user", "", "create", "requires exam officer role")
	}
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.User().ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	password := req.Password
	if password == "" {
		password, err = generatePassword(10)
		if err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	teacher := &models.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        email,
		Role:         models.RoleTeacher,
		SchoolID:     actor.SchoolID,
		Subjects:     models.EncodeStringList(req.Subjects),
		Classes:      models.EncodeStringList(req.Classes),
		PasswordHash: string(hash),
	}

	if err := s.repo.User().Create(ctx, teacher); err != nil {
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}

	s.logger.Info("Teacher created", "teacher_id", teacher.ID, "school_id", actor.SchoolID, "by", actor.UserID)

	return &TeacherCredentials{User: teacher, Password: password}, nil
}

// GenerateTeacherCredentials creates one teacher account per class with a
// derived email like "maths.jss1@lagosmodel.examflow.com" and a random
// password. The batch is transactional: a clashing email fails the whole
// request.
func (s *userService) GenerateTeacherCredentials(ctx context.Context, actor Actor, req *GenerateCredentialsRequest) ([]*TeacherCredentials, error) {
	if !actor.IsExamOfficer() {
		return nil, NewPermissionError(actor.UserID, "user", "", "create", "requires exam officer role")
	}
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	school, err := s.repo.School().GetByID(ctx, actor.SchoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to get school: %w", err)
	}

	schoolSlug := slugify(school.Name, 15)
	subjectSlug := slugify(req.Subject, 8)

	var creds []*TeacherCredentials
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		for _, class := range req.Classes {
			email := fmt.Sprintf("%s.%s@%s.examflow.com", subjectSlug, slugify(class, 0), schoolSlug)
			exists, err := txRepo.User().ExistsByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("failed to check email: %w", err)
			}
			if exists {
				return ErrEmailTaken
			}

			password, err := generatePassword(10)
			if err != nil {
				return fmt.Errorf("failed to generate password: %w", err)
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			teacher := &models.User{
				ID:           uuid.New().String(),
				Name:         fmt.Sprintf("%s Teacher (%s)", req.Subject, class),
				Email:        email,
				Role:         models.RoleTeacher,
				SchoolID:     actor.SchoolID,
				Subjects:     models.EncodeStringList([]string{req.Subject}),
				Classes:      models.EncodeStringList([]string{class}),
				PasswordHash: string(hash),
			}
			if err := txRepo.User().Create(ctx, teacher); err != nil {
				return fmt.Errorf("failed to create teacher: %w", err)
			}
			creds = append(creds, &TeacherCredentials{User: teacher, Password: password})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Teacher credentials generated",
		"school_id", actor.SchoolID, "subject", req.Subject, "count", len(creds), "by", actor.UserID)
	return creds, nil
}

// BulkImportTeachers parses the roster text. Each row stands alone: bad
// rows collect line-numbered errors without aborting the batch.
func (s *userService) BulkImportTeachers(ctx context.Context, actor Actor, req *BulkImportRequest) (*BulkImportResult, error) {
	if !actor.IsExamOfficer() {
		return nil, NewPermissionError(actor.UserID, "user", "", "import", "requires exam officer role")
	}
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	result := &BulkImportResult{}
	seen := make(map[string]bool)

	lines := strings.Split(strings.ReplaceAll(req.CSV, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lineNo := i + 1
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// A first row mentioning "email" is a header.
		if i == 0 && strings.Contains(strings.ToLower(line), "email") {
			continue
		}

		row := parseRosterRow(line)
		if len(row) < 2 {
			result.Errors = append(result.Errors, BulkImportError{
				Line:    lineNo,
				Message: "expected at least Name and Email",
			})
			continue
		}

		email := strings.ToLower(strings.TrimSpace(row[1]))
		if email == "" || !strings.Contains(email, "@") {
			result.Errors = append(result.Errors, BulkImportError{
				Line:    lineNo,
				Message: fmt.Sprintf("invalid email %q", row[1]),
			})
			continue
		}
		if seen[email] {
			result.Errors = append(result.Errors, BulkImportError{
				Line:    lineNo,
				Message: fmt.Sprintf("duplicate email %q in file", email),
			})
			continue
		}
		exists, err := s.repo.User().ExistsByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			result.Errors = append(result.Errors, BulkImportError{
				Line:    lineNo,
				Message: fmt.Sprintf("email %q already registered", email),
			})
			continue
		}

		teacher := &models.User{
			ID:       uuid.New().String(),
			Name:     strings.TrimSpace(row[0]),
			Email:    email,
			Role:     models.RoleTeacher,
			SchoolID: actor.SchoolID,
			Subjects: models.EncodeStringList(splitPipeList(row, 3)),
			Classes:  models.EncodeStringList(splitPipeList(row, 4)),
		}
		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(row[2])), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("failed to hash password: %w", err)
			}
			teacher.PasswordHash = string(hash)
		}

		if err := s.repo.User().Create(ctx, teacher); err != nil {
			result.Errors = append(result.Errors, BulkImportError{
				Line:    lineNo,
				Message: fmt.Sprintf("failed to save: %v", err),
			})
			continue
		}

		seen[email] = true
		result.Imported = append(result.Imported, teacher)
	}

	s.logger.Info("Bulk import finished",
		"school_id", actor.SchoolID, "imported", len(result.Imported), "errors", len(result.Errors))

	return result, nil
}

func (s *userService) ListTeachers(ctx context.Context, actor Actor) ([]*models.User, error) {
	if !actor.IsExamOfficer() {
		return nil, NewPermissionError(actor.UserID, "user", "", "list", "requires exam officer role")
	}
	teachers, err := s.repo.User().GetSchoolTeachers(ctx, actor.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	return teachers, nil
}

func (s *userService) GetByID(ctx context.Context, actor Actor, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.SchoolID != actor.SchoolID {
		return nil, ErrUserNotFound
	}
	if !actor.IsExamOfficer() && user.ID != actor.UserID {
		return nil, NewPermissionError(actor.UserID, "user", id, "read", "teachers may only read their own record")
	}
	return user, nil
}

func parseRosterRow(line string) []string {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func splitPipeList(row []string, index int) []string {
	if index >= len(row) || strings.TrimSpace(row[index]) == "" {
		return nil
	}
	parts := strings.Split(row[index], "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// slugify keeps lowercase letters and digits, truncated to maxLen when
// maxLen is positive.
func slugify(s string, maxLen int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if maxLen > 0 && len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}

const passwordCharset = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ23456789"

func generatePassword(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out), nil
}
