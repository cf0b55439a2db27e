package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/repositories"
	"github.com/examflow-ng/paper-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, jwtSecret string, tokenTTL time.Duration) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

type authClaims struct {
	SchoolID string `json:"school_id"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// RegisterSchool creates a school with its default print template and the
// first exam officer account in one transaction.
func (s *authService) RegisterSchool(ctx context.Context, req *RegisterSchoolRequest) (*AuthResponse, error) {
	s.logger.Info("Registering school", "school_name", req.SchoolName, "email", req.Email)

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

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	school := &models.School{
		ID:   uuid.New().String(),
		Name: req.SchoolName,
	}
	if err := school.SetPrintTemplate(models.DefaultPrintTemplate()); err != nil {
		return nil, fmt.Errorf("failed to encode default template: %w", err)
	}

	officer := &models.User{
		ID:           uuid.New().String(),
		Name:         req.OfficerName,
		Email:        email,
		Role:         models.RoleExamOfficer,
		SchoolID:     school.ID,
		Subjects:     models.EncodeStringList(nil),
		Classes:      models.EncodeStringList(nil),
		PasswordHash: string(hash),
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.School().Create(ctx, school); err != nil {
			return fmt.Errorf("failed to create school: %w", err)
		}
		if err := tx.User().Create(ctx, officer); err != nil {
			return fmt.Errorf("failed to create exam officer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(officer)
	if err != nil {
		return nil, err
	}

	s.logger.Info("School registered", "school_id", school.ID, "officer_id", officer.ID)

	return &AuthResponse{Token: token, User: officer, School: school}, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.User().GetByEmail(ctx, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidLogin
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// Records imported without a password accept any password until one
	// is set.
	if user.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			return nil, ErrInvalidLogin
		}
	}

	school, err := s.repo.School().GetByID(ctx, user.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to load school: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)

	return &AuthResponse{Token: token, User: user, School: school}, nil
}

func (s *authService) VerifyToken(ctx context.Context, tokenString string) (*Actor, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidLogin
	}

	return &Actor{
		UserID:   claims.Subject,
		SchoolID: claims.SchoolID,
		Role:     models.UserRole(claims.Role),
		Name:     claims.Name,
	}, nil
}

func (s *authService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := authClaims{
		SchoolID: user.SchoolID,
		Role:     string(user.Role),
		Name:     user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
