package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/validator"
)

func newAuthTestService(repo *memRepository) AuthService {
	return NewAuthService(repo, testLogger(), validator.New(), "test-secret", time.Hour)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := newMemRepository()
	auth := newAuthTestService(repo)
	ctx := context.Background()

	resp, err := auth.RegisterSchool(ctx, &RegisterSchoolRequest{
		SchoolName:  "Lagos Model College",
		OfficerName: "Mrs. Adeyemi",
		Email:       "Officer@Example.com",
		Password:    "sup3rsecret",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if resp.User.Role != models.RoleExamOfficer {
		t.Errorf("first account must be an exam officer, got %s", resp.User.Role)
	}
	if resp.User.Email != "officer@example.com" {
		t.Errorf("email not lowercased: %q", resp.User.Email)
	}
	if resp.School.PrintTemplate().HeaderLayout != models.LayoutCenter {
		t.Errorf("school missing default print template")
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}

	actor, err := auth.VerifyToken(ctx, resp.Token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if actor.UserID != resp.User.ID || actor.SchoolID != resp.School.ID {
		t.Errorf("claims mismatch: %+v", actor)
	}
	if !actor.IsExamOfficer() {
		t.Error("actor should carry the officer role")
	}

	// Login is case-insensitive on email.
	login, err := auth.Login(ctx, &LoginRequest{Email: "OFFICER@example.com", Password: "sup3rsecret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Errorf("wrong user returned")
	}

	// A second registration on the same email is refused.
	_, err = auth.RegisterSchool(ctx, &RegisterSchoolRequest{
		SchoolName:  "Another College",
		OfficerName: "Someone",
		Email:       "officer@example.com",
		Password:    "password1",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	repo := newMemRepository()
	auth := newAuthTestService(repo)
	ctx := context.Background()

	if _, err := auth.RegisterSchool(ctx, &RegisterSchoolRequest{
		SchoolName:  "Lagos Model College",
		OfficerName: "Mrs. Adeyemi",
		Email:       "officer@example.com",
		Password:    "sup3rsecret",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Wrong password and unknown account fail the same way.
	if _, err := auth.Login(ctx, &LoginRequest{Email: "officer@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidLogin) {
		t.Errorf("expected ErrInvalidLogin, got %v", err)
	}
	if _, err := auth.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "whatever"}); !errors.Is(err, ErrInvalidLogin) {
		t.Errorf("expected ErrInvalidLogin, got %v", err)
	}

	if _, err := auth.VerifyToken(ctx, "not-a-token"); !errors.Is(err, ErrInvalidLogin) {
		t.Errorf("expected ErrInvalidLogin, got %v", err)
	}
}

func TestAuthService_LegacyPasswordlessLogin(t *testing.T) {
	repo := newMemRepository()
	auth := newAuthTestService(repo)
	ctx := context.Background()

	schoolID := uuid.New().String()
	school := &models.School{ID: schoolID, Name: "Lagos Model College"}
	if err := repo.School().Create(ctx, school); err != nil {
		t.Fatalf("seed school failed: %v", err)
	}

	// Imported teachers without a password accept any password.
	teacher := &models.User{
		ID:       uuid.New().String(),
		Name:     "Mr. Okafor",
		Email:    "okafor@example.com",
		Role:     models.RoleTeacher,
		SchoolID: schoolID,
	}
	if err := repo.User().Create(ctx, teacher); err != nil {
		t.Fatalf("seed teacher failed: %v", err)
	}

	resp, err := auth.Login(ctx, &LoginRequest{Email: "okafor@example.com", Password: "anything-at-all"})
	if err != nil {
		t.Fatalf("legacy login failed: %v", err)
	}
	if resp.User.ID != teacher.ID {
		t.Errorf("wrong user returned")
	}
}
