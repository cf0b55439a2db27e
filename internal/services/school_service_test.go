package services

import (
	"context"
	"testing"

	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/validator"
)

func TestSchoolService_UpdateTemplate(t *testing.T) {
	env := newPaperTestEnv(t)
	ctx := context.Background()
	schools := NewSchoolService(env.repo, testLogger(), validator.New())

	logo := "https://cdn.example.com/lagos-model.png"
	req := &TemplateRequest{
		HeaderLayout: models.LayoutLeft,
		ShowExamType: false,
		FooterText:   "Good luck!",
		FontFamily:   "serif",
		ThemeColor:   "#1a6b3c",
		LogoURL:      &logo,
	}

	// Teachers cannot change the template.
	if _, err := schools.UpdateTemplate(ctx, env.teacher, req); !IsPermissionError(err) {
		t.Errorf("expected permission error, got %v", err)
	}

	school, err := schools.UpdateTemplate(ctx, env.officer, req)
	if err != nil {
		t.Fatalf("update template failed: %v", err)
	}
	tpl := school.PrintTemplate()
	if tpl.HeaderLayout != models.LayoutLeft || tpl.FontFamily != "serif" || tpl.ThemeColor != "#1a6b3c" {
		t.Errorf("template not stored: %+v", tpl)
	}
	if school.LogoURL == nil || *school.LogoURL != logo {
		t.Errorf("logo not stored: %v", school.LogoURL)
	}

	// The template shows up on every print view from now on.
	paper := env.createPaper(t)
	view, err := env.papers.GetPrintView(ctx, env.teacher, paper.ID)
	if err != nil {
		t.Fatalf("print view failed: %v", err)
	}
	if view.Template.HeaderLayout != models.LayoutLeft {
		t.Errorf("print view did not pick up the template: %+v", view.Template)
	}
	if view.LogoURL == nil || *view.LogoURL != logo {
		t.Errorf("print view missing logo: %v", view.LogoURL)
	}
}
