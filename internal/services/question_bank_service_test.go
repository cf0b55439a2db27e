package services

import (
	"context"
	"testing"

	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/repositories"
	"github.com/examflow-ng/paper-service/internal/validator"
)

func newBankTestEnv(t *testing.T) (*paperTestEnv, QuestionBankService) {
	t.Helper()
	env := newPaperTestEnv(t)
	bank := NewQuestionBankService(env.repo, testLogger(), validator.New())
	return env, bank
}

func addBankSourceQuestion(t *testing.T, env *paperTestEnv, paperID, sectionID string) *models.Question {
	t.Helper()
	ctx := context.Background()
	resp, err := env.papers.AddQuestion(ctx, env.teacher, paperID, sectionID, &AddQuestionRequest{Type: models.QuestionObjective})
	if err != nil {
		t.Fatalf("add question failed: %v", err)
	}
	questions := resp.Sections[0].Questions
	text := "What is the capital of Nigeria?"
	resp, err = env.papers.UpdateQuestion(ctx, env.teacher, paperID, sectionID, questions[len(questions)-1].ID, &QuestionPatchRequest{Text: &text})
	if err != nil {
		t.Fatalf("update question failed: %v", err)
	}
	return &resp.Sections[0].Questions[len(questions)-1]
}

func TestQuestionBankService_SaveAndImport(t *testing.T) {
	env, bank := newBankTestEnv(t)
	ctx := context.Background()

	paper := env.createPaper(t)
	sectionID := paper.Sections[0].ID
	question := addBankSourceQuestion(t, env, paper.ID, sectionID)

	entries, err := bank.SaveToBank(ctx, env.teacher, paper.ID, &SaveToBankRequest{QuestionIDs: []string{question.ID}})
	if err != nil {
		t.Fatalf("save to bank failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.ID == question.ID {
		t.Error("bank entry must get a fresh id")
	}
	if entry.SectionID != nil {
		t.Error("bank entry must be detached from the section")
	}
	if entry.SchoolID == nil || *entry.SchoolID != env.schoolID {
		t.Errorf("teacher-saved entries are school scoped, got %v", entry.SchoolID)
	}
	if entry.Subject == nil || *entry.Subject != "Mathematics" {
		t.Errorf("subject should be inherited from the paper header, got %v", entry.Subject)
	}

	// Teachers asking for a global entry still get a school-scoped one.
	entries, err = bank.SaveToBank(ctx, env.teacher, paper.ID, &SaveToBankRequest{QuestionIDs: []string{question.ID}, Global: true})
	if err != nil {
		t.Fatalf("save to bank failed: %v", err)
	}
	if entries[0].SchoolID == nil {
		t.Error("only officers may publish global entries")
	}

	// Officers can.
	entries, err = bank.SaveToBank(ctx, env.officer, paper.ID, &SaveToBankRequest{QuestionIDs: []string{question.ID}, Global: true})
	if err != nil {
		t.Fatalf("save to bank failed: %v", err)
	}
	if entries[0].SchoolID != nil {
		t.Error("officer global save should have no school scope")
	}

	// Import the first entry back into a new paper.
	target, err := env.papers.Create(ctx, env.teacher, &CreatePaperRequest{})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	resp, err := bank.ImportFromBank(ctx, env.teacher, target.ID, target.Sections[0].ID, &ImportFromBankRequest{
		QuestionIDs: []string{entry.ID},
	})
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	imported := resp.Sections[0].Questions
	if len(imported) != 1 {
		t.Fatalf("expected 1 imported question, got %d", len(imported))
	}
	if imported[0].ID == entry.ID {
		t.Error("imported question must get a fresh id")
	}
	if imported[0].Text != "What is the capital of Nigeria?" {
		t.Errorf("content lost on import: %q", imported[0].Text)
	}

	// The bank entry itself is untouched by the import.
	still, err := env.repo.QuestionBank().GetByIDs(ctx, []string{entry.ID})
	if err != nil || len(still) != 1 {
		t.Fatalf("bank entry disappeared: %v", err)
	}
}

func TestQuestionBankService_Scoping(t *testing.T) {
	env, bank := newBankTestEnv(t)
	ctx := context.Background()

	schoolID := env.schoolID
	otherSchool := env.outsider.SchoolID
	subject := "Biology"

	seed := []*models.Question{
		{ID: "mine", Type: models.QuestionTheory, Text: "Ours", SchoolID: &schoolID, Subject: &subject},
		{ID: "global", Type: models.QuestionTheory, Text: "Everyone's"},
		{ID: "theirs", Type: models.QuestionTheory, Text: "Another school's", SchoolID: &otherSchool},
	}
	if err := env.repo.QuestionBank().SaveBatch(ctx, seed); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	list, err := bank.ListBank(ctx, env.teacher, repositories.BankFilters{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("expected own + global entries, got %d", list.Total)
	}
	for _, q := range list.Questions {
		if q.ID == "theirs" {
			t.Error("another school's entry leaked into the list")
		}
	}

	// Importing another school's entry is silently skipped.
	paper := env.createPaper(t)
	resp, err := bank.ImportFromBank(ctx, env.teacher, paper.ID, paper.Sections[0].ID, &ImportFromBankRequest{
		QuestionIDs: []string{"theirs", "global"},
	})
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if len(resp.Sections[0].Questions) != 1 || resp.Sections[0].Questions[0].Text != "Everyone's" {
		t.Errorf("expected only the global entry to import: %+v", resp.Sections[0].Questions)
	}

	// Deleting is officer-only.
	if err := bank.DeleteFromBank(ctx, env.teacher, "mine"); !IsPermissionError(err) {
		t.Errorf("expected permission error, got %v", err)
	}
	if err := bank.DeleteFromBank(ctx, env.officer, "mine"); err != nil {
		t.Errorf("officer delete failed: %v", err)
	}
}
