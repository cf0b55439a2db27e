package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/repositories"
	"github.com/examflow-ng/paper-service/internal/validator"
)

func newImportExportTestEnv() (*memRepository, ImportExportService, Actor) {
	repo := newMemRepository()
	logger := testLogger()
	v := validator.New()
	users := NewUserService(repo, logger, v)
	service := NewImportExportService(repo, users, logger, v)

	officer := Actor{UserID: "officer-1", SchoolID: "school-1", Role: models.RoleExamOfficer, Name: "Mrs. Adeyemi"}
	return repo, service, officer
}

func buildRosterWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("bad coordinates: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("set cell failed: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook failed: %v", err)
	}
	return buf.Bytes()
}

func TestImportExportService_ImportTeachersFromExcel(t *testing.T) {
	repo, service, officer := newImportExportTestEnv()
	ctx := context.Background()

	workbook := buildRosterWorkbook(t, [][]string{
		{"Name", "Email", "Password", "Subjects", "Classes"},
		{"Mr. Okafor", "okafor@example.com", "pass1234", "Mathematics|Physics", "SS1|SS2"},
		{"Ms. Bello", "bello@example.com"},
		{"Broken Row"},
	})

	result, err := service.ImportTeachersFromExcel(ctx, officer, workbook)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if len(result.Imported) != 2 {
		t.Fatalf("expected 2 imported, got %d: %+v", len(result.Imported), result.Errors)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 row error, got %+v", result.Errors)
	}

	okafor, err := repo.User().GetByEmail(ctx, "okafor@example.com")
	if err != nil {
		t.Fatalf("imported teacher missing: %v", err)
	}
	if got := okafor.SubjectList(); len(got) != 2 || got[0] != "Mathematics" {
		t.Errorf("subjects not carried through excel: %v", got)
	}

	// Not a workbook at all.
	_, err = service.ImportTeachersFromExcel(ctx, officer, []byte("plain text"))
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Errorf("expected validation errors, got %v", err)
	}

	teacherActor := Actor{UserID: "t-1", SchoolID: officer.SchoolID, Role: models.RoleTeacher}
	if _, err := service.ImportTeachersFromExcel(ctx, teacherActor, workbook); !IsPermissionError(err) {
		t.Errorf("expected permission error, got %v", err)
	}
}

func TestImportExportService_ExportTeachersToExcel(t *testing.T) {
	repo, service, officer := newImportExportTestEnv()
	ctx := context.Background()

	teacher := &models.User{
		ID:       "t-1",
		Name:     "Mr. Okafor",
		Email:    "okafor@example.com",
		Role:     models.RoleTeacher,
		SchoolID: officer.SchoolID,
		Subjects: models.EncodeStringList([]string{"Mathematics", "Physics"}),
		Classes:  models.EncodeStringList([]string{"SS1"}),
	}
	if err := repo.User().Create(ctx, teacher); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	data, err := service.ExportTeachersToExcel(ctx, officer)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported data is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Teachers")
	if err != nil {
		t.Fatalf("missing Teachers sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 teacher, got %d rows", len(rows))
	}
	if rows[0][0] != "Name" || rows[0][1] != "Email" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	if rows[1][1] != "okafor@example.com" || rows[1][2] != "Mathematics|Physics" {
		t.Errorf("unexpected teacher row: %v", rows[1])
	}
}

func TestImportExportService_ExportBankToExcel(t *testing.T) {
	repo, service, officer := newImportExportTestEnv()
	ctx := context.Background()

	schoolID := officer.SchoolID
	subject := "Mathematics"
	answer := "4"
	question := &models.Question{
		ID:            "q-1",
		Type:          models.QuestionObjective,
		Text:          "What is 2 + 2?",
		Marks:         2,
		SchoolID:      &schoolID,
		Subject:       &subject,
		CorrectAnswer: &answer,
	}
	if err := question.SetOptions([]string{"2", "3", "4", "5"}); err != nil {
		t.Fatalf("set options failed: %v", err)
	}
	if err := repo.QuestionBank().SaveBatch(ctx, []*models.Question{question}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	data, err := service.ExportBankToExcel(ctx, officer, repositories.BankFilters{})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported data is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Question Bank")
	if err != nil {
		t.Fatalf("missing Question Bank sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 question, got %d rows", len(rows))
	}
	if rows[1][0] != "OBJ" || rows[1][3] != "2|3|4|5" || rows[1][4] != "4" {
		t.Errorf("unexpected question row: %v", rows[1])
	}
}
