package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/examflow-ng/paper-service/internal/repositories"
	"github.com/examflow-ng/paper-service/internal/validator"
)

type importExportService struct {
	repo      repositories.Repository
	users     UserService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, users UserService, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		users:     users,
		logger:    logger,
		validator: validator,
	}
}

// ImportTeachersFromExcel reads an xlsx roster and funnels it through the
// same per-row import as the text format: Name, Email, Password,
// Subjects(|), Classes(|).
func (s *importExportService) ImportTeachersFromExcel(ctx context.Context, actor Actor, data []byte) (*BulkImportResult, error) {
	if !actor.IsExamOfficer() {
		return nil, NewPermissionError(actor.UserID, "user", "", "import", "requires exam officer role")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, validator.ValidationErrors{{
			Field:   "file",
			Message: "not a readable xlsx workbook",
			Rule:    "xlsx",
		}}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	var b strings.Builder
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.ReplaceAll(cell, ",", " ")
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}

	return s.users.BulkImportTeachers(ctx, actor, &BulkImportRequest{CSV: b.String()})
}

func (s *importExportService) ExportTeachersToExcel(ctx context.Context, actor Actor) ([]byte, error) {
	if !actor.IsExamOfficer() {
		return nil, NewPermissionError(actor.UserID, "user", "", "export", "requires exam officer role")
	}

	teachers, err := s.repo.User().GetSchoolTeachers(ctx, actor.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Teachers"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Name", "Email", "Subjects", "Classes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for i, teacher := range teachers {
		values := []string{
			teacher.Name,
			teacher.Email,
			strings.Join(teacher.SubjectList(), "|"),
			strings.Join(teacher.ClassList(), "|"),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}

	s.logger.Info("Teachers exported", "school_id", actor.SchoolID, "count", len(teachers))
	return buf.Bytes(), nil
}

func (s *importExportService) ExportBankToExcel(ctx context.Context, actor Actor, filters repositories.BankFilters) ([]byte, error) {
	filters.Limit = 0
	filters.Offset = 0

	questions, _, err := s.repo.QuestionBank().List(ctx, actor.SchoolID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Question Bank"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Type", "Text", "Marks", "Options", "Correct Answer", "Subject", "Topic", "Difficulty"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for i, q := range questions {
		values := []interface{}{
			string(q.Type),
			q.Text,
			q.Marks,
			strings.Join(q.OptionList(), "|"),
			deref(q.CorrectAnswer),
			deref(q.Subject),
			deref(q.Topic),
		}
		if q.Difficulty != nil {
			values = append(values, string(*q.Difficulty))
		} else {
			values = append(values, "")
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}

	s.logger.Info("Bank exported", "school_id", actor.SchoolID, "count", len(questions))
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
