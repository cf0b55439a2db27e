package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type HeaderLayout string

const (
	LayoutLeft   HeaderLayout = "LEFT"
	LayoutCenter HeaderLayout = "CENTER"
)

// PrintTemplate controls how a school's papers are laid out when printed.
type PrintTemplate struct {
	HeaderLayout HeaderLayout `json:"header_layout" validate:"omitempty,oneof=LEFT CENTER"`
	ShowExamType bool         `json:"show_exam_type"`
	FooterText   string       `json:"footer_text" validate:"max=200"`
	FontFamily   string       `json:"font_family" validate:"omitempty,oneof=sans serif mono"`
	ThemeColor   string       `json:"theme_color" validate:"omitempty,hexcolor"`
}

// DefaultPrintTemplate is applied to every school at registration.
func DefaultPrintTemplate() PrintTemplate {
	return PrintTemplate{
		HeaderLayout: LayoutCenter,
		ShowExamType: true,
		FooterText:   "Exam produced by ExamFlow",
		FontFamily:   "sans",
		ThemeColor:   "#000000",
	}
}

type School struct {
	ID      string  `json:"id" gorm:"primaryKey;size:36"`
	Name    string  `json:"name" gorm:"not null;size:200" validate:"required,max=200"`
	LogoURL *string `json:"logo_url" gorm:"size:500"`

	// Template stored as JSONB
	Template datatypes.JSON `json:"template" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Users  []User      `json:"-" gorm:"foreignKey:SchoolID"`
	Papers []ExamPaper `json:"-" gorm:"foreignKey:SchoolID"`
}

func (School) TableName() string {
	return "schools"
}

// PrintTemplate decodes the JSONB template column, falling back to the
// default template when the column is empty or malformed.
func (s *School) PrintTemplate() PrintTemplate {
	tpl := DefaultPrintTemplate()
	if len(s.Template) == 0 {
		return tpl
	}
	if err := json.Unmarshal(s.Template, &tpl); err != nil {
		return DefaultPrintTemplate()
	}
	return tpl
}

// SetPrintTemplate encodes the template into the JSONB column.
func (s *School) SetPrintTemplate(tpl PrintTemplate) error {
	data, err := json.Marshal(tpl)
	if err != nil {
		return err
	}
	s.Template = data
	return nil
}
