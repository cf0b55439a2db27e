package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionObjective   QuestionType = "OBJ"
	QuestionFillInBlank QuestionType = "FILL"
	QuestionTheory      QuestionType = "THEORY"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "Easy"
	DifficultyMedium DifficultyLevel = "Medium"
	DifficultyHard   DifficultyLevel = "Hard"
)

type BloomsLevel string

const (
	BloomsRemember   BloomsLevel = "Remember"
	BloomsUnderstand BloomsLevel = "Understand"
	BloomsApply      BloomsLevel = "Apply"
	BloomsAnalyze    BloomsLevel = "Analyze"
	BloomsEvaluate   BloomsLevel = "Evaluate"
	BloomsCreate     BloomsLevel = "Create"
)

// Question belongs to a section of a paper, or to the question bank when
// SectionID is nil. Bank entries with no SchoolID are visible to every school.
type Question struct {
	ID        string  `json:"id" gorm:"primaryKey;size:36"`
	SectionID *string `json:"section_id,omitempty" gorm:"index;size:36"`
	SchoolID  *string `json:"school_id,omitempty" gorm:"index;size:36"`

	Type  QuestionType `json:"type" gorm:"not null;index" validate:"required,oneof=OBJ FILL THEORY"`
	Text  string       `json:"text" gorm:"type:text;not null" validate:"required"`
	Marks int          `json:"marks" gorm:"default:1" validate:"min=0,max=100"`

	// Options stored as a JSONB string array; meaningful for OBJ only
	Options       datatypes.JSON `json:"options,omitempty" gorm:"type:jsonb"`
	CorrectAnswer *string        `json:"correct_answer,omitempty" gorm:"type:text"`
	Rubric        *string        `json:"rubric,omitempty" gorm:"type:text"`

	Subject     *string          `json:"subject,omitempty" gorm:"size:100;index"`
	Topic       *string          `json:"topic,omitempty" gorm:"size:200"`
	Difficulty  *DifficultyLevel `json:"difficulty,omitempty" gorm:"index"`
	BloomsLevel *BloomsLevel     `json:"blooms_level,omitempty"`

	// Order within the owning section
	Position int `json:"position" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList decodes the JSONB options column.
func (q *Question) OptionList() []string {
	return decodeStringList(q.Options)
}

// SetOptions encodes options into the JSONB column. Nil clears the column.
func (q *Question) SetOptions(options []string) error {
	if options == nil {
		q.Options = nil
		return nil
	}
	data, err := json.Marshal(options)
	if err != nil {
		return err
	}
	q.Options = data
	return nil
}

func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

// EncodeStringList builds a JSONB value from a string slice.
func EncodeStringList(list []string) datatypes.JSON {
	if list == nil {
		list = []string{}
	}
	data, _ := json.Marshal(list)
	return data
}
