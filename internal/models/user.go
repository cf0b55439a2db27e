package models

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleTeacher     UserRole = "TEACHER"
	RoleExamOfficer UserRole = "EXAM_OFFICER"
)

type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:36"`
	Name     string   `json:"name" gorm:"not null;size:100" validate:"required,max=100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	Role     UserRole `json:"role" gorm:"not null;index" validate:"required,oneof=TEACHER EXAM_OFFICER"`
	SchoolID string   `json:"school_id" gorm:"not null;index;size:36" validate:"required"`

	// Teaching assignments, JSONB string arrays
	Subjects datatypes.JSON `json:"subjects" gorm:"type:jsonb"`
	Classes  datatypes.JSON `json:"classes" gorm:"type:jsonb"`

	// bcrypt hash; empty means a legacy record that accepts any password
	PasswordHash string `json:"-" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	School *School `json:"school,omitempty" gorm:"foreignKey:SchoolID"`
}

func (User) TableName() string {
	return "users"
}

// SubjectList decodes the JSONB subjects column.
func (u *User) SubjectList() []string {
	return decodeStringList(u.Subjects)
}

// ClassList decodes the JSONB classes column.
func (u *User) ClassList() []string {
	return decodeStringList(u.Classes)
}
