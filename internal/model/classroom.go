package model

import (
	"fmt"
	"strings"
)

// Classroom classrooms, a grade/section pair of one level.
type Classroom struct {
	ID      int64  `gorm:"primaryKey"                json:"id"`
	Level   string `gorm:"type:varchar(20);not null" json:"level"` // inicial | primaria | secundaria
	Grade   string `gorm:"type:varchar(20);not null" json:"grade"`
	Section string `gorm:"type:varchar(10);not null" json:"section"`
	Active  bool   `gorm:"not null;default:true"     json:"active"`
	Timestamps
}

func (Classroom) TableName() string { return "classrooms" }

// DisplayName renders e.g. `3ro "B" Primaria`.
func (c *Classroom) DisplayName() string {
	level := c.Level
	if level != "" {
		level = strings.ToUpper(level[:1]) + level[1:]
	}
	return strings.TrimSpace(fmt.Sprintf("%s %q %s", c.Grade, c.Section, level))
}

// Student students
type Student struct {
	ID             string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FirstName      string  `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName       string  `gorm:"type:varchar(100);not null"                     json:"last_name"`
	DNI            *string `gorm:"column:dni;type:varchar(20)"                    json:"dni,omitempty"`
	ClassroomID    *int64  `gorm:"index"                                          json:"classroom_id,omitempty"`
	AcademicStatus *string `gorm:"type:varchar(30)"                               json:"academic_status,omitempty"`
	Timestamps
}

func (Student) TableName() string { return "students" }

// FullName is "Last, First".
func (s *Student) FullName() string {
	return s.LastName + ", " + s.FirstName
}
