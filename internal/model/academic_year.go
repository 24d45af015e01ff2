package model

import "time"

// AcademicYear academic_years. Exactly one row is active.
type AcademicYear struct {
	ID        int64      `gorm:"primaryKey"                                    json:"id"`
	Year      int        `gorm:"not null"                                      json:"year"`
	Status    string     `gorm:"type:varchar(20);not null;default:'planificación'" json:"status"` // abierto | cerrado | planificación
	IsActive  bool       `gorm:"not null;default:false"                        json:"is_active"`
	StartDate *time.Time `gorm:"type:date"                                     json:"start_date,omitempty"`
	EndDate   *time.Time `gorm:"type:date"                                     json:"end_date,omitempty"`
	Timestamps
}

func (AcademicYear) TableName() string { return "academic_years" }

// Bimestre bimestres, the grading period.
type Bimestre struct {
	ID             int64     `gorm:"primaryKey"                 json:"id"`
	AcademicYearID int64     `gorm:"not null;index"             json:"academic_year_id"`
	Name           string    `gorm:"type:varchar(60);not null"  json:"name"`
	StartDate      time.Time `gorm:"type:date;not null"         json:"start_date"`
	EndDate        time.Time `gorm:"type:date;not null"         json:"end_date"`
	IsLocked       bool      `gorm:"not null;default:false"     json:"is_locked"`
	Timestamps
}

func (Bimestre) TableName() string { return "bimestres" }

// Contains reports whether day falls within the period, inclusive.
func (b *Bimestre) Contains(day time.Time) bool {
	d := truncateDay(day)
	return !d.Before(truncateDay(b.StartDate)) && !d.After(truncateDay(b.EndDate))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
