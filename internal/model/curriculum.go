package model

// CurricularArea curricular_areas. A course is an area taught in a classroom.
type CurricularArea struct {
	ID           int64        `gorm:"primaryKey"                   json:"id"`
	Name         string       `gorm:"type:varchar(120);not null"   json:"name"`
	Level        string       `gorm:"type:varchar(20);not null"    json:"level"`
	Order        int          `gorm:"column:order;not null"        json:"order"`
	Active       bool         `gorm:"not null;default:true"        json:"active"`
	Competencies []Competency `gorm:"foreignKey:AreaID"            json:"competencies,omitempty"`
	Timestamps
}

func (CurricularArea) TableName() string { return "curricular_areas" }

// Competency competencies
type Competency struct {
	ID     int64  `gorm:"primaryKey"                  json:"id"`
	AreaID int64  `gorm:"not null;index"              json:"area_id"`
	Name   string `gorm:"type:varchar(255);not null"  json:"name"`
}

func (Competency) TableName() string { return "competencies" }

// CourseAssignment course_assignments: one teacher, one area, one classroom.
type CourseAssignment struct {
	ID           int64           `gorm:"primaryKey"     json:"id"`
	AreaID       int64           `gorm:"not null"       json:"area_id"`
	ClassroomID  int64           `gorm:"not null"       json:"classroom_id"`
	ProfileID    *string         `gorm:"type:uuid"      json:"profile_id,omitempty"`
	HoursPerWeek *int            `                      json:"hours_per_week,omitempty"`
	Area         *CurricularArea `gorm:"foreignKey:AreaID"      json:"area,omitempty"`
	Classroom    *Classroom      `gorm:"foreignKey:ClassroomID" json:"classroom,omitempty"`
	Profile      *Profile        `gorm:"foreignKey:ProfileID"   json:"profile,omitempty"`
	Timestamps
}

func (CourseAssignment) TableName() string { return "course_assignments" }

// CompetencyIDs lists the ids of the preloaded area competencies.
func (a *CourseAssignment) CompetencyIDs() []int64 {
	if a.Area == nil {
		return nil
	}
	ids := make([]int64, 0, len(a.Area.Competencies))
	for _, c := range a.Area.Competencies {
		ids = append(ids, c.ID)
	}
	return ids
}

// CourseName is the area name, or "" when not preloaded.
func (a *CourseAssignment) CourseName() string {
	if a.Area == nil {
		return ""
	}
	return a.Area.Name
}
