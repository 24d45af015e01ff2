package model

// Profile profiles: staff accounts.
type Profile struct {
	ID               string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FullName         string  `gorm:"type:varchar(150);not null"                     json:"full_name"`
	Email            *string `gorm:"type:varchar(150);uniqueIndex"                  json:"email,omitempty"`
	PasswordHash     string  `gorm:"type:varchar(100);not null"                     json:"-"`
	Role             string  `gorm:"type:varchar(20);not null;default:'docente'"    json:"role"`
	Active           bool    `gorm:"not null;default:true"                          json:"active"`
	TutorClassroomID *int64  `gorm:"index"                                          json:"tutor_classroom_id,omitempty"`
	Timestamps
}

func (Profile) TableName() string { return "profiles" }

// IsTutorOf reports whether the profile is homeroom teacher of classroomID.
func (p *Profile) IsTutorOf(classroomID int64) bool {
	return p.TutorClassroomID != nil && *p.TutorClassroomID == classroomID
}
