package model

// StudentGrade student_grades, unique on (student, competency, bimestre).
// Rows only exist for non-empty grades.
type StudentGrade struct {
	ID                    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StudentID             string  `gorm:"type:uuid;not null"                             json:"student_id"`
	CompetencyID          int64   `gorm:"not null"                                       json:"competency_id"`
	BimestreID            int64   `gorm:"not null;index"                                 json:"bimestre_id"`
	Grade                 string  `gorm:"type:varchar(2);not null"                       json:"grade"`
	DescriptiveConclusion *string `gorm:"type:text"                                      json:"descriptive_conclusion,omitempty"`
	AuditModel
}

func (StudentGrade) TableName() string { return "student_grades" }

// Conclusion returns the conclusion text or "".
func (g *StudentGrade) Conclusion() string {
	if g.DescriptiveConclusion == nil {
		return ""
	}
	return *g.DescriptiveConclusion
}

// BehaviorGrade student_behavior_grades: comportamiento and valores.
type BehaviorGrade struct {
	ID            string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StudentID     string  `gorm:"type:uuid;not null"                             json:"student_id"`
	BimestreID    int64   `gorm:"not null"                                       json:"bimestre_id"`
	BehaviorGrade *string `gorm:"type:varchar(2)"                                json:"behavior_grade,omitempty"`
	ValuesGrade   *string `gorm:"type:varchar(2)"                                json:"values_grade,omitempty"`
	AuditModel
}

func (BehaviorGrade) TableName() string { return "student_behavior_grades" }

// FilledSlots counts the non-empty fields.
func (b *BehaviorGrade) FilledSlots() int {
	n := 0
	if b.BehaviorGrade != nil && *b.BehaviorGrade != "" {
		n++
	}
	if b.ValuesGrade != nil && *b.ValuesGrade != "" {
		n++
	}
	return n
}

// FamilyCommitment family_commitments
type FamilyCommitment struct {
	ID          int64  `gorm:"primaryKey"                 json:"id"`
	Description string `gorm:"type:varchar(255);not null" json:"description"`
	Active      bool   `gorm:"not null;default:true"      json:"active"`
}

func (FamilyCommitment) TableName() string { return "family_commitments" }

// FamilyEvaluation family_evaluations, unique on (student, commitment, bimestre).
type FamilyEvaluation struct {
	ID           string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StudentID    string `gorm:"type:uuid;not null"                             json:"student_id"`
	CommitmentID int64  `gorm:"not null"                                       json:"commitment_id"`
	BimestreID   int64  `gorm:"not null"                                       json:"bimestre_id"`
	Grade        string `gorm:"type:varchar(2);not null"                       json:"grade"`
	AuditModel
}

func (FamilyEvaluation) TableName() string { return "family_evaluations" }

// StudentAppreciation student_appreciations. IsApproved is tri-state:
// nil draft, false sent for review, true approved.
type StudentAppreciation struct {
	ID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StudentID  string  `gorm:"type:uuid;not null"                             json:"student_id"`
	BimestreID int64   `gorm:"not null"                                       json:"bimestre_id"`
	TutorID    *string `gorm:"type:uuid"                                      json:"tutor_id,omitempty"`
	Comment    *string `gorm:"type:text"                                      json:"comment,omitempty"`
	IsApproved *bool   `                                                      json:"is_approved"`
	ApprovedBy *string `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	Student    *Student `gorm:"foreignKey:StudentID"                          json:"student,omitempty"`
	Timestamps
}

func (StudentAppreciation) TableName() string { return "student_appreciations" }
