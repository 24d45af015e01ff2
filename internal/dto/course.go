package dto

// ── teaching load ──

// CompetencyResponse a competency of a course
type CompetencyResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ClassroomResponse short classroom info
type ClassroomResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level"`
}

// CourseLoadResponse one course assignment of the caller
type CourseLoadResponse struct {
	AssignmentID int64                `json:"assignment_id"`
	CourseName   string               `json:"course_name"`
	Classroom    ClassroomResponse    `json:"classroom"`
	Competencies []CompetencyResponse `json:"competencies"`
	IsTutor      bool                 `json:"is_tutor"`
	StudentCount int                  `json:"student_count"`
	Progress     TallyResponse        `json:"progress"`
}

// TeacherLoadResponse the caller's load for a period
type TeacherLoadResponse struct {
	PeriodID      int64                `json:"period_id"`
	Courses       []CourseLoadResponse `json:"courses"`
	TutorSection  *TutorSectionLoad    `json:"tutor_section,omitempty"`
	OverallStatus *CompletionResponse  `json:"overall,omitempty"`
}

// TutorSectionLoad homeroom progress of the caller
type TutorSectionLoad struct {
	Classroom    ClassroomResponse   `json:"classroom"`
	StudentCount int                 `json:"student_count"`
	Completion   *CompletionResponse `json:"completion"`
}

// AreaResponse curricular area
type AreaResponse struct {
	ID           int64                `json:"id"`
	Name         string               `json:"name"`
	Level        string               `json:"level"`
	Order        int                  `json:"order"`
	Active       bool                 `json:"active"`
	Competencies []CompetencyResponse `json:"competencies"`
}

// SetAreaActiveRequest admin toggle
type SetAreaActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}
