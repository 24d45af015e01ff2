package dto

// ── competency grades ──

// SetGradeRequest one grade cell. An empty grade deletes the cell.
// A missing conclusion keeps the stored one.
type SetGradeRequest struct {
	PeriodID     int64   `json:"period_id"     binding:"required,gt=0"`
	AssignmentID int64   `json:"assignment_id" binding:"required,gt=0"`
	StudentID    string  `json:"student_id"    binding:"required,uuid"`
	CompetencyID int64   `json:"competency_id" binding:"required,gt=0"`
	Grade        string  `json:"grade"         binding:"grade_level"`
	Conclusion   *string `json:"conclusion"    binding:"omitempty,max=2000"`
}

// GradeMutationResponse result of SetGrade
type GradeMutationResponse struct {
	MutationResult
	Grade              string `json:"grade"`
	ConclusionRequired bool   `json:"conclusion_required"`
}

// MassConclusionRequest bulk conclusion. CompetencyID "ALL" targets every
// competency of the course.
type MassConclusionRequest struct {
	PeriodID     int64  `json:"period_id"     binding:"required,gt=0"`
	AssignmentID int64  `json:"assignment_id" binding:"required,gt=0"`
	CompetencyID string `json:"competency_id" binding:"required"`
	Filter       string `json:"filter"        binding:"required,oneof=all_with_grade specific_grade empty_conclusion"`
	FilterGrade  string `json:"filter_grade"  binding:"grade_level"`
	Conclusion   string `json:"conclusion"    binding:"max=2000"`
}

// MassConclusionResponse bulk outcome
type MassConclusionResponse struct {
	MutationResult
	Affected int `json:"affected"`
}

// GradeCellResponse one cell of the course sheet
type GradeCellResponse struct {
	StudentID          string `json:"student_id"`
	CompetencyID       int64  `json:"competency_id"`
	Grade              string `json:"grade"`
	Conclusion         string `json:"conclusion"`
	ConclusionRequired bool   `json:"conclusion_required"`
}

// StudentRow a student in a sheet
type StudentRow struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// CourseSheetResponse grading matrix of one course and period
type CourseSheetResponse struct {
	AssignmentID int64                `json:"assignment_id"`
	CourseName   string               `json:"course_name"`
	Classroom    ClassroomResponse    `json:"classroom"`
	Period       PeriodResponse       `json:"period"`
	Competencies []CompetencyResponse `json:"competencies"`
	Students     []StudentRow         `json:"students"`
	Grades       []GradeCellResponse  `json:"grades"`
	Completion   *CompletionResponse  `json:"completion"`
}
