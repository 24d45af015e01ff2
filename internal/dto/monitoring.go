package dto

import "github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"

// ── monitoring ──

// CompletionQuery GET /completion
type CompletionQuery struct {
	Scope      string `form:"scope"      binding:"required,oneof=course section teacher global"`
	ID         string `form:"id"`
	PeriodID   int64  `form:"period_id"  binding:"required,gt=0"`
	Bar        string `form:"bar"        binding:"omitempty,oneof=approved commented"`
	Categories string `form:"categories"`
}

// SectionsQuery GET /monitoring/sections
type SectionsQuery struct {
	PeriodID int64  `form:"period_id" binding:"required,gt=0"`
	Status   string `form:"status"    binding:"omitempty,oneof=all pending completed incomplete"`
	Query    string `form:"q"         binding:"max=100"`
}

// SectionListResponse dashboard cards, most urgent first
type SectionListResponse struct {
	PeriodID int64                 `json:"period_id"`
	Sections []grading.SectionCard `json:"sections"`
}

// SectionStudentRow a student in the section detail
type SectionStudentRow struct {
	StudentRow
	Academic          TallyResponse `json:"academic"`
	AppreciationState string        `json:"appreciation_state"`
}

// SectionDetailResponse GET /monitoring/sections/:id
type SectionDetailResponse struct {
	Classroom  ClassroomResponse   `json:"classroom"`
	TutorName  string              `json:"tutor_name,omitempty"`
	Students   []SectionStudentRow `json:"students"`
	Completion *CompletionResponse `json:"completion"`
}

// OverviewResponse GET /monitoring/overview
type OverviewResponse struct {
	PeriodID             int64               `json:"period_id"`
	TotalStudents        int                 `json:"total_students"`
	TotalCourses         int                 `json:"total_courses"`
	PendingAppreciations int                 `json:"pending_appreciations"`
	LowGrades            int                 `json:"low_grades"`
	Completion           *CompletionResponse `json:"completion"`
}

// ReportCardCompetency one row of the report card
type ReportCardCompetency struct {
	CompetencyID int64  `json:"competency_id"`
	Name         string `json:"name"`
	Grade        string `json:"grade"`
	Conclusion   string `json:"conclusion"`
}

// ReportCardArea one course block
type ReportCardArea struct {
	AreaID       int64                  `json:"area_id"`
	Name         string                 `json:"name"`
	TeacherName  string                 `json:"teacher_name,omitempty"`
	Competencies []ReportCardCompetency `json:"competencies"`
	Filled       TallyResponse          `json:"filled"`
}

// ReportCardResponse student audit / report card data
type ReportCardResponse struct {
	Student           StudentRow        `json:"student"`
	Classroom         ClassroomResponse `json:"classroom"`
	Period            PeriodResponse    `json:"period"`
	Areas             []ReportCardArea  `json:"areas"`
	Comportamiento    string            `json:"comportamiento"`
	Valores           string            `json:"valores"`
	Family            map[string]string `json:"family"`
	Appreciation      string            `json:"appreciation"`
	AppreciationState string            `json:"appreciation_state"`
}
