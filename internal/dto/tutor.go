package dto

// ── homeroom: behavior and family ──

// SetBehaviorRequest one of the two behavior fields
type SetBehaviorRequest struct {
	PeriodID  int64  `json:"period_id"  binding:"required,gt=0"`
	StudentID string `json:"student_id" binding:"required,uuid"`
	Field     string `json:"field"      binding:"required,oneof=comportamiento valores"`
	Grade     string `json:"grade"      binding:"grade_level"`
}

// SetFamilyRequest one family commitment evaluation
type SetFamilyRequest struct {
	PeriodID     int64  `json:"period_id"     binding:"required,gt=0"`
	StudentID    string `json:"student_id"    binding:"required,uuid"`
	CommitmentID int64  `json:"commitment_id" binding:"required,gt=0"`
	Grade        string `json:"grade"         binding:"grade_level"`
}

// CommitmentResponse family commitment
type CommitmentResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

// TutorStudentRow behavior, family and appreciation of one student
type TutorStudentRow struct {
	StudentRow
	Comportamiento    string           `json:"comportamiento"`
	Valores           string           `json:"valores"`
	Family            map[int64]string `json:"family"`
	AppreciationState string           `json:"appreciation_state"`
}

// TutorSheetResponse homeroom sheet of the caller's classroom
type TutorSheetResponse struct {
	Classroom   ClassroomResponse    `json:"classroom"`
	Period      PeriodResponse       `json:"period"`
	Commitments []CommitmentResponse `json:"commitments"`
	Students    []TutorStudentRow    `json:"students"`
	Completion  *CompletionResponse  `json:"completion"`
}
