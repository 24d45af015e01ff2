package dto

// ── appreciations ──

// SaveAppreciationRequest debounced draft save
type SaveAppreciationRequest struct {
	PeriodID  int64  `json:"period_id"  binding:"required,gt=0"`
	StudentID string `json:"student_id" binding:"required,uuid"`
	Comment   string `json:"comment"    binding:"max=4000"`
}

// AppreciationKeyRequest identifies an appreciation for submit/toggle
type AppreciationKeyRequest struct {
	PeriodID  int64  `json:"period_id"  binding:"required,gt=0"`
	StudentID string `json:"student_id" binding:"required,uuid"`
}

// SetApprovalRequest explicit approval state
type SetApprovalRequest struct {
	PeriodID  int64  `json:"period_id"  binding:"required,gt=0"`
	StudentID string `json:"student_id" binding:"required,uuid"`
	Approved  *bool  `json:"approved"   binding:"required"`
}

// AppreciationListQuery query of GET /appreciations
type AppreciationListQuery struct {
	PeriodID    int64  `form:"period_id"    binding:"required,gt=0"`
	ClassroomID int64  `form:"classroom_id" binding:"omitempty,gt=0"`
	Status      string `form:"status"       binding:"omitempty,oneof=pending approved all"`
	Query       string `form:"q"            binding:"max=100"`
}

// AppreciationResponse one appreciation with its derived state
type AppreciationResponse struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	ClassroomID int64  `json:"classroom_id,omitempty"`
	PeriodID    int64  `json:"period_id"`
	Comment     string `json:"comment"`
	IsApproved  *bool  `json:"is_approved"`
	State       string `json:"state"`
	Sync        string `json:"sync"` // synced | pending | failed
	SyncError   string `json:"sync_error,omitempty"`
}

// AppreciationMutationResponse result of save/submit/approval
type AppreciationMutationResponse struct {
	MutationResult
	Appreciation *AppreciationResponse `json:"appreciation,omitempty"`
}

// ImproveTextRequest writing assistant input
type ImproveTextRequest struct {
	Text string `json:"text" binding:"required,max=4000"`
}

// ImproveTextResponse writing assistant suggestion; never applied automatically
type ImproveTextResponse struct {
	Available  bool   `json:"available"`
	Suggestion string `json:"suggestion,omitempty"`
}
