package dto

// ── periods ──

// PeriodResponse a bimestre with the caller's capabilities on it
type PeriodResponse struct {
	ID             int64        `json:"id"`
	AcademicYearID int64        `json:"academic_year_id"`
	Name           string       `json:"name"`
	StartDate      string       `json:"start_date"`
	EndDate        string       `json:"end_date"`
	IsLocked       bool         `json:"is_locked"`
	IsCurrent      bool         `json:"is_current"`
	Permissions    *Permissions `json:"permissions,omitempty"`
}

// Permissions mirrors grading.Permissions on the wire.
type Permissions struct {
	CanEditGrades         bool `json:"can_edit_grades"`
	CanEditBehavior       bool `json:"can_edit_behavior"`
	CanEditFamily         bool `json:"can_edit_family"`
	CanEditAppreciation   bool `json:"can_edit_appreciation"`
	CanSubmitAppreciation bool `json:"can_submit_appreciation"`
	CanApprove            bool `json:"can_approve"`
	CanViewDrafts         bool `json:"can_view_drafts"`
	CanAudit              bool `json:"can_audit"`
	CanManagePeriods      bool `json:"can_manage_periods"`
	ReadOnly              bool `json:"read_only"`
}

// PeriodListResponse bimestres of the active academic year
type PeriodListResponse struct {
	AcademicYearID int64            `json:"academic_year_id"`
	Year           int              `json:"year"`
	Periods        []PeriodResponse `json:"periods"`
}

// SetLockRequest admin lock toggle
type SetLockRequest struct {
	Locked *bool `json:"locked" binding:"required"`
}
