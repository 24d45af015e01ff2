// Package grading holds the business rules of the grading workflow that do
// not touch storage: who may write what and when, how completion is
// counted, and how an appreciation moves between its states.
package grading

import "strings"

// Role is the application role derived from a profile role.
type Role string

const (
	RoleDocente       Role = "Docente"
	RoleSupervisor    Role = "Supervisor"
	RoleAdministrador Role = "Administrador"
)

// RoleFromProfile normalizes a stored profile role. Unknown roles
// (auxiliar, secretaria, ...) are treated as teachers.
func RoleFromProfile(profileRole string) Role {
	switch strings.ToLower(strings.TrimSpace(profileRole)) {
	case "admin", "subdirector":
		return RoleAdministrador
	case "supervisor":
		return RoleSupervisor
	default:
		return RoleDocente
	}
}

// IsStaff reports whether the role reviews and audits rather than grades.
func (r Role) IsStaff() bool {
	return r == RoleSupervisor || r == RoleAdministrador
}

// Period is the part of a grading period the guard needs.
type Period struct {
	ID       int64
	IsLocked bool
}

// CanWrite is the period lock guard: a locked period accepts no writes.
// A nil period is never writable.
func CanWrite(p *Period) bool {
	return p != nil && !p.IsLocked
}

// Permissions is the capability set for one role on one period.
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

// Capabilities derives every permission from the role and the current
// lock state of the period. Callers must pass the period as it is now,
// not a copy kept from an earlier request.
func Capabilities(role Role, p *Period) Permissions {
	writable := CanWrite(p)

	perms := Permissions{
		CanViewDrafts:    role == RoleDocente,
		CanAudit:         role.IsStaff(),
		CanManagePeriods: role == RoleAdministrador,
	}

	if writable {
		gradeWriter := role == RoleDocente || role == RoleAdministrador
		perms.CanEditGrades = gradeWriter
		perms.CanEditBehavior = gradeWriter
		perms.CanEditFamily = gradeWriter
		perms.CanEditAppreciation = true
		perms.CanSubmitAppreciation = role == RoleDocente
		perms.CanApprove = role.IsStaff()
	}

	perms.ReadOnly = !(perms.CanEditGrades || perms.CanEditAppreciation || perms.CanApprove)
	return perms
}

// Action names a mutating operation for Allows.
type Action int

const (
	ActionSetGrade Action = iota
	ActionSetBehavior
	ActionSetFamily
	ActionSaveAppreciation
	ActionSubmitAppreciation
	ActionApproveAppreciation
)

// Allows maps an action onto its capability flag.
func (p Permissions) Allows(a Action) bool {
	switch a {
	case ActionSetGrade:
		return p.CanEditGrades
	case ActionSetBehavior:
		return p.CanEditBehavior
	case ActionSetFamily:
		return p.CanEditFamily
	case ActionSaveAppreciation:
		return p.CanEditAppreciation
	case ActionSubmitAppreciation:
		return p.CanSubmitAppreciation
	case ActionApproveAppreciation:
		return p.CanApprove
	}
	return false
}

// Rejection reasons reported when a write is silently skipped.
const (
	ReasonPeriodLocked = "periodo_bloqueado"
	ReasonRoleDenied   = "rol_sin_permiso"
)

// Check returns "" when the action is allowed, otherwise the reason it
// was skipped. The lock is reported first so a locked period reads the
// same for every role.
func Check(role Role, p *Period, a Action) string {
	if !CanWrite(p) {
		return ReasonPeriodLocked
	}
	if !Capabilities(role, p).Allows(a) {
		return ReasonRoleDenied
	}
	return ""
}
