package dto

// ── auth ──

// LoginRequest email/password login
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// TokenResponse issued access token
type TokenResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	Profile     ProfileResponse `json:"profile"`
}

// ProfileResponse the authenticated staff member
type ProfileResponse struct {
	ID               string `json:"id"`
	FullName         string `json:"full_name"`
	Email            string `json:"email,omitempty"`
	Role             string `json:"role"`     // stored profile role
	AppRole          string `json:"app_role"` // Docente | Supervisor | Administrador
	TutorClassroomID *int64 `json:"tutor_classroom_id,omitempty"`
}
