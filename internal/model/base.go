package model

import "time"

// Timestamps shared by every table.
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// AuditModel adds the profile that last wrote the row.
type AuditModel struct {
	Timestamps
	UpdatedBy *string `gorm:"type:uuid" json:"updated_by,omitempty"`
}
