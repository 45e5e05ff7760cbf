package model

import "time"

// User mirrors the identity record managed by the external auth collaborator.
// Rows are created upstream; this service only reads them for ownership checks.
type User struct {
	ID        string `gorm:"primaryKey;size:36"`
	Email     string `gorm:"uniqueIndex"`
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
