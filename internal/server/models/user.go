package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the stored identity owned by the user directory. PasswordHash
// always holds a bcrypt hash, never plaintext.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
