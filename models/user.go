package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RolePatient   UserRole = "PATIENT"
	RoleDoctor    UserRole = "DOCTOR"
	RoleCaregiver UserRole = "CAREGIVER"
	RoleAdmin     UserRole = "ADMIN"
)

// User is the scheduling engine's local copy of a directory record. Profile
// management lives elsewhere; only identity and role matter here.
type User struct {
	ID                string    `json:"id" gorm:"primaryKey;column:user_id"`
	Name              string    `json:"name" gorm:"not null"`
	Email             string    `json:"email" gorm:"unique;not null"`
	Role              UserRole  `json:"role"`
	Phone             string    `json:"phone,omitempty"`
	Specialty         string    `json:"specialty,omitempty"`
	RequiresCaregiver bool      `json:"requires_caregiver"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
