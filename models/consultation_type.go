package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConsultationType describes a bookable consultation: its standard duration
// and whether a caregiver has to attend. Names follow the catalog convention
// (SUI-20, COG-40, MED-15, ANN-45, TEL-10).
type ConsultationType struct {
	ID                     string `json:"id" gorm:"primaryKey;column:type_id"`
	Name                   string `json:"name"`
	Description            string `json:"description"`
	DefaultDurationMinutes int    `json:"default_duration_minutes"`
	RequiresCaregiver      bool   `json:"requires_caregiver"`
	EnvironmentPreset      string `json:"environment_preset"`
	Active                 bool   `json:"active"`
}

func (t *ConsultationType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
