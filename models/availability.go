package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

type Recurrence string

const (
	RecurrenceWeekly   Recurrence = "WEEKLY"
	RecurrenceBiweekly Recurrence = "BIWEEKLY"
	RecurrenceMonthly  Recurrence = "MONTHLY"
	RecurrenceOnce     Recurrence = "ONCE"
)

// SlotGranularityMinutes is the fixed spacing between bookable slots.
const SlotGranularityMinutes = 15

// Availability is a recurring weekly window during which a doctor can be
// booked, bounded by an inclusive validity date range. A blocked window is
// kept as an exception record (vacation, meeting) and yields no slots.
type Availability struct {
	ID          string     `json:"id" gorm:"primaryKey;column:availability_id"`
	DoctorID    string     `json:"doctor_id" gorm:"index;not null"`
	Doctor      User       `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	DayOfWeek   DayOfWeek  `json:"day_of_week"`
	StartTime   TimeOfDay  `json:"start_time" gorm:"type:varchar(5)"`
	EndTime     TimeOfDay  `json:"end_time" gorm:"type:varchar(5)"`
	ValidFrom   time.Time  `json:"valid_from" gorm:"type:date"`
	ValidTo     time.Time  `json:"valid_to" gorm:"type:date"`
	Recurrence  Recurrence `json:"recurrence"`
	Blocked     bool       `json:"blocked"`
	BlockReason string     `json:"block_reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (a *Availability) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Recurrence == "" {
		a.Recurrence = RecurrenceWeekly
	}
	return nil
}

// AppliesOn reports whether the window recurs on the given date: matching
// day of week and date inside the inclusive validity range.
func (a *Availability) AppliesOn(date time.Time) bool {
	if DayOfWeek(date.Weekday()) != a.DayOfWeek {
		return false
	}
	d := DateOnly(date)
	return !d.Before(DateOnly(a.ValidFrom)) && !d.After(DateOnly(a.ValidTo))
}

// CoversTime reports whether the time of day falls inside [start, end).
func (a *Availability) CoversTime(t TimeOfDay) bool {
	return !t.Before(a.StartTime) && t.Before(a.EndTime)
}

// OverlapsDates tests inclusive overlap of the validity ranges.
func (a *Availability) OverlapsDates(other *Availability) bool {
	return !DateOnly(a.ValidFrom).After(DateOnly(other.ValidTo)) &&
		!DateOnly(other.ValidFrom).After(DateOnly(a.ValidTo))
}

// OverlapsTimes tests inclusive overlap of the time ranges. Windows that
// share an endpoint count as overlapping.
func (a *Availability) OverlapsTimes(other *Availability) bool {
	return !a.StartTime.After(other.EndTime) && !other.StartTime.After(a.EndTime)
}

// ConflictsWith reports whether two windows of the same doctor collide:
// same day of week, overlapping validity ranges and overlapping time ranges.
func (a *Availability) ConflictsWith(other *Availability) bool {
	return a.DayOfWeek == other.DayOfWeek && a.OverlapsDates(other) && a.OverlapsTimes(other)
}

// DateOnly truncates a timestamp to its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
