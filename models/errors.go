package models

import "errors"

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation is returned for malformed input such as inverted time ranges.
	ErrValidation = errors.New("validation failed")

	// ErrSlotUnavailable is returned when no unblocked availability window
	// covers the requested slot.
	ErrSlotUnavailable = errors.New("slot not covered by doctor availability")

	// ErrDoubleBooking is returned when another non-cancelled appointment
	// overlaps the requested interval.
	ErrDoubleBooking = errors.New("conflicting appointment exists")
)
