package services

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/evercare/scheduling/models"
	"github.com/evercare/scheduling/repositories"
	"go.uber.org/zap"
)

// AvailabilityService manages recurring weekly windows and answers slot
// queries. IsBookable never consults booked appointments; conflict with
// existing bookings is the AppointmentService's half of the contract. Only
// EnumerateSlots filters conflicting slots so callers get bookable times.
type AvailabilityService struct {
	windows      repositories.AvailabilityRepository
	appointments repositories.AppointmentRepository
	users        repositories.UserRepository
	log          *zap.Logger
}

func NewAvailabilityService(
	windows repositories.AvailabilityRepository,
	appointments repositories.AppointmentRepository,
	users repositories.UserRepository,
	log *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{windows: windows, appointments: appointments, users: users, log: log}
}

func (s *AvailabilityService) resolveDoctor(ctx context.Context, doctorID string) error {
	u, err := s.users.FindByID(ctx, doctorID)
	if err != nil {
		return fmt.Errorf("resolving doctor %s: %w", doctorID, err)
	}
	if u.Role != models.RoleDoctor {
		return fmt.Errorf("%w: user %s is not a doctor", models.ErrNotFound, doctorID)
	}
	return nil
}

// CreateWindow validates and stores a new availability window, applying the
// catalog defaults: valid from today, valid for one year, weekly recurrence.
func (s *AvailabilityService) CreateWindow(ctx context.Context, a *models.Availability) (*models.Availability, error) {
	if err := s.resolveDoctor(ctx, a.DoctorID); err != nil {
		return nil, err
	}
	if !a.StartTime.Before(a.EndTime) {
		return nil, fmt.Errorf("%w: start time %s must be before end time %s",
			models.ErrValidation, a.StartTime, a.EndTime)
	}

	now := time.Now()
	if a.ValidFrom.IsZero() {
		a.ValidFrom = models.DateOnly(now)
	}
	if a.ValidTo.IsZero() {
		a.ValidTo = models.DateOnly(now.AddDate(1, 0, 0))
	}
	if models.DateOnly(a.ValidFrom).After(models.DateOnly(a.ValidTo)) {
		return nil, fmt.Errorf("%w: valid_from %s is after valid_to %s",
			models.ErrValidation, a.ValidFrom.Format(time.DateOnly), a.ValidTo.Format(time.DateOnly))
	}
	if a.Recurrence == "" {
		a.Recurrence = models.RecurrenceWeekly
	}

	if err := s.windows.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("availability window created",
		zap.String("id", a.ID),
		zap.String("doctor_id", a.DoctorID),
		zap.Int("day_of_week", int(a.DayOfWeek)))
	return a, nil
}

// CreateBatch stores several windows for possibly different doctors.
func (s *AvailabilityService) CreateBatch(ctx context.Context, windows []models.Availability) ([]models.Availability, error) {
	saved := make([]models.Availability, 0, len(windows))
	for i := range windows {
		w, err := s.CreateWindow(ctx, &windows[i])
		if err != nil {
			return saved, err
		}
		saved = append(saved, *w)
	}
	return saved, nil
}

// CreateWeekly is the common path for a doctor declaring a recurring window.
func (s *AvailabilityService) CreateWeekly(ctx context.Context, doctorID string, day models.DayOfWeek, start, end models.TimeOfDay, validFrom, validTo time.Time) (*models.Availability, error) {
	return s.CreateWindow(ctx, &models.Availability{
		DoctorID:   doctorID,
		DayOfWeek:  day,
		StartTime:  start,
		EndTime:    end,
		ValidFrom:  validFrom,
		ValidTo:    validTo,
		Recurrence: models.RecurrenceWeekly,
	})
}

func (s *AvailabilityService) Get(ctx context.Context, id string) (*models.Availability, error) {
	return s.windows.FindByID(ctx, id)
}

func (s *AvailabilityService) List(ctx context.Context) ([]models.Availability, error) {
	return s.windows.FindAll(ctx)
}

func (s *AvailabilityService) ListByDoctor(ctx context.Context, doctorID string) ([]models.Availability, error) {
	if err := s.resolveDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.windows.FindByDoctor(ctx, doctorID)
}

func (s *AvailabilityService) ListByDoctorAndDay(ctx context.Context, doctorID string, day models.DayOfWeek) ([]models.Availability, error) {
	if err := s.resolveDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.windows.FindByDoctorAndDay(ctx, doctorID, day)
}

func (s *AvailabilityService) ListValidForDate(ctx context.Context, doctorID string, date time.Time) ([]models.Availability, error) {
	if err := s.resolveDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.windows.FindValidForDate(ctx, doctorID, date)
}

func (s *AvailabilityService) ListBlocked(ctx context.Context, doctorID string) ([]models.Availability, error) {
	if err := s.resolveDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.windows.FindBlocked(ctx, doctorID)
}

func (s *AvailabilityService) ListByRecurrence(ctx context.Context, recurrence models.Recurrence) ([]models.Availability, error) {
	return s.windows.FindByRecurrence(ctx, recurrence)
}

func (s *AvailabilityService) ListByDoctorAndPeriod(ctx context.Context, doctorID string, from, to time.Time) ([]models.Availability, error) {
	if err := s.resolveDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.windows.FindByDoctorAndPeriod(ctx, doctorID, from, to)
}

// UpdateAvailabilityInput is a partial update; nil fields keep stored values.
type UpdateAvailabilityInput struct {
	DayOfWeek   *models.DayOfWeek  `json:"day_of_week"`
	StartTime   *models.TimeOfDay  `json:"start_time"`
	EndTime     *models.TimeOfDay  `json:"end_time"`
	ValidFrom   *time.Time         `json:"valid_from"`
	ValidTo     *time.Time         `json:"valid_to"`
	Recurrence  *models.Recurrence `json:"recurrence"`
	Blocked     *bool              `json:"blocked"`
	BlockReason *string            `json:"block_reason"`
}

func (s *AvailabilityService) Update(ctx context.Context, id string, patch *UpdateAvailabilityInput) (*models.Availability, error) {
	existing, err := s.windows.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.DayOfWeek != nil {
		existing.DayOfWeek = *patch.DayOfWeek
	}
	if patch.StartTime != nil {
		existing.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		existing.EndTime = *patch.EndTime
	}
	if patch.ValidFrom != nil {
		existing.ValidFrom = *patch.ValidFrom
	}
	if patch.ValidTo != nil {
		existing.ValidTo = *patch.ValidTo
	}
	if patch.Recurrence != nil {
		existing.Recurrence = *patch.Recurrence
	}
	if patch.Blocked != nil {
		existing.Blocked = *patch.Blocked
		if !existing.Blocked {
			existing.BlockReason = ""
		}
	}
	if patch.BlockReason != nil {
		existing.BlockReason = *patch.BlockReason
	}

	if !existing.StartTime.Before(existing.EndTime) {
		return nil, fmt.Errorf("%w: start time %s must be before end time %s",
			models.ErrValidation, existing.StartTime, existing.EndTime)
	}
	if models.DateOnly(existing.ValidFrom).After(models.DateOnly(existing.ValidTo)) {
		return nil, fmt.Errorf("%w: valid_from %s is after valid_to %s",
			models.ErrValidation, existing.ValidFrom.Format(time.DateOnly), existing.ValidTo.Format(time.DateOnly))
	}

	if err := s.windows.Save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Block marks the window as an exception (vacation, meeting); its slots stop
// being offered until it is unblocked.
func (s *AvailabilityService) Block(ctx context.Context, id, reason string) (*models.Availability, error) {
	a, err := s.windows.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Blocked = true
	a.BlockReason = reason
	if err := s.windows.Save(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("availability window blocked", zap.String("id", id), zap.String("reason", reason))
	return a, nil
}

func (s *AvailabilityService) Unblock(ctx context.Context, id string) (*models.Availability, error) {
	a, err := s.windows.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Blocked = false
	a.BlockReason = ""
	if err := s.windows.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AvailabilityService) ExtendValidity(ctx context.Context, id string, newValidTo time.Time) (*models.Availability, error) {
	a, err := s.windows.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if models.DateOnly(newValidTo).Before(models.DateOnly(a.ValidFrom)) {
		return nil, fmt.Errorf("%w: new valid_to %s is before valid_from %s",
			models.ErrValidation, newValidTo.Format(time.DateOnly), a.ValidFrom.Format(time.DateOnly))
	}
	a.ValidTo = models.DateOnly(newValidTo)
	if err := s.windows.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AvailabilityService) Delete(ctx context.Context, id string) error {
	a, err := s.windows.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.windows.Delete(ctx, a)
}

func (s *AvailabilityService) DeleteByDoctor(ctx context.Context, doctorID string) error {
	if err := s.resolveDoctor(ctx, doctorID); err != nil {
		return err
	}
	return s.windows.DeleteByDoctor(ctx, doctorID)
}

// DeleteExpired sweeps windows whose validity ended before the given date.
func (s *AvailabilityService) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.windows.DeleteExpired(ctx, before)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired availability windows removed", zap.Int64("count", n))
	}
	return n, nil
}

// FindConflicts returns every stored window of the doctor colliding with the
// candidate: same weekday, validity ranges overlapping and time ranges
// overlapping, both by the inclusive rule. Back-to-back windows sharing an
// endpoint are reported too.
func (s *AvailabilityService) FindConflicts(ctx context.Context, doctorID string, candidate *models.Availability) ([]models.Availability, error) {
	existing, err := s.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	var conflicts []models.Availability
	for i := range existing {
		if existing[i].ID == candidate.ID {
			continue
		}
		if existing[i].ConflictsWith(candidate) {
			conflicts = append(conflicts, existing[i])
		}
	}
	return conflicts, nil
}

// IsBookable reports whether an unblocked window of the doctor covers the
// given date and time of day. It deliberately ignores booked appointments;
// booking paths must also consult the appointment conflict check.
func (s *AvailabilityService) IsBookable(ctx context.Context, doctorID string, date time.Time, t models.TimeOfDay) (bool, error) {
	windows, err := s.windows.FindValidForDate(ctx, doctorID, date)
	if err != nil {
		return false, err
	}
	for i := range windows {
		w := &windows[i]
		if w.Blocked || !w.AppliesOn(date) {
			continue
		}
		if w.CoversTime(t) {
			return true, nil
		}
	}
	return false, nil
}

// EnumerateSlots yields the bookable start times for the doctor on the given
// date: 15-minute steps inside every applicable unblocked window, skipping
// slots that would run past the window end or collide with a non-cancelled
// appointment. The sequence is computed over a snapshot and can be ranged
// over any number of times.
func (s *AvailabilityService) EnumerateSlots(ctx context.Context, doctorID string, date time.Time, durationMinutes int) (iter.Seq[models.TimeOfDay], error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", models.ErrValidation)
	}
	if err := s.resolveDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	windows, err := s.windows.FindValidForDate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	dayStart := models.DateOnly(date)
	booked, err := s.appointments.FindByDoctorAndStartBetween(ctx, doctorID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	return func(yield func(models.TimeOfDay) bool) {
		for i := range windows {
			w := &windows[i]
			if w.Blocked || !w.AppliesOn(date) {
				continue
			}
			for slot := w.StartTime; !slot.Add(durationMinutes).After(w.EndTime); slot = slot.Add(models.SlotGranularityMinutes) {
				if slotTaken(booked, slot.At(dayStart), slot.Add(durationMinutes).At(dayStart)) {
					continue
				}
				if !yield(slot) {
					return
				}
			}
		}
	}, nil
}

func slotTaken(booked []models.Appointment, start, end time.Time) bool {
	for i := range booked {
		if booked[i].CountsForConflict() && booked[i].Overlaps(start, end) {
			return true
		}
	}
	return false
}
