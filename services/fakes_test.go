package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evercare/scheduling/models"
)

// In-memory repositories for exercising the services without a database.
// bookingStore mirrors the transactional guard of the real repository: Book
// and Rebook re-check the window and the conflicts under one lock, so the
// concurrency tests exercise the same serialization contract.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]models.User)}
}

func (r *fakeUserRepo) add(u models.User) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeTypeRepo struct {
	mu    sync.Mutex
	types map[string]models.ConsultationType
}

func newFakeTypeRepo() *fakeTypeRepo {
	return &fakeTypeRepo{types: make(map[string]models.ConsultationType)}
}

func (r *fakeTypeRepo) Create(ctx context.Context, t *models.ConsultationType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	r.types[t.ID] = *t
	return nil
}

func (r *fakeTypeRepo) FindByID(ctx context.Context, id string) (*models.ConsultationType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.types[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (r *fakeTypeRepo) FindAll(ctx context.Context) ([]models.ConsultationType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ConsultationType
	for _, t := range r.types {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTypeRepo) FindActive(ctx context.Context) ([]models.ConsultationType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ConsultationType
	for _, t := range r.types {
		if t.Active {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTypeRepo) Save(ctx context.Context, t *models.ConsultationType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.ID] = *t
	return nil
}

func (r *fakeTypeRepo) Delete(ctx context.Context, t *models.ConsultationType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.types, t.ID)
	return nil
}

type fakeAvailabilityRepo struct {
	mu      sync.Mutex
	windows map[string]models.Availability
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{windows: make(map[string]models.Availability)}
}

func (r *fakeAvailabilityRepo) Create(ctx context.Context, a *models.Availability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Recurrence == "" {
		a.Recurrence = models.RecurrenceWeekly
	}
	r.windows[a.ID] = *a
	return nil
}

func (r *fakeAvailabilityRepo) FindByID(ctx context.Context, id string) (*models.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.windows[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (r *fakeAvailabilityRepo) filter(keep func(*models.Availability) bool) []models.Availability {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Availability
	for _, a := range r.windows {
		if keep(&a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *fakeAvailabilityRepo) FindAll(ctx context.Context) ([]models.Availability, error) {
	return r.filter(func(*models.Availability) bool { return true }), nil
}

func (r *fakeAvailabilityRepo) FindByDoctor(ctx context.Context, doctorID string) ([]models.Availability, error) {
	return r.filter(func(a *models.Availability) bool { return a.DoctorID == doctorID }), nil
}

func (r *fakeAvailabilityRepo) FindByDoctorAndDay(ctx context.Context, doctorID string, day models.DayOfWeek) ([]models.Availability, error) {
	return r.filter(func(a *models.Availability) bool {
		return a.DoctorID == doctorID && a.DayOfWeek == day
	}), nil
}

func (r *fakeAvailabilityRepo) FindValidForDate(ctx context.Context, doctorID string, date time.Time) ([]models.Availability, error) {
	d := models.DateOnly(date)
	return r.filter(func(a *models.Availability) bool {
		return a.DoctorID == doctorID && !a.Blocked &&
			!models.DateOnly(a.ValidFrom).After(d) && !models.DateOnly(a.ValidTo).Before(d)
	}), nil
}

func (r *fakeAvailabilityRepo) FindBlocked(ctx context.Context, doctorID string) ([]models.Availability, error) {
	return r.filter(func(a *models.Availability) bool { return a.DoctorID == doctorID && a.Blocked }), nil
}

func (r *fakeAvailabilityRepo) FindByRecurrence(ctx context.Context, recurrence models.Recurrence) ([]models.Availability, error) {
	return r.filter(func(a *models.Availability) bool { return a.Recurrence == recurrence }), nil
}

func (r *fakeAvailabilityRepo) FindByDoctorAndPeriod(ctx context.Context, doctorID string, from, to time.Time) ([]models.Availability, error) {
	f, t := models.DateOnly(from), models.DateOnly(to)
	return r.filter(func(a *models.Availability) bool {
		return a.DoctorID == doctorID &&
			!models.DateOnly(a.ValidFrom).After(f) && !models.DateOnly(a.ValidTo).Before(t)
	}), nil
}

func (r *fakeAvailabilityRepo) Save(ctx context.Context, a *models.Availability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windows[a.ID] = *a
	return nil
}

func (r *fakeAvailabilityRepo) Delete(ctx context.Context, a *models.Availability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.windows, a.ID)
	return nil
}

func (r *fakeAvailabilityRepo) DeleteByDoctor(ctx context.Context, doctorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.windows {
		if a.DoctorID == doctorID {
			delete(r.windows, id)
		}
	}
	return nil
}

func (r *fakeAvailabilityRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := models.DateOnly(before)
	var n int64
	for id, a := range r.windows {
		if models.DateOnly(a.ValidTo).Before(cutoff) {
			delete(r.windows, id)
			n++
		}
	}
	return n, nil
}

// covers reports whether an unblocked window admits the appointment start,
// the same predicate the booking transaction re-checks.
func (r *fakeAvailabilityRepo) covers(a *models.Appointment) bool {
	start := models.TimeOfDay(a.StartDateTime.Hour()*60 + a.StartDateTime.Minute())
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.windows {
		if w.DoctorID != a.DoctorID || w.Blocked || !w.AppliesOn(a.StartDateTime) {
			continue
		}
		if w.CoversTime(start) {
			return true
		}
	}
	return false
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[string]models.Appointment
	windows      *fakeAvailabilityRepo
}

func newFakeAppointmentRepo(windows *fakeAvailabilityRepo) *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		appointments: make(map[string]models.Appointment),
		windows:      windows,
	}
}

func (r *fakeAppointmentRepo) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (r *fakeAppointmentRepo) filter(keep func(*models.Appointment) bool) []models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.appointments {
		if keep(&a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDateTime.Equal(out[j].StartDateTime) {
			return out[i].StartDateTime.Before(out[j].StartDateTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *fakeAppointmentRepo) FindAll(ctx context.Context) ([]models.Appointment, error) {
	return r.filter(func(*models.Appointment) bool { return true }), nil
}

func (r *fakeAppointmentRepo) FindByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *fakeAppointmentRepo) FindByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (r *fakeAppointmentRepo) FindByCaregiver(ctx context.Context, caregiverID string) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool {
		return a.CaregiverID != nil && *a.CaregiverID == caregiverID
	}), nil
}

func (r *fakeAppointmentRepo) FindByStatus(ctx context.Context, status models.AppointmentStatus) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool { return a.Status == status }), nil
}

func (r *fakeAppointmentRepo) FindByStartBetween(ctx context.Context, start, end time.Time) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool {
		return !a.StartDateTime.Before(start) && !a.StartDateTime.After(end)
	}), nil
}

func (r *fakeAppointmentRepo) FindByDoctorAndStartBetween(ctx context.Context, doctorID string, start, end time.Time) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool {
		return a.DoctorID == doctorID && !a.StartDateTime.Before(start) && !a.StartDateTime.After(end)
	}), nil
}

func (r *fakeAppointmentRepo) FindFutureByPatient(ctx context.Context, patientID string, now time.Time) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool {
		return a.PatientID == patientID && a.StartDateTime.After(now)
	}), nil
}

func (r *fakeAppointmentRepo) hasConflictLocked(doctorID string, start, end time.Time, excludeID string) bool {
	for _, a := range r.appointments {
		if a.DoctorID != doctorID || a.ID == excludeID || !a.CountsForConflict() {
			continue
		}
		if a.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func (r *fakeAppointmentRepo) HasConflict(ctx context.Context, doctorID string, start, end time.Time, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasConflictLocked(doctorID, start, end, excludeID), nil
}

func (r *fakeAppointmentRepo) CountByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) (int64, error) {
	dayStart := models.DateOnly(date)
	dayEnd := dayStart.AddDate(0, 0, 1)
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.CountsForConflict() &&
			!a.StartDateTime.Before(dayStart) && a.StartDateTime.Before(dayEnd) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAppointmentRepo) Book(ctx context.Context, a *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.windows.covers(a) {
		return models.ErrSlotUnavailable
	}
	if r.hasConflictLocked(a.DoctorID, a.StartDateTime, a.EndDateTime, "") {
		return models.ErrDoubleBooking
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	r.appointments[a.ID] = *a
	return nil
}

func (r *fakeAppointmentRepo) Rebook(ctx context.Context, a *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.windows.covers(a) {
		return models.ErrSlotUnavailable
	}
	if r.hasConflictLocked(a.DoctorID, a.StartDateTime, a.EndDateTime, a.ID) {
		return models.ErrDoubleBooking
	}
	r.appointments[a.ID] = *a
	return nil
}

func (r *fakeAppointmentRepo) Save(ctx context.Context, a *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[a.ID] = *a
	return nil
}

func (r *fakeAppointmentRepo) Delete(ctx context.Context, a *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.appointments, a.ID)
	return nil
}

func (r *fakeAppointmentRepo) DeleteByPatient(ctx context.Context, patientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.appointments {
		if a.PatientID == patientID {
			delete(r.appointments, id)
		}
	}
	return nil
}

// recordingNotifier captures sent reminders and can fail on demand.
type recordingNotifier struct {
	mu     sync.Mutex
	sent   []string
	failOn map[string]error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{failOn: make(map[string]error)}
}

func (n *recordingNotifier) Send(ctx context.Context, a *models.Appointment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err, ok := n.failOn[a.ID]; ok {
		return err
	}
	n.sent = append(n.sent, a.ID)
	return nil
}

// testEnv wires the services over the in-memory repositories.
type testEnv struct {
	users        *fakeUserRepo
	catalog      *fakeTypeRepo
	windows      *fakeAvailabilityRepo
	appointments *fakeAppointmentRepo

	availability *AvailabilityService
	appointment  *AppointmentService

	doctor    models.User
	patient   models.User
	caregiver models.User
}

func newTestEnv() *testEnv {
	users := newFakeUserRepo()
	catalog := newFakeTypeRepo()
	windows := newFakeAvailabilityRepo()
	appointments := newFakeAppointmentRepo(windows)

	log := zap.NewNop()
	availability := NewAvailabilityService(windows, appointments, users, log)
	appointment := NewAppointmentService(appointments, availability, catalog, users, log)

	return &testEnv{
		users:        users,
		catalog:      catalog,
		windows:      windows,
		appointments: appointments,
		availability: availability,
		appointment:  appointment,
		doctor:       users.add(models.User{Name: "Dr. Ellen Vance", Email: "ellen.vance@evercare.test", Role: models.RoleDoctor}),
		patient:      users.add(models.User{Name: "Pat Jensen", Email: "pat.jensen@evercare.test", Role: models.RolePatient}),
		caregiver:    users.add(models.User{Name: "Sam Okafor", Email: "sam.okafor@evercare.test", Role: models.RoleCaregiver}),
	}
}

func (e *testEnv) addType(name string, minutes int, requiresCaregiver bool) models.ConsultationType {
	t := models.ConsultationType{
		Name:                   name,
		DefaultDurationMinutes: minutes,
		RequiresCaregiver:      requiresCaregiver,
		Active:                 true,
	}
	if err := e.catalog.Create(context.Background(), &t); err != nil {
		panic(err)
	}
	return t
}

// addWindow stores a window directly, bypassing service validation.
func (e *testEnv) addWindow(doctorID string, day models.DayOfWeek, start, end models.TimeOfDay) models.Availability {
	a := models.Availability{
		DoctorID:  doctorID,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		ValidFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if err := e.windows.Create(context.Background(), &a); err != nil {
		panic(err)
	}
	return a
}

func mustParseTime(s string) models.TimeOfDay {
	t, err := models.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}
