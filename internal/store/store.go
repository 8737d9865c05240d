// Package store owns the four record collections (patients, actions,
// appointments, staff) plus the capped notification log. The in-memory
// collections are the authority; every mutation of the four collections
// rewrites all four snapshots to Redis as a batch under the h_* keys.
//
// Two processes pointed at the same Redis keyspace overwrite each other's
// last write with no merge or conflict detection. That limitation is
// deliberate; the store does not attempt optimistic versioning.
package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/internal/observability/metrics"
	"github.com/marshospital/hospice/pkg/logging"
)

// Snapshot keys in the durable keyspace.
const (
	KeyPatients     = "h_patients"
	KeyActions      = "h_actions"
	KeyAppointments = "h_appointments"
	KeyStaff        = "h_staff_accounts"
)

// DefaultNotificationCap bounds the in-memory notification log.
const DefaultNotificationCap = 10

// Store is the entity store. All mutations are atomic under one lock.
type Store struct {
	mu            sync.Mutex
	patients      []hospital.Patient
	actions       []hospital.PatientAction
	appointments  []hospital.Appointment
	staff         []hospital.StaffUser
	notifications []hospital.Notification

	redis           *redis.Client
	tracer          trace.Tracer
	logger          *logging.Logger
	metrics         *metrics.ServiceMetrics
	notificationCap int
}

// New creates an entity store backed by redisClient. A nil client keeps the
// store purely in-memory (used by logic tests).
func New(redisClient *redis.Client, logger *logging.Logger, m *metrics.ServiceMetrics) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		redis:           redisClient,
		tracer:          otel.Tracer("hospice.internal.store"),
		logger:          logger,
		metrics:         m,
		notificationCap: DefaultNotificationCap,
	}
}

// SetNotificationCap overrides the notification log bound.
func (s *Store) SetNotificationCap(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.notificationCap = n
	}
}

// Hydrate loads the four collections from the durable keyspace. An absent
// key hydrates to an empty collection. A snapshot that fails to decode is
// logged and treated as empty rather than aborting startup; stored values
// carry no schema version to validate against.
func (s *Store) Hydrate(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "store.hydrate")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	hydrate(ctx, s, KeyPatients, &s.patients)
	hydrate(ctx, s, KeyActions, &s.actions)
	hydrate(ctx, s, KeyAppointments, &s.appointments)
	hydrate(ctx, s, KeyStaff, &s.staff)
	return nil
}

func hydrate[T any](ctx context.Context, s *Store, key string, dst *[]T) {
	raw, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return
	}
	if err != nil {
		s.logger.Warn("store: snapshot read failed", "key", key, "error", err)
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("store: snapshot malformed, starting empty", "key", key, "error", err)
		*dst = nil
	}
}

// persistLocked rewrites all four snapshots as one pipeline. Callers hold
// s.mu. A failed write is logged and otherwise ignored; the in-memory
// collections remain the authority.
func (s *Store) persistLocked(ctx context.Context) {
	if s.redis == nil {
		return
	}
	ctx, span := s.tracer.Start(ctx, "store.persist")
	defer span.End()

	pipe := s.redis.TxPipeline()
	for _, snap := range []struct {
		key string
		val any
	}{
		{KeyPatients, emptyIfNil(s.patients)},
		{KeyActions, emptyIfNil(s.actions)},
		{KeyAppointments, emptyIfNil(s.appointments)},
		{KeyStaff, emptyIfNil(s.staff)},
	} {
		data, err := json.Marshal(snap.val)
		if err != nil {
			s.logger.Error("store: snapshot marshal failed", "key", snap.key, "error", err)
			return
		}
		pipe.Set(ctx, snap.key, data, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("store: snapshot write failed", "error", err)
	}
}

func emptyIfNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// AddPatient appends a patient. Callers supply a fresh id; no uniqueness
// check is made.
func (s *Store) AddPatient(ctx context.Context, p hospital.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients = append(s.patients, p)
	s.persistLocked(ctx)
	s.metrics.ObserveMutation("patients", "add")
}

// PatientUpdate carries the merge fields of UpdatePatient. Nil fields are
// left untouched.
type PatientUpdate struct {
	Problem       *string
	RoomNo        *string
	PaymentStatus *hospital.PaymentStatus
}

// UpdatePatient merges upd into the matching record; no-op if id is absent.
func (s *Store) UpdatePatient(ctx context.Context, id string, upd PatientUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.patients {
		if s.patients[i].ID != id {
			continue
		}
		if upd.Problem != nil {
			s.patients[i].Problem = *upd.Problem
		}
		if upd.RoomNo != nil {
			s.patients[i].RoomNo = *upd.RoomNo
		}
		if upd.PaymentStatus != nil {
			s.patients[i].PaymentStatus = *upd.PaymentStatus
		}
		break
	}
	s.persistLocked(ctx)
	s.metrics.ObserveMutation("patients", "update")
}

// DeletePatient removes the patient and cascades to every order that
// references it.
func (s *Store) DeletePatient(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.patients[:0]
	for _, p := range s.patients {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.patients = kept
	keptActions := s.actions[:0]
	for _, a := range s.actions {
		if a.PatientID != id {
			keptActions = append(keptActions, a)
		}
	}
	s.actions = keptActions
	s.persistLocked(ctx)
	s.metrics.ObserveMutation("patients", "delete")
}

// AddAction appends a clinical order and fans out one notification addressed
// to the order's assignee role.
func (s *Store) AddAction(ctx context.Context, a hospital.PatientAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, a)
	s.addNotificationLocked(string(a.AssignedTo), a.AssignedTo, hospital.AssignmentMessage(a))
	s.persistLocked(ctx)
	s.metrics.ObserveMutation("actions", "add")
}

// DeleteAction removes an order by id.
func (s *Store) DeleteAction(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.actions[:0]
	for _, a := range s.actions {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.actions = kept
	s.persistLocked(ctx)
	s.metrics.ObserveMutation("actions", "delete")
}

// ActionUpdate carries the merge fields of UpdateAction. Nil fields are
// left untouched.
type ActionUpdate struct {
	Status     *hospital.ActionStatus
	BillAmount *float64
	Result     *string
}

// UpdateAction merges upd into the matching order; no-op if id is absent.
func (s *Store) UpdateAction(ctx context.Context, id string, upd ActionUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.actions {
		if s.actions[i].ID != id {
			continue
		}
		if upd.Status != nil {
			s.actions[i].Status = *upd.Status
		}
		if upd.BillAmount != nil {
			amount := *upd.BillAmount
			s.actions[i].BillAmount = &amount
		}
		if upd.Result != nil {
			s.actions[i].Result = *upd.Result
		}
		break
	}
	s.persistLocked(ctx)
	s.metrics.ObserveMutation("actions", "update")
}

// AddAppointment appends an appointment.
func (s *Store) AddAppointment(ctx context.Context, a hospital.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments = append(s.appointments, a)
	s.persistLocked(ctx)
	s.metrics.ObserveMutation("appointments", "add")
}

// AddStaff appends a staff account unless one already holds the same email
// (exact, case-sensitive match). Duplicates are dropped silently, which
// makes the operation idempotent with respect to email.
func (s *Store) AddStaff(ctx context.Context, u hospital.StaffUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.staff {
		if existing.Email == u.Email {
			return
		}
	}
	s.staff = append(s.staff, u)
	s.persistLocked(ctx)
	s.metrics.ObserveMutation("staff", "add")
}

// DeleteStaff removes a staff account by id.
func (s *Store) DeleteStaff(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.staff[:0]
	for _, u := range s.staff {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	s.staff = kept
	s.persistLocked(ctx)
	s.metrics.ObserveMutation("staff", "delete")
}

// AddNotification prepends an entry and truncates the log to the cap.
// Notifications live only in memory and do not survive a restart.
func (s *Store) AddNotification(userID string, role hospital.Role, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addNotificationLocked(userID, role, message)
}

func (s *Store) addNotificationLocked(userID string, role hospital.Role, message string) {
	note := hospital.Notification{
		ID:        hospital.NewToken(),
		UserID:    userID,
		Role:      role,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}
	s.notifications = append([]hospital.Notification{note}, s.notifications...)
	if len(s.notifications) > s.notificationCap {
		s.notifications = s.notifications[:s.notificationCap]
	}
	s.metrics.ObserveNotification(string(role))
}

// ClearNotifications empties the log.
func (s *Store) ClearNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = nil
}

// Patients returns a copy of the patient roster.
func (s *Store) Patients() []hospital.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]hospital.Patient(nil), s.patients...)
}

// SearchPatients returns patients whose name or id contains q,
// case-insensitively. An empty q matches everyone.
func (s *Store) SearchPatients(q string) []hospital.Patient {
	q = strings.ToLower(strings.TrimSpace(q))
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []hospital.Patient
	for _, p := range s.patients {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.ID), q) {
			out = append(out, p)
		}
	}
	return out
}

// PatientByID looks up a patient. Missing ids report ok=false; callers
// render absent values rather than failing.
func (s *Store) PatientByID(id string) (hospital.Patient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.patients {
		if p.ID == id {
			return p, true
		}
	}
	return hospital.Patient{}, false
}

// Actions returns a copy of all orders.
func (s *Store) Actions() []hospital.PatientAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]hospital.PatientAction(nil), s.actions...)
}

// ActionByID looks up an order.
func (s *Store) ActionByID(id string) (hospital.PatientAction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.actions {
		if a.ID == id {
			return a, true
		}
	}
	return hospital.PatientAction{}, false
}

// ActionsByPatient returns the patient's orders, most recent first.
func (s *Store) ActionsByPatient(patientID string) []hospital.PatientAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []hospital.PatientAction
	for _, a := range s.actions {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	sortByTimestampDesc(out)
	return out
}

// ActionsByAssignee returns orders for a department filtered by status,
// most recent first.
func (s *Store) ActionsByAssignee(role hospital.Role, status hospital.ActionStatus) []hospital.PatientAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []hospital.PatientAction
	for _, a := range s.actions {
		if a.AssignedTo == role && a.Status == status {
			out = append(out, a)
		}
	}
	sortByTimestampDesc(out)
	return out
}

// PendingCount counts a patient's pending orders.
func (s *Store) PendingCount(patientID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.actions {
		if a.PatientID == patientID && a.Status == hospital.StatusPending {
			n++
		}
	}
	return n
}

// Appointments returns a copy of all appointments.
func (s *Store) Appointments() []hospital.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]hospital.Appointment(nil), s.appointments...)
}

// AppointmentsByPatient returns the patient's appointments.
func (s *Store) AppointmentsByPatient(patientID string) []hospital.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []hospital.Appointment
	for _, a := range s.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out
}

// Staff returns a copy of all staff accounts.
func (s *Store) Staff() []hospital.StaffUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]hospital.StaffUser(nil), s.staff...)
}

// StaffByRole returns staff accounts holding the given role.
func (s *Store) StaffByRole(role hospital.Role) []hospital.StaffUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []hospital.StaffUser
	for _, u := range s.staff {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

// StaffByEmail looks up a staff account by exact email.
func (s *Store) StaffByEmail(email string) (hospital.StaffUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.staff {
		if u.Email == email {
			return u, true
		}
	}
	return hospital.StaffUser{}, false
}

// StaffByID looks up a staff account by id.
func (s *Store) StaffByID(id string) (hospital.StaffUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.staff {
		if u.ID == id {
			return u, true
		}
	}
	return hospital.StaffUser{}, false
}

// Notifications returns a copy of the log, most recent first.
func (s *Store) Notifications() []hospital.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]hospital.Notification(nil), s.notifications...)
}

// LatestNotification returns the head of the log. Consumers compare the
// entry's role to their own; only the single most-recent entry is ever
// surfaced.
func (s *Store) LatestNotification() (hospital.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.notifications) == 0 {
		return hospital.Notification{}, false
	}
	return s.notifications[0], true
}

func sortByTimestampDesc(actions []hospital.PatientAction) {
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Timestamp > actions[j].Timestamp
	})
}
