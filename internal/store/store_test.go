package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/pkg/logging"
)

func newMemoryStore() *Store {
	return New(nil, logging.Default(), nil)
}

func newRedisStore(t *testing.T) (*Store, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client, logging.Default(), nil), client
}

func TestDeletePatientCascadesToActions(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()

	s.AddPatient(ctx, hospital.Patient{ID: "PAT100001", Name: "J. Doe"})
	s.AddPatient(ctx, hospital.Patient{ID: "PAT100002", Name: "K. Roe"})
	s.AddAction(ctx, hospital.PatientAction{ID: "a1", PatientID: "PAT100001", Type: hospital.ActionTest, AssignedTo: hospital.RoleLab})
	s.AddAction(ctx, hospital.PatientAction{ID: "a2", PatientID: "PAT100001", Type: hospital.ActionMedicine, AssignedTo: hospital.RolePharmacy})
	s.AddAction(ctx, hospital.PatientAction{ID: "a3", PatientID: "PAT100002", Type: hospital.ActionInstruction, AssignedTo: hospital.RoleNurse})

	s.DeletePatient(ctx, "PAT100001")

	for _, a := range s.Actions() {
		assert.NotEqual(t, "PAT100001", a.PatientID, "cascade left an orphaned action")
	}
	assert.Len(t, s.Actions(), 1)
	_, found := s.PatientByID("PAT100001")
	assert.False(t, found)
}

func TestAddActionEmitsOneNotificationForAssignee(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()

	s.AddAction(ctx, hospital.PatientAction{
		ID: "a1", PatientID: "PAT100001",
		Type: hospital.ActionTest, AssignedTo: hospital.RoleLab,
	})

	notes := s.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, hospital.RoleLab, notes[0].Role)
	assert.Equal(t, "New test assigned for Patient ID: PAT100001", notes[0].Message)
	assert.False(t, notes[0].Read)
	assert.NotEmpty(t, notes[0].ID)
}

func TestNotificationLogNeverExceedsCap(t *testing.T) {
	s := newMemoryStore()
	for i := 0; i < 35; i++ {
		s.AddNotification("LAB", hospital.RoleLab, fmt.Sprintf("message %d", i))
	}
	assert.Len(t, s.Notifications(), DefaultNotificationCap)

	// Newest entry sits at the head.
	head, ok := s.LatestNotification()
	require.True(t, ok)
	assert.Equal(t, "message 34", head.Message)
}

func TestAddStaffIdempotentOnEmail(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()

	s.AddStaff(ctx, hospital.StaffUser{ID: "s1", Email: "jane@marshospital.com", Role: hospital.RoleDoctor})
	s.AddStaff(ctx, hospital.StaffUser{ID: "s2", Email: "jane@marshospital.com", Role: hospital.RoleNurse})

	staff := s.Staff()
	require.Len(t, staff, 1)
	assert.Equal(t, "s1", staff[0].ID, "second insert must not replace the first")

	// Email match is exact and case-sensitive.
	s.AddStaff(ctx, hospital.StaffUser{ID: "s3", Email: "Jane@marshospital.com", Role: hospital.RoleNurse})
	assert.Len(t, s.Staff(), 2)
}

func TestUpdateActionMergesPartialFields(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()
	s.AddAction(ctx, hospital.PatientAction{ID: "a1", PatientID: "p1", Type: hospital.ActionTest, AssignedTo: hospital.RoleLab, Status: hospital.StatusPending, Description: "CBC panel"})

	completed := hospital.StatusCompleted
	result := "within normal limits"
	bill := 45.50
	s.UpdateAction(ctx, "a1", ActionUpdate{Status: &completed, Result: &result, BillAmount: &bill})

	a, found := s.ActionByID("a1")
	require.True(t, found)
	assert.Equal(t, hospital.StatusCompleted, a.Status)
	assert.Equal(t, "within normal limits", a.Result)
	require.NotNil(t, a.BillAmount)
	assert.Equal(t, 45.50, *a.BillAmount)
	assert.Equal(t, "CBC panel", a.Description, "untouched fields must survive the merge")

	// Merging with no fields set changes nothing.
	s.UpdateAction(ctx, "a1", ActionUpdate{})
	a, _ = s.ActionByID("a1")
	assert.Equal(t, 45.50, *a.BillAmount)
}

func TestUpdateMissingIDIsNoOp(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()
	completed := hospital.StatusCompleted
	s.UpdateAction(ctx, "ghost", ActionUpdate{Status: &completed})
	due := hospital.PaymentDue
	s.UpdatePatient(ctx, "ghost", PatientUpdate{PaymentStatus: &due})
	assert.Empty(t, s.Actions())
	assert.Empty(t, s.Patients())
}

func TestPersistAndHydrateRoundTrip(t *testing.T) {
	s, client := newRedisStore(t)
	ctx := context.Background()

	s.AddPatient(ctx, hospital.Patient{ID: "PAT100001", Name: "J. Doe", PaymentStatus: hospital.PaymentDue})
	s.AddAction(ctx, hospital.PatientAction{ID: "a1", PatientID: "PAT100001", Type: hospital.ActionTest, AssignedTo: hospital.RoleLab})
	s.AddAppointment(ctx, hospital.Appointment{ID: "ap1", PatientID: "PAT100001", DoctorID: "d1", Status: hospital.AppointmentScheduled})
	s.AddStaff(ctx, hospital.StaffUser{ID: "d1", Email: "doc@marshospital.com", Role: hospital.RoleDoctor})

	// A fresh store over the same keyspace sees the snapshots.
	fresh := New(client, logging.Default(), nil)
	require.NoError(t, fresh.Hydrate(ctx))
	assert.Len(t, fresh.Patients(), 1)
	assert.Len(t, fresh.Actions(), 1)
	assert.Len(t, fresh.Appointments(), 1)
	assert.Len(t, fresh.Staff(), 1)

	// Notifications are memory-only and do not survive the reload.
	assert.Empty(t, fresh.Notifications())
}

func TestHydrateAbsentKeysMeansEmpty(t *testing.T) {
	s, _ := newRedisStore(t)
	require.NoError(t, s.Hydrate(context.Background()))
	assert.Empty(t, s.Patients())
	assert.Empty(t, s.Actions())
}

func TestHydrateMalformedSnapshotStartsEmpty(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()
	require.NoError(t, client.Set(ctx, KeyPatients, "{not json", 0).Err())

	s := New(client, logging.Default(), nil)
	require.NoError(t, s.Hydrate(ctx))
	assert.Empty(t, s.Patients())
}

func TestPersistWritesAllFourSnapshotsAsBatch(t *testing.T) {
	s, client := newRedisStore(t)
	ctx := context.Background()
	s.AddPatient(ctx, hospital.Patient{ID: "PAT100001"})

	for _, key := range []string{KeyPatients, KeyActions, KeyAppointments, KeyStaff} {
		raw, err := client.Get(ctx, key).Result()
		require.NoError(t, err, "key %s missing after mutation", key)
		assert.True(t, json.Valid([]byte(raw)), "key %s holds invalid JSON", key)
	}
}

func TestSearchPatients(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()
	s.AddPatient(ctx, hospital.Patient{ID: "PAT111111", Name: "Alice Carter"})
	s.AddPatient(ctx, hospital.Patient{ID: "PAT222222", Name: "Bob Diaz"})

	assert.Len(t, s.SearchPatients(""), 2)
	assert.Len(t, s.SearchPatients("alice"), 1)
	assert.Len(t, s.SearchPatients("pat222"), 1)
	assert.Empty(t, s.SearchPatients("zelda"))
}

func TestActionsByAssigneeFiltersAndSorts(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()
	s.AddAction(ctx, hospital.PatientAction{ID: "a1", AssignedTo: hospital.RoleLab, Status: hospital.StatusPending, Timestamp: 100})
	s.AddAction(ctx, hospital.PatientAction{ID: "a2", AssignedTo: hospital.RoleLab, Status: hospital.StatusPending, Timestamp: 300})
	s.AddAction(ctx, hospital.PatientAction{ID: "a3", AssignedTo: hospital.RolePharmacy, Status: hospital.StatusPending, Timestamp: 200})
	s.AddAction(ctx, hospital.PatientAction{ID: "a4", AssignedTo: hospital.RoleLab, Status: hospital.StatusCompleted, Timestamp: 400})

	pending := s.ActionsByAssignee(hospital.RoleLab, hospital.StatusPending)
	require.Len(t, pending, 2)
	assert.Equal(t, "a2", pending[0].ID, "most recent first")
}

func TestPendingCount(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()
	s.AddAction(ctx, hospital.PatientAction{ID: "a1", PatientID: "p1", AssignedTo: hospital.RoleNurse, Status: hospital.StatusPending})
	s.AddAction(ctx, hospital.PatientAction{ID: "a2", PatientID: "p1", AssignedTo: hospital.RoleLab, Status: hospital.StatusCompleted})
	assert.Equal(t, 1, s.PendingCount("p1"))
	assert.Equal(t, 0, s.PendingCount("p2"))
}
