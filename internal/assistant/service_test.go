package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/internal/store"
	"github.com/marshospital/hospice/pkg/logging"
)

type fakeGenerator struct {
	reply      string
	err        error
	lastSystem string
	lastPrompt string
}

func (f *fakeGenerator) Generate(_ context.Context, systemInstruction, prompt string) (string, error) {
	f.lastSystem = systemInstruction
	f.lastPrompt = prompt
	return f.reply, f.err
}

func seedPatient(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()
	st.AddPatient(ctx, hospital.Patient{
		ID: "PAT100001", Name: "J. Doe", RoomNo: "W-204",
		Height: 172, Weight: 68,
	})
	bill := 45.50
	st.AddAction(ctx, hospital.PatientAction{
		ID: "a1", PatientID: "PAT100001",
		Type: hospital.ActionTest, Description: "CBC panel",
		AssignedTo: hospital.RoleLab, Status: hospital.StatusCompleted,
		Location: hospital.LocationLab,
	})
	completed := hospital.StatusCompleted
	st.UpdateAction(ctx, "a1", store.ActionUpdate{Status: &completed, BillAmount: &bill})
}

func TestAskNilGeneratorFallsBack(t *testing.T) {
	st := store.New(nil, logging.Default(), nil)
	svc := NewService(nil, st, logging.Default(), nil)
	assert.Equal(t, FallbackMessage, svc.Ask(context.Background(), "PAT100001", "where is the lab?"))
}

func TestAskGeneratorErrorFallsBack(t *testing.T) {
	st := store.New(nil, logging.Default(), nil)
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	svc := NewService(gen, st, logging.Default(), nil)
	assert.Equal(t, FallbackMessage, svc.Ask(context.Background(), "PAT100001", "hi"))
}

func TestAskBuildsPatientContext(t *testing.T) {
	st := store.New(nil, logging.Default(), nil)
	seedPatient(t, st)
	gen := &fakeGenerator{reply: "The lab is on floor 2."}
	svc := NewService(gen, st, logging.Default(), nil)

	reply := svc.Ask(context.Background(), "PAT100001", "where do I go for my test?")
	require.Equal(t, "The lab is on floor 2.", reply)

	assert.Contains(t, gen.lastSystem, "hospital-grade AI assistant")
	assert.Contains(t, gen.lastPrompt, "- Name: J. Doe")
	assert.Contains(t, gen.lastPrompt, "- Assigned Room/Ward: W-204")
	assert.Contains(t, gen.lastPrompt, "172cm height, 68kg weight")
	assert.Contains(t, gen.lastPrompt, "Total bill of $45.50")
	assert.Contains(t, gen.lastPrompt, "CBC panel")
	assert.Contains(t, gen.lastPrompt, "Diagnostic Wing - Floor 2")
	assert.Contains(t, gen.lastPrompt, "User Question: where do I go for my test?")
}

func TestAskUnknownPatientStillAnswers(t *testing.T) {
	st := store.New(nil, logging.Default(), nil)
	gen := &fakeGenerator{reply: "ok"}
	svc := NewService(gen, st, logging.Default(), nil)

	assert.Equal(t, "ok", svc.Ask(context.Background(), "PAT999999", "hello"))
	assert.Contains(t, gen.lastPrompt, "Total bill of $0.00")
}
