package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/marshospital/hospice/internal/assistant"
	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/internal/store"
	"github.com/marshospital/hospice/pkg/logging"
)

// PortalHandler serves the patient portal: the overview, appointment
// booking and the AI clinical aide.
type PortalHandler struct {
	store     *store.Store
	assistant *assistant.Service
	logger    *logging.Logger
}

// NewPortalHandler creates the portal handler.
func NewPortalHandler(st *store.Store, aide *assistant.Service, logger *logging.Logger) *PortalHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &PortalHandler{store: st, assistant: aide, logger: logger}
}

// Overview handles GET /portal/overview: the patient's profile, orders,
// recomputed bill total and appointments. A missing profile renders absent
// values, never an error.
func (h *PortalHandler) Overview(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, hospital.RolePatient)
	if !ok {
		return
	}
	patient, found := h.store.PatientByID(identity.ID)
	actions := h.store.ActionsByPatient(identity.ID)
	respondJSON(w, http.StatusOK, map[string]any{
		"patient":      patient.Redacted(),
		"found":        found,
		"actions":      actions,
		"totalBill":    hospital.TotalBill(actions),
		"appointments": h.store.AppointmentsByPatient(identity.ID),
	})
}

// Doctors handles GET /portal/doctors: the roster offered for booking.
func (h *PortalHandler) Doctors(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, hospital.RolePatient); !ok {
		return
	}
	doctors := h.store.StaffByRole(hospital.RoleDoctor)
	out := make([]hospital.StaffUser, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, d.Redacted())
	}
	respondJSON(w, http.StatusOK, map[string]any{"doctors": out})
}

type bookAppointmentRequest struct {
	DoctorID string `json:"doctorId"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

// BookAppointment handles POST /appointments. Appointments are only ever
// created as Scheduled; no further transition logic exists.
func (h *PortalHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, hospital.RolePatient)
	if !ok {
		return
	}
	var req bookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.DoctorID) == "" || strings.TrimSpace(req.Date) == "" || strings.TrimSpace(req.Time) == "" {
		respondError(w, http.StatusBadRequest, "doctorId, date and time are required")
		return
	}
	appointment := hospital.Appointment{
		ID:        uuid.NewString(),
		PatientID: identity.ID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Status:    hospital.AppointmentScheduled,
	}
	h.store.AddAppointment(r.Context(), appointment)
	h.logger.Info("appointment booked", "patient_id", identity.ID, "doctor_id", req.DoctorID)
	respondJSON(w, http.StatusCreated, appointment)
}

type chatRequest struct {
	Question string `json:"question"`
}

// Chat handles POST /assistant/chat. The reply is always usable text; a
// failed generation collapses into the assistant's fixed fallback message.
func (h *PortalHandler) Chat(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, hospital.RolePatient)
	if !ok {
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondError(w, http.StatusBadRequest, "question is required")
		return
	}
	reply := h.assistant.Ask(r.Context(), identity.ID, req.Question)
	respondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
