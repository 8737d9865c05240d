package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/internal/store"
	"github.com/marshospital/hospice/pkg/logging"
)

// PatientsHandler serves admission, the ward census and per-patient task
// views used by the nurse and doctor dashboards.
type PatientsHandler struct {
	store  *store.Store
	logger *logging.Logger
}

// NewPatientsHandler creates the patients handler.
func NewPatientsHandler(st *store.Store, logger *logging.Logger) *PatientsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &PatientsHandler{store: st, logger: logger}
}

type admitRequest struct {
	Name         string  `json:"name"`
	Age          int     `json:"age"`
	Problem      string  `json:"problem"`
	Weight       float64 `json:"weight"`
	Height       float64 `json:"height"`
	RoomNo       string  `json:"roomNo"`
	HasInsurance bool    `json:"hasInsurance"`
}

type admitResponse struct {
	Patient     hospital.Patient `json:"patient"`
	Credentials struct {
		ID       string `json:"id"`
		Password string `json:"password"`
	} `json:"credentials"`
}

// Admit handles POST /patients. Nurse only. The response carries the
// generated id and the system-default password exactly once; only the hash
// is retained.
func (h *PatientsHandler) Admit(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, hospital.RoleNurse)
	if !ok {
		return
	}
	var req admitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(hospital.DefaultPatientPassword), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("patients: hash default password failed", "error", err)
		respondError(w, http.StatusInternalServerError, "admission failed")
		return
	}

	patient := hospital.Patient{
		ID:            hospital.NewPatientID(),
		Name:          req.Name,
		Age:           req.Age,
		Problem:       req.Problem,
		Weight:        req.Weight,
		Height:        req.Height,
		RoomNo:        req.RoomNo,
		PasswordHash:  string(hash),
		CreatedBy:     identity.ID,
		CreatedAt:     time.Now().UnixMilli(),
		HasInsurance:  req.HasInsurance,
		PaymentStatus: hospital.PaymentDue,
	}
	h.store.AddPatient(r.Context(), patient)
	h.logger.Info("patient admitted", "patient_id", patient.ID, "by", identity.ID)

	resp := admitResponse{Patient: patient.Redacted()}
	resp.Credentials.ID = patient.ID
	resp.Credentials.Password = hospital.DefaultPatientPassword
	respondJSON(w, http.StatusCreated, resp)
}

type censusEntry struct {
	Patient      hospital.Patient `json:"patient"`
	PendingTasks int              `json:"pendingTasks"`
}

// Census handles GET /patients?q=. Any staff role. Returns the roster with
// per-patient pending order counts, optionally filtered by a name/id search.
func (h *PatientsHandler) Census(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, anyStaffRole()...); !ok {
		return
	}
	patients := h.store.SearchPatients(r.URL.Query().Get("q"))
	entries := make([]censusEntry, 0, len(patients))
	for _, p := range patients {
		entries = append(entries, censusEntry{
			Patient:      p.Redacted(),
			PendingTasks: h.store.PendingCount(p.ID),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"patients": entries, "count": len(entries)})
}

// Delete handles DELETE /patients/{id}. Nurse only. Removing a patient
// cascades to every order referencing it.
func (h *PatientsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, hospital.RoleNurse); !ok {
		return
	}
	id := chi.URLParam(r, "id")
	h.store.DeletePatient(r.Context(), id)
	h.logger.Info("patient discharged", "patient_id", id)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Tasks handles GET /patients/{id}/tasks: all orders for one patient.
func (h *PatientsHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, anyStaffRole()...); !ok {
		return
	}
	id := chi.URLParam(r, "id")
	respondJSON(w, http.StatusOK, map[string]any{"actions": h.store.ActionsByPatient(id)})
}

// Timeline handles GET /patients/{id}/timeline: the patient record plus its
// orders, most recent first. A missing patient renders as absent rather
// than an error.
func (h *PatientsHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, anyStaffRole()...); !ok {
		return
	}
	id := chi.URLParam(r, "id")
	patient, found := h.store.PatientByID(id)
	respondJSON(w, http.StatusOK, map[string]any{
		"patient": patient.Redacted(),
		"found":   found,
		"actions": h.store.ActionsByPatient(id),
	})
}
