package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/internal/store"
	"github.com/marshospital/hospice/pkg/logging"
)

// OrdersHandler serves clinical order creation (doctor) and the nurse-side
// completion flow.
type OrdersHandler struct {
	store  *store.Store
	logger *logging.Logger
}

// NewOrdersHandler creates the orders handler.
func NewOrdersHandler(st *store.Store, logger *logging.Logger) *OrdersHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &OrdersHandler{store: st, logger: logger}
}

type createOrderRequest struct {
	PatientID         string `json:"patientId"`
	Type              string `json:"type"`
	Description       string `json:"description"`
	Timings           string `json:"timings"`
	AssignedTo        string `json:"assignedTo"`
	ReferringDoctorID string `json:"referringDoctorId"`
}

// Create handles POST /actions. Doctor only. The location is derived from
// the target department and the description gains a referral prefix when the
// referring doctor id resolves to a doctor on staff. Patient existence is
// not checked; orphaned orders are tolerated, matching the cascade-delete
// contract.
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, hospital.RoleDoctor)
	if !ok {
		return
	}
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.PatientID) == "" {
		respondError(w, http.StatusBadRequest, "patientId is required")
		return
	}
	actionType := hospital.ActionType(req.Type)
	if !hospital.ValidActionType(actionType) {
		respondError(w, http.StatusBadRequest, "type must be TEST, MEDICINE or INSTRUCTION")
		return
	}
	assignee := hospital.Role(req.AssignedTo)
	if assignee != hospital.RoleNurse && assignee != hospital.RoleLab && assignee != hospital.RolePharmacy {
		respondError(w, http.StatusBadRequest, "assignedTo must be NURSE, LAB or PHARMACY")
		return
	}

	prefix := ""
	if req.ReferringDoctorID != "" {
		if refDoc, found := h.store.StaffByID(req.ReferringDoctorID); found && refDoc.Role == hospital.RoleDoctor {
			prefix = hospital.ReferralPrefix(refDoc.Name)
		}
	}

	action := hospital.PatientAction{
		ID:          uuid.NewString(),
		PatientID:   req.PatientID,
		Type:        actionType,
		Description: prefix + req.Description,
		Timings:     req.Timings,
		Location:    hospital.LocationFor(assignee),
		CreatedBy:   identity.ID,
		AssignedTo:  assignee,
		Status:      hospital.StatusPending,
		Timestamp:   time.Now().UnixMilli(),
	}
	h.store.AddAction(r.Context(), action)
	h.logger.Info("order created", "action_id", action.ID, "patient_id", action.PatientID, "assigned_to", assignee)
	respondJSON(w, http.StatusCreated, action)
}

// Delete handles DELETE /actions/{id}. Doctor only.
func (h *OrdersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, hospital.RoleDoctor); !ok {
		return
	}
	id := chi.URLParam(r, "id")
	h.store.DeleteAction(r.Context(), id)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CompleteNurse handles POST /actions/{id}/complete. Nurse only: a pure
// status flip with no billing input. Completion is one-way.
func (h *OrdersHandler) CompleteNurse(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, hospital.RoleNurse); !ok {
		return
	}
	id := chi.URLParam(r, "id")
	action, found := h.store.ActionByID(id)
	if !found {
		respondError(w, http.StatusNotFound, "action not found")
		return
	}
	if action.AssignedTo != hospital.RoleNurse {
		respondError(w, http.StatusForbidden, "action is not assigned to nursing")
		return
	}
	if action.Status == hospital.StatusCompleted {
		respondError(w, http.StatusConflict, "action already completed")
		return
	}
	completed := hospital.StatusCompleted
	h.store.UpdateAction(r.Context(), id, store.ActionUpdate{Status: &completed})
	h.logger.Info("nurse task completed", "action_id", id)
	respondJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}
