package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/internal/store"
	"github.com/marshospital/hospice/pkg/logging"
)

// DepartmentHandler serves the lab and pharmacy work queues and their
// completion flows. Lab completions attach a result and a bill; pharmacy
// completions attach a bill.
type DepartmentHandler struct {
	store  *store.Store
	logger *logging.Logger
}

// NewDepartmentHandler creates the department handler.
func NewDepartmentHandler(st *store.Store, logger *logging.Logger) *DepartmentHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DepartmentHandler{store: st, logger: logger}
}

// LabQueue handles GET /lab/queue: pending tests.
func (h *DepartmentHandler) LabQueue(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, hospital.RoleLab); !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"actions": h.store.ActionsByAssignee(hospital.RoleLab, hospital.StatusPending),
	})
}

// LabCompleted handles GET /lab/completed: recently processed tests,
// most recent first.
func (h *DepartmentHandler) LabCompleted(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, hospital.RoleLab); !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"actions": h.store.ActionsByAssignee(hospital.RoleLab, hospital.StatusCompleted),
	})
}

type labCompleteRequest struct {
	Result     string   `json:"result"`
	BillAmount *float64 `json:"billAmount"`
}

// LabComplete handles POST /lab/actions/{id}/complete. A result and a bill
// amount are both required; the bill is immutable once set.
func (h *DepartmentHandler) LabComplete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, hospital.RoleLab); !ok {
		return
	}
	var req labCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Result) == "" {
		respondError(w, http.StatusBadRequest, "result is required")
		return
	}
	if req.BillAmount == nil {
		respondError(w, http.StatusBadRequest, "billAmount is required")
		return
	}
	h.complete(w, r, hospital.RoleLab, store.ActionUpdate{
		BillAmount: req.BillAmount,
		Result:     &req.Result,
	})
}

// PharmacyQueue handles GET /pharmacy/queue: the medicine queue.
func (h *DepartmentHandler) PharmacyQueue(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, hospital.RolePharmacy); !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"actions": h.store.ActionsByAssignee(hospital.RolePharmacy, hospital.StatusPending),
	})
}

// PharmacyCompleted handles GET /pharmacy/completed: past dispensations,
// most recent first.
func (h *DepartmentHandler) PharmacyCompleted(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, hospital.RolePharmacy); !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"actions": h.store.ActionsByAssignee(hospital.RolePharmacy, hospital.StatusCompleted),
	})
}

type pharmacyCompleteRequest struct {
	BillAmount *float64 `json:"billAmount"`
}

// PharmacyComplete handles POST /pharmacy/actions/{id}/complete. The
// dispensation charge is required.
func (h *DepartmentHandler) PharmacyComplete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, hospital.RolePharmacy); !ok {
		return
	}
	var req pharmacyCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BillAmount == nil {
		respondError(w, http.StatusBadRequest, "billAmount is required")
		return
	}
	h.complete(w, r, hospital.RolePharmacy, store.ActionUpdate{BillAmount: req.BillAmount})
}

// complete applies the shared one-way completion rules for a department.
func (h *DepartmentHandler) complete(w http.ResponseWriter, r *http.Request, dept hospital.Role, upd store.ActionUpdate) {
	id := chi.URLParam(r, "id")
	action, found := h.store.ActionByID(id)
	if !found {
		respondError(w, http.StatusNotFound, "action not found")
		return
	}
	if action.AssignedTo != dept {
		respondError(w, http.StatusForbidden, "action is not assigned to this department")
		return
	}
	if action.Status == hospital.StatusCompleted {
		respondError(w, http.StatusConflict, "action already completed")
		return
	}
	completed := hospital.StatusCompleted
	upd.Status = &completed
	h.store.UpdateAction(r.Context(), id, upd)
	h.logger.Info("order completed", "action_id", id, "department", dept)
	updated, _ := h.store.ActionByID(id)
	respondJSON(w, http.StatusOK, updated)
}
