package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/internal/store"
	"github.com/marshospital/hospice/pkg/logging"
)

// BillingHandler serves the pharmacy bill manager: per-patient aggregate
// bills and the payment status toggle.
type BillingHandler struct {
	store  *store.Store
	logger *logging.Logger
}

// NewBillingHandler creates the billing handler.
func NewBillingHandler(st *store.Store, logger *logging.Logger) *BillingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BillingHandler{store: st, logger: logger}
}

type patientBill struct {
	Patient       hospital.Patient       `json:"patient"`
	TotalBill     float64                `json:"totalBill"`
	PaymentStatus hospital.PaymentStatus `json:"paymentStatus"`
}

// Summary handles GET /billing/patients. The aggregate is recomputed from
// the order records on every call and carries the independent payment flag
// alongside it.
func (h *BillingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, hospital.RolePharmacy); !ok {
		return
	}
	patients := h.store.Patients()
	bills := make([]patientBill, 0, len(patients))
	for _, p := range patients {
		bills = append(bills, patientBill{
			Patient:       p.Redacted(),
			TotalBill:     hospital.TotalBill(h.store.ActionsByPatient(p.ID)),
			PaymentStatus: p.PaymentStatus,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"bills": bills})
}

type paymentStatusRequest struct {
	Status string `json:"status"`
}

// SetPaymentStatus handles PUT /patients/{id}/payment-status. A direct
// assignment in either direction; no validation against the aggregate bill
// and no history retained.
func (h *BillingHandler) SetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, hospital.RolePharmacy); !ok {
		return
	}
	var req paymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status := hospital.PaymentStatus(req.Status)
	if status != hospital.PaymentDue && status != hospital.PaymentCompleted {
		respondError(w, http.StatusBadRequest, "status must be DUE or COMPLETED")
		return
	}
	id := chi.URLParam(r, "id")
	h.store.UpdatePatient(r.Context(), id, store.PatientUpdate{PaymentStatus: &status})
	h.logger.Info("payment status set", "patient_id", id, "status", status)
	respondJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}
