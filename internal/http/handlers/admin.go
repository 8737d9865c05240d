package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/internal/store"
	"github.com/marshospital/hospice/pkg/logging"
)

// AdminHandler serves the personnel-management panel. Routes are mounted
// behind the admin JWT middleware rather than a session identity.
type AdminHandler struct {
	store  *store.Store
	logger *logging.Logger
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(st *store.Store, logger *logging.Logger) *AdminHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminHandler{store: st, logger: logger}
}

// ListStaff handles GET /admin/staff.
func (h *AdminHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff := h.store.Staff()
	out := make([]hospital.StaffUser, 0, len(staff))
	for _, u := range staff {
		out = append(out, u.Redacted())
	}
	respondJSON(w, http.StatusOK, map[string]any{"staff": out, "count": len(out)})
}

// RevokeStaff handles DELETE /admin/staff/{id}: revokes a staff account.
func (h *AdminHandler) RevokeStaff(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.store.DeleteStaff(r.Context(), id)
	h.logger.Info("staff access revoked", "staff_id", id)
	respondJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}
