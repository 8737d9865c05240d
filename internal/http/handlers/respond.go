// Package handlers implements the HTTP surface of the coordination service:
// authentication, the role dashboards (nurse, doctor, lab, pharmacy,
// patient), the notification feed and the admin personnel panel.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/internal/http/middleware"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// requireRole resolves the request identity and enforces that it holds one
// of the given roles. On failure it writes the response and reports ok=false.
func requireRole(w http.ResponseWriter, r *http.Request, roles ...hospital.Role) (middleware.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return middleware.Identity{}, false
	}
	for _, role := range roles {
		if identity.Role == role {
			return identity, true
		}
	}
	respondError(w, http.StatusForbidden, "role not permitted")
	return middleware.Identity{}, false
}

func anyStaffRole() []hospital.Role {
	return []hospital.Role{hospital.RoleDoctor, hospital.RoleNurse, hospital.RoleLab, hospital.RolePharmacy}
}
