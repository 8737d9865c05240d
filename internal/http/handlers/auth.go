package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/internal/http/middleware"
	"github.com/marshospital/hospice/internal/observability/metrics"
	"github.com/marshospital/hospice/internal/session"
	"github.com/marshospital/hospice/internal/store"
	"github.com/marshospital/hospice/pkg/logging"
)

// AuthHandler serves login, signup and logout for staff and patients.
type AuthHandler struct {
	store    *store.Store
	sessions *session.Service
	logger   *logging.Logger
	metrics  *metrics.ServiceMetrics
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(st *store.Store, sessions *session.Service, logger *logging.Logger, m *metrics.ServiceMetrics) *AuthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthHandler{store: st, sessions: sessions, logger: logger, metrics: m}
}

type staffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type patientLoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  hospital.StaffUser `json:"user"`
}

// StaffLogin handles POST /auth/login. Credential mismatch is an inline
// failure with no lockout or attempt counting.
func (h *AuthHandler) StaffLogin(w http.ResponseWriter, r *http.Request) {
	var req staffLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, found := h.store.StaffByEmail(req.Email)
	if !found || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.metrics.ObserveLogin("staff", "denied")
		respondError(w, http.StatusUnauthorized, "Unauthorized Staff Credentials")
		return
	}

	token, err := h.sessions.LoginStaff(r.Context(), user)
	if err != nil {
		h.logger.Error("auth: staff login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	h.metrics.ObserveLogin("staff", "ok")
	h.logger.Info("staff logged in", "staff_id", user.ID, "role", user.Role)
	respondJSON(w, http.StatusOK, loginResponse{Token: token, User: user.Redacted()})
}

// PatientLogin handles POST /auth/patient-login against the admitted-patient
// roster and the system-issued password.
func (h *AuthHandler) PatientLogin(w http.ResponseWriter, r *http.Request) {
	var req patientLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patient, found := h.store.PatientByID(req.ID)
	if !found || bcrypt.CompareHashAndPassword([]byte(patient.PasswordHash), []byte(req.Password)) != nil {
		h.metrics.ObserveLogin("patient", "denied")
		respondError(w, http.StatusUnauthorized, "Invalid Patient ID or Password")
		return
	}

	token, err := h.sessions.LoginPatient(r.Context(), patient.ID, patient.Name)
	if err != nil {
		h.logger.Error("auth: patient login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	user, _ := h.sessions.CurrentUser()
	h.metrics.ObserveLogin("patient", "ok")
	h.logger.Info("patient logged in", "patient_id", patient.ID)
	respondJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Signup handles POST /auth/signup for staff accounts. The role must be one
// of the four departments; duplicate emails are dropped silently, leaving
// the existing account untouched.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	role := hospital.Role(req.Role)
	if !hospital.ValidStaffRole(role) {
		respondError(w, http.StatusBadRequest, "role must be DOCTOR, NURSE, LAB or PHARMACY")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("auth: hash password failed", "error", err)
		respondError(w, http.StatusInternalServerError, "signup failed")
		return
	}

	user := hospital.StaffUser{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		Online:       true,
		PasswordHash: string(hash),
	}
	h.store.AddStaff(r.Context(), user)
	h.logger.Info("staff signup", "email", req.Email, "role", role)
	respondJSON(w, http.StatusCreated, user.Redacted())
}

// Logout handles POST /auth/logout, clearing both session records.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context())
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me handles GET /me, echoing the authenticated identity.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	respondJSON(w, http.StatusOK, identity)
}
