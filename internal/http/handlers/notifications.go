package handlers

import (
	"net/http"
	"time"

	"github.com/marshospital/hospice/internal/http/middleware"
	"github.com/marshospital/hospice/internal/store"
	"github.com/marshospital/hospice/pkg/logging"
)

// DefaultDisplayWindow is how long a surfaced notification stays visible
// before consumers auto-dismiss it.
const DefaultDisplayWindow = 5 * time.Second

// NotificationsHandler serves the pull-model notification feed. The log
// holds the last few notifications system-wide; a consumer only ever sees
// the single most-recent entry, and only when it targets the consumer's
// own role.
type NotificationsHandler struct {
	store         *store.Store
	displayWindow time.Duration
	logger        *logging.Logger
}

// NewNotificationsHandler creates the notifications handler. A zero window
// falls back to the default.
func NewNotificationsHandler(st *store.Store, displayWindow time.Duration, logger *logging.Logger) *NotificationsHandler {
	if displayWindow <= 0 {
		displayWindow = DefaultDisplayWindow
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &NotificationsHandler{store: st, displayWindow: displayWindow, logger: logger}
}

// Latest handles GET /notifications/latest. 204 when the head of the log
// does not target the caller's role or its display window has lapsed.
func (h *NotificationsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	note, found := h.store.LatestNotification()
	if !found || note.Role != identity.Role {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	expiresAt := note.Timestamp + h.displayWindow.Milliseconds()
	if time.Now().UnixMilli() > expiresAt {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"notification": note,
		"expiresAt":    expiresAt,
	})
}

// Clear handles POST /notifications/clear.
func (h *NotificationsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.IdentityFromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	h.store.ClearNotifications()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
