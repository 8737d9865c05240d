// Package router assembles the navigable surface of the coordination
// service into a chi route table.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marshospital/hospice/internal/http/handlers"
	httpmiddleware "github.com/marshospital/hospice/internal/http/middleware"
	"github.com/marshospital/hospice/internal/session"
	"github.com/marshospital/hospice/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	Auth          *handlers.AuthHandler
	Patients      *handlers.PatientsHandler
	Orders        *handlers.OrdersHandler
	Departments   *handlers.DepartmentHandler
	Billing       *handlers.BillingHandler
	Portal        *handlers.PortalHandler
	Notifications *handlers.NotificationsHandler
	Admin         *handlers.AdminHandler

	Tokens          *session.TokenIssuer
	SessionReady    func() bool
	AdminAuthSecret string

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", cfg.Auth.StaffLogin)
			auth.Post("/patient-login", cfg.Auth.PatientLogin)
			auth.Post("/signup", cfg.Auth.Signup)
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Session-authenticated endpoints.
	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.SessionAuth(cfg.Tokens, cfg.SessionReady))

		private.Get("/me", cfg.Auth.Me)
		private.Post("/auth/logout", cfg.Auth.Logout)

		private.Route("/patients", func(p chi.Router) {
			p.Get("/", cfg.Patients.Census)
			p.Post("/", cfg.Patients.Admit)
			p.Route("/{id}", func(one chi.Router) {
				one.Delete("/", cfg.Patients.Delete)
				one.Get("/tasks", cfg.Patients.Tasks)
				one.Get("/timeline", cfg.Patients.Timeline)
				one.Put("/payment-status", cfg.Billing.SetPaymentStatus)
			})
		})

		private.Route("/actions", func(a chi.Router) {
			a.Post("/", cfg.Orders.Create)
			a.Delete("/{id}", cfg.Orders.Delete)
			a.Post("/{id}/complete", cfg.Orders.CompleteNurse)
		})

		private.Route("/lab", func(lab chi.Router) {
			lab.Get("/queue", cfg.Departments.LabQueue)
			lab.Get("/completed", cfg.Departments.LabCompleted)
			lab.Post("/actions/{id}/complete", cfg.Departments.LabComplete)
		})

		private.Route("/pharmacy", func(ph chi.Router) {
			ph.Get("/queue", cfg.Departments.PharmacyQueue)
			ph.Get("/completed", cfg.Departments.PharmacyCompleted)
			ph.Post("/actions/{id}/complete", cfg.Departments.PharmacyComplete)
		})

		private.Get("/billing/patients", cfg.Billing.Summary)

		private.Route("/portal", func(portal chi.Router) {
			portal.Get("/overview", cfg.Portal.Overview)
			portal.Get("/doctors", cfg.Portal.Doctors)
		})
		private.Post("/appointments", cfg.Portal.BookAppointment)
		private.Post("/assistant/chat", cfg.Portal.Chat)

		private.Get("/notifications/latest", cfg.Notifications.Latest)
		private.Post("/notifications/clear", cfg.Notifications.Clear)
	})

	// Personnel management, gated by the admin JWT.
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		admin.Get("/staff", cfg.Admin.ListStaff)
		admin.Delete("/staff/{id}", cfg.Admin.RevokeStaff)
	})

	return r
}
