// Package assistant is the clinical chat aide for the patient portal. It
// builds a context block from the patient's profile, active orders and
// billing total, asks the generative backend one question at a time, and
// degrades to a fixed fallback message on any failure.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/internal/observability/metrics"
	"github.com/marshospital/hospice/internal/store"
	"github.com/marshospital/hospice/pkg/logging"
)

// FallbackMessage replaces the reply whenever the generative call fails.
// Failures are never propagated to the portal.
const FallbackMessage = "Clinical system connection error. Please try again."

// Greeting opens every chat session.
const Greeting = "Hello! I am your clinical assistant. I can guide you through ward directions, vitals, test results, or current billing. How can I help?"

const systemInstruction = "You are a professional hospital-grade AI assistant. Help with ward navigation, medical record interpretation, and billing queries. Be extremely clear and use high-contrast language."

// Service answers portal questions grounded in the patient's records.
type Service struct {
	gen     Generator
	store   *store.Store
	logger  *logging.Logger
	metrics *metrics.ServiceMetrics
}

// NewService creates the assistant. A nil generator is allowed and makes
// every question resolve to the fallback message.
func NewService(gen Generator, st *store.Store, logger *logging.Logger, m *metrics.ServiceMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{gen: gen, store: st, logger: logger, metrics: m}
}

// Ask answers one free-text question for the given patient. The reply is
// always usable text; errors collapse into FallbackMessage.
func (s *Service) Ask(ctx context.Context, patientID, question string) string {
	if s.gen == nil {
		s.metrics.ObserveAssistant("unconfigured")
		return FallbackMessage
	}

	prompt := fmt.Sprintf("Context: %s\n\nUser Question: %s", s.contextBlock(patientID), question)
	reply, err := s.gen.Generate(ctx, systemInstruction, prompt)
	if err != nil {
		s.logger.Warn("assistant: generation failed", "patient_id", patientID, "error", err)
		s.metrics.ObserveAssistant("fallback")
		return FallbackMessage
	}
	s.metrics.ObserveAssistant("ok")
	return reply
}

// contextBlock renders the patient's profile, billing total and current
// orders. A missing patient renders empty values rather than failing.
func (s *Service) contextBlock(patientID string) string {
	patient, _ := s.store.PatientByID(patientID)
	actions := s.store.ActionsByPatient(patientID)
	bill := hospital.TotalBill(actions)

	orders := make([]string, 0, len(actions))
	for _, a := range actions {
		location := a.Location
		if location == "" {
			location = "Ward"
		}
		orders = append(orders, fmt.Sprintf("%s: %s assigned to %s (Current Status: %s)",
			a.Type, a.Description, location, a.Status))
	}

	var b strings.Builder
	b.WriteString("User Context:\n")
	fmt.Fprintf(&b, "- Name: %s\n", patient.Name)
	fmt.Fprintf(&b, "- Assigned Room/Ward: %s\n", patient.RoomNo)
	fmt.Fprintf(&b, "- Health Vitals: %gcm height, %gkg weight\n", patient.Height, patient.Weight)
	fmt.Fprintf(&b, "- Financial Status: Total bill of $%.2f\n", bill)
	fmt.Fprintf(&b, "- Current Medical Orders: %s\n", strings.Join(orders, ", "))
	b.WriteString("\nInstructions: Provide extremely clear, high-contrast textual responses. Use bullet points for lists. Be professional and authoritative.")
	return b.String()
}
