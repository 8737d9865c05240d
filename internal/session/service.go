// Package session owns the currently authenticated identity. A staff login
// is stored whole under hospice_user; a patient login stores the lightweight
// {id,name} record under hospice_patient and synthesizes a staff-shaped
// profile with a placeholder email. Both keys are hydrated synchronously at
// startup and no authorization decision is made before hydration completes.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/pkg/logging"
)

// Durable keys for the two session records.
const (
	KeyUser    = "hospice_user"
	KeyPatient = "hospice_patient"
)

// PatientPlaceholderEmail fills the synthesized profile for patient logins.
const PatientPlaceholderEmail = "patient@hospital.com"

// PatientSession is the lightweight patient session record.
type PatientSession struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Service is the session store.
type Service struct {
	mu      sync.Mutex
	user    *hospital.StaffUser
	patient *PatientSession
	ready   bool

	redis  *redis.Client
	logger *logging.Logger
	tokens *TokenIssuer
}

// NewService creates a session store. A nil redis client keeps sessions
// purely in-memory.
func NewService(redisClient *redis.Client, tokens *TokenIssuer, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{redis: redisClient, tokens: tokens, logger: logger}
}

// Hydrate loads both session records. It must run before the service is
// considered ready; malformed records are dropped with a warning.
func (s *Service) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.ready = true }()
	if s.redis == nil {
		return nil
	}

	if raw, err := s.redis.Get(ctx, KeyUser).Result(); err == nil {
		var u hospital.StaffUser
		if jsonErr := json.Unmarshal([]byte(raw), &u); jsonErr != nil {
			s.logger.Warn("session: stored user malformed", "error", jsonErr)
		} else {
			s.user = &u
		}
	} else if err != redis.Nil {
		return fmt.Errorf("session: hydrate user: %w", err)
	}

	if raw, err := s.redis.Get(ctx, KeyPatient).Result(); err == nil {
		var p PatientSession
		if jsonErr := json.Unmarshal([]byte(raw), &p); jsonErr != nil {
			s.logger.Warn("session: stored patient malformed", "error", jsonErr)
		} else {
			s.patient = &p
		}
	} else if err != redis.Nil {
		return fmt.Errorf("session: hydrate patient: %w", err)
	}
	return nil
}

// Ready reports whether hydration has completed.
func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// LoginStaff stores the staff identity and returns a signed session token.
func (s *Service) LoginStaff(ctx context.Context, u hospital.StaffUser) (string, error) {
	u.Online = true
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	s.persist(ctx, KeyUser, u.Redacted())
	return s.tokens.Issue(u.ID, u.Name, u.Role)
}

// LoginPatient stores the lightweight patient session, synthesizes the
// staff-shaped profile and returns a signed session token.
func (s *Service) LoginPatient(ctx context.Context, id, name string) (string, error) {
	p := PatientSession{ID: id, Name: name}
	profile := hospital.StaffUser{
		ID:     id,
		Name:   name,
		Email:  PatientPlaceholderEmail,
		Role:   hospital.RolePatient,
		Online: true,
	}
	s.mu.Lock()
	s.patient = &p
	s.user = &profile
	s.mu.Unlock()
	s.persist(ctx, KeyPatient, p)
	return s.tokens.Issue(id, name, hospital.RolePatient)
}

// Logout clears both session records from memory and durable storage.
func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.patient = nil
	s.mu.Unlock()
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, KeyUser, KeyPatient).Err(); err != nil {
		s.logger.Warn("session: clear failed", "error", err)
	}
}

// CurrentUser returns the staff-shaped identity, if any.
func (s *Service) CurrentUser() (hospital.StaffUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return hospital.StaffUser{}, false
	}
	return *s.user, true
}

// CurrentPatient returns the lightweight patient session, if any.
func (s *Service) CurrentPatient() (PatientSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.patient == nil {
		return PatientSession{}, false
	}
	return *s.patient, true
}

func (s *Service) persist(ctx context.Context, key string, v any) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("session: marshal failed", "key", key, "error", err)
		return
	}
	if err := s.redis.Set(ctx, key, data, 0).Err(); err != nil {
		s.logger.Warn("session: persist failed", "key", key, "error", err)
	}
}
