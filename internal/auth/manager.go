// Package auth drives the one-time-passcode login dialogue:
// email -> code verification -> (first time) name and lab capture ->
// authenticated.
package auth

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/qualityveda/attendance-hub/internal/catalog"
	"github.com/qualityveda/attendance-hub/internal/domain"
	"github.com/qualityveda/attendance-hub/internal/identity"
	"github.com/qualityveda/attendance-hub/internal/mailer"
	"github.com/qualityveda/attendance-hub/pkg/auth"
	"github.com/qualityveda/attendance-hub/pkg/config"
	"github.com/qualityveda/attendance-hub/pkg/events"
	"github.com/qualityveda/attendance-hub/pkg/logger"
)

// VerifyOutcome is the result of a successful code match: either a full
// authentication for a returning user, or a signal that registration steps
// remain for a first-time user.
type VerifyOutcome struct {
	NameRequired bool             `json:"name_required"`
	Token        string           `json:"token,omitempty"`
	User         *domain.UserInfo `json:"user,omitempty"`
}

type AuthResult struct {
	Token string          `json:"token"`
	User  domain.UserInfo `json:"user"`
}

type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ids    *identity.Registry
	labs   *catalog.Store
	mailer mailer.Service
	bus    events.Publisher
	cfg    *config.AuthConfig

	now     func() time.Time
	newCode func() string
}

func NewManager(ids *identity.Registry, labs *catalog.Store, m mailer.Service, bus events.Publisher, cfg *config.AuthConfig) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ids:      ids,
		labs:     labs,
		mailer:   m,
		bus:      bus,
		cfg:      cfg,
		now:      time.Now,
		newCode:  generateCode,
	}
}

// generateCode draws a 6-digit code uniformly from [100000, 999999].
func generateCode() string {
	return fmt.Sprintf("%06d", rand.Intn(900000)+100000)
}

// RequestCode validates the email, generates and dispatches a code, and opens
// an AwaitingCode session. On delivery failure no session is created, so the
// caller is effectively still at the email step.
func (m *Manager) RequestCode(ctx context.Context, email string) (*Session, error) {
	req := domain.RequestCodeRequest{Email: email}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid email address: %w", err)
	}

	code := m.newCode()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash verification code: %w", err)
	}

	if err := m.mailer.SendVerificationCode(req.Email, code); err != nil {
		logger.ErrorContext(ctx, "Failed to send verification code", "error", err, "email", req.Email)
		return nil, fmt.Errorf("could not send verification email: %w", domain.ErrDelivery)
	}

	now := m.now()
	session := &Session{
		ID:            uuid.NewString(),
		State:         StateAwaitingCode,
		Email:         req.Email,
		CooldownUntil: now.Add(m.cfg.ResendCooldown),
		ExpiresAt:     now.Add(m.cfg.SessionTTL),
		codeHash:      hash,
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session, nil
}

// ResendCode regenerates and redispatches the code for an AwaitingCode
// session. While the cooldown is running it reports ErrCooldown and changes
// nothing; on delivery failure the previously sent code stays valid.
func (m *Manager) ResendCode(ctx context.Context, sessionID string) error {
	session, err := m.get(sessionID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if session.State != StateAwaitingCode {
		m.mu.Unlock()
		return fmt.Errorf("no pending code for this session: %w", domain.ErrValidation)
	}
	now := m.now()
	if now.Before(session.CooldownUntil) {
		m.mu.Unlock()
		return fmt.Errorf("please wait before requesting another code: %w", domain.ErrCooldown)
	}
	email := session.Email
	m.mu.Unlock()

	code := m.newCode()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash verification code: %w", err)
	}

	if err := m.mailer.SendVerificationCode(email, code); err != nil {
		logger.ErrorContext(ctx, "Failed to resend verification code", "error", err, "email", email)
		return fmt.Errorf("could not send verification email: %w", domain.ErrDelivery)
	}

	m.mu.Lock()
	session.codeHash = hash
	session.CooldownUntil = m.now().Add(m.cfg.ResendCooldown)
	m.mu.Unlock()

	return nil
}

// VerifyCode compares the submitted code against the retained one. On match
// a returning user is authenticated immediately; a first-time user moves on
// to name capture.
func (m *Manager) VerifyCode(ctx context.Context, sessionID, code string) (*VerifyOutcome, error) {
	req := domain.VerifyCodeRequest{SessionID: sessionID, Code: code}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("code must be 6 digits: %w", err)
	}

	session, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if session.State != StateAwaitingCode {
		return nil, fmt.Errorf("no pending code for this session: %w", domain.ErrValidation)
	}

	if bcrypt.CompareHashAndPassword(session.codeHash, []byte(req.Code)) != nil {
		return nil, fmt.Errorf("incorrect verification code: %w", domain.ErrMismatch)
	}

	existing, err := m.ids.FindByEmail(ctx, session.Email)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		session.State = StateAwaitingName
		return &VerifyOutcome{NameRequired: true}, nil
	}

	result, err := m.authenticateLocked(ctx, session, existing, true)
	if err != nil {
		return nil, err
	}
	return &VerifyOutcome{Token: result.Token, User: &result.User}, nil
}

// SubmitName records the display name for a first-time registration.
func (m *Manager) SubmitName(_ context.Context, sessionID, name string) error {
	req := domain.SubmitNameRequest{SessionID: sessionID, Name: name}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("name is required: %w", err)
	}

	session, err := m.get(sessionID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if session.State != StateAwaitingName {
		return fmt.Errorf("name is not expected at this step: %w", domain.ErrValidation)
	}

	session.Name = req.Name
	session.State = StateAwaitingLab
	return nil
}

// SubmitLab completes a first-time registration: the identity is persisted
// and the session authenticated.
func (m *Manager) SubmitLab(ctx context.Context, sessionID, labID string) (*AuthResult, error) {
	req := domain.SubmitLabRequest{SessionID: sessionID, LabID: labID}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("lab selection is required: %w", err)
	}

	session, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if session.State != StateAwaitingLab {
		return nil, fmt.Errorf("lab is not expected at this step: %w", domain.ErrValidation)
	}

	if _, ok := m.labs.LabByID(req.LabID); !ok {
		return nil, fmt.Errorf("unknown lab: %w", domain.ErrValidation)
	}

	id := domain.Identity{
		Email:       session.Email,
		DisplayName: session.Name,
		LabID:       req.LabID,
	}
	if err := m.ids.Save(ctx, id); err != nil {
		return nil, err
	}

	return m.authenticateLocked(ctx, session, &id, false)
}

// Logout drops the server-side session; the client discards its token.
func (m *Manager) Logout(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Session returns the live session for id, or ErrNotFound.
func (m *Manager) Session(sessionID string) (*Session, error) {
	return m.get(sessionID)
}

// CleanupExpired sweeps sessions past their TTL. Run periodically.
func (m *Manager) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, session := range m.sessions {
		if session.expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *Manager) get(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok || session.expired(m.now()) {
		return nil, fmt.Errorf("unknown or expired session: %w", domain.ErrNotFound)
	}
	return session, nil
}

func (m *Manager) authenticateLocked(ctx context.Context, session *Session, id *domain.Identity, returning bool) (*AuthResult, error) {
	role := auth.RoleUser
	if m.ids.IsAdmin(id.Email) {
		role = auth.RoleAdmin
	}

	token, err := auth.NewSessionToken(id.Email, id.DisplayName, role, id.LabID, m.cfg.JWTSecret, m.cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	user := id.ToUserInfo(m.ids.AdminEmail())
	session.State = StateAuthenticated
	session.User = &user
	session.codeHash = nil

	if m.bus != nil {
		subject := events.UserRegistered
		if returning {
			subject = events.UserAuthenticated
		}
		evt := events.UserAuthenticatedEvent{
			Email:           user.Email,
			Name:            user.Name,
			IsAdmin:         user.IsAdmin,
			Returning:       returning,
			AuthenticatedAt: m.now(),
		}
		if err := m.bus.Publish(ctx, subject, evt); err != nil {
			logger.WarnContext(ctx, "Failed to publish auth event", "error", err)
		}
	}

	return &AuthResult{Token: token, User: user}, nil
}
