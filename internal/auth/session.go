package auth

import (
	"time"

	"github.com/qualityveda/attendance-hub/internal/domain"
)

// State names the step the login dialogue is waiting on. The machine is
// linear with one branch after code verification: returning users jump
// straight to Authenticated, first-time users walk name and lab capture.
type State string

const (
	StateAwaitingCode  State = "awaiting_code"
	StateAwaitingName  State = "awaiting_name"
	StateAwaitingLab   State = "awaiting_lab"
	StateAuthenticated State = "authenticated"
)

// Session is one in-flight login dialogue. The verification code is retained
// only here, as a bcrypt hash, for the lifetime of the session.
type Session struct {
	ID            string
	State         State
	Email         string
	Name          string
	CooldownUntil time.Time
	ExpiresAt     time.Time
	User          *domain.UserInfo

	codeHash []byte
}

func (s *Session) expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
