package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/qualityveda/attendance-hub/internal/catalog"
	"github.com/qualityveda/attendance-hub/internal/domain"
	"github.com/qualityveda/attendance-hub/internal/identity"
	"github.com/qualityveda/attendance-hub/pkg/config"
	"github.com/qualityveda/attendance-hub/pkg/kv"
)

const adminEmail = "admin@qualityveda.com"

type mockMailer struct {
	lastTo   string
	lastCode string
	sent     int
	sendErr  error
}

func (m *mockMailer) SendVerificationCode(toEmail, code string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.lastTo = toEmail
	m.lastCode = code
	m.sent++
	return nil
}

func newTestManager(t *testing.T) (*Manager, *mockMailer, *identity.Registry, *catalog.Store) {
	t.Helper()
	mem := kv.NewMemoryStore()
	labs, err := catalog.NewStore(context.Background(), mem, nil)
	if err != nil {
		t.Fatalf("catalog.NewStore: %v", err)
	}
	ids := identity.NewRegistry(mem, adminEmail)
	mail := &mockMailer{}
	cfg := &config.AuthConfig{
		JWTSecret:      "test-secret",
		SessionTTL:     30 * time.Minute,
		TokenTTL:       time.Hour,
		AdminEmail:     adminEmail,
		ResendCooldown: 60 * time.Second,
	}
	return NewManager(ids, labs, mail, nil, cfg), mail, ids, labs
}

func wrongCode(sent string) string {
	if sent == "123456" {
		return "654321"
	}
	return "123456"
}

func TestRequestCodeRejectsInvalidEmails(t *testing.T) {
	m, mail, _, _ := newTestManager(t)

	for _, email := range []string{"", "not-an-email", "user@", "@x.com", "user@x", "user x@y.com"} {
		if _, err := m.RequestCode(context.Background(), email); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("RequestCode(%q): expected ErrValidation, got %v", email, err)
		}
	}
	if mail.sent != 0 {
		t.Errorf("mail dispatched despite invalid email")
	}
}

func TestRequestCodeDeliveryFailure(t *testing.T) {
	m, mail, _, _ := newTestManager(t)
	mail.sendErr = fmt.Errorf("smtp down")

	if _, err := m.RequestCode(context.Background(), "user@x.com"); !errors.Is(err, domain.ErrDelivery) {
		t.Fatalf("expected ErrDelivery, got %v", err)
	}
}

func TestRequestCodeOpensSession(t *testing.T) {
	m, mail, _, _ := newTestManager(t)

	session, err := m.RequestCode(context.Background(), "User@X.com ")
	if err != nil {
		t.Fatalf("RequestCode: %v", err)
	}
	if session.State != StateAwaitingCode {
		t.Errorf("expected AwaitingCode, got %s", session.State)
	}
	if session.Email != "user@x.com" {
		t.Errorf("email not normalized: %q", session.Email)
	}
	if mail.lastTo != "user@x.com" {
		t.Errorf("code sent to %q", mail.lastTo)
	}
	if len(mail.lastCode) != 6 {
		t.Errorf("expected 6-digit code, got %q", mail.lastCode)
	}
}

func TestVerifyCodeRejectsMalformedCodes(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	session, _ := m.RequestCode(context.Background(), "user@x.com")

	for _, code := range []string{"", "12345", "1234567", "12345a"} {
		if _, err := m.VerifyCode(context.Background(), session.ID, code); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("VerifyCode(%q): expected ErrValidation, got %v", code, err)
		}
	}
	if session.State != StateAwaitingCode {
		t.Errorf("state moved on malformed code: %s", session.State)
	}
}

func TestVerifyCodeMismatchKeepsState(t *testing.T) {
	m, mail, _, _ := newTestManager(t)
	session, _ := m.RequestCode(context.Background(), "user@x.com")

	if _, err := m.VerifyCode(context.Background(), session.ID, wrongCode(mail.lastCode)); !errors.Is(err, domain.ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	if session.State != StateAwaitingCode {
		t.Errorf("state changed on mismatch: %s", session.State)
	}

	// The retained code still works after a failed attempt.
	outcome, err := m.VerifyCode(context.Background(), session.ID, mail.lastCode)
	if err != nil {
		t.Fatalf("VerifyCode after mismatch: %v", err)
	}
	if !outcome.NameRequired {
		t.Error("expected name capture for a first-time user")
	}
}

func TestFirstTimeRegistrationFlow(t *testing.T) {
	m, mail, ids, labs := newTestManager(t)
	ctx := context.Background()

	session, _ := m.RequestCode(ctx, "user@x.com")

	outcome, err := m.VerifyCode(ctx, session.ID, mail.lastCode)
	if err != nil || !outcome.NameRequired {
		t.Fatalf("expected name_required, got %+v %v", outcome, err)
	}
	if session.State != StateAwaitingName {
		t.Fatalf("expected AwaitingName, got %s", session.State)
	}

	if err := m.SubmitName(ctx, session.ID, "   "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank name: expected ErrValidation, got %v", err)
	}
	if err := m.SubmitName(ctx, session.ID, " Priya "); err != nil {
		t.Fatalf("SubmitName: %v", err)
	}
	if session.State != StateAwaitingLab {
		t.Fatalf("expected AwaitingLab, got %s", session.State)
	}

	if _, err := m.SubmitLab(ctx, session.ID, ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty lab: expected ErrValidation, got %v", err)
	}
	if _, err := m.SubmitLab(ctx, session.ID, "no-such-lab"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown lab: expected ErrValidation, got %v", err)
	}

	seeded := labs.ListLabs()[0]
	result, err := m.SubmitLab(ctx, session.ID, seeded.ID)
	if err != nil {
		t.Fatalf("SubmitLab: %v", err)
	}
	if result.Token == "" {
		t.Error("expected a session token")
	}
	if result.User.Name != "Priya" || result.User.IsAdmin {
		t.Errorf("unexpected user: %+v", result.User)
	}
	if session.State != StateAuthenticated {
		t.Errorf("expected Authenticated, got %s", session.State)
	}

	id, err := ids.FindByEmail(ctx, "user@x.com")
	if err != nil || id == nil {
		t.Fatalf("identity not persisted: %v", err)
	}
	if id.DisplayName != "Priya" || id.LabID != seeded.ID {
		t.Errorf("identity fields wrong: %+v", id)
	}
}

func TestReturningUserSkipsRegistration(t *testing.T) {
	m, mail, ids, _ := newTestManager(t)
	ctx := context.Background()

	if err := ids.Save(ctx, domain.Identity{Email: "user@x.com", DisplayName: "Priya", LabID: "lab2"}); err != nil {
		t.Fatal(err)
	}

	session, _ := m.RequestCode(ctx, "user@x.com")
	outcome, err := m.VerifyCode(ctx, session.ID, mail.lastCode)
	if err != nil {
		t.Fatalf("VerifyCode: %v", err)
	}
	if outcome.NameRequired {
		t.Fatal("returning user sent through registration")
	}
	if outcome.User == nil || outcome.User.Name != "Priya" || outcome.User.LabID != "lab2" {
		t.Errorf("unexpected user: %+v", outcome.User)
	}
	if session.State != StateAuthenticated {
		t.Errorf("expected Authenticated, got %s", session.State)
	}
}

func TestAdminFlagDerivedFromEmail(t *testing.T) {
	m, mail, ids, _ := newTestManager(t)
	ctx := context.Background()

	if err := ids.Save(ctx, domain.Identity{Email: adminEmail, DisplayName: "Admin"}); err != nil {
		t.Fatal(err)
	}
	if err := ids.Save(ctx, domain.Identity{Email: "user@x.com", DisplayName: "User"}); err != nil {
		t.Fatal(err)
	}

	session, _ := m.RequestCode(ctx, adminEmail)
	outcome, err := m.VerifyCode(ctx, session.ID, mail.lastCode)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.User.IsAdmin {
		t.Error("admin email did not yield IsAdmin == true")
	}

	session, _ = m.RequestCode(ctx, "user@x.com")
	outcome, err = m.VerifyCode(ctx, session.ID, mail.lastCode)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.User.IsAdmin {
		t.Error("non-admin email yielded IsAdmin == true")
	}
}

func TestResendCooldown(t *testing.T) {
	m, mail, _, _ := newTestManager(t)
	ctx := context.Background()

	session, _ := m.RequestCode(ctx, "user@x.com")
	firstCode := mail.lastCode

	if err := m.ResendCode(ctx, session.ID); !errors.Is(err, domain.ErrCooldown) {
		t.Fatalf("expected ErrCooldown, got %v", err)
	}
	if mail.sent != 1 {
		t.Errorf("mail dispatched during cooldown")
	}

	// Advance past the cooldown.
	m.now = func() time.Time { return time.Now().Add(61 * time.Second) }

	if err := m.ResendCode(ctx, session.ID); err != nil {
		t.Fatalf("ResendCode after cooldown: %v", err)
	}
	if mail.sent != 2 {
		t.Errorf("expected a second dispatch, got %d", mail.sent)
	}

	// Old code invalid, regenerated one accepted.
	if firstCode != mail.lastCode {
		if _, err := m.VerifyCode(ctx, session.ID, firstCode); !errors.Is(err, domain.ErrMismatch) {
			t.Errorf("stale code accepted: %v", err)
		}
	}
	if _, err := m.VerifyCode(ctx, session.ID, mail.lastCode); err != nil {
		t.Errorf("regenerated code rejected: %v", err)
	}
}

func TestLogoutDropsSession(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	session, _ := m.RequestCode(context.Background(), "user@x.com")
	m.Logout(session.ID)

	if _, err := m.Session(session.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after logout, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	session, _ := m.RequestCode(context.Background(), "user@x.com")

	m.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
	if n := m.CleanupExpired(); n != 1 {
		t.Errorf("expected 1 swept session, got %d", n)
	}
	if _, err := m.Session(session.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expired session still reachable: %v", err)
	}
}
