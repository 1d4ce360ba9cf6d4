package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/qualityveda/attendance-hub/internal/attendance"
	authsvc "github.com/qualityveda/attendance-hub/internal/auth"
	"github.com/qualityveda/attendance-hub/internal/catalog"
	"github.com/qualityveda/attendance-hub/internal/http/handlers"
	"github.com/qualityveda/attendance-hub/internal/identity"
	"github.com/qualityveda/attendance-hub/pkg/auth"
	"github.com/qualityveda/attendance-hub/pkg/config"
	"github.com/qualityveda/attendance-hub/pkg/kv"
)

const adminEmail = "admin@qualityveda.com"

// ---------- Mocks ----------

type mockMailer struct {
	lastTo   string
	lastCode string
	sendErr  error
}

func (m *mockMailer) SendVerificationCode(toEmail, code string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.lastTo = toEmail
	m.lastCode = code
	return nil
}

// ---------- Fixture ----------

type fixture struct {
	router *chi.Mux
	mail   *mockMailer
	labs   *catalog.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.Load()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AdminEmail = adminEmail

	mem := kv.NewMemoryStore()
	labs, err := catalog.NewStore(context.Background(), mem, nil)
	if err != nil {
		t.Fatalf("catalog.NewStore: %v", err)
	}
	ids := identity.NewRegistry(mem, adminEmail)
	records := attendance.NewStore(mem, ids, nil)
	mail := &mockMailer{}
	sessions := authsvc.NewManager(ids, labs, mail, nil, &cfg.Auth)
	h := handlers.New(sessions, labs, records, cfg)

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		r.Post("/request-code", h.RequestCode)
		r.Post("/resend-code", h.ResendCode)
		r.Post("/verify-code", h.VerifyCode)
		r.Post("/name", h.SubmitName)
		r.Post("/lab", h.SubmitLab)
		r.Post("/logout", h.Logout)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RequireJWT(auth.RoleUser))
		r.Get("/labs", h.ListLabs)
		r.Get("/trainings", h.ListTrainings)
		r.Post("/attendance", h.SubmitAttendance)
		r.Get("/attendance/today", h.TodayAttendance)
		r.Get("/attendance/history", h.AttendanceHistory)
	})
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.RequireJWT(auth.RoleAdmin))
		r.Post("/labs", h.CreateLab)
		r.Patch("/labs/{id}", h.UpdateLab)
		r.Delete("/labs/{id}", h.DeleteLab)
		r.Post("/trainings", h.CreateTraining)
		r.Get("/attendance", h.AllAttendance)
	})

	return &fixture{router: r, mail: mail, labs: labs}
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// authenticate walks the full first-time registration flow and returns the
// bearer token.
func (f *fixture) authenticate(t *testing.T, email, name string) string {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/auth/request-code", "", map[string]string{"email": email})
	if rec.Code != http.StatusOK {
		t.Fatalf("request-code: %d %s", rec.Code, rec.Body.String())
	}
	var opened struct {
		SessionID string `json:"session_id"`
	}
	decode(t, rec, &opened)

	rec = f.do(t, http.MethodPost, "/auth/verify-code", "", map[string]string{
		"session_id": opened.SessionID,
		"code":       f.mail.lastCode,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify-code: %d %s", rec.Code, rec.Body.String())
	}
	var verified struct {
		Status string `json:"status"`
		Token  string `json:"token"`
	}
	decode(t, rec, &verified)
	if verified.Status == "authenticated" {
		return verified.Token
	}

	rec = f.do(t, http.MethodPost, "/auth/name", "", map[string]string{
		"session_id": opened.SessionID,
		"name":       name,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("name: %d %s", rec.Code, rec.Body.String())
	}

	labID := f.labs.ListLabs()[0].ID
	rec = f.do(t, http.MethodPost, "/auth/lab", "", map[string]string{
		"session_id": opened.SessionID,
		"lab_id":     labID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("lab: %d %s", rec.Code, rec.Body.String())
	}
	var done struct {
		Token string `json:"token"`
	}
	decode(t, rec, &done)
	return done.Token
}

// ---------- Tests ----------

func TestRequestCodeInvalidEmail(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/request-code", "", map[string]string{"email": "nope"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestRequestCodeDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	f.mail.sendErr = fmt.Errorf("relay down")

	rec := f.do(t, http.MethodPost, "/auth/request-code", "", map[string]string{"email": "user@x.com"})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestVerifyCodeMismatch(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/request-code", "", map[string]string{"email": "user@x.com"})
	var opened struct {
		SessionID string `json:"session_id"`
	}
	decode(t, rec, &opened)

	wrong := "123456"
	if wrong == f.mail.lastCode {
		wrong = "654321"
	}
	rec = f.do(t, http.MethodPost, "/auth/verify-code", "", map[string]string{
		"session_id": opened.SessionID,
		"code":       wrong,
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}

	// Session remains usable with the correct code.
	rec = f.do(t, http.MethodPost, "/auth/verify-code", "", map[string]string{
		"session_id": opened.SessionID,
		"code":       f.mail.lastCode,
	})
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 after retry, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestResendCooldownOverHTTP(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/request-code", "", map[string]string{"email": "user@x.com"})
	var opened struct {
		SessionID string `json:"session_id"`
	}
	decode(t, rec, &opened)

	rec = f.do(t, http.MethodPost, "/auth/resend-code", "", map[string]string{"session_id": opened.SessionID})
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 during cooldown, got %d", rec.Code)
	}
}

func TestAttendanceFlow(t *testing.T) {
	f := newFixture(t)
	token := f.authenticate(t, "user@x.com", "Priya")

	rec := f.do(t, http.MethodGet, "/attendance/today", token, nil)
	var today struct {
		Submitted bool `json:"submitted"`
	}
	decode(t, rec, &today)
	if today.Submitted {
		t.Fatal("submitted before any record")
	}

	rec = f.do(t, http.MethodPost, "/attendance", token, map[string]string{
		"lab":      "Dr Lalchandani Labs",
		"training": "Fire",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}

	// Same-day resubmission surfaces the existing record.
	rec = f.do(t, http.MethodPost, "/attendance", token, map[string]string{
		"lab":      "Other Lab",
		"training": "NSI",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("resubmit: %d %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/attendance/history", token, nil)
	var history struct {
		Records []struct {
			Lab      string `json:"lab"`
			Training string `json:"training"`
			Date     string `json:"date"`
		} `json:"records"`
	}
	decode(t, rec, &history)
	if len(history.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(history.Records))
	}
	if history.Records[0].Lab != "Dr Lalchandani Labs" || history.Records[0].Training != "Fire" {
		t.Errorf("unexpected record: %+v", history.Records[0])
	}
	if history.Records[0].Date != time.Now().Format("2006-01-02") {
		t.Errorf("record not stamped today: %s", history.Records[0].Date)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	f := newFixture(t)
	userToken := f.authenticate(t, "user@x.com", "Priya")

	rec := f.do(t, http.MethodGet, "/admin/attendance", userToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/admin/attendance", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
}

func TestAdminSeesAllHistories(t *testing.T) {
	f := newFixture(t)

	userToken := f.authenticate(t, "user@x.com", "Priya")
	adminToken := f.authenticate(t, adminEmail, "Admin")

	rec := f.do(t, http.MethodPost, "/attendance", userToken, map[string]string{
		"lab":      "Some Lab",
		"training": "Fire",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("user submit: %d", rec.Code)
	}
	rec = f.do(t, http.MethodPost, "/attendance", adminToken, map[string]string{
		"lab":      "Other Lab",
		"training": "NSI",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin submit: %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/admin/attendance", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin attendance: %d %s", rec.Code, rec.Body.String())
	}
	var all struct {
		Records []struct {
			Email string `json:"email"`
		} `json:"records"`
	}
	decode(t, rec, &all)
	if len(all.Records) != 2 {
		t.Errorf("expected union of 2 records, got %d", len(all.Records))
	}
}

func TestAdminCatalogManagement(t *testing.T) {
	f := newFixture(t)
	adminToken := f.authenticate(t, adminEmail, "Admin")

	rec := f.do(t, http.MethodPost, "/admin/labs", adminToken, map[string]string{
		"name":     "X",
		"location": "Y",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create lab: %d %s", rec.Code, rec.Body.String())
	}
	var lab struct {
		ID string `json:"id"`
	}
	decode(t, rec, &lab)

	rec = f.do(t, http.MethodPatch, "/admin/labs/"+lab.ID, adminToken, map[string]string{"name": "Z"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update lab: %d %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodDelete, "/admin/labs/"+lab.ID, adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete lab: %d", rec.Code)
	}

	// Duplicate training names are rejected.
	rec = f.do(t, http.MethodPost, "/admin/trainings", adminToken, map[string]string{"name": "Fire"})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate training, got %d", rec.Code)
	}
}
