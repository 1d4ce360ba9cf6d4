package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/qualityveda/attendance-hub/internal/domain"
	"github.com/qualityveda/attendance-hub/internal/http/response"
)

// RequestCode starts the login dialogue: validates the email, sends a code
// and opens a session.
func (h *Handlers) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req domain.RequestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	session, err := h.sessions.RequestCode(r.Context(), req.Email)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":    "Verification code sent to your email",
		"session_id": session.ID,
	})
}

// ResendCode regenerates the code for an open session once the cooldown has
// elapsed.
func (h *Handlers) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if err := h.sessions.ResendCode(r.Context(), req.SessionID); err != nil {
		response.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Verification code sent to your email",
	})
}

// VerifyCode checks the submitted code. Returning users receive a token;
// first-time users are told to continue with name capture.
func (h *Handlers) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	outcome, err := h.sessions.VerifyCode(r.Context(), req.SessionID, req.Code)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	if outcome.NameRequired {
		writeJSON(w, http.StatusOK, map[string]string{"status": "name_required"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "authenticated",
		"token":  outcome.Token,
		"user":   outcome.User,
	})
}

// SubmitName records the display name during first-time registration.
func (h *Handlers) SubmitName(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if err := h.sessions.SubmitName(r.Context(), req.SessionID, req.Name); err != nil {
		response.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "lab_required"})
}

// SubmitLab completes registration and authenticates the session.
func (h *Handlers) SubmitLab(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitLabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	result, err := h.sessions.SubmitLab(r.Context(), req.SessionID, req.LabID)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "authenticated",
		"token":  result.Token,
		"user":   result.User,
	})
}

// Logout drops the server-side session; the client discards its token.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	var req domain.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	h.sessions.Logout(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}
