package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/qualityveda/attendance-hub/internal/domain"
	"github.com/qualityveda/attendance-hub/internal/http/response"
	"github.com/qualityveda/attendance-hub/pkg/auth"
)

// SubmitAttendance records today's attendance for the authenticated user.
// A repeat submission for the same day returns the already-recorded entry.
func (h *Handlers) SubmitAttendance(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Missing session")
		return
	}

	var req domain.SubmitAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	user := domain.UserInfo{
		Email:   claims.Email,
		Name:    claims.Name,
		IsAdmin: claims.Role == auth.RoleAdmin,
		LabID:   claims.Lab,
	}

	record, created, err := h.records.RecordAttendance(r.Context(), user, req.Lab, req.Training)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	status := http.StatusCreated
	message := "Attendance recorded successfully"
	if !created {
		status = http.StatusOK
		message = "Attendance already submitted today"
	}

	writeJSON(w, status, map[string]interface{}{
		"message": message,
		"record":  record,
	})
}

// TodayAttendance reports whether the user already submitted today and, if
// so, the record.
func (h *Handlers) TodayAttendance(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Missing session")
		return
	}

	record, err := h.records.TodayRecord(r.Context(), claims.Email)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"submitted": record != nil,
		"record":    record,
	})
}

// AttendanceHistory returns the authenticated user's records, newest first.
func (h *Handlers) AttendanceHistory(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Missing session")
		return
	}

	history, err := h.records.GetHistory(r.Context(), claims.Email)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"records": history})
}

// AllAttendance returns every user's records, newest first. Admin only.
func (h *Handlers) AllAttendance(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.GetAllHistories(r.Context())
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}
