package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/qualityveda/attendance-hub/internal/domain"
	"github.com/qualityveda/attendance-hub/internal/http/response"
	"github.com/qualityveda/attendance-hub/internal/repo/postgres"
)

// RecordsAPI serves the relational attendance table routes. Mounted only
// when a database URL is configured; the core stores do not depend on it.
type RecordsAPI struct {
	repo postgres.AttendanceRepository
}

func NewRecordsAPI(repo postgres.AttendanceRepository) *RecordsAPI {
	return &RecordsAPI{repo: repo}
}

// ListAttendance returns all rows ordered by date/time descending.
func (a *RecordsAPI) ListAttendance(w http.ResponseWriter, r *http.Request) {
	records, err := a.repo.ListAll(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to fetch attendance")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// MarkAttendance inserts one row and echoes it back.
func (a *RecordsAPI) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	var record domain.AttendanceRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	inserted, err := a.repo.Insert(r.Context(), &record)
	if err != nil {
		response.InternalError(w, "Failed to save attendance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Attendance recorded successfully!",
		"record":  inserted,
	})
}
