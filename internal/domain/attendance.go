package domain

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// AttendanceRecord is append-only. Lab and training are stored by name, not
// id: history is a point-in-time snapshot and deleting a catalog entry does
// not rewrite it.
type AttendanceRecord struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Lab       string `json:"lab"`
	Training  string `json:"training"`
	Timestamp string `json:"timestamp"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

func NewAttendanceRecord(email, name, lab, training string, now time.Time) AttendanceRecord {
	return AttendanceRecord{
		Email:     NormalizeEmail(email),
		Name:      name,
		Lab:       lab,
		Training:  training,
		Timestamp: now.Format(time.RFC3339),
		Date:      now.Format(DateLayout),
		Time:      now.Format("15:04:05"),
	}
}

type SubmitAttendanceRequest struct {
	Lab      string `json:"lab"`
	Training string `json:"training"`
}

func (r *SubmitAttendanceRequest) Normalize() {
	r.Lab = strings.TrimSpace(r.Lab)
	r.Training = strings.TrimSpace(r.Training)
}

func (r *SubmitAttendanceRequest) Validate() error {
	if r.Lab == "" || r.Training == "" {
		return ErrValidation
	}
	return nil
}
