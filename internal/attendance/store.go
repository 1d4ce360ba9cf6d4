// Package attendance keeps the append-only per-user attendance history and
// the per-day today-marker used to detect repeat submissions.
package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/qualityveda/attendance-hub/internal/domain"
	"github.com/qualityveda/attendance-hub/internal/identity"
	"github.com/qualityveda/attendance-hub/pkg/events"
	"github.com/qualityveda/attendance-hub/pkg/kv"
	"github.com/qualityveda/attendance-hub/pkg/logger"
)

type Store struct {
	mu  sync.Mutex
	kv  kv.Store
	ids *identity.Registry
	bus events.Publisher
	now func() time.Time
}

func NewStore(store kv.Store, ids *identity.Registry, bus events.Publisher) *Store {
	return &Store{kv: store, ids: ids, bus: bus, now: time.Now}
}

func todayKey(email, date string) string {
	return "attendance:" + domain.NormalizeEmail(email) + ":" + date
}

func historyKey(email string) string {
	return "attendance-history:" + domain.NormalizeEmail(email)
}

// RecordAttendance stamps a record with the current wall-clock time, writes
// the today-marker and appends to the user's history. At most one record is
// created per (email, date): a repeat submission returns the existing record
// and created == false instead of appending a duplicate.
func (s *Store) RecordAttendance(ctx context.Context, user domain.UserInfo, lab, training string) (*domain.AttendanceRecord, bool, error) {
	req := domain.SubmitAttendanceRequest{Lab: lab, Training: training}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	date := now.Format(domain.DateLayout)

	if existing, err := s.todayRecordLocked(ctx, user.Email, date); err != nil {
		return nil, false, err
	} else if existing != nil {
		return existing, false, nil
	}

	record := domain.NewAttendanceRecord(user.Email, user.Name, req.Lab, req.Training, now)

	history, err := s.historyLocked(ctx, user.Email)
	if err != nil {
		return nil, false, err
	}
	history = append(history, record)

	encoded, err := json.Marshal(history)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode history: %w", err)
	}
	if err := s.kv.Set(ctx, historyKey(user.Email), string(encoded)); err != nil {
		return nil, false, fmt.Errorf("failed to persist history: %w", err)
	}

	marker, err := json.Marshal(record)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode record: %w", err)
	}
	if err := s.kv.Set(ctx, todayKey(user.Email, date), string(marker)); err != nil {
		return nil, false, fmt.Errorf("failed to persist today marker: %w", err)
	}

	if s.bus != nil {
		evt := events.AttendanceRecordedEvent{
			Email:      record.Email,
			Name:       record.Name,
			Lab:        record.Lab,
			Training:   record.Training,
			Date:       record.Date,
			RecordedAt: now,
		}
		if err := s.bus.Publish(ctx, events.AttendanceRecorded, evt); err != nil {
			logger.WarnContext(ctx, "Failed to publish attendance event", "error", err)
		}
	}

	return &record, true, nil
}

// TodayRecord returns the record submitted today for the email, or nil.
func (s *Store) TodayRecord(ctx context.Context, email string) (*domain.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.todayRecordLocked(ctx, email, s.now().Format(domain.DateLayout))
}

func (s *Store) HasSubmittedToday(ctx context.Context, email string) (bool, error) {
	record, err := s.TodayRecord(ctx, email)
	if err != nil {
		return false, err
	}
	return record != nil, nil
}

// GetHistory returns all records for the email, newest first.
func (s *Store) GetHistory(ctx context.Context, email string) ([]domain.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.historyLocked(ctx, email)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(history)
	return history, nil
}

// GetAllHistories unions every registered user's history, newest first.
func (s *Store) GetAllHistories(ctx context.Context) ([]domain.AttendanceRecord, error) {
	emails, err := s.ids.ListEmails(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var all []domain.AttendanceRecord
	for _, email := range emails {
		history, err := s.historyLocked(ctx, email)
		if err != nil {
			return nil, err
		}
		all = append(all, history...)
	}
	sortNewestFirst(all)
	return all, nil
}

func (s *Store) todayRecordLocked(ctx context.Context, email, date string) (*domain.AttendanceRecord, error) {
	raw, ok, err := s.kv.Get(ctx, todayKey(email, date))
	if err != nil {
		return nil, fmt.Errorf("failed to load today marker: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var record domain.AttendanceRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("failed to decode today marker: %w", err)
	}
	return &record, nil
}

func (s *Store) historyLocked(ctx context.Context, email string) ([]domain.AttendanceRecord, error) {
	raw, ok, err := s.kv.Get(ctx, historyKey(email))
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var history []domain.AttendanceRecord
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return history, nil
}

func sortNewestFirst(records []domain.AttendanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, ei := time.Parse(time.RFC3339, records[i].Timestamp)
		tj, ej := time.Parse(time.RFC3339, records[j].Timestamp)
		if ei != nil || ej != nil {
			return records[i].Timestamp > records[j].Timestamp
		}
		return ti.After(tj)
	})
}
