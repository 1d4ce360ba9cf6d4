// Package catalog owns the administrator-managed Lab and Training
// collections. Every mutation rewrites the whole collection through the kv
// boundary, so reads within the process always see the latest write.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qualityveda/attendance-hub/internal/domain"
	"github.com/qualityveda/attendance-hub/pkg/events"
	"github.com/qualityveda/attendance-hub/pkg/kv"
	"github.com/qualityveda/attendance-hub/pkg/logger"
)

const (
	labsKey      = "labs"
	trainingsKey = "trainings"
)

type Store struct {
	mu        sync.RWMutex
	kv        kv.Store
	bus       events.Publisher
	labs      []domain.Lab
	trainings []domain.Training
	now       func() time.Time
}

// NewStore loads the catalog from persistence, seeding the default catalog on
// first run only.
func NewStore(ctx context.Context, store kv.Store, bus events.Publisher) (*Store, error) {
	s := &Store{kv: store, bus: bus, now: time.Now}

	if err := loadCollection(ctx, store, labsKey, &s.labs); err != nil {
		return nil, err
	}
	if s.labs == nil {
		s.labs = defaultLabs()
		if err := s.persist(ctx, labsKey, s.labs); err != nil {
			return nil, err
		}
	}

	if err := loadCollection(ctx, store, trainingsKey, &s.trainings); err != nil {
		return nil, err
	}
	if s.trainings == nil {
		s.trainings = defaultTrainings()
		if err := s.persist(ctx, trainingsKey, s.trainings); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func loadCollection[T any](ctx context.Context, store kv.Store, key string, dst *[]T) error {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, key string, collection any) error {
	raw, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

// Labs

func (s *Store) AddLab(ctx context.Context, name, location string) (*domain.Lab, error) {
	req := domain.CreateLabRequest{Name: name, Location: location}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lab := domain.Lab{ID: uuid.NewString(), Name: req.Name, Location: req.Location}
	next := append(append([]domain.Lab(nil), s.labs...), lab)
	if err := s.persist(ctx, labsKey, next); err != nil {
		return nil, err
	}
	s.labs = next

	s.publish(ctx, events.LabCreated, lab.ID, lab.Name)
	return &lab, nil
}

func (s *Store) UpdateLab(ctx context.Context, id string, patch domain.LabPatch) (*domain.Lab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.labs {
		if s.labs[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, domain.ErrNotFound
	}

	next := append([]domain.Lab(nil), s.labs...)
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.ErrValidation
		}
		next[idx].Name = name
	}
	if patch.Location != nil {
		location := strings.TrimSpace(*patch.Location)
		if location == "" {
			return nil, domain.ErrValidation
		}
		next[idx].Location = location
	}
	if err := s.persist(ctx, labsKey, next); err != nil {
		return nil, err
	}
	s.labs = next

	updated := next[idx]
	s.publish(ctx, events.LabUpdated, updated.ID, updated.Name)
	return &updated, nil
}

// RemoveLab is idempotent: removing an absent id is a silent no-op.
// Historical attendance records referencing the lab are not touched.
func (s *Store) RemoveLab(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Lab, 0, len(s.labs))
	removed := false
	for _, lab := range s.labs {
		if lab.ID == id {
			removed = true
			continue
		}
		next = append(next, lab)
	}
	if !removed {
		return nil
	}
	if err := s.persist(ctx, labsKey, next); err != nil {
		return err
	}
	s.labs = next

	s.publish(ctx, events.LabDeleted, id, "")
	return nil
}

func (s *Store) ListLabs() []domain.Lab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Lab(nil), s.labs...)
}

func (s *Store) LabByID(id string) (*domain.Lab, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.labs {
		if s.labs[i].ID == id {
			lab := s.labs[i]
			return &lab, true
		}
	}
	return nil, false
}

// Trainings

func (s *Store) AddTraining(ctx context.Context, name string) (*domain.Training, error) {
	req := domain.CreateTrainingRequest{Name: name}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Name uniqueness is an application-layer rule, case-sensitive exact match.
	for _, t := range s.trainings {
		if t.Name == req.Name {
			return nil, domain.ErrDuplicate
		}
	}

	training := domain.Training{ID: uuid.NewString(), Name: req.Name}
	next := append(append([]domain.Training(nil), s.trainings...), training)
	if err := s.persist(ctx, trainingsKey, next); err != nil {
		return nil, err
	}
	s.trainings = next

	s.publish(ctx, events.TrainingCreated, training.ID, training.Name)
	return &training, nil
}

func (s *Store) UpdateTraining(ctx context.Context, id string, patch domain.TrainingPatch) (*domain.Training, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.trainings {
		if s.trainings[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, domain.ErrNotFound
	}

	next := append([]domain.Training(nil), s.trainings...)
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.ErrValidation
		}
		// Name uniqueness holds on rename too, against every other training.
		for i, t := range s.trainings {
			if i != idx && t.Name == name {
				return nil, domain.ErrDuplicate
			}
		}
		next[idx].Name = name
	}
	if err := s.persist(ctx, trainingsKey, next); err != nil {
		return nil, err
	}
	s.trainings = next

	updated := next[idx]
	s.publish(ctx, events.TrainingUpdated, updated.ID, updated.Name)
	return &updated, nil
}

func (s *Store) RemoveTraining(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Training, 0, len(s.trainings))
	removed := false
	for _, t := range s.trainings {
		if t.ID == id {
			removed = true
			continue
		}
		next = append(next, t)
	}
	if !removed {
		return nil
	}
	if err := s.persist(ctx, trainingsKey, next); err != nil {
		return err
	}
	s.trainings = next

	s.publish(ctx, events.TrainingDeleted, id, "")
	return nil
}

func (s *Store) ListTrainings() []domain.Training {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Training(nil), s.trainings...)
}

func (s *Store) publish(ctx context.Context, subject, id, name string) {
	if s.bus == nil {
		return
	}
	evt := events.CatalogChangedEvent{ID: id, Name: name, ChangedAt: s.now()}
	if err := s.bus.Publish(ctx, subject, evt); err != nil {
		logger.WarnContext(ctx, "Failed to publish catalog event", "subject", subject, "error", err)
	}
}
