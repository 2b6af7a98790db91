package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"powertrack/internal/modules/records/store"
	"powertrack/internal/modules/records/types"
	"powertrack/internal/modules/records/validator"
)

var ErrNotFound = errors.New("record not found")

// Service runs each record operation as one load/mutate/save cycle against
// the store. mu serialises those cycles within the process; it does not
// protect against another process writing the same backing store.
type Service struct {
	mu        sync.Mutex
	store     store.Store
	validator *validator.Validator
	newID     func() string
}

func NewService(s store.Store, v *validator.Validator) *Service {
	return &Service{
		store:     s,
		validator: v,
		newID:     uuid.NewString,
	}
}

func (s *Service) List(ctx context.Context) (types.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return c.OrEmpty(), nil
}

// Create validates candidate, a decoded JSON value, and appends it as a new
// record. Validation failures return a *validator.ValidationError and leave
// the store untouched.
func (s *Service) Create(ctx context.Context, candidate any) (types.Record, error) {
	date, reading, err := s.validator.Parse(candidate)
	if err != nil {
		return types.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Load(ctx)
	if err != nil {
		return types.Record{}, fmt.Errorf("load records: %w", err)
	}

	rec := types.Record{ID: s.newID(), Date: date, Reading: reading}
	if err := s.store.Save(ctx, append(c, rec)); err != nil {
		return types.Record{}, fmt.Errorf("save records: %w", err)
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id string) (types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Load(ctx)
	if err != nil {
		return types.Record{}, fmt.Errorf("load records: %w", err)
	}
	i := c.Find(id)
	if i < 0 {
		return types.Record{}, ErrNotFound
	}
	return c[i], nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	i := c.Find(id)
	if i < 0 {
		return ErrNotFound
	}
	if err := s.store.Save(ctx, c.Without(i)); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}

// DeleteAll overwrites the store with an empty collection without reading
// it first, so it also clears a corrupt store.
func (s *Service) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(ctx, types.Collection{}); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}
