// Package services holds the application controller. FinanceService is
// the single owner of the mutable application state: every operation runs
// to completion under its lock and persists through the state store before
// returning.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/state"
)

// EventPublisher is the optional audit sink for ledger mutations. Publish
// failures are logged by the caller and never fail the operation.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, username string, t core.Transaction) error
	PublishTransactionDeleted(ctx context.Context, username string, t core.Transaction) error
}

type FinanceService struct {
	mu     sync.Mutex
	state  *core.AppState
	store  state.Store
	events EventPublisher
	logger *log.Logger

	// now is the clock used for IDs and timestamps, replaceable in tests.
	now func() time.Time
}

func New(store state.Store, events EventPublisher, logger *log.Logger) *FinanceService {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentLedger})
	}
	return &FinanceService{
		store:  store,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// Restore loads the state slot once at startup, re-deriving the session
// reference. It must be called before any other operation.
func (s *FinanceService) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	s.state = loaded
	return nil
}

// save persists the full state. Callers must hold the lock.
func (s *FinanceService) save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.state); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// CurrentUser resolves the session reference and returns a copy of the
// live user record, or nil.
func (s *FinanceService) CurrentUser() *core.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.state.CurrentUser()
	if cur == nil {
		return nil
	}
	u := *cur
	return &u
}

// Cursor returns the active month cursor.
func (s *FinanceService) Cursor() core.MonthCursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Cursor
}

// MonthLabel renders the cursor as the localized month header.
func (s *FinanceService) MonthLabel() string {
	return core.FormatMonthYear(s.Cursor())
}

// SwitchMonth moves the month cursor by delta whole months and persists
// the new cursor.
func (s *FinanceService) SwitchMonth(ctx context.Context, delta int) (core.MonthCursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Cursor = s.state.Cursor.Shift(delta)
	if err := s.save(ctx); err != nil {
		return core.MonthCursor{}, err
	}
	return s.state.Cursor, nil
}

func (s *FinanceService) requireSession() (*core.User, error) {
	u := s.state.CurrentUser()
	if u == nil {
		return nil, core.ErrNoSession
	}
	return u, nil
}

func (s *FinanceService) requireAdmin() (*core.User, error) {
	u, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	if u.Role != core.RoleAdmin {
		return nil, core.ErrForbidden
	}
	return u, nil
}
