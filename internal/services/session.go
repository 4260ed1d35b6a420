package services

import (
	"context"

	"financas/internal/core"
)

// Login authenticates by exact username and password match. On success the
// session points at the stored user record and the login time is recorded.
// A failed attempt leaves the state untouched.
func (s *FinanceService) Login(ctx context.Context, username, password string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.state.FindUserByName(username)
	if u == nil || u.Password != password {
		return core.User{}, core.ErrInvalidCredentials
	}

	loginAt := s.now()
	u.LastLogin = &loginAt
	s.state.CurrentUserID = u.ID
	if err := s.save(ctx); err != nil {
		return core.User{}, err
	}
	return *u, nil
}

// Logout clears the session. Calling it without an active session is a no-op.
func (s *FinanceService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.CurrentUserID == "" {
		return nil
	}
	s.state.CurrentUserID = ""
	return s.save(ctx)
}
