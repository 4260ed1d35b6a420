package services

import (
	"context"
	"fmt"
	"strings"

	"financas/internal/core"
)

// UserUpdate carries a partial update; nil fields keep their stored value.
type UserUpdate struct {
	Username *string
	Password *string
	Role     *core.Role
}

// SignUp creates a standard-role account and does not require a session.
func (s *FinanceService) SignUp(ctx context.Context, username, password string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createUser(ctx, username, password, core.RoleStandard)
}

// CreateUser creates an account with an explicit role. Admin only.
func (s *FinanceService) CreateUser(ctx context.Context, username, password string, role core.Role) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireAdmin(); err != nil {
		return core.User{}, err
	}
	return s.createUser(ctx, username, password, role)
}

func (s *FinanceService) createUser(ctx context.Context, username, password string, role core.Role) (core.User, error) {
	username = strings.TrimSpace(username)
	if password == "" {
		password = core.DefaultPassword
	}
	u := core.User{
		ID:       fmt.Sprintf("user_%d", s.now().UnixMilli()),
		Username: username,
		Password: password,
		Role:     role,
	}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	if s.state.FindUserByName(username) != nil {
		return core.User{}, core.ErrUsernameTaken
	}

	s.state.Users = append(s.state.Users, u)
	if err := s.save(ctx); err != nil {
		return core.User{}, err
	}
	return u, nil
}

// Users lists all accounts. Admin only.
func (s *FinanceService) Users() ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireAdmin(); err != nil {
		return nil, err
	}
	out := make([]core.User, len(s.state.Users))
	copy(out, s.state.Users)
	return out, nil
}

// UpdateUser applies a partial update to a user record. The administrator
// record keeps its role no matter what the update asks for. Admin only.
func (s *FinanceService) UpdateUser(ctx context.Context, id string, upd UserUpdate) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireAdmin(); err != nil {
		return core.User{}, err
	}
	u := s.state.FindUser(id)
	if u == nil {
		return core.User{}, core.ErrUserNotFound
	}

	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		if name == "" {
			return core.User{}, core.ErrEmptyUsername
		}
		if other := s.state.FindUserByName(name); other != nil && other.ID != id {
			return core.User{}, core.ErrUsernameTaken
		}
		u.Username = name
	}
	if upd.Password != nil && *upd.Password != "" {
		u.Password = *upd.Password
	}
	if upd.Role != nil && u.ID != core.AdminID {
		if !upd.Role.Valid() {
			return core.User{}, fmt.Errorf("invalid role %q", *upd.Role)
		}
		u.Role = *upd.Role
	}

	if err := s.save(ctx); err != nil {
		return core.User{}, err
	}
	return *u, nil
}

// DeleteUser removes a user and every transaction they own. The
// administrator record cannot be deleted. Admin only.
func (s *FinanceService) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireAdmin(); err != nil {
		return err
	}
	if id == core.AdminID {
		return core.ErrProtectedUser
	}
	if s.state.FindUser(id) == nil {
		return core.ErrUserNotFound
	}

	users := s.state.Users[:0]
	for _, u := range s.state.Users {
		if u.ID != id {
			users = append(users, u)
		}
	}
	s.state.Users = users

	kept := s.state.Transactions[:0]
	for _, t := range s.state.Transactions {
		if t.UserID != id {
			kept = append(kept, t)
		}
	}
	s.state.Transactions = kept

	return s.save(ctx)
}
