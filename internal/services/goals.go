package services

import (
	"context"
	"strings"

	"financas/internal/core"
)

// Goals returns the savings goals and the running savings total.
func (s *FinanceService) Goals() ([]core.Goal, core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireSession(); err != nil {
		return nil, core.Money{}, err
	}
	out := make([]core.Goal, len(s.state.Goals))
	copy(out, s.state.Goals)
	return out, s.state.SavingsTotal, nil
}

// AddGoal registers a new savings goal with a zero saved amount.
func (s *FinanceService) AddGoal(ctx context.Context, name string, target core.Money) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireSession(); err != nil {
		return core.Goal{}, err
	}
	if strings.TrimSpace(name) == "" {
		return core.Goal{}, core.ErrEmptyGoalName
	}
	if err := target.Validate(); err != nil {
		return core.Goal{}, err
	}

	g := core.Goal{
		ID:     s.now().UnixMilli(),
		Name:   strings.TrimSpace(name),
		Target: target,
	}
	s.state.Goals = append(s.state.Goals, g)
	if err := s.save(ctx); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

// DepositToGoal moves amount into a goal and bumps the savings total.
func (s *FinanceService) DepositToGoal(ctx context.Context, id int64, amount core.Money) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireSession(); err != nil {
		return core.Goal{}, err
	}
	if err := amount.Validate(); err != nil {
		return core.Goal{}, err
	}
	g := s.state.FindGoal(id)
	if g == nil {
		return core.Goal{}, core.ErrGoalNotFound
	}

	g.Saved = g.Saved.Add(amount)
	s.state.SavingsTotal = s.state.SavingsTotal.Add(amount)
	if err := s.save(ctx); err != nil {
		return core.Goal{}, err
	}
	return *g, nil
}
