package services

import (
	"context"
	"sort"
	"time"

	"financas/internal/core"
	"financas/internal/log"
)

// TransactionInput is a new-entry request as it arrives from the outside:
// money as a decimal string, date as YYYY-MM-DD.
type TransactionInput struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
	// Time is the optional clock time "HH:MM" carried into the entry's
	// timestamp for same-day ordering. Empty means midday.
	Time string `json:"time"`
	// Recurrence is the total number of monthly entries to create; 0 or 1
	// means a single entry.
	Recurrence int `json:"recurrence"`
}

// AddTransaction validates and records a new entry for the session user,
// expanding monthly recurrences into concrete future entries. The whole
// series is persisted in a single save.
func (s *FinanceService) AddTransaction(ctx context.Context, in TransactionInput) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.requireSession()
	if err != nil {
		return nil, err
	}

	amount, err := core.ParseMoney(in.Amount)
	if err != nil {
		return nil, err
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	ts, err := entryTimestamp(date, in.Time)
	if err != nil {
		return nil, err
	}

	base := core.Transaction{
		ID:          s.now().UnixMilli(),
		UserID:      owner.ID,
		Type:        core.TransactionType(in.Type),
		Amount:      amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        date,
		Timestamp:   ts,
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}

	series := core.ExpandRecurrence(base, in.Recurrence)
	s.state.Transactions = append(s.state.Transactions, series...)
	if err := s.save(ctx); err != nil {
		return nil, err
	}

	if s.events != nil {
		for _, t := range series {
			if err := s.events.PublishTransactionCreated(ctx, owner.Username, t); err != nil {
				s.logger.WarnContext(ctx, "audit publish failed",
					log.FieldTransactionID, t.ID,
					log.FieldError, err,
				)
			}
		}
	}
	return series, nil
}

// entryTimestamp combines the entry date with an optional "HH:MM" clock
// time; entries without one land at midday so they sort between morning
// and evening entries of the same day.
func entryTimestamp(date core.Date, clock string) (int64, error) {
	hour, minute := 12, 0
	if clock != "" {
		parsed, err := time.Parse("15:04", clock)
		if err != nil {
			return 0, core.ErrInvalidDate
		}
		hour, minute = parsed.Hour(), parsed.Minute()
	}
	t := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
	return t.UnixMilli(), nil
}

// DeleteTransaction removes a single entry owned by the session user.
// Other copies of a recurring series are untouched.
func (s *FinanceService) DeleteTransaction(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.requireSession()
	if err != nil {
		return err
	}

	idx := -1
	for i, t := range s.state.Transactions {
		if t.ID == id && t.UserID == owner.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.ErrTransactionNotFound
	}

	removed := s.state.Transactions[idx]
	s.state.Transactions = append(s.state.Transactions[:idx], s.state.Transactions[idx+1:]...)
	if err := s.save(ctx); err != nil {
		return err
	}

	if s.events != nil {
		if err := s.events.PublishTransactionDeleted(ctx, owner.Username, removed); err != nil {
			s.logger.WarnContext(ctx, "audit publish failed",
				log.FieldTransactionID, removed.ID,
				log.FieldError, err,
			)
		}
	}
	return nil
}

// MonthTransactions returns the session user's entries in the cursor
// month, newest first.
func (s *FinanceService) MonthTransactions() ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	return s.monthTransactions(owner), nil
}

// monthTransactions filters and orders under the lock held by the caller.
func (s *FinanceService) monthTransactions(owner *core.User) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, t := range s.state.Transactions {
		if t.UserID == owner.ID && s.state.Cursor.Contains(t.Date) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// MonthSummary totals the session user's cursor-month entries.
func (s *FinanceService) MonthSummary() (core.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.requireSession()
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(s.monthTransactions(owner)), nil
}

// MonthBreakdown sums the session user's cursor-month expenses per category.
func (s *FinanceService) MonthBreakdown() (map[string]core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	return core.CategoryBreakdown(s.monthTransactions(owner)), nil
}
