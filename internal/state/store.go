// Package state persists the whole application state as a single durable
// document slot and reconstructs the derived fields on load.
package state

import (
	"context"
	"log/slog"
	"time"

	"financas/internal/core"
)

// Store is the durable slot behind the application state. Save serializes
// the full state (session as an ID reference, never an embedded user);
// Load reads the slot, falling back to the seeded default when the slot is
// absent or unreadable, and re-derives the session reference.
type Store interface {
	Load(ctx context.Context) (*core.AppState, error)
	Save(ctx context.Context, s *core.AppState) error
}

// Document is the wire shape of the slot: AppState with the session
// flattened to a user ID. There is no schema version field; the slot is
// replaced wholesale on every save.
type Document struct {
	Users         []core.User        `json:"users"`
	CurrentUserID string             `json:"currentUserId,omitempty"`
	Transactions  []core.Transaction `json:"transactions"`
	Cursor        core.MonthCursor   `json:"currentDate"`
	SavingsTotal  core.Money         `json:"savingsTotal"`
	Goals         []core.Goal        `json:"goals"`
}

// Snapshot converts live state into its wire form. The session is already
// an ID reference in memory, so it carries over directly.
func Snapshot(s *core.AppState) Document {
	return Document{
		Users:         s.Users,
		CurrentUserID: s.CurrentUserID,
		Transactions:  s.Transactions,
		Cursor:        s.Cursor,
		SavingsTotal:  s.SavingsTotal,
		Goals:         s.Goals,
	}
}

// Materialize rebuilds live state from a loaded document. The admin record
// is re-inserted from the default template if a persisted directory lost
// it; the session reference fails open to logged-out when the stored ID no
// longer resolves; an invalid cursor snaps to the current month.
func Materialize(ctx context.Context, doc Document) *core.AppState {
	s := &core.AppState{
		Users:        doc.Users,
		Transactions: doc.Transactions,
		Cursor:       doc.Cursor,
		SavingsTotal: doc.SavingsTotal,
		Goals:        doc.Goals,
	}

	if s.FindUser(core.AdminID) == nil {
		slog.WarnContext(ctx, "Admin record missing from persisted state, re-inserting default")
		s.Users = append([]core.User{DefaultAdmin()}, s.Users...)
	}

	if doc.CurrentUserID != "" {
		if s.FindUser(doc.CurrentUserID) != nil {
			s.CurrentUserID = doc.CurrentUserID
		} else {
			slog.WarnContext(ctx, "Persisted session references unknown user, clearing session",
				"user_id", doc.CurrentUserID)
		}
	}

	if !s.Cursor.Valid() {
		s.Cursor = core.CursorFor(time.Now())
	}

	return s
}
