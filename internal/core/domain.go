package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	RoleAdmin    Role = "admin"
	RoleStandard Role = "standard"

	// AdminID identifies the protected administrator record. A user with
	// this ID must exist at all times; it cannot be deleted and its role
	// cannot change.
	AdminID = "admin"

	// DefaultPassword is assigned when an administrator creates a user
	// without choosing a password.
	DefaultPassword = "123456"
)

type (
	TransactionType string

	Role string

	// Date is a calendar date. The time-of-day portion is always midnight
	// UTC; ordering within a day is carried by Transaction.Timestamp.
	Date struct {
		time.Time
	}

	User struct {
		ID        string     `json:"id"`
		Username  string     `json:"username"`
		Password  string     `json:"password"`
		Role      Role       `json:"role"`
		LastLogin *time.Time `json:"lastLogin"`
	}

	Transaction struct {
		ID          int64           `json:"id"`
		UserID      string          `json:"userId"`
		Type        TransactionType `json:"type"`
		Amount      Money           `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description,omitempty"`
		Date        Date            `json:"date"`
		// Timestamp is the entry's instant in unix milliseconds, used for
		// most-recent-first ordering within a month.
		Timestamp int64 `json:"timestamp"`
		// Recurrence is the total number of monthly entries the original
		// request produced (1 for a one-off entry).
		Recurrence int `json:"recurrence"`
		// IsRecurring is true only on the generated monthly copies, not
		// on the base entry.
		IsRecurring     bool `json:"isRecurring"`
		RecurrenceIndex int  `json:"recurrenceIndex"`
	}

	// Goal is a savings goal tracked alongside the ledger.
	Goal struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Target Money  `json:"target"`
		Saved  Money  `json:"saved"`
	}

	// MonthCursor selects the month/year the UI is looking at. It is a
	// pure filter cursor, not tied to any transaction.
	MonthCursor struct {
		Year  int        `json:"year"`
		Month time.Month `json:"month"`
	}

	// AppState is the root aggregate. The session is a weak reference by
	// user ID, resolved through the directory on every read, so an edit
	// of the logged-in user's record can never leave a stale copy behind.
	AppState struct {
		Users         []User
		CurrentUserID string
		Transactions  []Transaction
		Cursor        MonthCursor
		SavingsTotal  Money
		Goals         []Goal
	}
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrEmptyCategory       = errors.New("empty category")
	ErrEmptyUsername       = errors.New("empty username")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrGoalNotFound        = errors.New("goal not found")
	ErrEmptyGoalName       = errors.New("empty goal name")
	ErrProtectedUser       = errors.New("protected user record")
	ErrNoSession           = errors.New("no active session")
	ErrForbidden           = errors.New("operation requires admin role")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	return d.Time.Format(dateLayout)
}

// MarshalJSON writes the date as a YYYY-MM-DD string, matching the wire
// format of the durable slot.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = parsed.Time
	return nil
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStandard
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if !u.Role.Valid() {
		return errors.New("invalid role")
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return t.Date.Validate()
}

// CursorFor returns the month cursor covering the given instant.
func CursorFor(t time.Time) MonthCursor {
	return MonthCursor{Year: t.Year(), Month: t.Month()}
}

// Shift moves the cursor by delta whole months. Negative deltas move
// backwards; year boundaries are normalized by the time package.
func (c MonthCursor) Shift(delta int) MonthCursor {
	t := time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return MonthCursor{Year: t.Year(), Month: t.Month()}
}

// Contains reports whether the given date falls in the cursor's month.
func (c MonthCursor) Contains(d Date) bool {
	return d.Year() == c.Year && d.Month() == c.Month
}

func (c MonthCursor) Valid() bool {
	return c.Month >= time.January && c.Month <= time.December && c.Year > 0
}

// CurrentUser resolves the session reference to the live directory
// record, or nil when logged out or unresolvable.
func (s *AppState) CurrentUser() *User {
	if s.CurrentUserID == "" {
		return nil
	}
	return s.FindUser(s.CurrentUserID)
}

// FindUser returns a pointer to the user with the given ID, or nil.
func (s *AppState) FindUser(id string) *User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

// FindUserByName returns a pointer to the user with the given username, or nil.
func (s *AppState) FindUserByName(username string) *User {
	for i := range s.Users {
		if s.Users[i].Username == username {
			return &s.Users[i]
		}
	}
	return nil
}

// FindGoal returns a pointer to the goal with the given ID, or nil.
func (s *AppState) FindGoal(id int64) *Goal {
	for i := range s.Goals {
		if s.Goals[i].ID == id {
			return &s.Goals[i]
		}
	}
	return nil
}
