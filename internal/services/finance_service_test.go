package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"financas/internal/core"
	"financas/internal/state"
)

type recordingPublisher struct {
	created []core.Transaction
	deleted []core.Transaction
	fail    bool
}

func (p *recordingPublisher) PublishTransactionCreated(_ context.Context, _ string, t core.Transaction) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.created = append(p.created, t)
	return nil
}

func (p *recordingPublisher) PublishTransactionDeleted(_ context.Context, _ string, t core.Transaction) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.deleted = append(p.deleted, t)
	return nil
}

func newTestService(t *testing.T) (*FinanceService, *recordingPublisher, *state.MemoryStore) {
	t.Helper()
	store := state.NewMemoryStore()
	pub := &recordingPublisher{}
	svc := New(store, pub, nil)

	// Deterministic clock for IDs and timestamps.
	clock := time.Date(2025, time.November, 20, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	if err := svc.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	return svc, pub, store
}

func mustLogin(t *testing.T, svc *FinanceService, username, password string) core.User {
	t.Helper()
	u, err := svc.Login(context.Background(), username, password)
	if err != nil {
		t.Fatalf("Login(%q): %v", username, err)
	}
	return u
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	u := mustLogin(t, svc, "maria", core.DefaultPassword)
	if u.ID != "user1" {
		t.Errorf("logged in user ID = %q, want user1", u.ID)
	}
	if u.LastLogin == nil {
		t.Error("LastLogin not recorded")
	}
	if cur := svc.CurrentUser(); cur == nil || cur.ID != "user1" {
		t.Errorf("CurrentUser = %+v, want user1", cur)
	}

	if _, err := svc.Login(ctx, "maria", "wrong"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody", core.DefaultPassword); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	svc, _, _ := newTestService(t)

	mustLogin(t, svc, "maria", core.DefaultPassword)
	if _, err := svc.Login(context.Background(), "admin", "wrong"); err == nil {
		t.Fatal("expected failed login")
	}
	if cur := svc.CurrentUser(); cur == nil || cur.ID != "user1" {
		t.Errorf("session changed by failed login: %+v", cur)
	}
}

func TestLogout(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// Without a session logout is a no-op.
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout without session: %v", err)
	}

	mustLogin(t, svc, "maria", core.DefaultPassword)
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if svc.CurrentUser() != nil {
		t.Error("session still set after logout")
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	svc, _, store := newTestService(t)
	mustLogin(t, svc, "maria", core.DefaultPassword)

	revived := New(store, nil, nil)
	if err := revived.Restore(context.Background()); err != nil {
		t.Fatalf("Restore after restart: %v", err)
	}
	if cur := revived.CurrentUser(); cur == nil || cur.ID != "user1" {
		t.Errorf("restored session = %+v, want user1", cur)
	}
}

func TestSignUp(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "joao", "segredo")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if u.Role != core.RoleStandard {
		t.Errorf("signup role = %q, want standard", u.Role)
	}
	if u.Password != "segredo" {
		t.Errorf("signup password = %q", u.Password)
	}

	if _, err := svc.SignUp(ctx, "maria", "x"); !errors.Is(err, core.ErrUsernameTaken) {
		t.Errorf("duplicate username: err = %v, want ErrUsernameTaken", err)
	}
	if _, err := svc.SignUp(ctx, "   ", "x"); !errors.Is(err, core.ErrEmptyUsername) {
		t.Errorf("blank username: err = %v, want ErrEmptyUsername", err)
	}
}

func TestUserAdminGuards(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Users(); !errors.Is(err, core.ErrNoSession) {
		t.Errorf("Users without session: err = %v, want ErrNoSession", err)
	}

	mustLogin(t, svc, "maria", core.DefaultPassword)
	if _, err := svc.Users(); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("Users as standard user: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.CreateUser(ctx, "x", "y", core.RoleStandard); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("CreateUser as standard user: err = %v, want ErrForbidden", err)
	}
	if err := svc.DeleteUser(ctx, "user1"); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("DeleteUser as standard user: err = %v, want ErrForbidden", err)
	}
}

func TestCreateUserDefaultPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	mustLogin(t, svc, "admin", "admin")

	u, err := svc.CreateUser(context.Background(), "carla", "", core.RoleStandard)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Password != core.DefaultPassword {
		t.Errorf("password = %q, want default %q", u.Password, core.DefaultPassword)
	}
}

func TestUpdateUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustLogin(t, svc, "admin", "admin")

	name := "mariana"
	pass := "novasenha"
	role := core.RoleAdmin
	u, err := svc.UpdateUser(ctx, "user1", UserUpdate{Username: &name, Password: &pass, Role: &role})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if u.Username != "mariana" || u.Password != "novasenha" || u.Role != core.RoleAdmin {
		t.Errorf("updated user = %+v", u)
	}

	// The administrator record never changes role.
	demote := core.RoleStandard
	admin, err := svc.UpdateUser(ctx, core.AdminID, UserUpdate{Role: &demote})
	if err != nil {
		t.Fatalf("UpdateUser(admin): %v", err)
	}
	if admin.Role != core.RoleAdmin {
		t.Errorf("admin role changed to %q", admin.Role)
	}

	taken := "admin"
	if _, err := svc.UpdateUser(ctx, "user1", UserUpdate{Username: &taken}); !errors.Is(err, core.ErrUsernameTaken) {
		t.Errorf("rename to taken username: err = %v, want ErrUsernameTaken", err)
	}
	if _, err := svc.UpdateUser(ctx, "ghost", UserUpdate{}); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("update unknown user: err = %v, want ErrUserNotFound", err)
	}
}

func TestSessionTracksSelfEdit(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustLogin(t, svc, "admin", "admin")

	// Growing the directory may reallocate its backing array; the
	// session must keep resolving to the live record afterwards.
	if _, err := svc.CreateUser(ctx, "novo1", "", core.RoleStandard); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	name := "root"
	if _, err := svc.UpdateUser(ctx, core.AdminID, UserUpdate{Username: &name}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	cur := svc.CurrentUser()
	if cur == nil || cur.Username != "root" {
		t.Fatalf("session shows stale user after self-edit: %+v", cur)
	}
}

func TestDeleteUserKeepsSessionIdentity(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustLogin(t, svc, "admin", "admin")

	// Directory order is not guaranteed by the slot format; make the
	// session user the last entry so deleting an earlier one compacts
	// the slice underneath it.
	users := svc.state.Users
	for i := range users {
		if users[i].ID == core.AdminID {
			users[i], users[len(users)-1] = users[len(users)-1], users[i]
			break
		}
	}

	if err := svc.DeleteUser(ctx, "user1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	cur := svc.CurrentUser()
	if cur == nil || cur.ID != core.AdminID {
		t.Fatalf("session resolved to a different user after delete: %+v", cur)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustLogin(t, svc, "admin", "admin")

	if err := svc.DeleteUser(ctx, core.AdminID); !errors.Is(err, core.ErrProtectedUser) {
		t.Fatalf("delete admin: err = %v, want ErrProtectedUser", err)
	}
	if err := svc.DeleteUser(ctx, "ghost"); !errors.Is(err, core.ErrUserNotFound) {
		t.Fatalf("delete unknown: err = %v, want ErrUserNotFound", err)
	}

	if err := svc.DeleteUser(ctx, "user1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	users, err := svc.Users()
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 1 || users[0].ID != core.AdminID {
		t.Errorf("remaining users = %+v", users)
	}
	for _, tx := range svc.state.Transactions {
		if tx.UserID == "user1" {
			t.Errorf("orphan transaction survived: %+v", tx)
		}
	}
	if cur := svc.CurrentUser(); cur == nil || cur.ID != core.AdminID {
		t.Errorf("admin session lost after delete: %+v", cur)
	}
}

func TestAddTransaction(t *testing.T) {
	svc, pub, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddTransaction(ctx, TransactionInput{}); !errors.Is(err, core.ErrNoSession) {
		t.Fatalf("add without session: err = %v, want ErrNoSession", err)
	}

	mustLogin(t, svc, "maria", core.DefaultPassword)
	series, err := svc.AddTransaction(ctx, TransactionInput{
		Type:        "expense",
		Amount:      "45,50",
		Category:    "Transporte",
		Description: "Combustível",
		Date:        "2025-11-18",
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("series length = %d, want 1", len(series))
	}
	got := series[0]
	if got.Amount.Cents != 4550 {
		t.Errorf("amount = %d cents, want 4550", got.Amount.Cents)
	}
	if got.UserID != "user1" {
		t.Errorf("owner = %q, want user1", got.UserID)
	}
	if got.IsRecurring || got.RecurrenceIndex != 1 || got.Recurrence != 1 {
		t.Errorf("one-off recurrence fields = %+v", got)
	}
	if len(pub.created) != 1 {
		t.Errorf("published events = %d, want 1", len(pub.created))
	}
}

func TestAddTransactionClockTime(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustLogin(t, svc, "maria", core.DefaultPassword)

	series, err := svc.AddTransaction(ctx, TransactionInput{
		Type: "expense", Amount: "5", Category: "Café", Date: "2025-11-18", Time: "08:45",
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	want := time.Date(2025, time.November, 18, 8, 45, 0, 0, time.UTC).UnixMilli()
	if series[0].Timestamp != want {
		t.Errorf("timestamp = %d, want %d", series[0].Timestamp, want)
	}

	if _, err := svc.AddTransaction(ctx, TransactionInput{
		Type: "expense", Amount: "5", Category: "Café", Date: "2025-11-18", Time: "25:99",
	}); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("bad clock time: err = %v, want ErrInvalidDate", err)
	}
}

func TestAddTransactionValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustLogin(t, svc, "maria", core.DefaultPassword)

	valid := TransactionInput{Type: "expense", Amount: "10,00", Category: "Lazer", Date: "2025-11-01"}

	tests := []struct {
		name    string
		mutate  func(*TransactionInput)
		wantErr error
	}{
		{"bad amount", func(in *TransactionInput) { in.Amount = "abc" }, core.ErrInvalidAmount},
		{"zero amount", func(in *TransactionInput) { in.Amount = "0" }, core.ErrInvalidAmount},
		{"negative amount", func(in *TransactionInput) { in.Amount = "-5" }, core.ErrInvalidAmount},
		{"bad date", func(in *TransactionInput) { in.Date = "18/11/2025" }, core.ErrInvalidDate},
		{"bad type", func(in *TransactionInput) { in.Type = "transfer" }, core.ErrInvalidType},
		{"blank category", func(in *TransactionInput) { in.Category = "  " }, core.ErrEmptyCategory},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			if _, err := svc.AddTransaction(ctx, in); !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestAddTransactionRecurrence(t *testing.T) {
	svc, _, _ := newTestService(t)
	mustLogin(t, svc, "maria", core.DefaultPassword)

	series, err := svc.AddTransaction(context.Background(), TransactionInput{
		Type:       "expense",
		Amount:     "1200,00",
		Category:   "Moradia",
		Date:       "2025-12-31",
		Recurrence: 3,
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("series length = %d, want 3", len(series))
	}

	if series[0].IsRecurring {
		t.Error("base entry marked recurring")
	}
	for i, tx := range series {
		if tx.Recurrence != 3 {
			t.Errorf("entry %d: Recurrence = %d, want 3", i, tx.Recurrence)
		}
		if tx.RecurrenceIndex != i+1 {
			t.Errorf("entry %d: RecurrenceIndex = %d, want %d", i, tx.RecurrenceIndex, i+1)
		}
	}
	// Dec 31 clamps to the last day of the shorter months.
	if got := series[1].Date.String(); got != "2026-01-31" {
		t.Errorf("second entry date = %s, want 2026-01-31", got)
	}
	if got := series[2].Date.String(); got != "2026-02-28" {
		t.Errorf("third entry date = %s, want 2026-02-28", got)
	}
}

func TestDeleteTransaction(t *testing.T) {
	svc, pub, _ := newTestService(t)
	ctx := context.Background()
	mustLogin(t, svc, "maria", core.DefaultPassword)

	if err := svc.DeleteTransaction(ctx, 2); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, 2); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("double delete: err = %v, want ErrTransactionNotFound", err)
	}
	if len(pub.deleted) != 1 || pub.deleted[0].ID != 2 {
		t.Errorf("deleted events = %+v", pub.deleted)
	}
}

func TestDeleteTransactionOwnership(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// Seed transactions belong to user1; admin must not delete them.
	mustLogin(t, svc, "admin", "admin")
	if err := svc.DeleteTransaction(ctx, 1); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("cross-owner delete: err = %v, want ErrTransactionNotFound", err)
	}
}

func TestMonthTransactions(t *testing.T) {
	svc, _, _ := newTestService(t)
	mustLogin(t, svc, "maria", core.DefaultPassword)

	txs, err := svc.MonthTransactions()
	if err != nil {
		t.Fatalf("MonthTransactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("len = %d, want 2", len(txs))
	}
	// Newest first: the market run (Nov 12) before the salary (Nov 5).
	if txs[0].ID != 2 || txs[1].ID != 1 {
		t.Errorf("order = [%d %d], want [2 1]", txs[0].ID, txs[1].ID)
	}
}

func TestMonthTransactionsOwnerIsolation(t *testing.T) {
	svc, _, _ := newTestService(t)
	mustLogin(t, svc, "admin", "admin")

	txs, err := svc.MonthTransactions()
	if err != nil {
		t.Fatalf("MonthTransactions: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("admin sees %d foreign transactions", len(txs))
	}
}

func TestSwitchMonth(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustLogin(t, svc, "maria", core.DefaultPassword)

	cur, err := svc.SwitchMonth(ctx, 1)
	if err != nil {
		t.Fatalf("SwitchMonth: %v", err)
	}
	if cur.Year != 2025 || cur.Month != time.December {
		t.Errorf("cursor = %+v, want Dec 2025", cur)
	}

	txs, err := svc.MonthTransactions()
	if err != nil {
		t.Fatalf("MonthTransactions: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("December shows %d November transactions", len(txs))
	}

	if cur, err = svc.SwitchMonth(ctx, -1); err != nil || cur.Month != time.November {
		t.Errorf("back to November: cursor = %+v, err = %v", cur, err)
	}

	// Year wrap going backwards from January.
	svc.state.Cursor = core.MonthCursor{Year: 2026, Month: time.January}
	if cur, err = svc.SwitchMonth(ctx, -1); err != nil || cur.Year != 2025 || cur.Month != time.December {
		t.Errorf("year wrap: cursor = %+v, err = %v", cur, err)
	}
}

func TestMonthSummaryAndBreakdown(t *testing.T) {
	svc, _, _ := newTestService(t)
	mustLogin(t, svc, "maria", core.DefaultPassword)

	sum, err := svc.MonthSummary()
	if err != nil {
		t.Fatalf("MonthSummary: %v", err)
	}
	if sum.Income.Cents != 300000 || sum.Expense.Cents != 12000 || sum.Balance.Cents != 288000 {
		t.Errorf("summary = %+v", sum)
	}

	byCat, err := svc.MonthBreakdown()
	if err != nil {
		t.Fatalf("MonthBreakdown: %v", err)
	}
	if len(byCat) != 1 || byCat["Alimentação"].Cents != 12000 {
		t.Errorf("breakdown = %+v", byCat)
	}
}

func TestGoals(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustLogin(t, svc, "maria", core.DefaultPassword)

	goals, total, err := svc.Goals()
	if err != nil {
		t.Fatalf("Goals: %v", err)
	}
	if len(goals) != 1 || total.Cents != 50000 {
		t.Errorf("goals = %+v, total = %d", goals, total.Cents)
	}

	g, err := svc.AddGoal(ctx, "Reserva", core.Money{Cents: 600000})
	if err != nil {
		t.Fatalf("AddGoal: %v", err)
	}
	if g.Saved.Cents != 0 {
		t.Errorf("new goal saved = %d, want 0", g.Saved.Cents)
	}
	if _, err := svc.AddGoal(ctx, " ", core.Money{Cents: 100}); !errors.Is(err, core.ErrEmptyGoalName) {
		t.Errorf("blank goal name: err = %v, want ErrEmptyGoalName", err)
	}

	dep, err := svc.DepositToGoal(ctx, g.ID, core.Money{Cents: 2500})
	if err != nil {
		t.Fatalf("DepositToGoal: %v", err)
	}
	if dep.Saved.Cents != 2500 {
		t.Errorf("saved after deposit = %d, want 2500", dep.Saved.Cents)
	}
	if _, total, _ = svc.Goals(); total.Cents != 52500 {
		t.Errorf("savings total = %d, want 52500", total.Cents)
	}
	if _, err := svc.DepositToGoal(ctx, 999, core.Money{Cents: 100}); !errors.Is(err, core.ErrGoalNotFound) {
		t.Errorf("deposit to unknown goal: err = %v, want ErrGoalNotFound", err)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	svc, pub, _ := newTestService(t)
	pub.fail = true
	mustLogin(t, svc, "maria", core.DefaultPassword)

	series, err := svc.AddTransaction(context.Background(), TransactionInput{
		Type: "income", Amount: "100", Category: "Extra", Date: "2025-11-20",
	})
	if err != nil {
		t.Fatalf("AddTransaction with failing publisher: %v", err)
	}
	if len(series) != 1 {
		t.Errorf("series length = %d", len(series))
	}
}
