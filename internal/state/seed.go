package state

import (
	"time"

	"financas/internal/core"
)

// DefaultAdmin is the template for the protected administrator record.
func DefaultAdmin() core.User {
	return core.User{
		ID:       core.AdminID,
		Username: "admin",
		Password: "admin",
		Role:     core.RoleAdmin,
	}
}

// Seed builds the bootstrap state used when the durable slot does not
// exist yet: the admin account, one standard user and two sample
// transactions for November 2025, plus a sample savings goal. It is only
// persisted on the first save and never overwrites an existing slot.
func Seed() *core.AppState {
	salary := time.Date(2025, time.November, 5, 9, 0, 0, 0, time.UTC)
	market := time.Date(2025, time.November, 12, 18, 30, 0, 0, time.UTC)

	return &core.AppState{
		Users: []core.User{
			DefaultAdmin(),
			{
				ID:       "user1",
				Username: "maria",
				Password: core.DefaultPassword,
				Role:     core.RoleStandard,
			},
		},
		Transactions: []core.Transaction{
			{
				ID:              1,
				UserID:          "user1",
				Type:            core.Income,
				Amount:          core.Money{Cents: 300000},
				Category:        "Salário",
				Description:     "Renda Mensal",
				Date:            core.NewDate(2025, time.November, 5),
				Timestamp:       salary.UnixMilli(),
				Recurrence:      1,
				RecurrenceIndex: 1,
			},
			{
				ID:              2,
				UserID:          "user1",
				Type:            core.Expense,
				Amount:          core.Money{Cents: 12000},
				Category:        "Alimentação",
				Description:     "Mercado Semanal",
				Date:            core.NewDate(2025, time.November, 12),
				Timestamp:       market.UnixMilli(),
				Recurrence:      1,
				RecurrenceIndex: 1,
			},
		},
		Cursor:       core.MonthCursor{Year: 2025, Month: time.November},
		SavingsTotal: core.Money{Cents: 50000},
		Goals: []core.Goal{
			{
				ID:     1,
				Name:   "Viagem Europa",
				Target: core.Money{Cents: 1000000},
				Saved:  core.Money{Cents: 150000},
			},
		},
	}
}
