// Package export defines the outbound ports for the ledger export
// pipeline and the row format written to the destination sheet.
package export

import (
	"context"

	"financas/internal/amqp"
	"financas/internal/core"
)

// RowAppender appends one ledger row to the export destination and
// returns an adapter-specific row reference.
type RowAppender interface {
	Append(ctx context.Context, r Row) (rowRef string, err error)
}

// Row is one exported ledger line. Display columns use the pt-BR
// rendering so the sheet reads like the application does.
type Row struct {
	Kind        string
	Username    string
	Date        string
	Type        string
	Category    string
	Description string
	Amount      string
}

// RowFromEvent flattens an audit event into its sheet row.
func RowFromEvent(e *amqp.TransactionEvent) Row {
	t := e.Transaction
	return Row{
		Kind:        e.Kind,
		Username:    e.Username,
		Date:        core.FormatDate(t.Date),
		Type:        string(t.Type),
		Category:    t.Category,
		Description: t.Description,
		Amount:      core.FormatBRL(t.Amount),
	}
}

// Values returns the row as a sheet value range line.
func (r Row) Values() []any {
	return []any{r.Kind, r.Username, r.Date, r.Type, r.Category, r.Description, r.Amount}
}
