package log

// Common field names for structured logging.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldUsername      = "username"
	FieldTransactionID = "transaction_id"
	FieldAmountCents   = "amount_cents"
	FieldCategory      = "category"
	FieldYear          = "year"
	FieldMonth         = "month"
	FieldRecurrence    = "recurrence"
	FieldBackend       = "backend"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentState   = "state"
	ComponentLedger  = "ledger"
	ComponentSession = "session"
	ComponentUsers   = "users"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
)

// Standard operation names.
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpLogin    = "login"
	OpLogout   = "logout"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpQuery    = "query"
	OpExport   = "export"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
