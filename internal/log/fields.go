package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldSession    = "session"
	FieldSeq        = "seq"
	FieldCount      = "count"
	FieldTitle      = "title"
	FieldCategory   = "category"
	FieldAmount     = "amount"
	FieldField      = "field"
	FieldCategories = "categories"
	FieldCacheHit   = "cache_hit"
	FieldSheetsRef  = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentShell   = "shell"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpAdd       = "add"
	OpAggregate = "aggregate"
	OpList      = "list"
	OpPublish   = "publish"
	OpExport    = "export"
	OpValidate  = "validate"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithSession(session string) LogFields {
	f[FieldSession] = session
	return f
}

// WithTransaction adds the fields describing one ledger entry.
func (f LogFields) WithTransaction(title, category string, amount int64) LogFields {
	f[FieldTitle] = title
	f[FieldCategory] = category
	f[FieldAmount] = amount
	return f
}

func (f LogFields) WithCount(n int) LogFields {
	f[FieldCount] = n
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
