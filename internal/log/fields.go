package log

// Common field names for structured logging
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
	FieldTransactionID = "transaction_id"
	FieldAmount        = "amount"
	FieldPaymentMethod = "payment_method"
	FieldPeriod        = "period"
	FieldWindowStart   = "window_start"
	FieldCount         = "count"
	FieldTool          = "tool"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentReports  = "reports"
	ComponentReceipts = "receipts"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentSheets   = "sheets"
	ComponentTools    = "tools"
	ComponentCLI      = "cli"
)

// Operations defines standard operation names
const (
	OpRecord   = "record_transaction"
	OpAnalyze  = "analyze_spending"
	OpAdvice   = "generate_financial_advice"
	OpPredict  = "predict_future_spending"
	OpReceipt  = "generate_transaction_receipt"
	OpProfile  = "retrieve_user_data"
	OpExport   = "export_spending_report"
	OpMirror   = "mirror_transaction"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithOperation adds operation field
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

// WithTransaction adds the ledger fields of a transaction.
func (f LogFields) WithTransaction(id, userID int64, amount, paymentMethod string) LogFields {
	if id > 0 {
		f[FieldTransactionID] = id
	}
	f[FieldUserID] = userID
	f[FieldAmount] = amount
	f[FieldPaymentMethod] = paymentMethod
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
