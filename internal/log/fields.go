package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldVehicle     = "vehicle"
	FieldGranularity = "granularity"
	FieldRecords     = "records"
	FieldDropped     = "dropped"
	FieldBuckets     = "buckets"
	FieldSource      = "source"
	FieldURL         = "url"
	FieldRange       = "range"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldEmployeeID  = "employee_id"
	FieldCustomer    = "customer"
	FieldProduct     = "product"
	FieldMessageID   = "message_id"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentDelivery   = "delivery"
	ComponentAttendance = "attendance"
	ComponentPricing    = "pricing"
	ComponentInventory  = "inventory"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentSheets     = "sheets"
	ComponentBackend    = "backend"
	ComponentSecurity   = "security"
	ComponentTrace      = "trace"
	ComponentCache      = "cache"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpUpsert    = "upsert"
	OpDelete    = "delete"
	OpList      = "list"
	OpFetch     = "fetch"
	OpAggregate = "aggregate"
	OpImport    = "import"
	OpSync      = "sync"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpMigrate   = "migrate"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error message; a nil error adds nothing.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithReport adds the outcome of a period aggregation.
func (f LogFields) WithReport(vehicle, granularity string, records, buckets, dropped int) LogFields {
	f[FieldVehicle] = vehicle
	f[FieldGranularity] = granularity
	f[FieldRecords] = records
	f[FieldBuckets] = buckets
	f[FieldDropped] = dropped
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
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
