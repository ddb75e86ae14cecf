package types

// ContextKey is the type used for request-scoped values placed on a
// context by the transport layer and read by telemetry.
type ContextKey string

const (
	ContextKeyRequestID     ContextKey = "request_id"
	ContextKeyClientID      ContextKey = "client_id"
	ContextKeyRequestSource ContextKey = "request_source"
)
