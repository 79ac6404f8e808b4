package types

// ContextKey is the type of keys stored on request contexts.
type ContextKey string

const (
	ContextKeyUserID        ContextKey = "user_id"
	ContextKeySessionID     ContextKey = "session_id"
	ContextKeyRequestSource ContextKey = "request_source"
	ContextKeyExecutionID   ContextKey = "execution_id"
)
