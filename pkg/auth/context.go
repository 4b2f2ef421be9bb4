package auth

import (
	"context"
)

// Context keys for authentication data
type contextKey string

const (
	// ContextKeyOperatorSubject is the context key for the authenticated operator subject
	ContextKeyOperatorSubject contextKey = "operator_subject"
)

// WithOperatorSubject adds the operator subject to the context
func WithOperatorSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ContextKeyOperatorSubject, subject)
}

// OperatorSubjectFromContext retrieves the operator subject from the context
func OperatorSubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(ContextKeyOperatorSubject).(string)
	return sub, ok
}
