package domain

import "context"

// ContextKey is a type for context keys to avoid magic strings
type ContextKey string

const (
	// ContextKeyUser is the key for the authenticated user in the context
	ContextKeyUser ContextKey = "user"
	// ContextKeySubject is the key for the subject (user ID) in the context
	ContextKeySubject ContextKey = "sub"
)

// WithUser attaches the authenticated user to the context
func WithUser(ctx context.Context, user *User) context.Context {
	ctx = context.WithValue(ctx, ContextKeySubject, user.Subject())
	return context.WithValue(ctx, ContextKeyUser, user)
}

// GetUser retrieves the authenticated user from the context
func GetUser(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*User)
	return user, ok && user != nil
}

// GetSubject retrieves the subject (user ID) from the context
func GetSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(ContextKeySubject).(string)
	return subject, ok
}
