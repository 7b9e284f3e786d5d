package database

import "context"

type contextKey string

// scopeKey is the context key for the active query scope.
const scopeKey contextKey = "queryScope"

// Scope carries the connection (pool or open transaction) repositories
// should execute against. It is placed in the context by the TxManager so
// that a service-level unit of work spans every repository call it makes.
type Scope struct {
	Conn Querier
}

// GetScope retrieves the query scope from context.
// Returns nil and false if not present.
func GetScope(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(scopeKey).(*Scope)
	return scope, ok
}

// SetScope stores the query scope in context.
func SetScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}
