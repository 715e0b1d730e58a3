package middleware

import "context"

type contextKey string

const (
	ctxWalletAddress contextKey = "wallet_address"
	ctxRole          contextKey = "actor_role"
	ctxLoginKind     contextKey = "login_kind"
)

func WalletAddressFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxWalletAddress).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func LoginKindFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxLoginKind).(string); ok {
		return v
	}
	return ""
}

// WithWalletAddress injects the authenticated wallet address into the context.
func WithWalletAddress(ctx context.Context, address string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxWalletAddress, address)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}
