package tenantctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// TenantContextKey is the request context key for the active tenant ID.
type TenantContextKey struct{}

// BranchContextKey is the request context key for the active branch ID.
// An absent branch means the caller operates in "all branches" mode.
type BranchContextKey struct{}

// WithTenantID stores the tenant ID in the context.
func WithTenantID(ctx context.Context, tenantID snowflake.ID) context.Context {
	return context.WithValue(ctx, TenantContextKey{}, tenantID)
}

// WithBranchID stores the branch ID in the context.
func WithBranchID(ctx context.Context, branchID snowflake.ID) context.Context {
	return context.WithValue(ctx, BranchContextKey{}, branchID)
}

// TenantID returns the tenant ID from context, if set.
func TenantID(ctx context.Context) (snowflake.ID, bool) {
	return idFromContext(ctx, TenantContextKey{})
}

// BranchID returns the branch ID from context. ok is false in
// "all branches" mode.
func BranchID(ctx context.Context) (snowflake.ID, bool) {
	return idFromContext(ctx, BranchContextKey{})
}

func idFromContext(ctx context.Context, key any) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	switch typed := ctx.Value(key).(type) {
	case snowflake.ID:
		if typed == 0 {
			return 0, false
		}
		return typed, true
	case int64:
		if typed == 0 {
			return 0, false
		}
		return snowflake.ID(typed), true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err != nil || parsed == 0 {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}
