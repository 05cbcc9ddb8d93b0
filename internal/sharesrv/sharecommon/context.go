// Package sharecommon provides context management utilities for the sharing
// service: tenant scoping and the requesting user's identity.
package sharecommon

import (
	"context"

	"github.com/lumenworks/lumen-server/pkg/types"
)

// ctxKeyType represents the type for all context keys
type ctxKeyType string

const (
	ctxTenantIdKey ctxKeyType = "LumenTenantId"
	ctxUserKey     ctxKeyType = "LumenUserContext"
)

// UserContext represents the authenticated principal attached to a request.
// The auth middleware populates it before any sharing operation runs.
type UserContext struct {
	// UserID is the unique identifier for the user
	UserID types.UserId
	// Admin is true when the user carries administrative privilege
	Admin bool
}

// SetTenantIdInContext sets the tenant ID in the provided context.
func SetTenantIdInContext(ctx context.Context, tenantId types.TenantId) context.Context {
	return context.WithValue(ctx, ctxTenantIdKey, tenantId)
}

// TenantIdFromContext retrieves the tenant ID from the provided context.
func TenantIdFromContext(ctx context.Context) types.TenantId {
	if tenantId, ok := ctx.Value(ctxTenantIdKey).(types.TenantId); ok {
		return tenantId
	}
	return ""
}

// SetUserContext sets the user context in the provided context.
func SetUserContext(ctx context.Context, userContext *UserContext) context.Context {
	return context.WithValue(ctx, ctxUserKey, userContext)
}

// UserContextFromContext retrieves the user context from the provided context.
func UserContextFromContext(ctx context.Context) *UserContext {
	if userContext, ok := ctx.Value(ctxUserKey).(*UserContext); ok {
		return userContext
	}
	return nil
}
