package sharing

import (
	"context"

	"github.com/lumenworks/lumen-server/internal/sharesrv/sharecommon"
	"github.com/lumenworks/lumen-server/pkg/types"
)

// IdentityProvider answers the identity questions access decisions depend on.
// The sharing layer never resolves principals itself.
type IdentityProvider interface {
	IsAdmin(ctx context.Context, user types.UserId) bool
	IsAnonymous(user types.UserId) bool
}

// ContextIdentityProvider resolves admin privilege from the request's
// UserContext, which the auth middleware attaches before any sharing
// operation runs.
type ContextIdentityProvider struct{}

func (ContextIdentityProvider) IsAdmin(ctx context.Context, user types.UserId) bool {
	uc := sharecommon.UserContextFromContext(ctx)
	return uc != nil && uc.UserID == user && uc.Admin
}

func (ContextIdentityProvider) IsAnonymous(user types.UserId) bool {
	return user.IsAnonymous()
}
