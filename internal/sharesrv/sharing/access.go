package sharing

import (
	"context"
	"errors"

	"github.com/lumenworks/lumen-server/internal/common/apperrors"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/dberror"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/models"
	"github.com/lumenworks/lumen-server/pkg/types"
)

// IsOwner reports whether user may act as the resource's owner. Admins own
// everything. Pure decision, the caller enforces it.
func (m *Manager) IsOwner(ctx context.Context, r *models.Resource, user types.UserId) bool {
	if m.identity.IsAdmin(ctx, user) {
		return true
	}
	return !m.identity.IsAnonymous(user) && r.OwnerID == user
}

// IsAccessible reports whether user may view the resource. Checks run in
// order: importable resources are open to everyone, owners always have
// access, anonymous users have nothing further, and finally a share grant
// admits the user. Only the grant lookup can fail.
func (m *Manager) IsAccessible(ctx context.Context, r *models.Resource, user types.UserId) (bool, apperrors.Error) {
	if r.Importable {
		return true, nil
	}
	if m.IsOwner(ctx, r, user) {
		return true, nil
	}
	if m.identity.IsAnonymous(user) {
		return false, nil
	}
	_, err := m.store.GetShareGrant(ctx, r.ResourceID, user)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, dberror.ErrNotFound) {
		return false, nil
	}
	return false, err
}
