// Package sharing implements ownership and access decisions, share grants,
// publish/importable state transitions and per-owner slugs for sharable
// resources. It owns no transport; the API layer composes it.
//
// Mutating operations take a flush flag. With flush=false the change is
// staged on the model and a later Flush (or a flushing op) commits the whole
// batch in one update, which keeps cascades atomic. Share grant rows commit
// immediately either way.
package sharing

import (
	"context"
	"errors"

	"github.com/lumenworks/lumen-server/internal/common/apperrors"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/dberror"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/models"
	"github.com/lumenworks/lumen-server/pkg/types"
	"github.com/rs/zerolog/log"
)

// Manager coordinates sharing state for one request. It holds no state of its
// own beyond its collaborators, so a single value may serve many goroutines
// as long as they do not share Resource models.
type Manager struct {
	store    Store
	identity IdentityProvider
}

func NewManager(store Store, identity IdentityProvider) *Manager {
	return &Manager{
		store:    store,
		identity: identity,
	}
}

// ShareWith grants user access to the resource. Sharing a resource for the
// first time assigns its slug so the recipient has a stable link. Re-sharing
// is idempotent and returns the existing grant.
func (m *Manager) ShareWith(ctx context.Context, r *models.Resource, user types.UserId, flush bool) (*models.ShareGrant, apperrors.Error) {
	if m.identity.IsAnonymous(user) {
		return nil, ErrInvalidGrantee.Msg("cannot share with an anonymous user")
	}
	if r.Slug == "" {
		if err := m.AssignUniqueSlug(ctx, r, flush); err != nil {
			return nil, err
		}
	}

	grant := &models.ShareGrant{
		ResourceID: r.ResourceID,
		UserID:     user,
	}
	err := m.store.CreateShareGrant(ctx, grant)
	if err == nil {
		return grant, nil
	}
	if errors.Is(err, dberror.ErrAlreadyExists) {
		return m.store.GetShareGrant(ctx, r.ResourceID, user)
	}
	if errors.Is(err, dberror.ErrInvalidResource) {
		return nil, ErrInvalidResource.Msg("resource does not exist")
	}
	return nil, err
}

// ShareWithAll applies ShareWith per grantee. The first failure aborts the
// batch; grants created before it remain.
func (m *Manager) ShareWithAll(ctx context.Context, r *models.Resource, users []types.UserId, flush bool) ([]*models.ShareGrant, apperrors.Error) {
	grants := make([]*models.ShareGrant, 0, len(users))
	for _, user := range users {
		grant, err := m.ShareWith(ctx, r, user, flush)
		if err != nil {
			return grants, err
		}
		grants = append(grants, grant)
	}
	return grants, nil
}

// UnshareWith revokes user's grant on the resource. When duplicate grants
// somehow exist the earliest one is removed. Takes no flush flag: grant rows
// are not staged on the model.
func (m *Manager) UnshareWith(ctx context.Context, r *models.Resource, user types.UserId) apperrors.Error {
	grant, err := m.store.GetShareGrant(ctx, r.ResourceID, user)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return ErrGrantNotFound.Msg("resource is not shared with user")
		}
		return err
	}
	if err := m.store.DeleteShareGrant(ctx, grant.GrantID); err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return ErrGrantNotFound.Msg("resource is not shared with user")
		}
		return err
	}
	return nil
}

// UnshareWithAll applies UnshareWith per grantee; the first failure aborts.
func (m *Manager) UnshareWithAll(ctx context.Context, r *models.Resource, users []types.UserId) apperrors.Error {
	for _, user := range users {
		if err := m.UnshareWith(ctx, r, user); err != nil {
			return err
		}
	}
	return nil
}

// ListSharedWith returns the grantees of a resource in the order they were
// added.
func (m *Manager) ListSharedWith(ctx context.Context, r *models.Resource) ([]types.UserId, apperrors.Error) {
	grants, err := m.store.ListShareGrants(ctx, r.ResourceID)
	if err != nil {
		return nil, err
	}
	users := make([]types.UserId, 0, len(grants))
	for _, grant := range grants {
		users = append(users, grant.UserID)
	}
	return users, nil
}

// MakeImportable opens the resource to everyone with its link. A slug is
// assigned first when none is set, since an importable resource without a
// stable address is useless. Idempotent.
func (m *Manager) MakeImportable(ctx context.Context, r *models.Resource, flush bool) apperrors.Error {
	if r.Slug == "" {
		slug, err := m.GenerateUniqueSlug(ctx, r)
		if err != nil {
			return err
		}
		r.Slug = slug
	}
	r.Importable = true
	if !flush {
		return nil
	}
	return m.flushAssignedSlug(ctx, r)
}

// MakeNonImportable withdraws link access. A published resource is
// unpublished first; the slug stays so re-enabling restores the old link.
func (m *Manager) MakeNonImportable(ctx context.Context, r *models.Resource, flush bool) apperrors.Error {
	if r.Published {
		if err := m.Unpublish(ctx, r, false); err != nil {
			return err
		}
	}
	r.Importable = false
	if !flush {
		return nil
	}
	return m.Flush(ctx, r)
}

// Publish lists the resource publicly. Publishing implies importable, so a
// non-importable resource transitions through MakeImportable (including slug
// assignment) first. Idempotent.
func (m *Manager) Publish(ctx context.Context, r *models.Resource, flush bool) apperrors.Error {
	if !r.Importable {
		if err := m.MakeImportable(ctx, r, false); err != nil {
			return err
		}
	}
	r.Published = true
	if !flush {
		return nil
	}
	return m.flushAssignedSlug(ctx, r)
}

// Unpublish delists the resource. It stays importable: everyone with the
// link keeps access.
func (m *Manager) Unpublish(ctx context.Context, r *models.Resource, flush bool) apperrors.Error {
	r.Published = false
	if !flush {
		return nil
	}
	return m.Flush(ctx, r)
}

// Flush commits staged changes in a single update.
func (m *Manager) Flush(ctx context.Context, r *models.Resource) apperrors.Error {
	if err := m.store.UpdateResource(ctx, r); err != nil {
		log.Ctx(ctx).Error().Str("resource_id", r.ResourceID.String()).Msg("failed to flush resource")
		return err
	}
	return nil
}

// ListByOwner returns one owner's resources of a kind in insertion order.
func (m *Manager) ListByOwner(ctx context.Context, owner types.UserId, kind types.ResourceKind) ([]*models.Resource, apperrors.Error) {
	return m.store.ListResourcesByOwner(ctx, owner, kind)
}

// ListPublished returns all published resources of a kind.
func (m *Manager) ListPublished(ctx context.Context, kind types.ResourceKind) ([]*models.Resource, apperrors.Error) {
	return m.store.ListPublishedResources(ctx, kind)
}

// GetByOwnerAndSlug resolves the owner-and-slug display path to a resource.
func (m *Manager) GetByOwnerAndSlug(ctx context.Context, owner types.UserId, kind types.ResourceKind, slug string) (*models.Resource, apperrors.Error) {
	return m.store.GetResourceByOwnerAndSlug(ctx, owner, kind, slug)
}
