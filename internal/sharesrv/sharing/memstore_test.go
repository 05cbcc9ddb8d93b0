package sharing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lumenworks/lumen-server/internal/common/apperrors"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/dberror"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/models"
	"github.com/lumenworks/lumen-server/pkg/types"
)

// memStore is an in-memory Store with the same semantics as the postgres
// implementation: copies in, copies out (staged changes on a caller's model
// are invisible until UpdateResource), the partial unique index over
// importable slugs, and the published-implies-importable check.
type memStore struct {
	mu        sync.Mutex
	resources map[uuid.UUID]*models.Resource
	order     []uuid.UUID
	grants    []*models.ShareGrant

	// onUpdate, when set, runs at the start of UpdateResource. Tests use it
	// to simulate concurrent writers racing the commit.
	onUpdate func(s *memStore, r *models.Resource) apperrors.Error
}

func newMemStore() *memStore {
	return &memStore{
		resources: make(map[uuid.UUID]*models.Resource),
	}
}

func cloneResource(r *models.Resource) *models.Resource {
	c := *r
	return &c
}

// put seeds a resource, bypassing constraint checks.
func (s *memStore) put(r *models.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ResourceID == uuid.Nil {
		r.ResourceID = uuid.New()
	}
	if _, ok := s.resources[r.ResourceID]; !ok {
		s.order = append(s.order, r.ResourceID)
	}
	s.resources[r.ResourceID] = cloneResource(r)
}

func (s *memStore) GetResource(ctx context.Context, resourceID uuid.UUID) (*models.Resource, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resources[resourceID]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("resource not found")
	}
	return cloneResource(r), nil
}

func (s *memStore) UpdateResource(ctx context.Context, r *models.Resource) apperrors.Error {
	if s.onUpdate != nil {
		if err := s.onUpdate(s, r); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resources[r.ResourceID]; !ok {
		return dberror.ErrNotFound.Msg("resource not found")
	}
	if r.Published && !r.Importable {
		return dberror.ErrInvalidInput.Msg("published resource must be importable")
	}
	if r.Importable && r.Slug != "" {
		for _, other := range s.resources {
			if other.ResourceID == r.ResourceID {
				continue
			}
			if other.Importable && other.OwnerID == r.OwnerID && other.Kind == r.Kind && other.Slug == r.Slug {
				return dberror.ErrAlreadyExists.Msg("slug already exists")
			}
		}
	}
	r.UpdatedAt = time.Now()
	s.resources[r.ResourceID] = cloneResource(r)
	return nil
}

func (s *memStore) ListResourcesByOwner(ctx context.Context, owner types.UserId, kind types.ResourceKind) ([]*models.Resource, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Resource
	for _, id := range s.order {
		r := s.resources[id]
		if r.OwnerID == owner && r.Kind == kind {
			out = append(out, cloneResource(r))
		}
	}
	return out, nil
}

func (s *memStore) ListPublishedResources(ctx context.Context, kind types.ResourceKind) ([]*models.Resource, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Resource
	for _, id := range s.order {
		r := s.resources[id]
		if r.Published && r.Kind == kind {
			out = append(out, cloneResource(r))
		}
	}
	return out, nil
}

func (s *memStore) GetResourceByOwnerAndSlug(ctx context.Context, owner types.UserId, kind types.ResourceKind, slug string) (*models.Resource, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		r := s.resources[id]
		if r.OwnerID == owner && r.Kind == kind && r.Slug == slug {
			return cloneResource(r), nil
		}
	}
	return nil, dberror.ErrNotFound.Msg("resource not found")
}

func (s *memStore) slugExists(owner types.UserId, kind types.ResourceKind, slug string, excludeID uuid.UUID, importableOnly bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.resources {
		if r.ResourceID == excludeID {
			continue
		}
		if importableOnly && !r.Importable {
			continue
		}
		if r.OwnerID == owner && r.Kind == kind && r.Slug == slug {
			return true
		}
	}
	return false
}

func (s *memStore) ResourceSlugExists(ctx context.Context, owner types.UserId, kind types.ResourceKind, slug string, excludeID uuid.UUID) (bool, apperrors.Error) {
	return s.slugExists(owner, kind, slug, excludeID, false), nil
}

func (s *memStore) ImportableSlugExists(ctx context.Context, owner types.UserId, kind types.ResourceKind, slug string, excludeID uuid.UUID) (bool, apperrors.Error) {
	return s.slugExists(owner, kind, slug, excludeID, true), nil
}

func (s *memStore) CreateShareGrant(ctx context.Context, grant *models.ShareGrant) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resources[grant.ResourceID]; !ok {
		return dberror.ErrInvalidResource
	}
	for _, g := range s.grants {
		if g.ResourceID == grant.ResourceID && g.UserID == grant.UserID {
			return dberror.ErrAlreadyExists.Msg("share grant already exists")
		}
	}
	if grant.GrantID == uuid.Nil {
		grant.GrantID = uuid.New()
	}
	grant.CreatedAt = time.Now()
	c := *grant
	s.grants = append(s.grants, &c)
	return nil
}

func (s *memStore) GetShareGrant(ctx context.Context, resourceID uuid.UUID, user types.UserId) (*models.ShareGrant, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.grants {
		if g.ResourceID == resourceID && g.UserID == user {
			c := *g
			return &c, nil
		}
	}
	return nil, dberror.ErrNotFound.Msg("share grant not found")
}

func (s *memStore) ListShareGrants(ctx context.Context, resourceID uuid.UUID) ([]*models.ShareGrant, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ShareGrant
	for _, g := range s.grants {
		if g.ResourceID == resourceID {
			c := *g
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *memStore) DeleteShareGrant(ctx context.Context, grantID uuid.UUID) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.grants {
		if g.GrantID == grantID {
			s.grants = append(s.grants[:i], s.grants[i+1:]...)
			return nil
		}
	}
	return dberror.ErrNotFound.Msg("share grant not found")
}

// fakeIdentity answers admin checks from a fixed set.
type fakeIdentity struct {
	admins map[types.UserId]bool
}

func (f fakeIdentity) IsAdmin(ctx context.Context, user types.UserId) bool {
	return f.admins[user]
}

func (f fakeIdentity) IsAnonymous(user types.UserId) bool {
	return user.IsAnonymous()
}

func newTestManager() (*Manager, *memStore) {
	store := newMemStore()
	return NewManager(store, fakeIdentity{}), store
}

func newBoard(owner types.UserId, title string) *models.Resource {
	return &models.Resource{
		ResourceID: uuid.New(),
		Kind:       types.ResourceKindBoard,
		OwnerID:    owner,
		Title:      title,
		TenantID:   "T100AB",
	}
}
