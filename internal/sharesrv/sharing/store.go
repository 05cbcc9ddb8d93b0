package sharing

import (
	"context"

	"github.com/google/uuid"
	"github.com/lumenworks/lumen-server/internal/common/apperrors"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/models"
	"github.com/lumenworks/lumen-server/pkg/types"
)

// Store is the narrow persistence surface the sharing manager consumes. The
// value returned by db.DB(ctx) satisfies it; tests use an in-memory fake.
//
// The two slug-existence queries differ deliberately: ImportableSlugExists
// scopes to importable resources and backs automatic slug generation, while
// ResourceSlugExists ignores the importable flag and backs the explicit
// set-slug conflict check.
type Store interface {
	GetResource(ctx context.Context, resourceID uuid.UUID) (*models.Resource, apperrors.Error)
	UpdateResource(ctx context.Context, resource *models.Resource) apperrors.Error
	ListResourcesByOwner(ctx context.Context, owner types.UserId, kind types.ResourceKind) ([]*models.Resource, apperrors.Error)
	ListPublishedResources(ctx context.Context, kind types.ResourceKind) ([]*models.Resource, apperrors.Error)
	GetResourceByOwnerAndSlug(ctx context.Context, owner types.UserId, kind types.ResourceKind, slug string) (*models.Resource, apperrors.Error)
	ResourceSlugExists(ctx context.Context, owner types.UserId, kind types.ResourceKind, slug string, excludeID uuid.UUID) (bool, apperrors.Error)
	ImportableSlugExists(ctx context.Context, owner types.UserId, kind types.ResourceKind, slug string, excludeID uuid.UUID) (bool, apperrors.Error)

	CreateShareGrant(ctx context.Context, grant *models.ShareGrant) apperrors.Error
	GetShareGrant(ctx context.Context, resourceID uuid.UUID, user types.UserId) (*models.ShareGrant, apperrors.Error)
	ListShareGrants(ctx context.Context, resourceID uuid.UUID) ([]*models.ShareGrant, apperrors.Error)
	DeleteShareGrant(ctx context.Context, grantID uuid.UUID) apperrors.Error
}
