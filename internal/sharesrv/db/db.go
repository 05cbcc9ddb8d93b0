package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/lumenworks/lumen-server/internal/common/apperrors"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/dbmanager"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/models"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/postgresql"
	"github.com/lumenworks/lumen-server/pkg/types"
	"github.com/rs/zerolog/log"
)

// MetadataManager is the persistence surface of the sharing data layer. All
// operations are scoped to the tenant carried in the context.
type MetadataManager interface {
	// Tenant
	CreateTenant(ctx context.Context, tenantID types.TenantId) apperrors.Error
	GetTenant(ctx context.Context, tenantID types.TenantId) (*models.Tenant, apperrors.Error)
	DeleteTenant(ctx context.Context, tenantID types.TenantId) apperrors.Error

	// Resource
	CreateResource(ctx context.Context, resource *models.Resource) apperrors.Error
	GetResource(ctx context.Context, resourceID uuid.UUID) (*models.Resource, apperrors.Error)
	UpdateResource(ctx context.Context, resource *models.Resource) apperrors.Error
	DeleteResource(ctx context.Context, resourceID uuid.UUID) apperrors.Error
	ListResourcesByOwner(ctx context.Context, owner types.UserId, kind types.ResourceKind) ([]*models.Resource, apperrors.Error)
	ListPublishedResources(ctx context.Context, kind types.ResourceKind) ([]*models.Resource, apperrors.Error)
	GetResourceByOwnerAndSlug(ctx context.Context, owner types.UserId, kind types.ResourceKind, slug string) (*models.Resource, apperrors.Error)
	ResourceSlugExists(ctx context.Context, owner types.UserId, kind types.ResourceKind, slug string, excludeID uuid.UUID) (bool, apperrors.Error)
	ImportableSlugExists(ctx context.Context, owner types.UserId, kind types.ResourceKind, slug string, excludeID uuid.UUID) (bool, apperrors.Error)

	// ShareGrant
	CreateShareGrant(ctx context.Context, grant *models.ShareGrant) apperrors.Error
	GetShareGrant(ctx context.Context, resourceID uuid.UUID, user types.UserId) (*models.ShareGrant, apperrors.Error)
	ListShareGrants(ctx context.Context, resourceID uuid.UUID) ([]*models.ShareGrant, apperrors.Error)
	DeleteShareGrant(ctx context.Context, grantID uuid.UUID) apperrors.Error
}

type ConnectionManager interface {
	// Scope Management
	AddScopes(ctx context.Context, scopes map[string]string)
	DropScopes(ctx context.Context, scopes []string) error
	AddScope(ctx context.Context, scope, value string)
	DropScope(ctx context.Context, scope string) error
	DropAllScopes(ctx context.Context) error

	// Close the connection to the database.
	Close(ctx context.Context)
}

type DB_ interface {
	MetadataManager
	ConnectionManager
}

const (
	Scope_TenantId string = "lumen.curr_tenantid"
)

var configuredScopes = []string{
	Scope_TenantId,
}

var pool dbmanager.ScopedDb

func init() {
	ctx := log.Logger.WithContext(context.Background())
	pg := dbmanager.NewScopedDb(ctx, "postgresql", configuredScopes)
	if pg == nil {
		panic("unable to create db pool")
	}
	pool = pg
}

func Conn(ctx context.Context) dbmanager.ScopedConn {
	if pool != nil {
		conn, err := pool.Conn(ctx)
		if err == nil {
			return conn
		}
		log.Ctx(ctx).Error().Err(err).Msg("unable to get db connection")
	}
	return nil
}

type ctxDbKeyType string

const ctxDbKey ctxDbKeyType = "LumenSharesDb"

func ConnCtx(ctx context.Context) context.Context {
	conn := Conn(ctx)
	return context.WithValue(ctx, ctxDbKey, conn)
}

type lumenSharesDb struct {
	MetadataManager
	ConnectionManager
}

func DB(ctx context.Context) DB_ {
	if conn, ok := ctx.Value(ctxDbKey).(dbmanager.ScopedConn); ok {
		mm, cm := postgresql.NewLumenSharesDb(conn)
		return &lumenSharesDb{
			MetadataManager:   mm,
			ConnectionManager: cm,
		}
	}
	log.Ctx(ctx).Error().Msg("unable to get db connection from context")
	return nil
}
