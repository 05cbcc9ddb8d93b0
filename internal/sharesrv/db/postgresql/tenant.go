package postgresql

import (
	"context"
	"database/sql"

	"github.com/jackc/pgconn"
	"github.com/lumenworks/lumen-server/internal/common/apperrors"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/dberror"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/models"
	"github.com/lumenworks/lumen-server/pkg/types"
	"github.com/rs/zerolog/log"
)

func (mm *metadataManager) CreateTenant(ctx context.Context, tenantID types.TenantId) apperrors.Error {
	if tenantID == "" {
		return dberror.ErrMissingTenantID
	}

	query := `
		INSERT INTO tenants (tenant_id)
		VALUES ($1);
	`

	_, err := mm.conn().ExecContext(ctx, query, tenantID)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			log.Ctx(ctx).Info().Str("tenant_id", string(tenantID)).Msg("tenant already exists")
			return dberror.ErrAlreadyExists.Msg("tenant already exists")
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to create tenant")
		return dberror.ErrDatabase.Err(err)
	}
	return nil
}

func (mm *metadataManager) GetTenant(ctx context.Context, tenantID types.TenantId) (*models.Tenant, apperrors.Error) {
	if tenantID == "" {
		return nil, dberror.ErrMissingTenantID
	}

	query := `
		SELECT tenant_id, created_at
		FROM tenants
		WHERE tenant_id = $1;
	`

	tenant := &models.Tenant{}
	err := mm.conn().QueryRowContext(ctx, query, tenantID).Scan(&tenant.TenantID, &tenant.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("tenant_id", string(tenantID)).Msg("tenant not found")
			return nil, dberror.ErrNotFound.Msg("tenant not found")
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to retrieve tenant")
		return nil, dberror.ErrDatabase.Err(err)
	}
	return tenant, nil
}

func (mm *metadataManager) DeleteTenant(ctx context.Context, tenantID types.TenantId) apperrors.Error {
	if tenantID == "" {
		return dberror.ErrMissingTenantID
	}

	query := `
		DELETE FROM tenants
		WHERE tenant_id = $1;
	`

	_, err := mm.conn().ExecContext(ctx, query, tenantID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to delete tenant")
		return dberror.ErrDatabase.Err(err)
	}
	return nil
}
