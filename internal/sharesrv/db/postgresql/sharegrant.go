package postgresql

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/lumenworks/lumen-server/internal/common/apperrors"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/dberror"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/models"
	"github.com/lumenworks/lumen-server/pkg/types"
	"github.com/rs/zerolog/log"
)

// CreateShareGrant inserts a grant linking a resource to a grantee. It
// assigns a grant ID if one is not provided. Returns ErrAlreadyExists when a
// grant for the (resource, grantee) pair exists; get-or-create callers treat
// that as "fetch the existing row".
func (mm *metadataManager) CreateShareGrant(ctx context.Context, grant *models.ShareGrant) apperrors.Error {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return err
	}
	grant.TenantID = tenantID
	if errV := grant.Validate(); errV != nil {
		return dberror.ErrInvalidInput.Err(errV)
	}
	if grant.GrantID == uuid.Nil {
		grant.GrantID = uuid.New()
	}

	query := `
		INSERT INTO share_grants (grant_id, resource_id, user_id, tenant_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at;
	`

	errDb := mm.conn().QueryRowContext(ctx, query,
		grant.GrantID,
		grant.ResourceID,
		grant.UserID,
		tenantID,
	).Scan(&grant.CreatedAt)

	if errDb != nil {
		if pgErr, ok := errDb.(*pgconn.PgError); ok {
			switch {
			case pgErr.Code == "23505" && pgErr.ConstraintName == "share_grants_resource_id_user_id_key":
				log.Ctx(ctx).Info().Str("resource_id", grant.ResourceID.String()).
					Str("user_id", string(grant.UserID)).
					Msg("share grant already exists")
				return dberror.ErrAlreadyExists.Msg("share grant already exists")

			case pgErr.ConstraintName == "share_grants_resource_id_tenant_id_fkey":
				log.Ctx(ctx).Info().Str("resource_id", grant.ResourceID.String()).Msg("resource not found")
				return dberror.ErrInvalidResource
			}
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to insert share grant")
		return dberror.ErrDatabase.Err(errDb)
	}
	return nil
}

// GetShareGrant returns the grant for the (resource, grantee) pair. Should
// duplicates ever exist the earliest row wins, keeping removal deterministic.
func (mm *metadataManager) GetShareGrant(ctx context.Context, resourceID uuid.UUID, user types.UserId) (*models.ShareGrant, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT grant_id, resource_id, user_id, tenant_id, created_at
		FROM share_grants
		WHERE resource_id = $1 AND user_id = $2 AND tenant_id = $3
		ORDER BY created_at
		LIMIT 1;
	`

	grant := &models.ShareGrant{}
	errDb := mm.conn().QueryRowContext(ctx, query, resourceID, user, tenantID).Scan(
		&grant.GrantID, &grant.ResourceID, &grant.UserID, &grant.TenantID, &grant.CreatedAt,
	)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("share grant not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to retrieve share grant")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return grant, nil
}

// ListShareGrants returns all grants for a resource in insertion order.
func (mm *metadataManager) ListShareGrants(ctx context.Context, resourceID uuid.UUID) ([]*models.ShareGrant, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT grant_id, resource_id, user_id, tenant_id, created_at
		FROM share_grants
		WHERE resource_id = $1 AND tenant_id = $2
		ORDER BY created_at;
	`

	rows, errDb := mm.conn().QueryContext(ctx, query, resourceID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to list share grants")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	defer rows.Close()

	var grants []*models.ShareGrant
	for rows.Next() {
		grant := &models.ShareGrant{}
		if errDb := rows.Scan(&grant.GrantID, &grant.ResourceID, &grant.UserID, &grant.TenantID, &grant.CreatedAt); errDb != nil {
			log.Ctx(ctx).Error().Err(errDb).Msg("failed to scan share grant row")
			return nil, dberror.ErrDatabase.Err(errDb)
		}
		grants = append(grants, grant)
	}
	if errDb := rows.Err(); errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to iterate share grant rows")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return grants, nil
}

func (mm *metadataManager) DeleteShareGrant(ctx context.Context, grantID uuid.UUID) apperrors.Error {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return err
	}

	query := `
		DELETE FROM share_grants
		WHERE grant_id = $1 AND tenant_id = $2;
	`

	result, errDb := mm.conn().ExecContext(ctx, query, grantID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to delete share grant")
		return dberror.ErrDatabase.Err(errDb)
	}

	rowsAffected, errDb := result.RowsAffected()
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to retrieve result information")
		return dberror.ErrDatabase.Err(errDb)
	}
	if rowsAffected == 0 {
		log.Ctx(ctx).Info().Str("grant_id", grantID.String()).Msg("share grant not found")
		return dberror.ErrNotFound.Msg("share grant not found")
	}
	return nil
}
