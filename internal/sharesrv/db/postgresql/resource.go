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

// CreateResource inserts a new sharable resource. It assigns a resource ID if
// one is not provided. Returns an error if the slug collides with another
// importable resource of the same owner and kind, the slug format is invalid,
// or there is a database error.
func (mm *metadataManager) CreateResource(ctx context.Context, resource *models.Resource) apperrors.Error {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return err
	}
	resource.TenantID = tenantID
	if errV := resource.Validate(); errV != nil {
		return dberror.ErrInvalidResource.Err(errV)
	}
	if resource.ResourceID == uuid.Nil {
		resource.ResourceID = uuid.New()
	}
	slug := sql.NullString{String: resource.Slug, Valid: resource.Slug != ""}

	query := `
		INSERT INTO resources (resource_id, kind, owner_id, title, slug, importable, published, info, tenant_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at;
	`

	errDb := mm.conn().QueryRowContext(ctx, query,
		resource.ResourceID,
		resource.Kind,
		resource.OwnerID,
		resource.Title,
		slug,
		resource.Importable,
		resource.Published,
		resource.Info,
		tenantID,
	).Scan(&resource.CreatedAt, &resource.UpdatedAt)

	if errDb != nil {
		if pgErr, ok := errDb.(*pgconn.PgError); ok {
			switch {
			case pgErr.Code == "23505" && pgErr.ConstraintName == "resources_owner_kind_slug_key":
				log.Ctx(ctx).Error().Str("slug", resource.Slug).
					Str("owner_id", string(resource.OwnerID)).
					Msg("slug already in use for owner")
				return dberror.ErrAlreadyExists.Msg("slug already in use for owner")

			case pgErr.Code == "23505" && pgErr.ConstraintName == "resources_pkey":
				log.Ctx(ctx).Error().Str("resource_id", resource.ResourceID.String()).
					Msg("resource already exists")
				return dberror.ErrAlreadyExists.Msg("resource already exists")

			case pgErr.Code == "23514" && pgErr.ConstraintName == "resources_slug_check":
				log.Ctx(ctx).Error().Str("slug", resource.Slug).Msg("invalid slug format")
				return dberror.ErrInvalidInput.Msg("invalid slug format")

			case pgErr.Code == "23514" && pgErr.ConstraintName == "resources_published_check":
				log.Ctx(ctx).Error().Str("resource_id", resource.ResourceID.String()).
					Msg("published resource must be importable")
				return dberror.ErrInvalidInput.Msg("published resource must be importable")
			}
		}
		log.Ctx(ctx).Error().Err(errDb).Str("title", resource.Title).Msg("failed to insert resource")
		return dberror.ErrDatabase.Err(errDb)
	}
	return nil
}

func (mm *metadataManager) GetResource(ctx context.Context, resourceID uuid.UUID) (*models.Resource, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT resource_id, kind, owner_id, title, slug, importable, published, info, tenant_id, created_at, updated_at
		FROM resources
		WHERE resource_id = $1 AND tenant_id = $2;
	`

	row := mm.conn().QueryRowContext(ctx, query, resourceID, tenantID)
	resource, errDb := scanResource(row)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("resource_id", resourceID.String()).Msg("resource not found")
			return nil, dberror.ErrNotFound.Msg("resource not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to retrieve resource")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return resource, nil
}

// UpdateResource persists the mutable fields of a resource: title, slug,
// importable, published and info. The partial unique index on importable
// slugs makes this the commit point for the slug uniqueness guarantee;
// callers staging a generated slug retry on ErrAlreadyExists.
func (mm *metadataManager) UpdateResource(ctx context.Context, resource *models.Resource) apperrors.Error {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return err
	}
	slug := sql.NullString{String: resource.Slug, Valid: resource.Slug != ""}

	query := `
		UPDATE resources
		SET title = $1, slug = $2, importable = $3, published = $4, info = $5
		WHERE resource_id = $6 AND tenant_id = $7
		RETURNING updated_at;
	`

	errDb := mm.conn().QueryRowContext(ctx, query,
		resource.Title,
		slug,
		resource.Importable,
		resource.Published,
		resource.Info,
		resource.ResourceID,
		tenantID,
	).Scan(&resource.UpdatedAt)

	if errDb != nil {
		if errDb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("resource_id", resource.ResourceID.String()).Msg("resource not found")
			return dberror.ErrNotFound.Msg("resource not found")
		}
		if pgErr, ok := errDb.(*pgconn.PgError); ok {
			switch {
			case pgErr.Code == "23505" && pgErr.ConstraintName == "resources_owner_kind_slug_key":
				log.Ctx(ctx).Info().Str("slug", resource.Slug).
					Str("owner_id", string(resource.OwnerID)).
					Msg("slug already in use for owner")
				return dberror.ErrAlreadyExists.Msg("slug already in use for owner")

			case pgErr.Code == "23514" && pgErr.ConstraintName == "resources_slug_check":
				log.Ctx(ctx).Error().Str("slug", resource.Slug).Msg("invalid slug format")
				return dberror.ErrInvalidInput.Msg("invalid slug format")

			case pgErr.Code == "23514" && pgErr.ConstraintName == "resources_published_check":
				log.Ctx(ctx).Error().Str("resource_id", resource.ResourceID.String()).
					Msg("published resource must be importable")
				return dberror.ErrInvalidInput.Msg("published resource must be importable")
			}
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to update resource")
		return dberror.ErrDatabase.Err(errDb)
	}
	return nil
}

func (mm *metadataManager) DeleteResource(ctx context.Context, resourceID uuid.UUID) apperrors.Error {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return err
	}

	query := `
		DELETE FROM resources
		WHERE resource_id = $1 AND tenant_id = $2;
	`

	result, errDb := mm.conn().ExecContext(ctx, query, resourceID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to delete resource")
		return dberror.ErrDatabase.Err(errDb)
	}

	rowsAffected, errDb := result.RowsAffected()
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to retrieve result information")
		return dberror.ErrDatabase.Err(errDb)
	}
	if rowsAffected == 0 {
		log.Ctx(ctx).Info().Str("resource_id", resourceID.String()).Msg("resource not found")
	}
	return nil
}

// ListResourcesByOwner returns all resources of the given kind owned by the
// given user, in insertion order.
func (mm *metadataManager) ListResourcesByOwner(ctx context.Context, owner types.UserId, kind types.ResourceKind) ([]*models.Resource, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT resource_id, kind, owner_id, title, slug, importable, published, info, tenant_id, created_at, updated_at
		FROM resources
		WHERE owner_id = $1 AND kind = $2 AND tenant_id = $3
		ORDER BY created_at;
	`

	rows, errDb := mm.conn().QueryContext(ctx, query, owner, kind, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to list resources by owner")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	defer rows.Close()
	return collectResources(ctx, rows)
}

// ListPublishedResources returns all published resources of the given kind,
// in insertion order.
func (mm *metadataManager) ListPublishedResources(ctx context.Context, kind types.ResourceKind) ([]*models.Resource, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT resource_id, kind, owner_id, title, slug, importable, published, info, tenant_id, created_at, updated_at
		FROM resources
		WHERE published AND kind = $1 AND tenant_id = $2
		ORDER BY created_at;
	`

	rows, errDb := mm.conn().QueryContext(ctx, query, kind, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to list published resources")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	defer rows.Close()
	return collectResources(ctx, rows)
}

// GetResourceByOwnerAndSlug resolves a slug link: the owner plus the slug of
// one of their resources of the given kind.
func (mm *metadataManager) GetResourceByOwnerAndSlug(ctx context.Context, owner types.UserId, kind types.ResourceKind, slug string) (*models.Resource, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if slug == "" {
		return nil, dberror.ErrInvalidInput.Msg("slug cannot be empty")
	}

	query := `
		SELECT resource_id, kind, owner_id, title, slug, importable, published, info, tenant_id, created_at, updated_at
		FROM resources
		WHERE owner_id = $1 AND kind = $2 AND slug = $3 AND tenant_id = $4;
	`

	row := mm.conn().QueryRowContext(ctx, query, owner, kind, slug, tenantID)
	resource, errDb := scanResource(row)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("slug", slug).Str("owner_id", string(owner)).Msg("resource not found")
			return nil, dberror.ErrNotFound.Msg("resource not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to retrieve resource by slug")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return resource, nil
}

// ResourceSlugExists reports whether any resource of the owner and kind other
// than excludeID carries the exact slug, regardless of importable state. This
// backs the explicit set-slug conflict check.
func (mm *metadataManager) ResourceSlugExists(ctx context.Context, owner types.UserId, kind types.ResourceKind, slug string, excludeID uuid.UUID) (bool, apperrors.Error) {
	return mm.slugExists(ctx, owner, kind, slug, excludeID, false)
}

// ImportableSlugExists reports whether an importable resource of the owner
// and kind other than excludeID carries the exact slug. This backs the
// unique-slug probe loop.
func (mm *metadataManager) ImportableSlugExists(ctx context.Context, owner types.UserId, kind types.ResourceKind, slug string, excludeID uuid.UUID) (bool, apperrors.Error) {
	return mm.slugExists(ctx, owner, kind, slug, excludeID, true)
}

func (mm *metadataManager) slugExists(ctx context.Context, owner types.UserId, kind types.ResourceKind, slug string, excludeID uuid.UUID, importableOnly bool) (bool, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return false, err
	}
	if slug == "" {
		return false, dberror.ErrInvalidInput.Msg("slug cannot be empty")
	}

	query := `
		SELECT COUNT(*)
		FROM resources
		WHERE owner_id = $1 AND kind = $2 AND slug = $3 AND tenant_id = $4
		AND resource_id != $5 AND (importable OR NOT $6);
	`

	var count int
	errDb := mm.conn().QueryRowContext(ctx, query, owner, kind, slug, tenantID, excludeID, importableOnly).Scan(&count)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Str("slug", slug).Msg("failed to check slug existence")
		return false, dberror.ErrDatabase.Err(errDb)
	}
	return count != 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (*models.Resource, error) {
	resource := &models.Resource{}
	var slug sql.NullString
	err := row.Scan(
		&resource.ResourceID, &resource.Kind, &resource.OwnerID, &resource.Title,
		&slug, &resource.Importable, &resource.Published, &resource.Info,
		&resource.TenantID, &resource.CreatedAt, &resource.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if slug.Valid {
		resource.Slug = slug.String
	}
	return resource, nil
}

func collectResources(ctx context.Context, rows *sql.Rows) ([]*models.Resource, apperrors.Error) {
	var resources []*models.Resource
	for rows.Next() {
		resource, errDb := scanResource(rows)
		if errDb != nil {
			log.Ctx(ctx).Error().Err(errDb).Msg("failed to scan resource row")
			return nil, dberror.ErrDatabase.Err(errDb)
		}
		resources = append(resources, resource)
	}
	if errDb := rows.Err(); errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to iterate resource rows")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return resources, nil
}
