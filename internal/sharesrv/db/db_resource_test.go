package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/dberror"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/models"
	"github.com/lumenworks/lumen-server/internal/sharesrv/sharecommon"
	"github.com/lumenworks/lumen-server/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateResource(t *testing.T) {
	// Initialize context with logger and database connection
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	tenantID := types.TenantId("TABCDE")
	ctx = sharecommon.SetTenantIdInContext(ctx, tenantID)

	err := DB(ctx).CreateTenant(ctx, tenantID)
	assert.NoError(t, err)
	defer DB(ctx).DeleteTenant(ctx, tenantID)

	var info pgtype.JSONB
	require.NoError(t, info.Set(`{"name": "Quarterly Report"}`))

	resource := models.Resource{
		Kind:    types.ResourceKindBoard,
		OwnerID: "alice",
		Title:   "Quarterly Report",
		Info:    info,
	}
	err = DB(ctx).CreateResource(ctx, &resource)
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, resource.ResourceID)
	defer DB(ctx).DeleteResource(ctx, resource.ResourceID)

	// A new resource has no slug and is neither importable nor published
	retrieved, err := DB(ctx).GetResource(ctx, resource.ResourceID)
	require.NoError(t, err)
	assert.Equal(t, resource.ResourceID, retrieved.ResourceID)
	assert.Equal(t, types.ResourceKindBoard, retrieved.Kind)
	assert.Equal(t, types.UserId("alice"), retrieved.OwnerID)
	assert.Empty(t, retrieved.Slug)
	assert.False(t, retrieved.Importable)
	assert.False(t, retrieved.Published)

	// Creating with an invalid kind should fail validation
	bad := models.Resource{
		Kind:    "notakind",
		OwnerID: "alice",
		Title:   "Bad",
	}
	err = DB(ctx).CreateResource(ctx, &bad)
	assert.Error(t, err)
	assert.ErrorIs(t, err, dberror.ErrInvalidResource)

	// Missing tenant in context should fail
	noTenant := sharecommon.SetTenantIdInContext(ctx, "")
	err = DB(noTenant).CreateResource(noTenant, &resource)
	assert.Error(t, err)
	assert.ErrorIs(t, err, dberror.ErrMissingTenantID)
}

func TestUpdateResourceSlugUniqueness(t *testing.T) {
	// Initialize context with logger and database connection
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	tenantID := types.TenantId("TABCDE")
	ctx = sharecommon.SetTenantIdInContext(ctx, tenantID)

	err := DB(ctx).CreateTenant(ctx, tenantID)
	assert.NoError(t, err)
	defer DB(ctx).DeleteTenant(ctx, tenantID)

	first := models.Resource{
		Kind:       types.ResourceKindBoard,
		OwnerID:    "alice",
		Title:      "Report",
		Slug:       "report",
		Importable: true,
	}
	err = DB(ctx).CreateResource(ctx, &first)
	require.NoError(t, err)
	defer DB(ctx).DeleteResource(ctx, first.ResourceID)

	second := models.Resource{
		Kind:    types.ResourceKindBoard,
		OwnerID: "alice",
		Title:   "Report Two",
	}
	err = DB(ctx).CreateResource(ctx, &second)
	require.NoError(t, err)
	defer DB(ctx).DeleteResource(ctx, second.ResourceID)

	// Taking the same slug while importable violates the partial unique index
	second.Slug = "report"
	second.Importable = true
	err = DB(ctx).UpdateResource(ctx, &second)
	assert.Error(t, err)
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)

	// The same slug without importable is allowed; the index is partial
	second.Importable = false
	err = DB(ctx).UpdateResource(ctx, &second)
	assert.NoError(t, err)

	// Publishing without importable violates the published check
	second.Published = true
	err = DB(ctx).UpdateResource(ctx, &second)
	assert.Error(t, err)
	assert.ErrorIs(t, err, dberror.ErrInvalidInput)

	// An uppercase slug violates the slug format check
	second.Published = false
	second.Slug = "Report"
	err = DB(ctx).UpdateResource(ctx, &second)
	assert.Error(t, err)
	assert.ErrorIs(t, err, dberror.ErrInvalidInput)
}

func TestSlugExistenceChecks(t *testing.T) {
	// Initialize context with logger and database connection
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	tenantID := types.TenantId("TABCDE")
	ctx = sharecommon.SetTenantIdInContext(ctx, tenantID)

	err := DB(ctx).CreateTenant(ctx, tenantID)
	assert.NoError(t, err)
	defer DB(ctx).DeleteTenant(ctx, tenantID)

	// One importable holder and one non-importable holder of distinct slugs
	importable := models.Resource{
		Kind:       types.ResourceKindBoard,
		OwnerID:    "alice",
		Title:      "Report",
		Slug:       "report",
		Importable: true,
	}
	err = DB(ctx).CreateResource(ctx, &importable)
	require.NoError(t, err)
	defer DB(ctx).DeleteResource(ctx, importable.ResourceID)

	draft := models.Resource{
		Kind:    types.ResourceKindBoard,
		OwnerID: "alice",
		Title:   "Draft",
		Slug:    "draft",
	}
	err = DB(ctx).CreateResource(ctx, &draft)
	require.NoError(t, err)
	defer DB(ctx).DeleteResource(ctx, draft.ResourceID)

	// The unfiltered check sees both slugs
	exists, err := DB(ctx).ResourceSlugExists(ctx, "alice", types.ResourceKindBoard, "report", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = DB(ctx).ResourceSlugExists(ctx, "alice", types.ResourceKindBoard, "draft", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, exists)

	// The importable-scoped check sees only the importable holder
	exists, err = DB(ctx).ImportableSlugExists(ctx, "alice", types.ResourceKindBoard, "report", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = DB(ctx).ImportableSlugExists(ctx, "alice", types.ResourceKindBoard, "draft", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, exists)

	// Excluding the holder's own row frees the slug
	exists, err = DB(ctx).ImportableSlugExists(ctx, "alice", types.ResourceKindBoard, "report", importable.ResourceID)
	require.NoError(t, err)
	assert.False(t, exists)

	// Other owners and other kinds do not collide
	exists, err = DB(ctx).ImportableSlugExists(ctx, "bob", types.ResourceKindBoard, "report", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = DB(ctx).ImportableSlugExists(ctx, "alice", types.ResourceKindDocument, "report", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListAndResolveResources(t *testing.T) {
	// Initialize context with logger and database connection
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	tenantID := types.TenantId("TABCDE")
	ctx = sharecommon.SetTenantIdInContext(ctx, tenantID)

	err := DB(ctx).CreateTenant(ctx, tenantID)
	assert.NoError(t, err)
	defer DB(ctx).DeleteTenant(ctx, tenantID)

	first := models.Resource{
		Kind:    types.ResourceKindBoard,
		OwnerID: "alice",
		Title:   "First",
	}
	err = DB(ctx).CreateResource(ctx, &first)
	require.NoError(t, err)
	defer DB(ctx).DeleteResource(ctx, first.ResourceID)

	second := models.Resource{
		Kind:       types.ResourceKindBoard,
		OwnerID:    "alice",
		Title:      "Second",
		Slug:       "second",
		Importable: true,
		Published:  true,
	}
	err = DB(ctx).CreateResource(ctx, &second)
	require.NoError(t, err)
	defer DB(ctx).DeleteResource(ctx, second.ResourceID)

	resources, err := DB(ctx).ListResourcesByOwner(ctx, "alice", types.ResourceKindBoard)
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, "First", resources[0].Title)
	assert.Equal(t, "Second", resources[1].Title)

	published, err := DB(ctx).ListPublishedResources(ctx, types.ResourceKindBoard)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, second.ResourceID, published[0].ResourceID)

	resolved, err := DB(ctx).GetResourceByOwnerAndSlug(ctx, "alice", types.ResourceKindBoard, "second")
	require.NoError(t, err)
	assert.Equal(t, second.ResourceID, resolved.ResourceID)

	_, err = DB(ctx).GetResourceByOwnerAndSlug(ctx, "alice", types.ResourceKindBoard, "missing")
	assert.Error(t, err)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}
