package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/dberror"
	"github.com/lumenworks/lumen-server/pkg/types"
)

/*
	Column      |           Type           | Collation | Nullable |      Default
--------------+--------------------------+-----------+----------+--------------------
 resource_id  | uuid                     |           | not null | uuid_generate_v4()
 kind         | character varying(24)    |           | not null |
 owner_id     | character varying(128)   |           | not null |
 title        | character varying(255)   |           | not null |
 slug         | character varying(255)   |           |          |
 importable   | boolean                  |           | not null | false
 published    | boolean                  |           | not null | false
 info         | jsonb                    |           |          |
 tenant_id    | character varying(10)    |           | not null |
 created_at   | timestamp with time zone |           |          | now()
 updated_at   | timestamp with time zone |           |          | now()
Indexes:
    "resources_pkey" PRIMARY KEY, btree (resource_id, tenant_id)
    "resources_owner_kind_slug_key" UNIQUE, btree (owner_id, kind, slug, tenant_id) WHERE importable
Check constraints:
    "resources_slug_check" CHECK (slug IS NULL OR slug::text ~ '^[a-z0-9-]+$'::text)
    "resources_published_check" CHECK (NOT published OR importable)
Referenced by:
    TABLE "share_grants" CONSTRAINT "share_grants_resource_id_tenant_id_fkey" FOREIGN KEY (resource_id, tenant_id) REFERENCES resources(resource_id, tenant_id) ON DELETE CASCADE
Triggers:
    update_resources_updated_at BEFORE UPDATE ON resources FOR EACH ROW EXECUTE FUNCTION set_updated_at()
*/

// Resource is a sharable entity: a board, document or visualization saved by
// a user. Slug is empty until first assignment and is never cleared once set.
// The partial unique index backs the unique-slug guarantee for importable
// resources; the published check enforces published ⇒ importable at the
// storage layer.
type Resource struct {
	ResourceID uuid.UUID          `db:"resource_id"`
	Kind       types.ResourceKind `db:"kind"`
	OwnerID    types.UserId       `db:"owner_id"`
	Title      string             `db:"title"`
	Slug       string             `db:"slug"` // empty = unassigned
	Importable bool               `db:"importable"`
	Published  bool               `db:"published"`
	Info       pgtype.JSONB       `db:"info"` // JSONB
	TenantID   types.TenantId     `db:"tenant_id"`
	CreatedAt  time.Time          `db:"created_at"`
	UpdatedAt  time.Time          `db:"updated_at"`

	// SlugPinned marks the staged slug as explicitly chosen rather than
	// generated. Never persisted; a uniqueness race on a pinned slug is a
	// conflict, not a cue to regenerate.
	SlugPinned bool `db:"-"`
}

func (r *Resource) Validate() error {
	if !r.Kind.IsValid() {
		return dberror.ErrInvalidResource.Msg("kind is invalid")
	}
	if r.OwnerID == types.AnonymousUser {
		return dberror.ErrInvalidResource.Msg("owner_id is required")
	}
	if r.Title == "" {
		return dberror.ErrInvalidResource.Msg("title is required")
	}
	return nil
}
