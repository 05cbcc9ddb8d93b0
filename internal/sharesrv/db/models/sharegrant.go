package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/dberror"
	"github.com/lumenworks/lumen-server/pkg/types"
)

/*
	Column      |           Type           | Collation | Nullable |      Default
--------------+--------------------------+-----------+----------+--------------------
 grant_id     | uuid                     |           | not null | uuid_generate_v4()
 resource_id  | uuid                     |           | not null |
 user_id      | character varying(128)   |           | not null |
 tenant_id    | character varying(10)    |           | not null |
 created_at   | timestamp with time zone |           |          | now()
Indexes:
    "share_grants_pkey" PRIMARY KEY, btree (grant_id, tenant_id)
    "share_grants_resource_id_user_id_key" UNIQUE CONSTRAINT, btree (resource_id, user_id, tenant_id)
Foreign-key constraints:
    "share_grants_resource_id_tenant_id_fkey" FOREIGN KEY (resource_id, tenant_id) REFERENCES resources(resource_id, tenant_id) ON DELETE CASCADE
*/

// ShareGrant associates one resource with one grantee. The unique constraint
// keeps at most one grant per (resource, grantee) pair.
type ShareGrant struct {
	GrantID    uuid.UUID      `db:"grant_id"`
	ResourceID uuid.UUID      `db:"resource_id"`
	UserID     types.UserId   `db:"user_id"`
	TenantID   types.TenantId `db:"tenant_id"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (g *ShareGrant) Validate() error {
	if g.ResourceID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("resource_id is required")
	}
	if g.UserID == types.AnonymousUser {
		return dberror.ErrInvalidInput.Msg("user_id is required")
	}
	return nil
}
