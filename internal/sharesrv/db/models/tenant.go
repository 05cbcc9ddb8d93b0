package models

import (
	"time"

	"github.com/lumenworks/lumen-server/pkg/types"
)

/*
	Column      |           Type           | Collation | Nullable |      Default
--------------+--------------------------+-----------+----------+--------------------
 tenant_id    | character varying(10)    |           | not null |
 created_at   | timestamp with time zone |           |          | now()
Indexes:
    "tenants_pkey" PRIMARY KEY, btree (tenant_id)
*/

type Tenant struct {
	TenantID  types.TenantId `db:"tenant_id"`
	CreatedAt time.Time      `db:"created_at"`
}
