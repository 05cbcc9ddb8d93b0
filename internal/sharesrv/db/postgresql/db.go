// Description: This file contains the construction of the PostgreSQL-backed
// store for the sharing data layer.
package postgresql

import (
	"context"
	"database/sql"

	"github.com/lumenworks/lumen-server/internal/common/apperrors"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/dberror"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/dbmanager"
	"github.com/lumenworks/lumen-server/internal/sharesrv/sharecommon"
	"github.com/lumenworks/lumen-server/pkg/types"
	"github.com/rs/zerolog/log"
)

type lumenSharesDb struct {
	mm *metadataManager
	cm *connectionManager
}

func NewLumenSharesDb(c dbmanager.ScopedConn) (*metadataManager, *connectionManager) {
	h := &lumenSharesDb{}
	h.mm = newMetadataManager(c)
	h.cm = newConnectionManager(c)
	return h.mm, h.cm
}

type metadataManager struct {
	c dbmanager.ScopedConn
}

func newMetadataManager(c dbmanager.ScopedConn) *metadataManager {
	return &metadataManager{c: c}
}

func (mm *metadataManager) conn() *sql.Conn {
	return mm.c.Conn()
}

type connectionManager struct {
	c dbmanager.ScopedConn
}

func newConnectionManager(c dbmanager.ScopedConn) *connectionManager {
	return &connectionManager{c: c}
}

func (cm *connectionManager) AddScopes(ctx context.Context, scopes map[string]string) {
	if err := cm.c.AddScopes(ctx, scopes); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to add scopes")
	}
}

func (cm *connectionManager) AddScope(ctx context.Context, scope, value string) {
	if err := cm.c.AddScope(ctx, scope, value); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to add scope")
	}
}

func (cm *connectionManager) DropScopes(ctx context.Context, scopes []string) error {
	return cm.c.DropScopes(ctx, scopes)
}

func (cm *connectionManager) DropScope(ctx context.Context, scope string) error {
	return cm.c.DropScope(ctx, scope)
}

func (cm *connectionManager) DropAllScopes(ctx context.Context) error {
	return cm.c.DropAllScopes(ctx)
}

func (cm *connectionManager) Close(ctx context.Context) {
	cm.c.Close(ctx)
}

func tenantIdFromContext(ctx context.Context) (types.TenantId, apperrors.Error) {
	tenantID := sharecommon.TenantIdFromContext(ctx)
	if tenantID == "" {
		log.Ctx(ctx).Error().Msg("failed to retrieve tenant ID from context")
		return "", dberror.ErrMissingTenantID
	}
	return tenantID, nil
}
