package dbmanager

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"
)

// ScopedDb hands out tenant-scoped connections for the sharing data layer.
type ScopedDb interface {
	// Conn checks out a connection with all configured scopes reset.
	Conn(ctx context.Context) (ScopedConn, error)
}

// ScopedConn is a checked-out connection carrying session scopes. Scope names
// must be configured on the pool; the tenant scope backs row-level isolation
// of every sharing query.
type ScopedConn interface {
	// AddScopes sets the given scopes on the connection.
	AddScopes(ctx context.Context, scopes map[string]string) error
	// DropScopes resets the given scopes on the connection.
	DropScopes(ctx context.Context, scopes []string) error
	// AddScope sets a single scope to the given value.
	AddScope(ctx context.Context, scope, value string) error
	// DropScope resets a single scope.
	DropScope(ctx context.Context, scope string) error
	// DropAllScopes resets every configured scope.
	DropAllScopes(ctx context.Context) error
	// Conn returns the underlying connection.
	Conn() *sql.Conn
	// Close resets all scopes and returns the connection to the pool.
	Close(ctx context.Context)
}

// NewScopedDb creates the pool for the given backend. Only postgresql is
// supported.
func NewScopedDb(ctx context.Context, dbtype string, configuredScopes []string) ScopedDb {
	switch dbtype {
	case "postgresql":
		db, err := NewPostgresqlDb(configuredScopes)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to create postgresql pool")
			return nil
		}
		return db
	default:
		log.Ctx(ctx).Error().Str("dbtype", dbtype).Msg("unsupported database type")
	}
	return nil
}
