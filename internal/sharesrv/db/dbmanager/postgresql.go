// Package dbmanager provides the PostgreSQL connection pool used by the
// sharing data layer. Connections are request scoped: the caller checks one
// out, the tenant scope is applied with SET, and Close resets the scopes
// before returning the connection to the pool.
package dbmanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib"

	"github.com/lumenworks/lumen-server/internal/sharesrv/db/config"
	"github.com/rs/zerolog/log"
)

// postgresConn represents a single scoped connection to PostgreSQL.
type postgresConn struct {
	conn             *sql.Conn
	cancel           context.CancelFunc
	scopes           map[string]string
	configuredScopes []string
}

// postgresPool represents a pool of PostgreSQL database connections.
type postgresPool struct {
	configuredScopes []string
	db               *sql.DB
}

// NewPostgresqlDb creates a new PostgreSQL connection pool with the given
// configured scopes.
func NewPostgresqlDb(configuredScopes []string) (ScopedDb, error) {
	dsn := config.LumenSharesDsn()

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Error().Err(err).Msg("failed to open db")
		return nil, err
	}

	err = sqlDB.Ping()
	if err != nil {
		log.Error().Err(err).Msg("failed to ping db")
		return nil, err
	}

	return &postgresPool{
		configuredScopes: configuredScopes,
		db:               sqlDB,
	}, nil
}

// Conn returns a new scoped connection from the pool with lock and statement
// timeouts applied.
func (p *postgresPool) Conn(ctx context.Context) (ScopedConn, error) {
	ctx, cancel := context.WithCancel(ctx)

	conn, err := p.db.Conn(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to obtain connection")
		cancel()
		return nil, err
	}

	if _, err := conn.ExecContext(ctx, "SET lock_timeout = '5s'"); err != nil {
		log.Error().Err(err).Msg("failed to set lock timeout")
		cancel()
		conn.Close()
		return nil, err
	}
	if _, err := conn.ExecContext(ctx, "SET statement_timeout = '5s'"); err != nil {
		log.Error().Err(err).Msg("failed to set statement timeout")
		cancel()
		conn.Close()
		return nil, err
	}

	h := &postgresConn{
		configuredScopes: p.configuredScopes,
		scopes:           make(map[string]string),
		cancel:           cancel,
		conn:             conn,
	}

	// Clean up the scopes, just in case.
	if err := h.DropScopes(ctx, p.configuredScopes); err != nil {
		cancel()
		conn.Close()
		return nil, err
	}

	return h, nil
}

// Close cleans up the scopes and returns the connection back to the pool.
func (h *postgresConn) Close(ctx context.Context) {
	h.DropAllScopes(ctx)
	if h.cancel != nil {
		h.cancel()
	}
	if h.conn != nil {
		h.conn.Close()
	}
}

// isConfiguredScope checks if the given scope is configured for this
// connection. Scope names are interpolated into SET/RESET statements, so
// only configured names are ever accepted.
func (h *postgresConn) isConfiguredScope(scope string) bool {
	for _, s := range h.configuredScopes {
		if s == scope {
			return true
		}
	}
	return false
}

// AddScopes sets the given scopes on the connection.
func (h *postgresConn) AddScopes(ctx context.Context, scopes map[string]string) error {
	for scope, value := range scopes {
		if err := h.AddScope(ctx, scope, value); err != nil {
			return err
		}
	}
	return nil
}

// AddScope sets a single scope on the connection. SET cannot take bind
// parameters, so the value goes through set_config.
func (h *postgresConn) AddScope(ctx context.Context, scope, value string) error {
	if h.conn == nil {
		return nil
	}
	if !h.isConfiguredScope(scope) {
		return fmt.Errorf("scope %s is not configured", scope)
	}
	sqlCmd := "SELECT set_config($1, $2, false)"
	if _, err := h.conn.ExecContext(ctx, sqlCmd, scope, value); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("scope", scope).Msg("failed to set scope")
		return err
	}
	h.scopes[scope] = value
	return nil
}

// DropScopes resets the given scopes on the connection.
func (h *postgresConn) DropScopes(ctx context.Context, scopes []string) error {
	if h.conn == nil {
		log.Ctx(ctx).Error().Msg("no connection")
		return nil
	}
	for _, scope := range scopes {
		sqlCmd := fmt.Sprintf("RESET %s", scope)
		if _, err := h.conn.ExecContext(ctx, sqlCmd); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("scope", scope).Msg("failed to reset scope")
			return err
		}
		delete(h.scopes, scope)
	}
	return nil
}

// DropScope resets a single scope on the connection.
func (h *postgresConn) DropScope(ctx context.Context, scope string) error {
	return h.DropScopes(ctx, []string{scope})
}

// DropAllScopes resets all the configured scopes on the connection.
func (h *postgresConn) DropAllScopes(ctx context.Context) error {
	return h.DropScopes(ctx, h.configuredScopes)
}

// Conn returns the underlying connection of the postgresConn.
func (h *postgresConn) Conn() *sql.Conn {
	return h.conn
}
