// Package pg implementa core.Repository sobre PostgreSQL usando pgx.
package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quipulabs/centinela/internal/store/core"
)

// querier es el subset común de pgxpool.Pool y pgx.Tx que usan las queries.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store implementa core.Repository. Fuera de WithTx opera directo sobre el
// pool; dentro, sobre la transacción.
type Store struct {
	pool *pgxpool.Pool
	db   querier
	now  func() time.Time
}

// Config ajusta el pool de conexiones.
type Config struct {
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration

	// Location es la zona horaria autoritativa para created_at/updated_at.
	// Default: UTC.
	Location *time.Location
}

// New abre el pool contra el DSN dado y hace un ping de arranque.
func New(ctx context.Context, dsn string, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
		pcfg.MaxConnIdleTime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Store{
		pool: pool,
		db:   pool,
		now:  func() time.Time { return time.Now().In(loc) },
	}, nil
}

// Ping verifica la conexión.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Pool expone el pool subyacente para métricas.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// WithTx corre fn contra un Store ligado a una transacción.
// El rollback diferido garantiza que una cancelación o panic a mitad de
// camino no deje estado parcial visible.
func (s *Store) WithTx(ctx context.Context, fn func(core.Repository) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // no-op después de un commit exitoso

	txStore := &Store{pool: s.pool, db: tx, now: s.now}
	if err := fn(txStore); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// isUniqueViolation reconoce la violación de unique index de postgres.
// Es la señal autoritativa de duplicado: el chequeo en el service puede
// perder una carrera, el índice no.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ core.Repository = (*Store)(nil)
