// Package db реализует сохранение персонажей в PostgreSQL.
//
// Ядро игры персистентностью не занимается: сюда попадают только
// плоские снимки состояния сессии, которые хост строит сам.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB оборачивает пул соединений pgx.
type DB struct {
	pool *pgxpool.Pool
}

// New подключается к PostgreSQL и возвращает хэндл БД.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close закрывает пул соединений.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool возвращает низкоуровневый пул pgx.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}
