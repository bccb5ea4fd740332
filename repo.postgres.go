package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var (
	_ BookStorage = (*postgresBookStorage)(nil)
	_ BookSession = (*postgresBookSession)(nil)
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS books (
	id     BIGSERIAL PRIMARY KEY,
	title  TEXT NOT NULL,
	author TEXT NOT NULL,
	rating INTEGER
)`

type postgresBookStorage struct {
	logger *zap.Logger
	pool   *pgxpool.Pool
	config *PostgresConfig
}

type postgresBookSession struct {
	conn    *pgxpool.Conn
	storage *postgresBookStorage
}

// GetPostgresClient creates the connection pool, checks the database
// can be reached and makes sure the books table exists.
func GetPostgresClient(ctx context.Context, config *PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(config.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn (%s): %v", redactDSN(config.DSN), err)
	}
	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}
	if config.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = config.MaxConnLifetime
	}
	if config.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = config.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool: %v", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %v", redactDSN(config.DSN), err)
	}

	if _, err = pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to set up books table: %v", err)
	}
	return pool, nil
}

// NewPostgresBookStorage provides an instance of postgres-based book storage.
func NewPostgresBookStorage(logger *zap.Logger, config *PostgresConfig, pool *pgxpool.Pool) BookStorage {
	return &postgresBookStorage{logger: logger, pool: pool, config: config}
}

// Acquire takes a connection out of the pool for the session lifetime.
func (ps *postgresBookStorage) Acquire(ctx context.Context) (BookSession, error) {
	conn, err := ps.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &postgresBookSession{conn: conn, storage: ps}, nil
}

// Close closes all connections of the pool.
func (ps *postgresBookStorage) Close() error {
	ps.pool.Close()
	return nil
}

func (s *postgresBookSession) Release() {
	s.conn.Release()
}

func (s *postgresBookSession) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storage.config.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storage.config.QueryTimeout)
}

func (s *postgresBookSession) List(ctx context.Context, offset, limit int) ([]Book, error) {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.conn.Query(timeoutCtx,
		`SELECT id, title, author, rating FROM books ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Rating); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (s *postgresBookSession) Count(ctx context.Context) (int, error) {
	var total int
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	err := s.conn.QueryRow(timeoutCtx, `SELECT COUNT(*) FROM books`).Scan(&total)
	return total, err
}

func (s *postgresBookSession) GetOne(ctx context.Context, id int64) (Book, error) {
	var b Book
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	err := s.conn.QueryRow(timeoutCtx,
		`SELECT id, title, author, rating FROM books WHERE id = $1`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.Rating)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrBookNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (s *postgresBookSession) Add(ctx context.Context, book *Book) error {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.conn.QueryRow(timeoutCtx,
		`INSERT INTO books (title, author, rating) VALUES ($1, $2, $3) RETURNING id`,
		book.Title, book.Author, book.Rating).Scan(&book.ID)
}

func (s *postgresBookSession) Update(ctx context.Context, book Book) error {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	tag, err := s.conn.Exec(timeoutCtx,
		`UPDATE books SET title = $1, author = $2, rating = $3 WHERE id = $4`,
		book.Title, book.Author, book.Rating, book.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (s *postgresBookSession) Delete(ctx context.Context, id int64) error {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	tag, err := s.conn.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBookNotFound
	}
	return nil
}

// redactDSN hides the credentials part of a connection string.
func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
