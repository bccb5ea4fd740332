package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var (
	_ BookStorage = (*sqliteBookStorage)(nil)
	_ BookSession = (*sqliteBookSession)(nil)
)

// AUTOINCREMENT prevents reuse of the ids of deleted rows.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS books (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	title  TEXT NOT NULL,
	author TEXT NOT NULL,
	rating INTEGER
)`

type sqliteBookStorage struct {
	logger *zap.Logger
	db     *sql.DB
}

type sqliteBookSession struct {
	logger *zap.Logger
	conn   *sql.Conn
}

// GetSQLiteClient opens the database file, configures the pool and
// makes sure the books table exists.
func GetSQLiteClient(ctx context.Context, config *SQLiteConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+config.FilePath+"?mode=rwc&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open the database: %v", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach the database: %v", err)
	}

	if _, err = db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up books table: %v", err)
	}
	return db, nil
}

// NewSQLiteBookStorage provides an instance of sqlite-based book storage.
func NewSQLiteBookStorage(logger *zap.Logger, db *sql.DB) BookStorage {
	return &sqliteBookStorage{logger: logger, db: db}
}

// Acquire reserves a dedicated connection from the pool.
func (ss *sqliteBookStorage) Acquire(ctx context.Context) (BookSession, error) {
	conn, err := ss.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &sqliteBookSession{logger: ss.logger, conn: conn}, nil
}

// Close closes the database and prevents new sessions.
func (ss *sqliteBookStorage) Close() error {
	return ss.db.Close()
}

// Release returns the connection to the pool.
func (s *sqliteBookSession) Release() {
	if err := s.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		s.logger.Error("sqlite: failed to release connection", zap.Error(err))
	}
}

func (s *sqliteBookSession) List(ctx context.Context, offset, limit int) ([]Book, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, title, author, rating FROM books ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
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

func (s *sqliteBookSession) Count(ctx context.Context) (int, error) {
	var total int
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&total)
	return total, err
}

func (s *sqliteBookSession) GetOne(ctx context.Context, id int64) (Book, error) {
	var b Book
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, title, author, rating FROM books WHERE id = ?`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.Rating)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, ErrBookNotFound
	}
	return b, err
}

func (s *sqliteBookSession) Add(ctx context.Context, book *Book) error {
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO books (title, author, rating) VALUES (?, ?, ?)`, book.Title, book.Author, book.Rating)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	book.ID = id
	return nil
}

func (s *sqliteBookSession) Update(ctx context.Context, book Book) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE books SET title = ?, author = ?, rating = ? WHERE id = ?`, book.Title, book.Author, book.Rating, book.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *sqliteBookSession) Delete(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// checkAffected reports ErrBookNotFound when a statement touched no row.
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}
