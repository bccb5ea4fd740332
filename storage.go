package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Supported storage drivers.
const (
	SQLiteDriver   = "sqlite"
	PostgresDriver = "postgres"
	BoltDBDriver   = "bolt"
	RedisDriver    = "redis"
)

// BookStorage is the persistence layer holding books. A session must be
// acquired for each unit of work and released once done.
type BookStorage interface {
	Acquire(ctx context.Context) (BookSession, error)
	Close() error
}

// BookSession defines possible operations on book entity through a
// store handle scoped to a single request.
type BookSession interface {
	// List returns at most limit books ordered by ascending id, skipping
	// the first offset ones. An offset beyond the last book yields no books.
	List(ctx context.Context, offset, limit int) ([]Book, error)
	Count(ctx context.Context) (int, error)
	GetOne(ctx context.Context, id int64) (Book, error)
	// Add inserts the book and sets its store-assigned id.
	Add(ctx context.Context, book *Book) error
	Update(ctx context.Context, book Book) error
	Delete(ctx context.Context, id int64) error
	Release()
}

// NewBookStorage opens the storage backend selected by the configuration.
func NewBookStorage(ctx context.Context, logger *zap.Logger, config *Config) (BookStorage, error) {
	switch config.Store.Driver {
	case SQLiteDriver:
		db, err := GetSQLiteClient(ctx, &config.SQLite)
		if err != nil {
			return nil, err
		}
		return NewSQLiteBookStorage(logger, db), nil
	case PostgresDriver:
		pool, err := GetPostgresClient(ctx, &config.Postgres)
		if err != nil {
			return nil, err
		}
		return NewPostgresBookStorage(logger, &config.Postgres, pool), nil
	case BoltDBDriver:
		db, err := GetBoltDBClient(&config.BoltDB)
		if err != nil {
			return nil, err
		}
		return NewBoltBookStorage(logger, &config.BoltDB, db), nil
	case RedisDriver:
		client, err := GetRedisClient(ctx, &config.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisBookStorage(logger, &config.Redis, client), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", config.Store.Driver)
	}
}
