package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	_ BookStorage = (*redisBookStorage)(nil)
	_ BookSession = (*redisBookSession)(nil)
)

// Books are stored as json values into a hash keyed by id. A sorted
// set scored by id keeps the ascending ordering used for listing and
// a counter provides never reused ids.
type redisBookStorage struct {
	logger *zap.Logger
	client *redis.Client
	keys   redisKeys
}

type redisKeys struct {
	books string
	index string
	seq   string
}

// redisBookSession pins a single connection of the pool.
type redisBookSession struct {
	logger *zap.Logger
	conn   *redis.Conn
	keys   redisKeys
}

// NewRedisBookStorage provides an instance of redis-based book storage.
func NewRedisBookStorage(logger *zap.Logger, config *RedisConfig, client *redis.Client) BookStorage {
	return &redisBookStorage{
		logger: logger,
		client: client,
		keys: redisKeys{
			books: config.KeyPrefix + ":books",
			index: config.KeyPrefix + ":books:ids",
			seq:   config.KeyPrefix + ":books:seq",
		},
	}
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(ctx context.Context, config *RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Host, config.Port),
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolSize:     config.PoolSize,
		PoolTimeout:  config.PoolTimeout,
		Password:     config.Password,
		Username:     config.Username,
		DB:           config.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(ctx).Result(); pong != "PONG" || err != nil {
		client.Close()
		return nil, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// Acquire reserves a connection from the client pool.
func (rs *redisBookStorage) Acquire(ctx context.Context) (BookSession, error) {
	conn := rs.client.Conn()
	if err := conn.Ping(ctx).Err(); err != nil {
		conn.Close()
		return nil, err
	}
	return &redisBookSession{logger: rs.logger, conn: conn, keys: rs.keys}, nil
}

// Close shuts down the redis client.
func (rs *redisBookStorage) Close() error {
	return rs.client.Close()
}

// Release gives back the pinned connection to the pool.
func (s *redisBookSession) Release() {
	if err := s.conn.Close(); err != nil {
		s.logger.Error("redis: failed to release connection", zap.Error(err))
	}
}

// Add inserts a new book record.
func (s *redisBookSession) Add(ctx context.Context, book *Book) error {
	id, err := s.conn.Incr(ctx, s.keys.seq).Result()
	if err != nil {
		return err
	}
	book.ID = id
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	field := strconv.FormatInt(id, 10)
	_, err = s.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.keys.books, field, bookBytes)
		pipe.ZAdd(ctx, s.keys.index, redis.Z{Score: float64(id), Member: field})
		return nil
	})
	return err
}

// GetOne retrieves a book record based on its ID.
func (s *redisBookSession) GetOne(ctx context.Context, id int64) (Book, error) {
	var book Book
	bookJSONString, err := s.conn.HGet(ctx, s.keys.books, strconv.FormatInt(id, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return book, ErrBookNotFound
	}
	if err != nil {
		return book, err
	}
	err = json.Unmarshal([]byte(bookJSONString), &book)
	return book, err
}

// Delete removes a book record based on its ID.
func (s *redisBookSession) Delete(ctx context.Context, id int64) error {
	field := strconv.FormatInt(id, 10)
	var hdel *redis.IntCmd
	_, err := s.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		hdel = pipe.HDel(ctx, s.keys.books, field)
		pipe.ZRem(ctx, s.keys.index, field)
		return nil
	})
	if err != nil {
		return err
	}
	if hdel.Val() == 0 {
		return ErrBookNotFound
	}
	return nil
}

// Update replaces existing book record data.
func (s *redisBookSession) Update(ctx context.Context, book Book) error {
	field := strconv.FormatInt(book.ID, 10)
	exists, err := s.conn.HExists(ctx, s.keys.books, field).Result()
	if err != nil {
		return err
	}
	if !exists {
		return ErrBookNotFound
	}
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return s.conn.HSet(ctx, s.keys.books, field, bookBytes).Err()
}

// List reads a range of ids from the sorted index then fetches their records.
func (s *redisBookSession) List(ctx context.Context, offset, limit int) ([]Book, error) {
	books := []Book{}
	if limit <= 0 {
		return books, nil
	}
	ids, err := s.conn.ZRange(ctx, s.keys.index, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return books, nil
	}
	values, err := s.conn.HMGet(ctx, s.keys.books, ids...).Result()
	if err != nil {
		return nil, err
	}
	for i, value := range values {
		bookJSONString, ok := value.(string)
		if !ok {
			s.logger.Warn("redis: indexed book without record", zap.String("book.id", ids[i]))
			continue
		}
		var book Book
		if err = json.Unmarshal([]byte(bookJSONString), &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

// Count returns the cardinality of the ids index.
func (s *redisBookSession) Count(ctx context.Context) (int, error) {
	n, err := s.conn.ZCard(ctx, s.keys.index).Result()
	return int(n), err
}
