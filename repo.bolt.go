package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

var (
	_ BookStorage = (*boltBookStorage)(nil)
	_ BookSession = (*boltBookSession)(nil)
)

type boltBookStorage struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// boltBookSession shares the database handle. Each operation
// runs into its own transaction so there is nothing to release.
type boltBookSession struct {
	*boltBookStorage
}

// GetBoltDBClient setup the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *BoltDBConfig) (*bolt.DB, error) {
	db, err := bolt.Open(config.FilePath, 0o600, &bolt.Options{Timeout: config.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltBookStorage provides an instance of bolt-based book storage.
func NewBoltBookStorage(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) BookStorage {
	return &boltBookStorage{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// itob returns an 8-byte big endian representation of the id. This
// keeps the bucket keys sorted by ascending id for cursor iteration.
func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

// Acquire provides a session over the shared bolt database.
func (bs *boltBookStorage) Acquire(ctx context.Context) (BookSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &boltBookSession{bs}, nil
}

// Close shuts down the bolt-based book storage.
func (bs *boltBookStorage) Close() error {
	return bs.client.Close()
}

func (s *boltBookSession) Release() {}

// Add inserts a new book record with the next bucket sequence as id.
func (s *boltBookSession) Add(_ context.Context, book *Book) error {
	return s.client.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(s.config.BucketName))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		book.ID = int64(seq)
		bookBytes, err := json.Marshal(book)
		if err != nil {
			return err
		}
		return b.Put(itob(book.ID), bookBytes)
	})
}

// GetOne retrieves a book record based on its ID from boltdb store.
func (s *boltBookSession) GetOne(_ context.Context, id int64) (Book, error) {
	var book Book
	// initialize a readable transaction.
	tx, err := s.client.Begin(false)
	if err != nil {
		return book, err
	}
	defer tx.Rollback()

	result := tx.Bucket([]byte(s.config.BucketName)).Get(itob(id))
	if result == nil {
		return book, ErrBookNotFound
	}
	err = json.Unmarshal(result, &book)
	return book, err
}

// Delete removes a book record based on its ID from boltdb store.
func (s *boltBookSession) Delete(_ context.Context, id int64) error {
	return s.client.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(s.config.BucketName))
		if b.Get(itob(id)) == nil {
			return ErrBookNotFound
		}
		return b.Delete(itob(id))
	})
}

// Update replaces an existing book record data.
func (s *boltBookSession) Update(_ context.Context, book Book) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return s.client.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(s.config.BucketName))
		if b.Get(itob(book.ID)) == nil {
			return ErrBookNotFound
		}
		return b.Put(itob(book.ID), bookBytes)
	})
}

// List walks the bucket in key order, skipping offset books.
func (s *boltBookSession) List(_ context.Context, offset, limit int) ([]Book, error) {
	tx, err := s.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Create a cursor on the books' bucket.
	c := tx.Bucket([]byte(s.config.BucketName)).Cursor()

	books := []Book{}
	skipped := 0
	for k, v := c.First(); k != nil && len(books) < limit; k, v = c.Next() {
		if skipped < offset {
			skipped++
			continue
		}
		var book Book
		if err = json.Unmarshal(v, &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

// Count returns the number of keys into the books' bucket.
func (s *boltBookSession) Count(_ context.Context) (int, error) {
	tx, err := s.client.Begin(false)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	return tx.Bucket([]byte(s.config.BucketName)).Stats().KeyN, nil
}
