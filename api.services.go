package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type BookServiceProvider interface {
	ListBooks(ctx context.Context, page int) (Shelf, error)
	UpdateRating(ctx context.Context, id int64, update RatingUpdate) (int64, error)
	DeleteBook(ctx context.Context, id int64, page int) (Shelf, error)
	CreateBook(ctx context.Context, request NewBookRequest, page int) (int64, Shelf, error)
}

type BookService struct {
	logger  *zap.Logger
	config  *Config
	storage BookStorage
}

func NewBookService(logger *zap.Logger, config *Config, storage BookStorage) BookServiceProvider {
	return &BookService{
		logger:  logger,
		config:  config,
		storage: storage,
	}
}

// readShelf loads the books of a given page and the total number of books.
func readShelf(ctx context.Context, session BookSession, page int) (Shelf, error) {
	shelf := Shelf{Page: page}
	offset, limit := ShelfBounds(page)
	books, err := session.List(ctx, offset, limit)
	if err != nil {
		return shelf, fmt.Errorf("failed to list books: %w", err)
	}
	total, err := session.Count(ctx)
	if err != nil {
		return shelf, fmt.Errorf("failed to count books: %w", err)
	}
	shelf.Books = nonNilBooks(books)
	shelf.Total = total
	return shelf, nil
}

// ListBooks returns the shelf of the given page. It fails
// with ErrEmptyShelf when the page does not hold any book.
func (bs *BookService) ListBooks(ctx context.Context, page int) (Shelf, error) {
	session, err := bs.storage.Acquire(ctx)
	if err != nil {
		return Shelf{Page: page}, fmt.Errorf("service: failed to acquire store session: %w", err)
	}
	defer session.Release()

	shelf, err := readShelf(ctx, session, page)
	if err != nil {
		return shelf, fmt.Errorf("service: %w", err)
	}
	if len(shelf.Books) == 0 {
		return shelf, ErrEmptyShelf
	}
	return shelf, nil
}

// UpdateRating sets the rating of an existing book when the update carries
// one. Without rating nothing is written but the call still succeeds.
func (bs *BookService) UpdateRating(ctx context.Context, id int64, update RatingUpdate) (int64, error) {
	session, err := bs.storage.Acquire(ctx)
	if err != nil {
		return id, fmt.Errorf("service: failed to acquire store session: %w", err)
	}
	defer session.Release()

	book, err := session.GetOne(ctx, id)
	if err != nil {
		return id, fmt.Errorf("service: failed to get book: %w", err)
	}

	if !update.Rating.Set {
		bs.logger.Debug("service: no rating provided", zap.Int64("book.id", id))
		return book.ID, nil
	}

	rating, err := update.Rating.Value()
	if err != nil {
		return book.ID, fmt.Errorf("service: %w", err)
	}
	book.Rating = &rating

	if err = session.Update(ctx, book); err != nil {
		return book.ID, fmt.Errorf("service: failed to update book: %w", err)
	}
	return book.ID, nil
}

// DeleteBook removes an existing book then provides the refreshed shelf of the given page.
func (bs *BookService) DeleteBook(ctx context.Context, id int64, page int) (Shelf, error) {
	session, err := bs.storage.Acquire(ctx)
	if err != nil {
		return Shelf{Page: page}, fmt.Errorf("service: failed to acquire store session: %w", err)
	}
	defer session.Release()

	if _, err = session.GetOne(ctx, id); err != nil {
		return Shelf{Page: page}, fmt.Errorf("service: failed to get book: %w", err)
	}

	if err = session.Delete(ctx, id); err != nil {
		return Shelf{Page: page}, fmt.Errorf("service: failed to delete book: %w", err)
	}

	shelf, err := readShelf(ctx, session, page)
	if err != nil {
		return shelf, fmt.Errorf("service: %w", err)
	}
	return shelf, nil
}

// CreateBook validates and stores a new book then provides its
// id along with the refreshed shelf of the given page.
func (bs *BookService) CreateBook(ctx context.Context, request NewBookRequest, page int) (int64, Shelf, error) {
	book, err := request.ToBook()
	if err != nil {
		return 0, Shelf{Page: page}, fmt.Errorf("service: %w", err)
	}

	session, err := bs.storage.Acquire(ctx)
	if err != nil {
		return 0, Shelf{Page: page}, fmt.Errorf("service: failed to acquire store session: %w", err)
	}
	defer session.Release()

	if err = session.Add(ctx, &book); err != nil {
		return 0, Shelf{Page: page}, fmt.Errorf("service: failed to add book: %w", err)
	}

	shelf, err := readShelf(ctx, session, page)
	if err != nil {
		return book.ID, shelf, fmt.Errorf("service: %w", err)
	}
	return book.ID, shelf, nil
}
