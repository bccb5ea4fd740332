package main

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// This file contains mocks definitions needed to perform unit tests.

// MockBookStorage implements a fake BookStorage.
type MockBookStorage struct {
	AcquireFunc func(ctx context.Context) (BookSession, error)
	CloseFunc   func() error
}

// Acquire mocks the behavior of opening a store session.
func (m *MockBookStorage) Acquire(ctx context.Context) (BookSession, error) {
	return m.AcquireFunc(ctx)
}

// Close mocks the behavior of closing the store.
func (m *MockBookStorage) Close() error {
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc()
}

// MockBookSession implements a fake BookSession and
// records whether it has been released.
type MockBookSession struct {
	ListFunc   func(ctx context.Context, offset, limit int) ([]Book, error)
	CountFunc  func(ctx context.Context) (int, error)
	GetOneFunc func(ctx context.Context, id int64) (Book, error)
	AddFunc    func(ctx context.Context, book *Book) error
	UpdateFunc func(ctx context.Context, book Book) error
	DeleteFunc func(ctx context.Context, id int64) error
	Released   int
}

// List mocks the behavior of reading a range of books.
func (m *MockBookSession) List(ctx context.Context, offset, limit int) ([]Book, error) {
	return m.ListFunc(ctx, offset, limit)
}

// Count mocks the behavior of counting all books.
func (m *MockBookSession) Count(ctx context.Context) (int, error) {
	return m.CountFunc(ctx)
}

// GetOne mocks the behavior of retrieving a book by the repository.
func (m *MockBookSession) GetOne(ctx context.Context, id int64) (Book, error) {
	return m.GetOneFunc(ctx, id)
}

// Add mocks the behavior of book creation by the repository.
func (m *MockBookSession) Add(ctx context.Context, book *Book) error {
	return m.AddFunc(ctx, book)
}

// Update mocks the behavior of updating a book by the repository.
func (m *MockBookSession) Update(ctx context.Context, book Book) error {
	return m.UpdateFunc(ctx, book)
}

// Delete mocks the behavior of deleting a book by the repository.
func (m *MockBookSession) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

// Release counts the number of release calls.
func (m *MockBookSession) Release() {
	m.Released++
}

// NewMockStorageWith returns a storage which always hands out the given session.
func NewMockStorageWith(session *MockBookSession) *MockBookStorage {
	return &MockBookStorage{
		AcquireFunc: func(ctx context.Context) (BookSession, error) {
			return session, nil
		},
	}
}

// MockBookService implements a fake BookServiceProvider.
type MockBookService struct {
	ListBooksFunc    func(ctx context.Context, page int) (Shelf, error)
	UpdateRatingFunc func(ctx context.Context, id int64, update RatingUpdate) (int64, error)
	DeleteBookFunc   func(ctx context.Context, id int64, page int) (Shelf, error)
	CreateBookFunc   func(ctx context.Context, request NewBookRequest, page int) (int64, Shelf, error)
}

func (m *MockBookService) ListBooks(ctx context.Context, page int) (Shelf, error) {
	return m.ListBooksFunc(ctx, page)
}

func (m *MockBookService) UpdateRating(ctx context.Context, id int64, update RatingUpdate) (int64, error) {
	return m.UpdateRatingFunc(ctx, id, update)
}

func (m *MockBookService) DeleteBook(ctx context.Context, id int64, page int) (Shelf, error) {
	return m.DeleteBookFunc(ctx, id, page)
}

func (m *MockBookService) CreateBook(ctx context.Context, request NewBookRequest, page int) (int64, Shelf, error) {
	return m.CreateBookFunc(ctx, request, page)
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// NewTicker satisfies the TickerClocker interface.
func (mck *MockClocker) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}

// newTestAPIHandler builds an api handler with mocked clock and ids.
func newTestAPIHandler(bs BookServiceProvider) *APIHandler {
	clock := NewMockClocker()
	return NewAPIHandler(
		zap.NewNop(),
		&Config{OpsEndpointsEnable: true, Store: StoreConfig{Driver: SQLiteDriver}},
		&Statistics{started: clock.Now(), driver: SQLiteDriver},
		clock,
		NewMockUIDHandler("a4ff7e96-1d4b-4a3c-9a31-0b27c5c6b5f1", false),
		bs,
	)
}

func intPtr(v int) *int {
	return &v
}

func strPtr(s string) *string {
	return &s
}
