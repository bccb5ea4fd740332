package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runBookStorageSuite exercises a storage backend which starts empty.
// Every backend must provide the same observable behavior.
func runBookStorageSuite(t *testing.T, storage BookStorage) {
	t.Helper()
	ctx := context.Background()

	session, err := storage.Acquire(ctx)
	require.NoError(t, err)
	defer session.Release()

	t.Run("empty store", func(t *testing.T) {
		books, err := session.List(ctx, 0, BooksPerShelf)
		require.NoError(t, err)
		assert.Empty(t, books)
		total, err := session.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, total)
	})

	var ids []int64
	t.Run("add books", func(t *testing.T) {
		for i := 1; i <= 10; i++ {
			b := Book{Title: fmt.Sprintf("title %d", i), Author: fmt.Sprintf("author %d", i)}
			if i%2 == 0 {
				b.Rating = intPtr(i % 5)
			}
			require.NoError(t, session.Add(ctx, &b))
			assert.Greater(t, b.ID, int64(0))
			if len(ids) > 0 {
				assert.Greater(t, b.ID, ids[len(ids)-1])
			}
			ids = append(ids, b.ID)
		}
		total, err := session.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, total)
	})

	t.Run("list pages", func(t *testing.T) {
		first, err := session.List(ctx, 0, BooksPerShelf)
		require.NoError(t, err)
		require.Len(t, first, 8)
		for i, b := range first {
			assert.Equal(t, ids[i], b.ID)
		}
		assert.Nil(t, first[0].Rating)
		require.NotNil(t, first[1].Rating)
		assert.Equal(t, 2, *first[1].Rating)

		second, err := session.List(ctx, 8, BooksPerShelf)
		require.NoError(t, err)
		require.Len(t, second, 2)
		assert.Equal(t, ids[8], second[0].ID)
		assert.Equal(t, ids[9], second[1].ID)

		third, err := session.List(ctx, 16, BooksPerShelf)
		require.NoError(t, err)
		assert.Empty(t, third)
	})

	t.Run("get one", func(t *testing.T) {
		b, err := session.GetOne(ctx, ids[2])
		require.NoError(t, err)
		assert.Equal(t, "title 3", b.Title)
		assert.Equal(t, "author 3", b.Author)

		_, err = session.GetOne(ctx, ids[9]+100)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("update", func(t *testing.T) {
		b, err := session.GetOne(ctx, ids[0])
		require.NoError(t, err)
		b.Rating = intPtr(7)
		require.NoError(t, session.Update(ctx, b))

		got, err := session.GetOne(ctx, ids[0])
		require.NoError(t, err)
		require.NotNil(t, got.Rating)
		assert.Equal(t, 7, *got.Rating)
		assert.Equal(t, b.Title, got.Title)

		err = session.Update(ctx, Book{ID: ids[9] + 100, Title: "x", Author: "y"})
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, session.Delete(ctx, ids[8]))
		_, err := session.GetOne(ctx, ids[8])
		assert.ErrorIs(t, err, ErrBookNotFound)
		assert.ErrorIs(t, session.Delete(ctx, ids[8]), ErrBookNotFound)

		total, err := session.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 9, total)

		second, err := session.List(ctx, 8, BooksPerShelf)
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.Equal(t, ids[9], second[0].ID)
	})

	t.Run("ids are never reused", func(t *testing.T) {
		require.NoError(t, session.Delete(ctx, ids[9]))
		b := Book{Title: "fresh", Author: "someone"}
		require.NoError(t, session.Add(ctx, &b))
		assert.Greater(t, b.ID, ids[9])
	})
}

// seedBooks inserts n books titled `book <i>` through a dedicated session.
func seedBooks(t *testing.T, storage BookStorage, n int) {
	t.Helper()
	ctx := context.Background()
	session, err := storage.Acquire(ctx)
	require.NoError(t, err)
	defer session.Release()
	for i := 1; i <= n; i++ {
		b := Book{Title: fmt.Sprintf("book %d", i), Author: "author"}
		require.NoError(t, session.Add(ctx, &b))
	}
}
