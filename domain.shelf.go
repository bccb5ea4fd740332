package main

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// BooksPerShelf is the fixed number of books served per page.
const BooksPerShelf = 8

// MaxShelfPage is the highest page whose offset still fits into an int.
// Any page above it is served as this one, which is always past the end.
const MaxShelfPage = math.MaxInt / BooksPerShelf

// Shelf is one page of books ordered by ascending id with
// the unpaginated number of books present into the store.
type Shelf struct {
	Page  int
	Books []Book
	Total int
}

// ParsePage reads the `page` query parameter. It defaults to the
// first page when the value is absent, not numeric or lower than 1.
// Numeric values beyond MaxShelfPage are capped to it.
func ParsePage(q url.Values) int {
	raw := strings.TrimSpace(q.Get("page"))
	page, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		return MaxShelfPage
	}
	if err != nil || page < 1 {
		return 1
	}
	if page > MaxShelfPage {
		return MaxShelfPage
	}
	return page
}

// ShelfBounds returns the offset and limit of a given page.
func ShelfBounds(page int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if page > MaxShelfPage {
		page = MaxShelfPage
	}
	return (page - 1) * BooksPerShelf, BooksPerShelf
}
