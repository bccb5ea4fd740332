package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Book represents a book entity. Its json form is the field-map
// used in every payload sent by the api.
type Book struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Rating *int   `json:"rating"`
}

// OptionalRating holds a rating value decoded from a request body. Set
// reports whether the `rating` key was present at all, which allows to
// distinguish an absent field from a zero or null value.
type OptionalRating struct {
	Set bool
	Raw json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler. It is only called when
// the key exists in the payload, even for an explicit null value.
func (o *OptionalRating) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Raw = append(o.Raw[:0], data...)
	return nil
}

// Value converts the raw rating into an integer. Accepted forms are json
// numbers (truncated toward zero) and strings holding an integer.
func (o OptionalRating) Value() (int, error) {
	raw := bytes.TrimSpace(o.Raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%w: null value", ErrInvalidRating)
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidRating, err)
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidRating, s)
		}
		return v, nil
	case 't', 'f', '{', '[':
		return 0, fmt.Errorf("%w: unsupported value %s", ErrInvalidRating, string(raw))
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRating, err)
	}
	if v, err := n.Int64(); err == nil {
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0, fmt.Errorf("%w: %d out of range", ErrInvalidRating, v)
		}
		return int(v), nil
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%w: %s out of range", ErrInvalidRating, n.String())
	}
	return int(math.Trunc(f)), nil
}

// Pointer returns nil for an absent or null rating, otherwise the parsed value.
func (o OptionalRating) Pointer() (*int, error) {
	if !o.Set || bytes.Equal(bytes.TrimSpace(o.Raw), []byte("null")) {
		return nil, nil
	}
	v, err := o.Value()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// RatingUpdate is the body of a rating update request.
type RatingUpdate struct {
	Rating OptionalRating `json:"rating"`
}

// NewBookRequest is the body of a book creation request. All
// fields are optional at decoding time and validated afterwards.
type NewBookRequest struct {
	Title  *string        `json:"title"`
	Author *string        `json:"author"`
	Rating OptionalRating `json:"rating"`
}

// ToBook validates the creation request and builds the book to store.
func (nb NewBookRequest) ToBook() (Book, error) {
	var book Book
	if nb.Title == nil || len(strings.TrimSpace(*nb.Title)) == 0 {
		return book, missingFieldError("title")
	}

	if nb.Author == nil || len(strings.TrimSpace(*nb.Author)) == 0 {
		return book, missingFieldError("author")
	}

	rating, err := nb.Rating.Pointer()
	if err != nil {
		return book, err
	}

	book.Title = *nb.Title
	book.Author = *nb.Author
	book.Rating = rating
	return book, nil
}
