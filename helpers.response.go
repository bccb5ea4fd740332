package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// CustomResponseWriter is a wrapper for http.ResponseWriter. It is
// used to record response details like status code and body size.
type CustomResponseWriter struct {
	http.ResponseWriter
	code  int
	bytes int
	wrote bool
}

// NewCustomResponseWriter provides CustomResponseWriter with 200 as status code.
func NewCustomResponseWriter(rw http.ResponseWriter) *CustomResponseWriter {
	return &CustomResponseWriter{
		ResponseWriter: rw,
		code:           http.StatusOK,
	}
}

// WriteHeader implements http.ResponseWriter interface.
func (cw *CustomResponseWriter) WriteHeader(code int) {
	if !cw.wrote {
		cw.code = code
		cw.wrote = true
		cw.ResponseWriter.WriteHeader(code)
	}
}

// Write implements http.ResponseWriter interface.
func (cw *CustomResponseWriter) Write(bytes []byte) (int, error) {
	if !cw.wrote {
		cw.WriteHeader(cw.code)
	}

	n, err := cw.ResponseWriter.Write(bytes)
	cw.bytes += n
	return n, err
}

// Status returns the written status code.
func (cw *CustomResponseWriter) Status() int {
	return cw.code
}

// Bytes returns bytes written as response body.
func (cw *CustomResponseWriter) Bytes() int {
	return cw.bytes
}

// Unwrap returns native response writer and used by
// the http.ResponseController during its operation.
func (cw *CustomResponseWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// APIError is the data model sent when an error occurred during request
// processing. The `error` field always mirrors the http status code.
type APIError struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

var errorMessages = map[int]string{
	http.StatusBadRequest:          "Bad request",
	http.StatusNotFound:            "Not found",
	http.StatusMethodNotAllowed:    "Method not allowed",
	http.StatusUnprocessableEntity: "Unprocessable",
	http.StatusInternalServerError: "Internal server error",
	http.StatusServiceUnavailable:  "Service unavailable",
}

// NewAPIError builds the standardized error body of a given status code.
func NewAPIError(status int) *APIError {
	message, ok := errorMessages[status]
	if !ok {
		message = http.StatusText(status)
	}
	return &APIError{Success: false, Error: status, Message: message}
}

// ShelfResponse is sent when listing books.
type ShelfResponse struct {
	Success    bool   `json:"success"`
	Books      []Book `json:"books"`
	TotalBooks int    `json:"total_books"`
}

// RatingUpdatedResponse is sent once a book rating has been updated.
type RatingUpdatedResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

// BookDeletedResponse is sent once a book has been deleted
// with the refreshed shelf of the requested page.
type BookDeletedResponse struct {
	Success    bool   `json:"success"`
	Deleted    int64  `json:"deleted"`
	Books      []Book `json:"books"`
	TotalBooks int    `json:"total_books"`
}

// BookCreatedResponse is sent once a book has been created
// with the refreshed shelf of the requested page.
type BookCreatedResponse struct {
	Success    bool   `json:"success"`
	Created    int64  `json:"created"`
	Books      []Book `json:"books"`
	TotalBooks int    `json:"total_books"`
}

// StatusResponse is the data model sent when status endpoint is called.
type StatusResponse struct {
	RequestID string `json:"requestid"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// nonNilBooks ensures an empty list is encoded as `[]` instead of `null`.
func nonNilBooks(books []Book) []Book {
	if books == nil {
		return []Book{}
	}
	return books
}

// WriteErrorResponse is used to send error response to client. In case the client closes the request,
// it records the Nginx non standard status code 499 (Client Closed Request). In case of request
// processing timeout we set the status code to 504 since the timeout handler already answered.
func WriteErrorResponse(ctx context.Context, w http.ResponseWriter, errResp *APIError) error {
	return WriteResponse(ctx, w, errResp.Error, errResp)
}

// WriteResponse is used to send api response to client. It sets the status code to 499
// in case client cancelled the request, and to 504 if the request processing timed out.
func WriteResponse(ctx context.Context, w http.ResponseWriter, status int, resp interface{}) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.WriteHeader(http.StatusGatewayTimeout)
		} else {
			w.WriteHeader(499)
		}
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(resp)
}
