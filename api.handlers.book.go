package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Index provides same details like `Status` handler by redirecting the request.
func (api *APIHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.Redirect(w, r, "/status", http.StatusSeeOther)
}

// Status provides basics details about the application to the public users.
func (api *APIHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	resp := StatusResponse{
		RequestID: requestID,
		Status:    fmt.Sprintf("up & running since %.0f mins", api.clock.Now().Sub(api.stats.started).Minutes()),
		Message:   "Hello. Bookshelf api is available. Enjoy :)",
	}
	if err := WriteResponse(r.Context(), w, http.StatusOK, resp); err != nil {
		api.logger.Error("failed to send status response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// sendError writes the standardized error body of the given status.
func (api *APIHandler) sendError(w http.ResponseWriter, r *http.Request, status int) {
	if err := WriteErrorResponse(r.Context(), w, NewAPIError(status)); err != nil {
		api.GetLoggerFromContext(r.Context()).Error("failed to send error response", zap.Int("response.status", status), zap.Error(err))
	}
}

// ListBooks godoc
// @Summary      List a shelf of books
// @Description  Returns the books of the requested page ordered by id, 8 per page, with the total number of books.
// @Tags         books
// @Produce      json
// @Param        page  query     int  false  "1-indexed page number"
// @Success      200   {object}  ShelfResponse
// @Failure      404   {object}  APIError
// @Router       /books [get]
func (api *APIHandler) ListBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	page := ParsePage(r.URL.Query())
	shelf, err := api.bookService.ListBooks(r.Context(), page)
	if errors.Is(err, ErrEmptyShelf) {
		logger.Info("no books on requested shelf", zap.Int("book.page", page))
		api.sendError(w, r, http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("failed to list books", zap.Int("book.page", page), zap.Error(err))
		api.sendError(w, r, http.StatusNotFound)
		return
	}

	logger.Info("success to list books", zap.Int("book.page", page), zap.Int("book.total", shelf.Total))
	resp := ShelfResponse{Success: true, Books: shelf.Books, TotalBooks: shelf.Total}
	if err = WriteResponse(r.Context(), w, http.StatusOK, resp); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

// UpdateBookRating godoc
// @Summary      Update the rating of a book
// @Description  Sets the rating when the body carries a `rating` key, otherwise nothing changes.
// @Description  Accepted ratings are json numbers (truncated toward zero) and integer strings.
// @Description  Booleans, null, objects and arrays are rejected with 400. Bodies are capped at 1 MiB.
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id    path      int           true  "Book id"
// @Param        body  body      RatingUpdate  true  "Rating update"
// @Success      200   {object}  RatingUpdatedResponse
// @Failure      400   {object}  APIError
// @Failure      404   {object}  APIError
// @Router       /books/{id} [patch]
func (api *APIHandler) UpdateBookRating(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		logger.Info("book id provided is not valid", zap.String("book.id", ps.ByName("id")))
		api.sendError(w, r, http.StatusNotFound)
		return
	}

	// a missing book is reported before any body error.
	var update RatingUpdate
	decodeErr := DecodeRequestBody(w, r, &update)
	if decodeErr != nil {
		update = RatingUpdate{}
	}
	id, err = api.bookService.UpdateRating(r.Context(), id, update)
	// also reached when the book is removed between lookup and write.
	if errors.Is(err, ErrBookNotFound) {
		logger.Info("book does not exist", zap.Int64("book.id", id))
		api.sendError(w, r, http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("failed to update book rating", zap.Int64("book.id", id), zap.Error(err))
		api.sendError(w, r, http.StatusBadRequest)
		return
	}
	if decodeErr != nil {
		logger.Error("failed to update book rating", zap.Int64("book.id", id), zap.Error(decodeErr))
		api.sendError(w, r, http.StatusBadRequest)
		return
	}

	logger.Info("success to update book rating", zap.Int64("book.id", id))
	resp := RatingUpdatedResponse{Success: true, ID: id}
	if err = WriteResponse(r.Context(), w, http.StatusOK, resp); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

// DeleteBook godoc
// @Summary      Delete a book
// @Description  Removes the book then returns the refreshed shelf of the requested page.
// @Tags         books
// @Produce      json
// @Param        id    path      int  true   "Book id"
// @Param        page  query     int  false  "1-indexed page number"
// @Success      200   {object}  BookDeletedResponse
// @Failure      404   {object}  APIError
// @Failure      422   {object}  APIError
// @Router       /books/{id} [delete]
func (api *APIHandler) DeleteBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		logger.Info("book id provided is not valid", zap.String("book.id", ps.ByName("id")))
		api.sendError(w, r, http.StatusNotFound)
		return
	}

	page := ParsePage(r.URL.Query())
	shelf, err := api.bookService.DeleteBook(r.Context(), id, page)
	if errors.Is(err, ErrBookNotFound) {
		logger.Info("book does not exist", zap.Int64("book.id", id))
		api.sendError(w, r, http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("failed to delete book", zap.Int64("book.id", id), zap.Error(err))
		api.sendError(w, r, http.StatusUnprocessableEntity)
		return
	}

	logger.Info("success to delete book", zap.Int64("book.id", id), zap.Int("book.page", page))
	resp := BookDeletedResponse{Success: true, Deleted: id, Books: shelf.Books, TotalBooks: shelf.Total}
	if err = WriteResponse(r.Context(), w, http.StatusOK, resp); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

// CreateBook godoc
// @Summary      Create a book
// @Description  Stores a new book then returns its id and the refreshed shelf of the requested page.
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        page  query     int             false  "1-indexed page number"
// @Param        body  body      NewBookRequest  true   "Book to create"
// @Success      200   {object}  BookCreatedResponse
// @Failure      422   {object}  APIError
// @Router       /books [post]
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	var request NewBookRequest
	if err := DecodeRequestBody(w, r, &request); err != nil {
		logger.Error("failed to create book", zap.Error(err))
		api.sendError(w, r, http.StatusUnprocessableEntity)
		return
	}

	page := ParsePage(r.URL.Query())
	id, shelf, err := api.bookService.CreateBook(r.Context(), request, page)
	if err != nil {
		logger.Error("failed to create book", zap.Error(err))
		api.sendError(w, r, http.StatusUnprocessableEntity)
		return
	}

	logger.Info("success to create book", zap.Int64("book.id", id), zap.Int("book.page", page))
	resp := BookCreatedResponse{Success: true, Created: id, Books: shelf.Books, TotalBooks: shelf.Total}
	if err = WriteResponse(r.Context(), w, http.StatusOK, resp); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

// NotFound serves the standardized 404 body for unknown routes.
func (api *APIHandler) NotFound(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.sendError(w, r, http.StatusNotFound)
}

// MethodNotAllowed serves the standardized 405 body for
// known routes called with an unsupported method.
func (api *APIHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.sendError(w, r, http.StatusMethodNotAllowed)
}

// Preflight answers CORS preflight requests on any known route.
// The CORS headers themselves are set by the middleware.
func (api *APIHandler) Preflight(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusNoContent)
}
