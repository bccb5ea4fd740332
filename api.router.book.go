package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupBookRoutes injects the bookshelf endpoints.
func (api *APIHandler) SetupBookRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/", m.public.Chain(api.Index))
	router.GET("/status", m.public.Chain(api.Status))
	router.GET("/books", m.public.Chain(api.ListBooks))
	router.POST("/books", m.public.Chain(api.CreateBook))
	router.PATCH("/books/:id", m.public.Chain(api.UpdateBookRating))
	router.DELETE("/books/:id", m.public.Chain(api.DeleteBook))
	return router
}
