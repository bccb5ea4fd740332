package main

import (
	_ "github.com/jeamon/bookshelf-api/docs"
	"github.com/julienschmidt/httprouter"
	httpswagger "github.com/swaggo/http-swagger/v2"
)

// MiddlewareMap contains middlwares chain to
// use for public-facing and ops requests.
type MiddlewareMap struct {
	public *Middlewares
	ops    *Middlewares
}

// SetupRoutes injects book and ops related endpoints if required. Unknown routes,
// unsupported methods and preflight requests go through the public chain so
// they get the same headers and error bodies than regular endpoints.
func (api *APIHandler) SetupRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.HandleMethodNotAllowed = true
	router.HandleOPTIONS = true
	router.NotFound = m.public.Handler(api.NotFound)
	router.MethodNotAllowed = m.public.Handler(api.MethodNotAllowed)
	router.GlobalOPTIONS = m.public.Handler(api.Preflight)

	api.SetupBookRoutes(router, m)
	if api.config.OpsEndpointsEnable {
		api.SetupOpsRoutes(router, m)
	}
	if api.config.SwaggerEnable {
		router.GET("/swagger/*any", m.public.Chain(api.OpsHandlerWrapper(httpswagger.WrapHandler)))
	}
	return router
}
