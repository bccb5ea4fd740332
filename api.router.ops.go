package main

import (
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"
)

// SetupOpsRoutes injects internal operations related endpoints.
func (api *APIHandler) SetupOpsRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/ops/configs", m.ops.Chain(api.GetConfigs))
	router.GET("/ops/stats", m.ops.Chain(api.GetStatistics))
	router.GET("/ops/maintenance", m.ops.Chain(api.Maintenance))
	router.GET("/ops/debug/vars", m.ops.Chain(GetMemStats))
	router.GET("/ops/debug/gc", m.ops.Chain(api.RunGC))
	router.GET("/ops/debug/fos", m.ops.Chain(api.FreeOSMemory))

	if api.config.ProfilerEnable {
		router.GET("/ops/debug/pprof/", m.ops.Chain(api.OpsHandlerWrapper(http.HandlerFunc(pprof.Index))))
		router.GET("/ops/debug/pprof/profile", m.ops.Chain(api.GetCPUProfile))
		router.GET("/ops/debug/pprof/trace", m.ops.Chain(api.GetTraceProfile))
		router.GET("/ops/debug/pprof/symbol", m.ops.Chain(api.GetSymbol))
		router.GET("/ops/debug/pprof/cmdline", m.ops.Chain(api.GetCmdLine))
		for _, name := range []string{"heap", "allocs", "goroutine", "threadcreate", "block", "mutex"} {
			router.GET("/ops/debug/pprof/"+name, m.ops.Chain(api.OpsHandlerWrapper(pprof.Handler(name))))
		}
	}

	return router
}
