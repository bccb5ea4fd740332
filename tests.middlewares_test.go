package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMiddlewaresStacks ensures we get both public and ops middlewares
// stacks with exact number of elements in those stacks.
func TestMiddlewaresStacks(t *testing.T) {
	api := newTestAPIHandler(nil)
	pub, ops := api.MiddlewaresStacks()
	assert.Equal(t, 6, len(*pub))
	assert.Equal(t, 4, len(*ops))
}

// TestChain ensures each middleware in the stack is called as well the handler.
func TestChain(t *testing.T) {
	var ca, cb, cc, ch bool
	queue := make(chan int, 4)

	middlewareA := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 1
			ca = true
			next(w, r, ps)
		}
	}
	middlewareB := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 2
			cb = true
			next(w, r, ps)
		}
	}
	middlewareC := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 3
			cc = true
			next(w, r, ps)
		}
	}
	middlewares := Middlewares{
		middlewareA,
		middlewareB,
		middlewareC,
	}

	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		queue <- 4
		ch = true
	}

	chained := (&middlewares).Chain(handler)
	req := httptest.NewRequest("GET", "/books", nil)
	w := httptest.NewRecorder()
	chained(w, req, nil)

	t.Run("check calling", func(t *testing.T) {
		assert.Equal(t, true, ca)
		assert.Equal(t, true, cb)
		assert.Equal(t, true, cc)
		assert.Equal(t, true, ch)
	})

	t.Run("check ordering", func(t *testing.T) {
		assert.Equal(t, 1, <-queue)
		assert.Equal(t, 2, <-queue)
		assert.Equal(t, 3, <-queue)
		assert.Equal(t, 4, <-queue)
	})
}

// TestRequestsCounterMiddleware ensures the request counter increment.
func TestRequestsCounterMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	req := httptest.NewRequest("GET", "/books", nil)
	w := httptest.NewRecorder()
	var num uint64
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		num = GetRequestNumberFromContext(req.Context())
	}
	wrapped := api.RequestsCounterMiddleware(handler)
	wrapped(w, req, nil)
	wrapped(w, req, nil)
	assert.Equal(t, uint64(2), num)
	assert.Equal(t, uint64(2), api.stats.called)
}

func TestRequestIDMiddleware(t *testing.T) {
	var got string
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		got = GetValueFromContext(req.Context(), RequestIDContextKey)
	}

	t.Run("generated id", func(t *testing.T) {
		api := newTestAPIHandler(nil)
		w := httptest.NewRecorder()
		api.RequestIDMiddleware(handler)(w, httptest.NewRequest("GET", "/books", nil), nil)
		assert.Equal(t, "r:a4ff7e96-1d4b-4a3c-9a31-0b27c5c6b5f1", got)
		assert.Equal(t, got, w.Header().Get(RequestIDHeader))
	})

	t.Run("caller id reused", func(t *testing.T) {
		api := newTestAPIHandler(nil)
		api.idsHandler = NewIDsHandler()
		callerID := api.idsHandler.Generate(RequestIDPrefix)
		req := httptest.NewRequest("GET", "/books", nil)
		req.Header.Set(RequestIDHeader, callerID)
		w := httptest.NewRecorder()
		api.RequestIDMiddleware(handler)(w, req, nil)
		assert.Equal(t, callerID, got)
		assert.Equal(t, callerID, w.Header().Get(RequestIDHeader))
	})

	t.Run("malformed caller id replaced", func(t *testing.T) {
		api := newTestAPIHandler(nil)
		api.idsHandler = NewIDsHandler()
		req := httptest.NewRequest("GET", "/books", nil)
		req.Header.Set(RequestIDHeader, "<script>")
		w := httptest.NewRecorder()
		api.RequestIDMiddleware(handler)(w, req, nil)
		assert.NotEqual(t, "<script>", got)
		assert.True(t, api.idsHandler.IsValid(got, RequestIDPrefix))
	})
}

func TestCORSMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	CORSMiddleware(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {})(w, httptest.NewRequest("GET", "/books", nil), nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type,Authorization,true", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET,PUT,PATCH,POST,DELETE,OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

// TestPanicRecoveryMiddleware ensures a panicking handler produces a 500 error body.
func TestPanicRecoveryMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	w := httptest.NewRecorder()
	handler := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		panic("boom")
	}
	require.NotPanics(t, func() {
		api.PanicRecoveryMiddleware(handler)(w, httptest.NewRequest("GET", "/books", nil), nil)
	})
	assertAPIError(t, w, http.StatusInternalServerError, "Internal server error")
}

func TestMaintenanceMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	var called bool
	handler := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	}

	w := httptest.NewRecorder()
	api.MaintenanceMiddleware(handler)(w, httptest.NewRequest("GET", "/books", nil), nil)
	assert.True(t, called)

	called = false
	api.mode.message = "upgrading"
	api.mode.enabled.Store(true)
	w = httptest.NewRecorder()
	api.MaintenanceMiddleware(handler)(w, httptest.NewRequest("GET", "/books", nil), nil)
	assert.False(t, called)
	assert.Equal(t, "upgrading", w.Header().Get("X-Maintenance-Reason"))
	assertAPIError(t, w, http.StatusServiceUnavailable, "Service unavailable")
}

// TestCoreMiddleware ensures responses status codes are recorded
// and the request scoped logger is available to the handler.
func TestCoreMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	var hasLogger bool
	handler := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		_, hasLogger = r.Context().Value(LoggerContextKey).(interface{ Sync() error })
		w.WriteHeader(http.StatusAccepted)
	}
	w := httptest.NewRecorder()
	api.CoreMiddleware(handler)(w, httptest.NewRequest("GET", "/books", nil), nil)
	assert.True(t, hasLogger)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, uint64(1), api.stats.status[http.StatusAccepted])
}
