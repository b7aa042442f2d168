package xrpctest

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// recoverer turns a panicking handler into a 500 InternalServerError so that
// a broken fake fails the calling test instead of the test binary.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("panic", fmt.Sprintf("%v", err)).
					Str("stack_trace", string(debug.Stack())).
					Str("path", r.URL.Path).
					Msg("fake pds handler panicked")

				if ww.Status() == 0 {
					WriteError(ww, http.StatusInternalServerError, "InternalServerError", fmt.Sprintf("handler panicked: %v", err))
				}
			}
		}()
		next.ServeHTTP(ww, r)
	})
}

// requestLogger logs each request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("fake pds request")
	})
}
