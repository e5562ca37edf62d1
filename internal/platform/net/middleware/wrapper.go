// Package middleware adapts chi middleware and adds zerolog access logging and JSON panic recovery
package middleware

import (
	"compress/flate"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// Middleware is the stdlib middleware shape
type Middleware = func(http.Handler) http.Handler

// CORSOptions is the part of go-chi/cors we expose
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS wraps go-chi/cors, defaulting methods and headers when unset
func CORS(o CORSOptions) Middleware {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   orDefault(o.AllowedMethods, []string{"GET", "PUT", "POST", "DELETE", "OPTIONS"}),
		AllowedHeaders:   orDefault(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-ID"}),
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}

func orDefault(in, def []string) []string {
	if len(in) == 0 {
		return def
	}
	return in
}

// StackOptions tunes Stack
type StackOptions struct {
	CORS    CORSOptions
	Timeout time.Duration
	Slow    time.Duration
}

// Stack is the ordered middleware chain every api server mounts
func Stack(o StackOptions) []Middleware {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	mws := []Middleware{
		chimw.RequestID,
		chimw.RealIP,
		RecoverJSON,
		chimw.NoCache,
		AccessLog(AccessLogOptions{Slow: o.Slow}),
	}
	if len(o.CORS.AllowedOrigins) > 0 {
		mws = append(mws, CORS(o.CORS))
	}
	return append(mws,
		chimw.NewCompressor(flate.DefaultCompression).Handler,
		chimw.Heartbeat("/health"),
		chimw.StripSlashes,
		chimw.Timeout(timeout),
	)
}
