package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/davidbz/cinder/internal/config"
)

// CORS builds the cross-origin middleware from config, backed by
// github.com/rs/cors. A nil config leaves requests untouched.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	policy := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedHeaders:   cfg.AllowedHeaders,
		AllowedMethods:   cfg.AllowedMethods,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})

	return policy.Handler
}
