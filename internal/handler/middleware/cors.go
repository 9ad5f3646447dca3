package middleware

import (
	"log/slog"
	"net/http"
	"slices"

	"booking-engine/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets browser clients retry booking creation safely,
// so it is always allowed whatever CORS_ALLOW_HEADERS says.
const IdempotencyKeyHeader = "Idempotency-Key"

func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     corsAllowHeaders(cfg.AllowHeaders),
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	slog.Info("CORS middleware initialized",
		"allow_origins", cfg.AllowOrigins,
		"allow_headers", corsCfg.AllowHeaders)
	return cors.New(corsCfg)
}

func corsAllowHeaders(configured []string) []string {
	canonical := http.CanonicalHeaderKey(IdempotencyKeyHeader)
	if slices.ContainsFunc(configured, func(h string) bool { return http.CanonicalHeaderKey(h) == canonical }) {
		return configured
	}
	return append(slices.Clone(configured), IdempotencyKeyHeader)
}
