package controllers

import (
	"net/http"

	"github.com/arkicoffee/storefront-backend/api/responses"
	"github.com/arkicoffee/storefront-backend/pkg/config"
	pkgerrors "github.com/arkicoffee/storefront-backend/pkg/errors"
	"github.com/arkicoffee/storefront-backend/pkg/logger"
	"github.com/arkicoffee/storefront-backend/pkg/redis"
)

// HealthLive reports process liveness.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"status": "ok",
			"env":    cfg.App.Env,
		})
	}
}

// HealthReady verifies the optional redis dependency. Without redis the
// storefront is still ready: carts simply stay in memory.
func HealthReady(cfg *config.Config, logg *logger.Logger, redisClient redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{
			"status": "ready",
			"env":    cfg.App.Env,
		})
	}
}
