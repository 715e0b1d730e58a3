package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/rgavilanm/localspot-backend/api/responses"
	"github.com/rgavilanm/localspot-backend/pkg/config"
	"github.com/rgavilanm/localspot-backend/pkg/db"
	pkgerrors "github.com/rgavilanm/localspot-backend/pkg/errors"
	"github.com/rgavilanm/localspot-backend/pkg/logger"
	"github.com/rgavilanm/localspot-backend/pkg/redis"
	"github.com/rgavilanm/localspot-backend/pkg/storage/gcs"
)

const readyCheckTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LocalSpot-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every wired dependency with a short timeout. A nil
// dependency is reported as skipped rather than failing readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LocalSpot-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		check := func(name string, p interface {
			Ping(context.Context) error
		}) {
			if p == nil {
				checks[name] = "skipped"
				return
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = "down"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "readiness check failed: "+name, err)
				}
				return
			}
			checks[name] = "up"
		}

		if dbP != nil {
			check("db", dbP)
		} else {
			checks["db"] = "skipped"
		}
		if redisP != nil {
			check("redis", redisP)
		} else {
			checks["redis"] = "skipped"
		}
		if gcsP != nil {
			check("gcs", gcsP)
		} else {
			checks["gcs"] = "skipped"
		}

		if !healthy {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
