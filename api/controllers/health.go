package controllers

import (
	"context"
	"net/http"

	"github.com/dmarable/wavecrate-backend/api/responses"
	pkgerrors "github.com/dmarable/wavecrate-backend/pkg/errors"
	"github.com/dmarable/wavecrate-backend/pkg/logger"
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

type cachePinger interface {
	Ping(ctx context.Context) error
}

// Live reports process liveness only.
func Live() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// Ready reports readiness by pinging the backing stores.
func Ready(db dbPinger, cache cachePinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if db == nil || cache == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "health dependencies not configured"))
			return
		}

		checks := map[string]string{"db": "ok", "redis": "ok"}
		failed := false
		if err := db.Ping(ctx); err != nil {
			checks["db"] = err.Error()
			failed = true
		}
		if err := cache.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			failed = true
		}

		if failed {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency check failed").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, checks)
	}
}
