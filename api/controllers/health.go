package controllers

import (
	"context"
	"net/http"

	"github.com/cargodesk/cargodesk-backend/api/responses"
	"github.com/cargodesk/cargodesk-backend/pkg/config"
	pkgerrors "github.com/cargodesk/cargodesk-backend/pkg/errors"
	"github.com/cargodesk/cargodesk-backend/pkg/logger"
)

const envHeader = "X-CargoDesk-Env"

// Pinger is any dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the store plus whichever optional dependencies were
// wired at boot. Nil pingers are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		failures := map[string]string{}
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Ping(r.Context()); err != nil {
				failures[name] = err.Error()
			}
		}

		if len(failures) > 0 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency check failed").
					WithDetails(failures))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
