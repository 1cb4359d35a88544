// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/dalemusser/panelhub/internal/app/features/health"
	usersfeature "github.com/dalemusser/panelhub/internal/app/features/users"
	"github.com/dalemusser/panelhub/internal/app/system/apierr"
	"github.com/dalemusser/panelhub/internal/app/system/metrics"
	"github.com/dalemusser/panelhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. PanelHub mounts:
//   - /health: MongoDB liveness
//   - /metrics: Prometheus exposition (when metrics_enabled)
//   - api_prefix (default /api/users): the member directory API
//
// Internal error text is only returned to clients outside production.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	expose := coreCfg.Env != "prod"
	errs := apierr.NewWriter(logger, expose)

	r := chi.NewRouter()

	if appCfg.MetricsEnabled {
		r.Use(metrics.Middleware)
		r.Handle("/metrics", promhttp.Handler())
	}

	// Set before mounting so sub-routers inherit it.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		errs.Write(w, req, "route", apierr.NotFound("Route "+req.Method+" "+req.URL.Path+" not found"))
	})

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.PanelHubMongoClient, expose, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	usersHandler := usersfeature.NewHandler(deps.PanelHubMongoDatabase, errs, appCfg.ImportMaxRows, logger)
	if appCfg.ImportRateLimit > 0 {
		usersHandler.ImportLimiter = ratelimit.New(appCfg.ImportRateLimit, appCfg.ImportRateWindow)
	}
	r.Mount(appCfg.APIPrefix, usersfeature.Routes(usersHandler))

	return r, nil
}
