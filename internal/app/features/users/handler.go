// internal/app/features/users/handler.go
package users

import (
	"time"

	memberstore "github.com/dalemusser/panelhub/internal/app/store/members"
	"github.com/dalemusser/panelhub/internal/app/system/apierr"
	"github.com/dalemusser/panelhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the member directory API.
// It holds the DB handle, stores, and logger provided by WAFFLE DBDeps / Startup.
type Handler struct {
	DB      *mongo.Database
	Log     *zap.Logger
	Errs    *apierr.Writer
	Members *memberstore.Store

	// ImportMaxRows caps the data rows accepted by one CSV import.
	ImportMaxRows int
	// ImportLimiter throttles imports per client IP; nil disables it.
	ImportLimiter *ratelimit.Limiter
	// Now is the clock used for engagement statistics.
	Now func() time.Time
}

func NewHandler(db *mongo.Database, errs *apierr.Writer, importMaxRows int, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Log:           logger,
		Errs:          errs,
		Members:       memberstore.New(db),
		ImportMaxRows: importMaxRows,
		Now:           time.Now,
	}
}
