package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/pratik-mahalle/sitevoice/internal/pkg/errors"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/utils"
)

const readinessTimeout = 2 * time.Second

// schemaVersion is the row golang-migrate keeps in schema_migrations
type schemaVersion struct {
	Version int64 `db:"version" json:"version"`
	Dirty   bool  `db:"dirty" json:"dirty"`
}

// HealthHandler serves the liveness and readiness probes
type HealthHandler struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *sqlx.DB, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: log}
}

// Healthz reports that the process is up. It never touches the database.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports ready once the database answers and the schema is not
// left dirty by a failed migration.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.ErrorWithErr(err, "Database ping failed")
		utils.WriteError(w, apperrors.ServiceUnavailable("Database connection failed"))
		return
	}

	schema, err := h.schemaVersion(ctx)
	if err != nil {
		h.logger.ErrorWithErr(err, "Failed to read schema version")
		utils.WriteError(w, apperrors.ServiceUnavailable("Database schema is not migrated"))
		return
	}
	if schema.Dirty {
		utils.WriteError(w, apperrors.ServiceUnavailable("Database schema is dirty").WithDetails(schema))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"status":   "ready",
		"database": "connected",
		"schema":   schema,
	})
}

func (h *HealthHandler) schemaVersion(ctx context.Context) (*schemaVersion, error) {
	var v schemaVersion
	err := h.db.GetContext(ctx, &v, `SELECT version, dirty FROM schema_migrations LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New("schema_migrations is empty")
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
