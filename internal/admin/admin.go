// Package admin holds the administrator audit trail and the runtime config
// overrides editable from the admin panel.
package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arcadeline/backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// LogAdminAction records an admin action in the audit log. Failures are
// logged and returned; callers usually ignore them.
func LogAdminAction(ctx context.Context, db *sqlx.DB, adminUsername, ip, route, action string, details map[string]interface{}, success bool) error {
	if db == nil {
		return nil
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		log.Warn().Str("component", "admin").Err(err).Msg("failed to marshal audit details")
		detailsJSON = []byte("{}")
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO admin_audit (admin_username, ip, route, action, details, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, adminUsername, ip, route, action, detailsJSON, success)
	if err != nil {
		log.Error().Str("component", "admin").Err(err).Str("action", action).Msg("failed to log admin action")
		return fmt.Errorf("insert audit row: %w", err)
	}
	return nil
}

// GetAdminAuditLogs retrieves recent audit rows, newest first.
func GetAdminAuditLogs(ctx context.Context, db *sqlx.DB, limit, offset int) ([]models.AdminAudit, error) {
	if db == nil {
		return []models.AdminAudit{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	logs := []models.AdminAudit{}
	err := db.SelectContext(ctx, &logs, `
		SELECT id, admin_username, ip, route, action, details, success, created_at
		FROM admin_audit
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select audit rows: %w", err)
	}
	return logs, nil
}
