package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Recorder writes permission_logs rows with plain SQL. Inserts run on the
// caller's goroutine but stay off the response path: errors are logged and
// swallowed.
type Recorder struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewRecorder(db *sqlx.DB, logger *slog.Logger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

const insertLogQuery = `
INSERT INTO permission_logs (user_id, permission_id, action, timestamp)
SELECT $1, id, $2, now() FROM permissions WHERE name = $3`

func (r *Recorder) Record(ctx context.Context, userID int64, permission string, action string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, insertLogQuery, userID, action, permission); err != nil {
		r.logger.Error("failed to record permission access",
			"error", err,
			"user_id", userID,
			"permission", permission,
			"action", action)
	}
}
