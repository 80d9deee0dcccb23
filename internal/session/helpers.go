package session

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/meridian-ops/ioops-portal/internal/models"
)

// scanSnapshot decodes one sessions row. Absent rows and rows whose data
// column no longer parses both degrade to "start fresh": (nil, nil).
func scanSnapshot(row *sql.Row, token string) (*models.Snapshot, error) {
	var (
		snapToken string
		state     string
		dataJSON  string
		updatedAt time.Time
	)
	err := row.Scan(&snapToken, &state, &dataJSON, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Warn("session scan failed, starting fresh", "error", err, "token", token)
		return nil, nil
	}

	var data map[string]string
	if err := json.Unmarshal([]byte(dataJSON), &data); err != nil {
		slog.Warn("session data corrupt, starting fresh", "error", err, "token", token)
		return nil, nil
	}

	snap := models.Snapshot{
		Token:     snapToken,
		State:     models.WorkflowState(state),
		Data:      data,
		Timestamp: updatedAt,
	}
	if !snap.Matches(token) {
		slog.Warn("session token mismatch, discarding snapshot", "token", token, "snapshot_token", snapToken)
		return nil, nil
	}
	return &snap, nil
}
