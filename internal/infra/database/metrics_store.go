package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/xavierca1/praxis-payments/internal/notifier"
)

// MetricsStore persiste o snapshot do monitor de emails numa linha
// única. Best-effort: o monitor degrada para memória se o Save/Load
// falhar.
type MetricsStore struct {
	DB *sql.DB
}

func NewMetricsStore(db *sql.DB) *MetricsStore {
	return &MetricsStore{DB: db}
}

func (s *MetricsStore) Save(ctx context.Context, snap notifier.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO email_metrics_state (id, state, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id)
		DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()
	`
	_, err = s.DB.ExecContext(ctx, query, payload)
	return err
}

func (s *MetricsStore) Load(ctx context.Context) (*notifier.Snapshot, error) {
	var payload []byte
	err := s.DB.QueryRowContext(ctx, `SELECT state FROM email_metrics_state WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap notifier.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
