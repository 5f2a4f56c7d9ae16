package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/openioc/vmecore/internal/types"
)

// InsertUpdate appends one record update to the archive.
func (p *PostgresClient) InsertUpdate(ctx context.Context, row UpdateRow) error {
	valueJSON, err := json.Marshal(row.Value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO record_updates (id, record_name, record_kind, value, raw_value, condition, severity, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, row.ID, row.RecordName, string(row.RecordKind), valueJSON,
		int32(row.RawValue), string(row.Condition), string(row.Severity), row.RecordedAt)

	if err != nil {
		return fmt.Errorf("failed to insert update: %w", err)
	}
	return nil
}

// RecentUpdates loads the newest archived updates for one record, newest
// first.
func (p *PostgresClient) RecentUpdates(ctx context.Context, recordName string, limit int) ([]UpdateRow, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, record_name, record_kind, value, raw_value, condition, severity, recorded_at
		FROM record_updates
		WHERE record_name = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`, recordName, limit)

	if err != nil {
		return nil, fmt.Errorf("failed to query updates: %w", err)
	}
	defer rows.Close()

	updates := make([]UpdateRow, 0)

	for rows.Next() {
		var row UpdateRow
		var id uuid.UUID
		var kind, condition, severity string
		var valueJSON []byte
		var raw int32

		if err := rows.Scan(&id, &row.RecordName, &kind, &valueJSON, &raw, &condition, &severity, &row.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan update: %w", err)
		}

		if err := json.Unmarshal(valueJSON, &row.Value); err != nil {
			return nil, fmt.Errorf("failed to unmarshal value: %w", err)
		}

		row.ID = id
		row.RecordKind = types.RecordKind(kind)
		row.Condition = types.AlarmCondition(condition)
		row.Severity = types.Severity(severity)
		updates = append(updates, row)
	}

	return updates, rows.Err()
}
