package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // postgres driver for database/sql

	audit "carecompliance/pkg/platform/audit"
)

// Store is an append-only audit.Sink backed by the audit_records table.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects with the lib/pq driver.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	return New(db), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts one record. Records are never updated or deleted.
func (s *Store) Append(ctx context.Context, record audit.Record) error {
	details := record.Details
	if details == nil {
		details = map[string]string{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	query := `
		INSERT INTO audit_records (id, actor_id, event, occurred_at, device_id, location, request_id, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.New(),
		record.ActorID,
		string(record.Event),
		record.Timestamp,
		record.DeviceID,
		record.Location,
		record.RequestID,
		detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ListByEvent returns records for event, oldest first.
func (s *Store) ListByEvent(ctx context.Context, event audit.Event) ([]audit.Record, error) {
	query := `
		SELECT actor_id, event, occurred_at, device_id, location, request_id, details
		FROM audit_records
		WHERE event = $1
		ORDER BY occurred_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, string(event))
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var records []audit.Record
	for rows.Next() {
		var (
			r           audit.Record
			eventName   string
			detailsJSON []byte
		)
		if err := rows.Scan(&r.ActorID, &eventName, &r.Timestamp, &r.DeviceID, &r.Location, &r.RequestID, &detailsJSON); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		r.Event = audit.Event(eventName)
		if err := json.Unmarshal(detailsJSON, &r.Details); err != nil {
			return nil, fmt.Errorf("unmarshal audit details: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}
