package store

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carecompliance/internal/alerts/models"
	"carecompliance/internal/platform/postgres"
	txcontext "carecompliance/pkg/platform/tx"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const alertColumns = "id, type, location, due_at, active, created_at, dismissed_by, dismissed_at, details"

// PostgresAlerts relies on the partial unique index compliance_alerts_one_active
// for deduplication.
type PostgresAlerts struct {
	pool *pgxpool.Pool
}

func NewPostgresAlerts(pool *pgxpool.Pool) *PostgresAlerts {
	return &PostgresAlerts{pool: pool}
}

func (s *PostgresAlerts) InsertIfNoActive(ctx context.Context, a *models.Alert) (bool, uuid.UUID, error) {
	details, err := json.Marshal(a.Details)
	if err != nil {
		return false, uuid.Nil, fmt.Errorf("marshal alert details: %w", err)
	}
	q := txcontext.QuerierFrom(ctx, s.pool)
	tag, err := q.Exec(ctx, `
		INSERT INTO compliance_alerts (id, type, location, due_at, active, created_at, details)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6)
		ON CONFLICT (type, location, due_at) WHERE active DO NOTHING
	`, a.ID, string(a.Type), a.Location, a.DueAt, a.CreatedAt, details)
	if err != nil {
		return false, uuid.Nil, postgres.MapError(err, "alert")
	}
	if tag.RowsAffected() == 1 {
		return true, a.ID, nil
	}

	var existing uuid.UUID
	err = q.QueryRow(ctx, `
		SELECT id FROM compliance_alerts
		WHERE type = $1 AND location = $2 AND due_at = $3 AND active
	`, string(a.Type), a.Location, a.DueAt).Scan(&existing)
	if err != nil {
		return false, uuid.Nil, postgres.MapError(err, "alert")
	}
	return false, existing, nil
}

func (s *PostgresAlerts) FindByID(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	a, err := scanAlert(txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx,
		`SELECT `+alertColumns+` FROM compliance_alerts WHERE id = $1`, id))
	if err != nil {
		return nil, postgres.MapError(err, "alert")
	}
	return a, nil
}

// Execute locks the row for the duration of the surrounding transaction.
func (s *PostgresAlerts) Execute(ctx context.Context, id uuid.UUID, validate func(*models.Alert) error, mutate func(*models.Alert)) (*models.Alert, error) {
	q := txcontext.QuerierFrom(ctx, s.pool)
	a, err := scanAlert(q.QueryRow(ctx,
		`SELECT `+alertColumns+` FROM compliance_alerts WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, postgres.MapError(err, "alert")
	}
	if err := validate(a); err != nil {
		return nil, err
	}
	mutate(a)

	_, err = q.Exec(ctx, `
		UPDATE compliance_alerts SET active = $2, dismissed_by = $3, dismissed_at = $4
		WHERE id = $1
	`, a.ID, a.Active, nullable(a.DismissedBy), a.DismissedAt)
	if err != nil {
		return nil, postgres.MapError(err, "alert")
	}
	return a, nil
}

func (s *PostgresAlerts) ListActive(ctx context.Context, all bool, locations []string) ([]*models.Alert, error) {
	if !all && len(locations) == 0 {
		return nil, nil
	}
	builder := psql.Select(alertColumns).From("compliance_alerts").
		Where(sq.Eq{"active": true}).
		OrderBy("due_at", "location")
	if !all {
		builder = builder.Where(sq.Eq{"location": locations})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build alerts query: %w", err)
	}

	rows, err := txcontext.QuerierFrom(ctx, s.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "alerts")
	}
	defer rows.Close()

	var out []*models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, postgres.MapError(err, "alerts")
		}
		out = append(out, a)
	}
	return out, postgres.MapError(rows.Err(), "alerts")
}

func (s *PostgresAlerts) Count(ctx context.Context) (int, error) {
	var n int
	err := txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx, `SELECT count(*) FROM compliance_alerts`).Scan(&n)
	return n, postgres.MapError(err, "alerts")
}

func scanAlert(row pgx.Row) (*models.Alert, error) {
	var (
		a           models.Alert
		typ         string
		dismissedBy *string
		details     []byte
	)
	if err := row.Scan(&a.ID, &typ, &a.Location, &a.DueAt, &a.Active, &a.CreatedAt, &dismissedBy, &a.DismissedAt, &details); err != nil {
		return nil, err
	}
	a.Type = models.AlertType(typ)
	if dismissedBy != nil {
		a.DismissedBy = *dismissedBy
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &a.Details); err != nil {
			return nil, fmt.Errorf("unmarshal alert details: %w", err)
		}
	}
	return &a, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// PostgresSettings stores the singleton row of alert_settings.
type PostgresSettings struct {
	pool *pgxpool.Pool
}

func NewPostgresSettings(pool *pgxpool.Pool) *PostgresSettings {
	return &PostgresSettings{pool: pool}
}

func (s *PostgresSettings) Get(ctx context.Context) (*models.Settings, error) {
	var st models.Settings
	err := txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx, `
		SELECT enabled, schedule, updated_by, updated_at FROM alert_settings WHERE id
	`).Scan(&st.Enabled, &st.Schedule, &st.UpdatedBy, &st.UpdatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "alert settings")
	}
	return &st, nil
}

func (s *PostgresSettings) Save(ctx context.Context, st *models.Settings) error {
	_, err := txcontext.QuerierFrom(ctx, s.pool).Exec(ctx, `
		INSERT INTO alert_settings (id, enabled, schedule, updated_by, updated_at)
		VALUES (TRUE, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET enabled = EXCLUDED.enabled, schedule = EXCLUDED.schedule,
		    updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at
	`, st.Enabled, st.Schedule, st.UpdatedBy, st.UpdatedAt)
	return postgres.MapError(err, "alert settings")
}
