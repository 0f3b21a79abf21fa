package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carecompliance/internal/documents/models"
	"carecompliance/internal/platform/postgres"
	txcontext "carecompliance/pkg/platform/tx"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const ispColumns = `id, resident_id, version_label, effective_date, status,
	storage_id, file_name, content_type, size_bytes, notes,
	due_at, activated_at, archived_at, uploaded_by, created_at`

// PostgresISP persists ISP files. Calls join the context transaction when present.
type PostgresISP struct {
	pool *pgxpool.Pool
}

func NewPostgresISP(pool *pgxpool.Pool) *PostgresISP {
	return &PostgresISP{pool: pool}
}

func (s *PostgresISP) Create(ctx context.Context, f *models.ISPFile) error {
	_, err := txcontext.QuerierFrom(ctx, s.pool).Exec(ctx, `
		INSERT INTO isp_files (`+ispColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, f.ID, f.ResidentID, f.VersionLabel, f.EffectiveDate, string(f.Status),
		f.File.StorageID, f.File.FileName, f.File.ContentType, f.File.Size, f.Notes,
		f.DueAt, f.ActivatedAt, f.ArchivedAt, f.UploadedBy, f.CreatedAt)
	return postgres.MapError(err, "isp file")
}

func (s *PostgresISP) FindByID(ctx context.Context, id uuid.UUID) (*models.ISPFile, error) {
	row := txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx,
		`SELECT `+ispColumns+` FROM isp_files WHERE id = $1`, id)
	f, err := scanISP(row)
	if err != nil {
		return nil, postgres.MapError(err, "isp file")
	}
	return f, nil
}

func (s *PostgresISP) ListByResident(ctx context.Context, residentID string) ([]*models.ISPFile, error) {
	return s.list(ctx, psql.Select(ispColumns).From("isp_files").
		Where(sq.Eq{"resident_id": residentID}).
		OrderBy("created_at DESC"))
}

func (s *PostgresISP) FindActiveByResident(ctx context.Context, residentID string) (*models.ISPFile, error) {
	row := txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx,
		`SELECT `+ispColumns+` FROM isp_files WHERE resident_id = $1 AND status = 'active'`, residentID)
	f, err := scanISP(row)
	if err != nil {
		return nil, postgres.MapError(err, "active isp file")
	}
	return f, nil
}

func (s *PostgresISP) ListActive(ctx context.Context) ([]*models.ISPFile, error) {
	return s.list(ctx, psql.Select(ispColumns).From("isp_files").
		Where(sq.Eq{"status": string(models.ISPStatusActive)}).
		OrderBy("resident_id"))
}

func (s *PostgresISP) ArchiveActiveForResident(ctx context.Context, residentID string, exceptID uuid.UUID, now time.Time) (int, error) {
	tag, err := txcontext.QuerierFrom(ctx, s.pool).Exec(ctx, `
		UPDATE isp_files SET status = 'archived', archived_at = $3
		WHERE resident_id = $1 AND status = 'active' AND id <> $2
	`, residentID, exceptID, now)
	if err != nil {
		return 0, postgres.MapError(err, "isp file")
	}
	return int(tag.RowsAffected()), nil
}

// Execute locks the row, runs validate and mutate, and writes the result back.
// Callers run it inside a transaction so the lock is held until commit.
func (s *PostgresISP) Execute(ctx context.Context, id uuid.UUID, validate func(*models.ISPFile) error, mutate func(*models.ISPFile)) (*models.ISPFile, error) {
	q := txcontext.QuerierFrom(ctx, s.pool)
	f, err := scanISP(q.QueryRow(ctx,
		`SELECT `+ispColumns+` FROM isp_files WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, postgres.MapError(err, "isp file")
	}
	if err := validate(f); err != nil {
		return nil, err
	}
	mutate(f)

	_, err = q.Exec(ctx, `
		UPDATE isp_files
		SET status = $2, due_at = $3, activated_at = $4, archived_at = $5
		WHERE id = $1
	`, f.ID, string(f.Status), f.DueAt, f.ActivatedAt, f.ArchivedAt)
	if err != nil {
		return nil, postgres.MapError(err, "isp file")
	}
	return f, nil
}

func (s *PostgresISP) list(ctx context.Context, builder sq.SelectBuilder) ([]*models.ISPFile, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build isp query: %w", err)
	}
	rows, err := txcontext.QuerierFrom(ctx, s.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "isp files")
	}
	defer rows.Close()

	var out []*models.ISPFile
	for rows.Next() {
		f, err := scanISP(rows)
		if err != nil {
			return nil, postgres.MapError(err, "isp files")
		}
		out = append(out, f)
	}
	return out, postgres.MapError(rows.Err(), "isp files")
}

func scanISP(row pgx.Row) (*models.ISPFile, error) {
	var (
		f      models.ISPFile
		status string
	)
	err := row.Scan(&f.ID, &f.ResidentID, &f.VersionLabel, &f.EffectiveDate, &status,
		&f.File.StorageID, &f.File.FileName, &f.File.ContentType, &f.File.Size, &f.Notes,
		&f.DueAt, &f.ActivatedAt, &f.ArchivedAt, &f.UploadedBy, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	f.Status = models.ISPStatus(status)
	return &f, nil
}

const planColumns = `id, location, version, storage_id, file_name, content_type,
	size_bytes, uploaded_by, uploaded_at, due_at`

// PostgresFireEvac persists plans and the per-location version counter.
type PostgresFireEvac struct {
	pool *pgxpool.Pool
}

func NewPostgresFireEvac(pool *pgxpool.Pool) *PostgresFireEvac {
	return &PostgresFireEvac{pool: pool}
}

// NextVersion increments the counter row. The row lock it takes serializes
// concurrent uploads for the same location until the transaction ends.
func (s *PostgresFireEvac) NextVersion(ctx context.Context, location string) (int, error) {
	var version int
	err := txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx, `
		INSERT INTO fire_evac_versions (location, current_version) VALUES ($1, 1)
		ON CONFLICT (location) DO UPDATE
		SET current_version = fire_evac_versions.current_version + 1
		RETURNING current_version
	`, location).Scan(&version)
	if err != nil {
		return 0, postgres.MapError(err, "fire evac version")
	}
	return version, nil
}

func (s *PostgresFireEvac) Create(ctx context.Context, p *models.FireEvacPlan) error {
	_, err := txcontext.QuerierFrom(ctx, s.pool).Exec(ctx, `
		INSERT INTO fire_evac_plans (`+planColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.Location, p.Version, p.File.StorageID, p.File.FileName, p.File.ContentType,
		p.File.Size, p.UploadedBy, p.UploadedAt, p.DueAt)
	return postgres.MapError(err, "fire evac plan")
}

func (s *PostgresFireEvac) FindByID(ctx context.Context, id uuid.UUID) (*models.FireEvacPlan, error) {
	p, err := scanPlan(txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx,
		`SELECT `+planColumns+` FROM fire_evac_plans WHERE id = $1`, id))
	if err != nil {
		return nil, postgres.MapError(err, "fire evac plan")
	}
	return p, nil
}

func (s *PostgresFireEvac) Latest(ctx context.Context, location string) (*models.FireEvacPlan, error) {
	p, err := scanPlan(txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx, `
		SELECT `+planColumns+` FROM fire_evac_plans
		WHERE location = $1 ORDER BY version DESC LIMIT 1
	`, location))
	if err != nil {
		return nil, postgres.MapError(err, "fire evac plan")
	}
	return p, nil
}

// ListLatest uses DISTINCT ON to pick the highest version per location.
func (s *PostgresFireEvac) ListLatest(ctx context.Context, all bool, locations []string) ([]*models.FireEvacPlan, error) {
	if !all && len(locations) == 0 {
		return nil, nil
	}
	builder := psql.Select(planColumns).
		Options("DISTINCT ON (location)").
		From("fire_evac_plans").
		OrderBy("location", "version DESC")
	if !all {
		builder = builder.Where(sq.Eq{"location": locations})
	}
	return s.list(ctx, builder)
}

func (s *PostgresFireEvac) ListByLocation(ctx context.Context, location string) ([]*models.FireEvacPlan, error) {
	return s.list(ctx, psql.Select(planColumns).From("fire_evac_plans").
		Where(sq.Eq{"location": location}).
		OrderBy("version DESC"))
}

func (s *PostgresFireEvac) list(ctx context.Context, builder sq.SelectBuilder) ([]*models.FireEvacPlan, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build fire evac query: %w", err)
	}
	rows, err := txcontext.QuerierFrom(ctx, s.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "fire evac plans")
	}
	defer rows.Close()

	var out []*models.FireEvacPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, postgres.MapError(err, "fire evac plans")
		}
		out = append(out, p)
	}
	return out, postgres.MapError(rows.Err(), "fire evac plans")
}

func scanPlan(row pgx.Row) (*models.FireEvacPlan, error) {
	var p models.FireEvacPlan
	err := row.Scan(&p.ID, &p.Location, &p.Version, &p.File.StorageID, &p.File.FileName,
		&p.File.ContentType, &p.File.Size, &p.UploadedBy, &p.UploadedAt, &p.DueAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
