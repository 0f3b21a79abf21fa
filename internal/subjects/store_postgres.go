package subjects

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"carecompliance/internal/platform/postgres"
	txcontext "carecompliance/pkg/platform/tx"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore reads the subjects table kept in sync by the care-management domain.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Put upserts a subject.
func (s *PostgresStore) Put(ctx context.Context, subject Subject) error {
	_, err := txcontext.QuerierFrom(ctx, s.pool).Exec(ctx, `
		INSERT INTO subjects (id, location) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET location = EXCLUDED.location
	`, subject.ID, subject.Location)
	return postgres.MapError(err, "subject")
}

func (s *PostgresStore) List(ctx context.Context, all bool, locations []string) ([]Subject, error) {
	if !all && len(locations) == 0 {
		return nil, nil
	}
	builder := psql.Select("id", "location").From("subjects").OrderBy("id")
	if !all {
		builder = builder.Where(sq.Eq{"location": locations})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build subjects query: %w", err)
	}

	rows, err := txcontext.QuerierFrom(ctx, s.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "subjects")
	}
	defer rows.Close()

	var out []Subject
	for rows.Next() {
		var subj Subject
		if err := rows.Scan(&subj.ID, &subj.Location); err != nil {
			return nil, postgres.MapError(err, "subjects")
		}
		out = append(out, subj)
	}
	return out, postgres.MapError(rows.Err(), "subjects")
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Subject, error) {
	var subj Subject
	err := txcontext.QuerierFrom(ctx, s.pool).
		QueryRow(ctx, `SELECT id, location FROM subjects WHERE id = $1`, id).
		Scan(&subj.ID, &subj.Location)
	if err != nil {
		return Subject{}, postgres.MapError(err, "subject")
	}
	return subj, nil
}
