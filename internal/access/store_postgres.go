package access

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carecompliance/internal/platform/postgres"
	txcontext "carecompliance/pkg/platform/tx"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRoleStore reads role assignments from the roles table.
type PostgresRoleStore struct {
	pool *pgxpool.Pool
}

func NewPostgresRoleStore(pool *pgxpool.Pool) *PostgresRoleStore {
	return &PostgresRoleStore{pool: pool}
}

// Put upserts a role assignment.
func (s *PostgresRoleStore) Put(ctx context.Context, role *Role) error {
	_, err := txcontext.QuerierFrom(ctx, s.pool).Exec(ctx, `
		INSERT INTO roles (subject_id, role, locations, email)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (subject_id) DO UPDATE
		SET role = EXCLUDED.role, locations = EXCLUDED.locations, email = EXCLUDED.email
	`, role.SubjectID, string(role.Role), role.Locations, role.Email)
	return postgres.MapError(err, "role")
}

func (s *PostgresRoleStore) GetRole(ctx context.Context, actorID string) (*Role, error) {
	row := txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx, `
		SELECT subject_id, role, locations, email FROM roles WHERE subject_id = $1
	`, actorID)
	role, err := scanRole(row)
	if err != nil {
		return nil, postgres.MapError(err, "role")
	}
	return role, nil
}

func (s *PostgresRoleStore) ListByLocation(ctx context.Context, location string) ([]*Role, error) {
	query, args, err := psql.
		Select("subject_id", "role", "locations", "email").
		From("roles").
		Where(sq.Or{
			sq.Eq{"role": string(RoleAdmin)},
			sq.Expr("? = ANY(locations)", location),
		}).
		OrderBy("subject_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build roles query: %w", err)
	}

	rows, err := txcontext.QuerierFrom(ctx, s.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "roles")
	}
	defer rows.Close()

	var out []*Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, postgres.MapError(err, "roles")
		}
		out = append(out, role)
	}
	return out, postgres.MapError(rows.Err(), "roles")
}

func scanRole(row pgx.Row) (*Role, error) {
	var (
		role     Role
		roleName string
	)
	if err := row.Scan(&role.SubjectID, &roleName, &role.Locations, &role.Email); err != nil {
		return nil, err
	}
	role.Role = RoleName(roleName)
	return &role, nil
}
