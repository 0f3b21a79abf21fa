package store

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carecompliance/internal/checklist/models"
	"carecompliance/internal/platform/postgres"
	txcontext "carecompliance/pkg/platform/tx"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const linkColumns = `id, resident_id, template_id, guardian_email, token,
	sent_at, expires_at, completed, completed_at, responses`

// PostgresTemplates stores template items as JSONB.
type PostgresTemplates struct {
	pool *pgxpool.Pool
}

func NewPostgresTemplates(pool *pgxpool.Pool) *PostgresTemplates {
	return &PostgresTemplates{pool: pool}
}

func (s *PostgresTemplates) Put(ctx context.Context, t *models.Template) error {
	items, err := json.Marshal(t.Items)
	if err != nil {
		return fmt.Errorf("marshal template items: %w", err)
	}
	_, err = txcontext.QuerierFrom(ctx, s.pool).Exec(ctx, `
		INSERT INTO checklist_templates (id, name, items) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, items = EXCLUDED.items
	`, t.ID, t.Name, items)
	return postgres.MapError(err, "checklist template")
}

func (s *PostgresTemplates) Get(ctx context.Context, id string) (*models.Template, error) {
	t, err := scanTemplate(txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx,
		`SELECT id, name, items FROM checklist_templates WHERE id = $1`, id))
	if err != nil {
		return nil, postgres.MapError(err, "checklist template")
	}
	return t, nil
}

func (s *PostgresTemplates) List(ctx context.Context) ([]*models.Template, error) {
	rows, err := txcontext.QuerierFrom(ctx, s.pool).Query(ctx,
		`SELECT id, name, items FROM checklist_templates ORDER BY name`)
	if err != nil {
		return nil, postgres.MapError(err, "checklist templates")
	}
	defer rows.Close()

	var out []*models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, postgres.MapError(err, "checklist template")
		}
		out = append(out, t)
	}
	return out, postgres.MapError(rows.Err(), "checklist templates")
}

func scanTemplate(row pgx.Row) (*models.Template, error) {
	var (
		t     models.Template
		items []byte
	)
	if err := row.Scan(&t.ID, &t.Name, &items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &t.Items); err != nil {
		return nil, fmt.Errorf("unmarshal template items: %w", err)
	}
	return &t, nil
}

// PostgresLinks persists checklist links. The token column is unique.
type PostgresLinks struct {
	pool *pgxpool.Pool
}

func NewPostgresLinks(pool *pgxpool.Pool) *PostgresLinks {
	return &PostgresLinks{pool: pool}
}

func (s *PostgresLinks) Create(ctx context.Context, l *models.Link) error {
	responses, err := marshalResponses(l.Responses)
	if err != nil {
		return err
	}
	_, err = txcontext.QuerierFrom(ctx, s.pool).Exec(ctx, `
		INSERT INTO checklist_links (`+linkColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, l.ID, l.ResidentID, l.TemplateID, l.GuardianEmail, l.Token,
		l.SentAt, l.ExpiresAt, l.Completed, l.CompletedAt, responses)
	return postgres.MapError(err, "checklist link")
}

func (s *PostgresLinks) FindByID(ctx context.Context, id uuid.UUID) (*models.Link, error) {
	l, err := scanLink(txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx,
		`SELECT `+linkColumns+` FROM checklist_links WHERE id = $1`, id))
	if err != nil {
		return nil, postgres.MapError(err, "checklist link")
	}
	return l, nil
}

func (s *PostgresLinks) FindByToken(ctx context.Context, token string) (*models.Link, error) {
	l, err := scanLink(txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx,
		`SELECT `+linkColumns+` FROM checklist_links WHERE token = $1`, token))
	if err != nil {
		return nil, postgres.MapError(err, "checklist link")
	}
	return l, nil
}

func (s *PostgresLinks) ListByResidents(ctx context.Context, residentIDs []string) ([]*models.Link, error) {
	if len(residentIDs) == 0 {
		return nil, nil
	}
	query, args, err := psql.Select(linkColumns).From("checklist_links").
		Where(sq.Eq{"resident_id": residentIDs}).
		OrderBy("sent_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build checklist query: %w", err)
	}
	rows, err := txcontext.QuerierFrom(ctx, s.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "checklist links")
	}
	defer rows.Close()

	var out []*models.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, postgres.MapError(err, "checklist link")
		}
		out = append(out, l)
	}
	return out, postgres.MapError(rows.Err(), "checklist links")
}

// Execute locks the row for the duration of the surrounding transaction.
func (s *PostgresLinks) Execute(ctx context.Context, id uuid.UUID, validate func(*models.Link) error, mutate func(*models.Link)) (*models.Link, error) {
	q := txcontext.QuerierFrom(ctx, s.pool)
	l, err := scanLink(q.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM checklist_links WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, postgres.MapError(err, "checklist link")
	}
	if err := validate(l); err != nil {
		return nil, err
	}
	mutate(l)

	responses, err := marshalResponses(l.Responses)
	if err != nil {
		return nil, err
	}
	_, err = q.Exec(ctx, `
		UPDATE checklist_links
		SET expires_at = $2, completed = $3, completed_at = $4, responses = $5
		WHERE id = $1
	`, l.ID, l.ExpiresAt, l.Completed, l.CompletedAt, responses)
	if err != nil {
		return nil, postgres.MapError(err, "checklist link")
	}
	return l, nil
}

func marshalResponses(responses []models.Response) ([]byte, error) {
	if responses == nil {
		return nil, nil
	}
	raw, err := json.Marshal(responses)
	if err != nil {
		return nil, fmt.Errorf("marshal checklist responses: %w", err)
	}
	return raw, nil
}

func scanLink(row pgx.Row) (*models.Link, error) {
	var (
		l         models.Link
		responses []byte
	)
	err := row.Scan(&l.ID, &l.ResidentID, &l.TemplateID, &l.GuardianEmail, &l.Token,
		&l.SentAt, &l.ExpiresAt, &l.Completed, &l.CompletedAt, &responses)
	if err != nil {
		return nil, err
	}
	if len(responses) > 0 {
		if err := json.Unmarshal(responses, &l.Responses); err != nil {
			return nil, fmt.Errorf("unmarshal checklist responses: %w", err)
		}
	}
	return &l, nil
}
