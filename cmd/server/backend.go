package main

import (
	"context"
	"fmt"
	"log/slog"

	"carecompliance/internal/access"
	alertservice "carecompliance/internal/alerts/service"
	alertstore "carecompliance/internal/alerts/store"
	checklistmodels "carecompliance/internal/checklist/models"
	checklistservice "carecompliance/internal/checklist/service"
	checkliststore "carecompliance/internal/checklist/store"
	docmodels "carecompliance/internal/documents/models"
	docservice "carecompliance/internal/documents/service"
	docstore "carecompliance/internal/documents/store"
	"carecompliance/internal/platform/config"
	"carecompliance/internal/platform/memtx"
	"carecompliance/internal/platform/postgres"
	"carecompliance/internal/subjects"
	httptransport "carecompliance/internal/transport/http"
)

type roleStore interface {
	access.RoleStore
	Put(ctx context.Context, role *access.Role) error
}

type subjectStore interface {
	subjects.Store
	Put(ctx context.Context, subject subjects.Subject) error
}

type ispStore interface {
	docservice.ISPStore
	ListActive(ctx context.Context) ([]*docmodels.ISPFile, error)
}

type fireEvacStore interface {
	docservice.FireEvacStore
	ListLatest(ctx context.Context, all bool, locations []string) ([]*docmodels.FireEvacPlan, error)
}

type templateStore interface {
	checklistservice.TemplateStore
	Put(ctx context.Context, t *checklistmodels.Template) error
}

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// backend is the storage layer every service shares: PostgreSQL when a DSN
// is configured, in-memory otherwise.
type backend struct {
	roles     roleStore
	subjects  subjectStore
	isp       ispStore
	fireEvac  fireEvacStore
	alerts    alertservice.AlertStore
	settings  alertservice.SettingsStore
	links     checklistservice.LinkStore
	templates templateStore
	tx        txRunner
	checks    map[string]httptransport.HealthCheck
	close     func()
}

func newBackend(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*backend, error) {
	if cfg.DSN == "" {
		logger.WarnContext(ctx, "no database configured, using in-memory stores")
		return newMemoryBackend(), nil
	}

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, cfg.DSN); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "connected to postgres", "max_conns", cfg.MaxConns)

	return &backend{
		roles:     access.NewPostgresRoleStore(pool),
		subjects:  subjects.NewPostgres(pool),
		isp:       docstore.NewPostgresISP(pool),
		fireEvac:  docstore.NewPostgresFireEvac(pool),
		alerts:    alertstore.NewPostgresAlerts(pool),
		settings:  alertstore.NewPostgresSettings(pool),
		links:     checkliststore.NewPostgresLinks(pool),
		templates: checkliststore.NewPostgresTemplates(pool),
		tx:        postgres.NewTxManager(pool),
		checks: map[string]httptransport.HealthCheck{
			"postgres": pool.Ping,
		},
		close: pool.Close,
	}, nil
}

func newMemoryBackend() *backend {
	return &backend{
		roles:     access.NewInMemoryRoleStore(),
		subjects:  subjects.NewInMemory(),
		isp:       docstore.NewInMemoryISP(),
		fireEvac:  docstore.NewInMemoryFireEvac(),
		alerts:    alertstore.NewInMemoryAlerts(),
		settings:  alertstore.NewInMemorySettings(),
		links:     checkliststore.NewInMemoryLinks(),
		templates: checkliststore.NewInMemoryTemplates(),
		tx:        memtx.New(),
		checks:    map[string]httptransport.HealthCheck{},
		close:     func() {},
	}
}
