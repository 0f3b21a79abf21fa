package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"carecompliance/internal/access"
	alerthandler "carecompliance/internal/alerts/handler"
	alertmetrics "carecompliance/internal/alerts/metrics"
	"carecompliance/internal/alerts/scheduler"
	alertservice "carecompliance/internal/alerts/service"
	checklisthandler "carecompliance/internal/checklist/handler"
	checklistservice "carecompliance/internal/checklist/service"
	"carecompliance/internal/documents/blob"
	dochandler "carecompliance/internal/documents/handler"
	docmetrics "carecompliance/internal/documents/metrics"
	docservice "carecompliance/internal/documents/service"
	jwttoken "carecompliance/internal/jwt_token"
	"carecompliance/internal/notify"
	overviewhandler "carecompliance/internal/overview/handler"
	overviewservice "carecompliance/internal/overview/service"
	"carecompliance/internal/platform/config"
	"carecompliance/internal/platform/httpserver"
	"carecompliance/internal/platform/logger"
	"carecompliance/internal/platform/metrics"
	"carecompliance/internal/platform/redis"
	"carecompliance/internal/ratelimit"
	"carecompliance/internal/seed"
	httptransport "carecompliance/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	be, err := newBackend(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer be.close()

	if err := loadSeed(ctx, cfg.Seed, be, log); err != nil {
		return err
	}

	auditPub, closeAudit, err := newAuditPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	policy := access.NewPolicy(be.roles)
	dispatcher := notify.NewDispatcher(newSender(cfg.Email, log),
		notify.WithLogger(log),
		notify.WithMetrics(notify.NewMetrics()),
	)

	blobKey := cfg.Blob.SigningKey
	if blobKey == "" {
		log.WarnContext(ctx, "blob signing key not set, reusing the auth signing key")
		blobKey = cfg.Auth.JWTSigningKey
	}
	blobs, err := blob.NewSigner(cfg.Blob.BaseURL, blobKey, cfg.Blob.DownloadTTL)
	if err != nil {
		return err
	}

	docMetrics := docmetrics.New()
	docSvc := docservice.New(be.isp, be.fireEvac, be.subjects, blobs, policy,
		docservice.WithLogger(log),
		docservice.WithAuditEmitter(auditPub),
		docservice.WithMetrics(docMetrics),
		docservice.WithTx(be.tx),
		docservice.WithMaxUploadBytes(cfg.Documents.MaxUploadBytes),
	)

	alertMetrics := alertmetrics.New()
	alertSvc := alertservice.New(be.alerts, be.settings, be.isp, be.fireEvac, be.subjects, policy,
		alertservice.WithLogger(log),
		alertservice.WithAuditEmitter(auditPub),
		alertservice.WithMetrics(alertMetrics),
		alertservice.WithTx(be.tx),
		alertservice.WithDefaultSchedule(cfg.Alerts.DefaultSchedule),
	)

	checklistSvc := checklistservice.New(be.links, be.templates, be.subjects, policy, dispatcher,
		checklistservice.WithLogger(log),
		checklistservice.WithAuditEmitter(auditPub),
		checklistservice.WithTx(be.tx),
		checklistservice.WithLinkTTL(cfg.Checklist.LinkTTL),
		checklistservice.WithPublicURL(cfg.Email.PublicURL),
	)

	overviewSvc := overviewservice.New(overviewservice.Sources{
		Subjects:  be.subjects,
		ISP:       be.isp,
		FireEvac:  be.fireEvac,
		Alerts:    be.alerts,
		Links:     be.links,
		Templates: be.templates,
	}, policy, dispatcher,
		overviewservice.WithLogger(log),
		overviewservice.WithAuditEmitter(auditPub),
	)

	schedOpts := []scheduler.Option{
		scheduler.WithLogger(log),
		scheduler.WithMetrics(alertMetrics),
		scheduler.WithLockTTL(cfg.Alerts.LockTTL),
		scheduler.WithRunTimeout(cfg.Alerts.RunTimeout),
	}
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		schedOpts = append(schedOpts, scheduler.WithLocker(redisClient))
		be.checks["redis"] = redisClient.Health
	} else {
		log.WarnContext(ctx, "redis not configured, alert runs are not coordinated across instances")
	}
	sched := scheduler.New(alertSvc, schedOpts...)
	alertSvc.OnSettingsChange(sched.Reload)
	if err := sched.Start(ctx); err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Handlers{
		Documents: dochandler.New(docSvc, log, docMetrics),
		Alerts:    alerthandler.New(alertSvc, log),
		Checklist: checklisthandler.New(checklistSvc, log),
		Overview:  overviewhandler.New(overviewSvc, log),
	}, httptransport.Config{
		Validator:     jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer),
		Logger:        log,
		Metrics:       metrics.New(),
		Checks:        be.checks,
		PublicLimiter: newPublicLimiter(cfg.RateLimit, redisClient, log),
	})

	srv := httpserver.New(cfg.Server, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting carecompliance", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Warn("scheduler stop timed out", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

func newSender(cfg config.EmailConfig, log *slog.Logger) notify.Sender {
	if cfg.BaseURL == "" {
		log.Warn("email API not configured, messages are logged only")
		return notify.NewLogSender(log)
	}
	return notify.NewClient(cfg)
}

// newPublicLimiter shares windows through Redis when it is configured and
// keeps them in process otherwise.
func newPublicLimiter(cfg config.RateLimitConfig, rc *redis.Client, log *slog.Logger) *ratelimit.Limiter {
	if cfg.Disabled {
		log.Warn("public endpoint rate limiting disabled")
		return nil
	}
	limit := ratelimit.Limit{Requests: cfg.PublicRequests, Window: cfg.PublicWindow}
	opts := []ratelimit.Option{
		ratelimit.WithLogger(log),
		ratelimit.WithMetrics(ratelimit.NewMetrics()),
	}
	if rc == nil {
		return ratelimit.NewLimiter(ratelimit.NewInMemoryStore(), limit, opts...)
	}
	return ratelimit.NewLimiter(ratelimit.NewRedisStore(rc), limit, opts...)
}

func loadSeed(ctx context.Context, cfg config.SeedConfig, be *backend, log *slog.Logger) error {
	var (
		f   *seed.File
		err error
	)
	switch {
	case cfg.Path != "":
		f, err = seed.LoadFile(cfg.Path)
	case cfg.Demo:
		f, err = seed.Demo()
	default:
		return nil
	}
	if err != nil {
		return err
	}
	if err := seed.Apply(ctx, f, be.roles, be.subjects, be.templates); err != nil {
		return err
	}
	log.InfoContext(ctx, "seed data applied",
		"roles", len(f.Roles),
		"subjects", len(f.Subjects),
		"templates", len(f.Templates),
	)
	return nil
}
