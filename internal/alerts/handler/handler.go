package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"carecompliance/internal/alerts/models"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/httputil"
	"carecompliance/pkg/requestcontext"
)

// Service is the alert service as seen by HTTP.
type Service interface {
	ListActiveAlerts(ctx context.Context, actorID, location string) ([]*models.Alert, error)
	DismissAlert(ctx context.Context, actorID string, alertID uuid.UUID) (*models.Alert, error)
	RunNow(ctx context.Context, actorID string) (models.RunSummary, error)
	GetSettings(ctx context.Context, actorID string) (*models.Settings, error)
	UpdateSettings(ctx context.Context, actorID string, enabled bool, schedule string) (*models.Settings, error)
}

// Handler exposes alert endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/run", h.handleRun)
		r.Get("/settings", h.handleGetSettings)
		r.Put("/settings", h.handleUpdateSettings)
		r.Post("/{alertID}/dismiss", h.handleDismiss)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	alerts, err := h.service.ListActiveAlerts(ctx, requestcontext.ActorID(ctx), r.URL.Query().Get("location"))
	if err != nil {
		h.fail(ctx, w, "alert list failed", err)
		return
	}
	resp := AlertListResponse{Alerts: make([]AlertResponse, 0, len(alerts))}
	for _, a := range alerts {
		resp.Alerts = append(resp.Alerts, toAlertResponse(a))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "alertID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "alert not found"))
		return
	}
	alert, err := h.service.DismissAlert(ctx, requestcontext.ActorID(ctx), id)
	if err != nil {
		h.fail(ctx, w, "alert dismiss failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAlertResponse(alert))
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary, err := h.service.RunNow(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		h.fail(ctx, w, "alert run failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRunResponse(summary))
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st, err := h.service.GetSettings(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		h.fail(ctx, w, "alert settings lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSettingsResponse(st))
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UpdateSettingsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	st, err := h.service.UpdateSettings(ctx, requestcontext.ActorID(ctx), *req.Enabled, req.Schedule)
	if err != nil {
		h.fail(ctx, w, "alert settings update failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSettingsResponse(st))
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
