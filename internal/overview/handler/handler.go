package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	checklistmodels "carecompliance/internal/checklist/models"
	"carecompliance/internal/overview/models"
	"carecompliance/pkg/domain"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/httputil"
	"carecompliance/pkg/requestcontext"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Service is the overview service as seen by HTTP.
type Service interface {
	Overview(ctx context.Context, actorID string) ([]models.Item, error)
	GuardianChecklistOverview(ctx context.Context, actorID string) ([]checklistmodels.LinkSummary, error)
	SendReminders(ctx context.Context, actorID string, refs []domain.ItemRef) (*models.ReminderSummary, error)
	ExportList(ctx context.Context, actorID string, refs []domain.ItemRef) ([]byte, error)
}

// Handler exposes overview endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/overview", func(r chi.Router) {
		r.Get("/", h.handleOverview)
		r.Get("/checklists", h.handleChecklists)
		r.Post("/reminders", h.handleReminders)
		r.Post("/export", h.handleExport)
	})
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := h.service.Overview(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		h.fail(ctx, w, "overview failed", err)
		return
	}
	resp := OverviewResponse{Items: make([]ItemResponse, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, toItemResponse(it))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleChecklists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.service.GuardianChecklistOverview(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		h.fail(ctx, w, "checklist overview failed", err)
		return
	}
	if rows == nil {
		rows = []checklistmodels.LinkSummary{}
	}
	httputil.WriteJSON(w, http.StatusOK, ChecklistOverviewResponse{Links: rows})
}

func (h *Handler) handleReminders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SendRemindersRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	summary, err := h.service.SendReminders(ctx, requestcontext.ActorID(ctx), req.Items)
	if err != nil {
		h.fail(ctx, w, "send reminders failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ExportRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	data, err := h.service.ExportList(ctx, requestcontext.ActorID(ctx), req.Items)
	if err != nil {
		h.fail(ctx, w, "export failed", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="compliance.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(ctx, "failed to write export",
			"request_id", requestID,
			"error", err,
		)
	}
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
