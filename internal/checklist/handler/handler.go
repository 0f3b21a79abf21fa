package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"carecompliance/internal/checklist/models"
	"carecompliance/internal/checklist/service"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/httputil"
	"carecompliance/pkg/requestcontext"
)

// Service is the checklist service as seen by HTTP.
type Service interface {
	SendChecklist(ctx context.Context, actorID string, req service.SendRequest) (*service.SendResult, error)
	ResendChecklist(ctx context.Context, actorID string, linkID uuid.UUID) (*service.SendResult, error)
	OpenChecklist(ctx context.Context, token string) (*models.Link, *models.Template, error)
	SubmitChecklist(ctx context.Context, token string, responses []models.Response) (*models.Link, error)
	ListTemplates(ctx context.Context, actorID string) ([]*models.Template, error)
}

// Handler exposes staff checklist endpoints and the guardian-facing form.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the authenticated endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/checklist-templates", h.handleListTemplates)
	r.Post("/residents/{residentID}/checklists", h.handleSend)
	r.Post("/checklists/{linkID}/resend", h.handleResend)
}

// RegisterPublic mounts the guardian endpoints. They take no bearer token;
// the link token authorizes the request.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/checklists/form/{token}", h.handleOpen)
	r.Post("/checklists/submit", h.handleSubmit)
}

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templates, err := h.service.ListTemplates(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		h.fail(ctx, w, "checklist template list failed", err)
		return
	}
	if templates == nil {
		templates = []*models.Template{}
	}
	httputil.WriteJSON(w, http.StatusOK, TemplateListResponse{Templates: templates})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SendChecklistRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.SendChecklist(ctx, requestcontext.ActorID(ctx), service.SendRequest{
		ResidentID:    chi.URLParam(r, "residentID"),
		TemplateID:    req.TemplateID,
		GuardianEmail: req.GuardianEmail,
	})
	if err != nil {
		h.fail(ctx, w, "checklist send failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSendResponse(res, requestcontext.Now(ctx)))
}

func (h *Handler) handleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "linkID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "checklist not found"))
		return
	}
	res, err := h.service.ResendChecklist(ctx, requestcontext.ActorID(ctx), id)
	if err != nil {
		h.fail(ctx, w, "checklist resend failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSendResponse(res, requestcontext.Now(ctx)))
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	link, tpl, err := h.service.OpenChecklist(ctx, chi.URLParam(r, "token"))
	if err != nil {
		h.fail(ctx, w, "checklist open failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FormResponse{
		TemplateName: tpl.Name,
		Items:        tpl.Items,
		Status:       string(link.Status(requestcontext.Now(ctx))),
		ExpiresAt:    link.ExpiresAt,
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitChecklistRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	link, err := h.service.SubmitChecklist(ctx, req.Token, req.responses())
	if err != nil {
		h.fail(ctx, w, "checklist submit failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SubmitResponse{Status: string(models.StatusCompleted), CompletedAt: link.CompletedAt})
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
