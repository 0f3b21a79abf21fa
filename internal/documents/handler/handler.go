package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	docmetrics "carecompliance/internal/documents/metrics"
	"carecompliance/internal/documents/models"
	"carecompliance/pkg/domain"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/httputil"
	"carecompliance/pkg/requestcontext"
)

// Service is the document lifecycle service as seen by HTTP.
type Service interface {
	RequestUpload(ctx context.Context, actorID, contentType string, size int64) (*models.UploadHandle, error)
	UploadISPDraft(ctx context.Context, actorID string, req models.UploadISPDraftRequest) (*models.ISPFile, error)
	ActivateISPFile(ctx context.Context, actorID string, fileID uuid.UUID) (*models.ISPFile, error)
	ArchiveISPFile(ctx context.Context, actorID string, fileID uuid.UUID) (*models.ISPFile, error)
	GetISPFile(ctx context.Context, actorID string, fileID uuid.UUID) (*models.ISPFile, error)
	ListISPFiles(ctx context.Context, actorID, residentID string) ([]*models.ISPFile, error)
	ISPFileDownloadURL(ctx context.Context, actorID string, fileID uuid.UUID) (*models.DownloadLink, error)
	UploadFireEvacPlan(ctx context.Context, actorID, location string, file models.FileRef) (*models.FireEvacPlan, error)
	LatestFireEvacPlan(ctx context.Context, actorID, location string) (*models.FireEvacPlan, error)
	ListFireEvacPlans(ctx context.Context, actorID, location string) ([]*models.FireEvacPlan, error)
	DownloadURL(ctx context.Context, actorID string, ref domain.ItemRef) (*models.DownloadLink, error)
}

// Handler exposes ISP and Fire-Evac document endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *docmetrics.Metrics
}

func New(service Service, logger *slog.Logger, metrics *docmetrics.Metrics) *Handler {
	return &Handler{service: service, logger: logger, metrics: metrics}
}

// Register mounts document endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/uploads", h.handleRequestUpload)
	r.Post("/downloads", h.handleDownload)

	r.Route("/residents/{residentID}/isp-files", func(r chi.Router) {
		r.Get("/", h.handleListISPFiles)
		r.Post("/", h.handleUploadISP)
	})
	r.Route("/isp-files/{fileID}", func(r chi.Router) {
		r.Get("/", h.handleGetISPFile)
		r.Delete("/", h.handleArchiveISP)
		r.Post("/activate", h.handleActivateISP)
		r.Get("/download", h.handleISPDownload)
	})
	r.Route("/locations/{location}/fire-evac-plans", func(r chi.Router) {
		r.Get("/", h.handleListFireEvac)
		r.Post("/", h.handleUploadFireEvac)
		r.Get("/latest", h.handleLatestFireEvac)
	})
}

func (h *Handler) handleRequestUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RequestUploadRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	handle, err := h.service.RequestUpload(ctx, requestcontext.ActorID(ctx), req.ContentType, req.Size)
	if err != nil {
		h.fail(ctx, w, "upload request failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, handle)
}

func (h *Handler) handleUploadISP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	residentID := chi.URLParam(r, "residentID")

	req, ok := httputil.DecodeAndPrepare[UploadISPRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	file, err := h.service.UploadISPDraft(ctx, requestcontext.ActorID(ctx), req.toModel(residentID))
	if err != nil {
		h.fail(ctx, w, "isp upload failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toISPFileResponse(file))
}

func (h *Handler) handleListISPFiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	files, err := h.service.ListISPFiles(ctx, requestcontext.ActorID(ctx), chi.URLParam(r, "residentID"))
	if err != nil {
		h.fail(ctx, w, "isp list failed", err)
		return
	}
	resp := ISPFileListResponse{Files: make([]ISPFileResponse, 0, len(files))}
	for _, f := range files {
		resp.Files = append(resp.Files, toISPFileResponse(f))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetISPFile(w http.ResponseWriter, r *http.Request) {
	h.withFileID(w, r, func(ctx context.Context, actorID string, id uuid.UUID) (any, error) {
		f, err := h.service.GetISPFile(ctx, actorID, id)
		if err != nil {
			return nil, err
		}
		return toISPFileResponse(f), nil
	})
}

func (h *Handler) handleActivateISP(w http.ResponseWriter, r *http.Request) {
	h.withFileID(w, r, func(ctx context.Context, actorID string, id uuid.UUID) (any, error) {
		f, err := h.service.ActivateISPFile(ctx, actorID, id)
		if err != nil {
			return nil, err
		}
		return toISPFileResponse(f), nil
	})
}

func (h *Handler) handleArchiveISP(w http.ResponseWriter, r *http.Request) {
	h.withFileID(w, r, func(ctx context.Context, actorID string, id uuid.UUID) (any, error) {
		f, err := h.service.ArchiveISPFile(ctx, actorID, id)
		if err != nil {
			return nil, err
		}
		return toISPFileResponse(f), nil
	})
}

func (h *Handler) handleISPDownload(w http.ResponseWriter, r *http.Request) {
	h.withFileID(w, r, func(ctx context.Context, actorID string, id uuid.UUID) (any, error) {
		return h.service.ISPFileDownloadURL(ctx, actorID, id)
	})
}

func (h *Handler) handleUploadFireEvac(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UploadFireEvacRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	plan, err := h.service.UploadFireEvacPlan(ctx, requestcontext.ActorID(ctx), chi.URLParam(r, "location"), req.File.ref())
	if err != nil {
		h.fail(ctx, w, "fire evac upload failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toFireEvacPlanResponse(plan))
}

func (h *Handler) handleLatestFireEvac(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plan, err := h.service.LatestFireEvacPlan(ctx, requestcontext.ActorID(ctx), chi.URLParam(r, "location"))
	if err != nil {
		h.fail(ctx, w, "fire evac lookup failed", err)
		return
	}
	if plan == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no fire evac plan for location"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toFireEvacPlanResponse(plan))
}

func (h *Handler) handleListFireEvac(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plans, err := h.service.ListFireEvacPlans(ctx, requestcontext.ActorID(ctx), chi.URLParam(r, "location"))
	if err != nil {
		h.fail(ctx, w, "fire evac list failed", err)
		return
	}
	resp := FireEvacPlanListResponse{Plans: make([]FireEvacPlanResponse, 0, len(plans))}
	for _, p := range plans {
		resp.Plans = append(resp.Plans, toFireEvacPlanResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[DownloadRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	link, err := h.service.DownloadURL(ctx, requestcontext.ActorID(ctx), req.Item)
	if err != nil {
		h.fail(ctx, w, "download link failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, link)
}

func (h *Handler) withFileID(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actorID string, id uuid.UUID) (any, error)) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "fileID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "isp file not found"))
		return
	}
	resp, err := fn(ctx, requestcontext.ActorID(ctx), id)
	if err != nil {
		h.fail(ctx, w, "isp file request failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
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
