package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"carecompliance/internal/documents/handler/mocks"
	"carecompliance/internal/documents/models"
	"carecompliance/pkg/domain"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type DocumentHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestDocumentHandlerSuite(t *testing.T) {
	suite.Run(t, new(DocumentHandlerSuite))
}

func (s *DocumentHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), nil).Register(s.router)
}

func (s *DocumentHandlerSuite) TestUploadISP() {
	s.Run("decodes the body and returns the draft", func() {
		fileID := uuid.New()
		s.service.EXPECT().UploadISPDraft(gomock.Any(), "staff-1", models.UploadISPDraftRequest{
			ResidentID:    "R1",
			VersionLabel:  "2026-A",
			EffectiveDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			File:          models.FileRef{StorageID: "blob-1", FileName: "isp.pdf", ContentType: models.ContentTypePDF, Size: 100},
		}).Return(&models.ISPFile{
			ID:            fileID,
			ResidentID:    "R1",
			VersionLabel:  "2026-A",
			EffectiveDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			Status:        models.ISPStatusDraft,
		}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/residents/R1/isp-files", map[string]any{
			"version_label":  "2026-A",
			"effective_date": "2026-01-15",
			"file":           map[string]any{"storage_id": "blob-1", "file_name": "isp.pdf", "content_type": models.ContentTypePDF, "size": 100},
		})
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "staff-1"))

		s.Equal(http.StatusCreated, rr.Code)
		resp := testutil.UnmarshalResponse[ISPFileResponse](s.T(), rr)
		s.Equal(fileID.String(), resp.ID)
		s.Equal("draft", resp.Status)
		s.Equal("2026-01-15", resp.EffectiveDate)
	})

	s.Run("bad date is rejected before the service", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/residents/R1/isp-files", map[string]any{
			"version_label":  "v1",
			"effective_date": "15/01/2026",
		})
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "staff-1"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
	})

	s.Run("unknown fields are rejected", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/residents/R1/isp-files", `{"version_label":"v1","effective_date":"2026-01-01","ssn":"x"}`)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "staff-1"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})
}

func (s *DocumentHandlerSuite) TestActivateISP() {
	s.Run("maps invalid state to 409", func() {
		id := uuid.New()
		s.service.EXPECT().ActivateISPFile(gomock.Any(), "sup-1", id).
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "only draft files can be activated"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/isp-files/"+id.String()+"/activate", nil)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "sup-1"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeInvalidState))
	})

	s.Run("malformed id is not found", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/isp-files/not-a-uuid/activate", nil)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "sup-1"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}

func (s *DocumentHandlerSuite) TestArchiveISP() {
	id := uuid.New()
	s.service.EXPECT().ArchiveISPFile(gomock.Any(), "sup-1", id).
		Return(nil, dErrors.New(dErrors.CodeForbidden, "insufficient role"))

	req := testutil.NewJSONRequest(s.T(), http.MethodDelete, "/isp-files/"+id.String(), nil)
	rr := testutil.DoRequest(s.router, testutil.WithActor(req, "sup-1"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
}

func (s *DocumentHandlerSuite) TestFireEvac() {
	s.Run("upload returns the new version", func() {
		planID := uuid.New()
		s.service.EXPECT().UploadFireEvacPlan(gomock.Any(), "sup-1", "Beta", models.FileRef{
			StorageID: "b1", FileName: "plan.pdf", ContentType: models.ContentTypePDF, Size: 10,
		}).Return(&models.FireEvacPlan{ID: planID, Location: "Beta", Version: 4}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/locations/Beta/fire-evac-plans", map[string]any{
			"file": map[string]any{"storage_id": "b1", "file_name": "plan.pdf", "content_type": models.ContentTypePDF, "size": 10},
		})
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "sup-1"))
		s.Equal(http.StatusCreated, rr.Code)
		resp := testutil.UnmarshalResponse[FireEvacPlanResponse](s.T(), rr)
		s.Equal(4, resp.Version)
	})

	s.Run("latest with no plan is 404", func() {
		s.service.EXPECT().LatestFireEvacPlan(gomock.Any(), "sup-1", "Delta").Return(nil, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/locations/Delta/fire-evac-plans/latest", nil)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "sup-1"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}

func (s *DocumentHandlerSuite) TestDownload() {
	s.Run("accepts the legacy string item id", func() {
		ref := domain.ItemRef{Kind: domain.ItemKindFireEvac, EntityID: "3f2b-4a5c"}
		s.service.EXPECT().DownloadURL(gomock.Any(), "staff-1", ref).
			Return(&models.DownloadLink{URL: "https://files.test/x"}, nil)

		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/downloads", `{"item":"fire-evac-3f2b-4a5c"}`)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "staff-1"))
		s.Equal(http.StatusOK, rr.Code)
	})

	s.Run("missing item is a validation error", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/downloads", `{}`)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "staff-1"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
	})
}
