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

	"carecompliance/internal/due"
	"carecompliance/internal/overview/handler/mocks"
	"carecompliance/internal/overview/models"
	"carecompliance/pkg/domain"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type OverviewHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestOverviewHandlerSuite(t *testing.T) {
	suite.Run(t, new(OverviewHandlerSuite))
}

func (s *OverviewHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *OverviewHandlerSuite) TestOverview() {
	s.Run("renders items with both ref forms", func() {
		alertID := uuid.New()
		dueAt := time.Date(2026, 6, 30, 9, 0, 0, 0, time.UTC)
		s.service.EXPECT().Overview(gomock.Any(), "sup-1").Return([]models.Item{{
			Ref:           domain.ItemRef{Kind: domain.ItemKindISP, EntityID: "R1"},
			Location:      "Alpha",
			Type:          due.KindISP,
			DueDate:       dueAt,
			Status:        due.StatusDueSoon,
			DaysUntilDue:  25,
			ActiveAlertID: &alertID,
		}}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/overview", nil)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "sup-1"))

		s.Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[OverviewResponse](s.T(), rr)
		s.Require().Len(resp.Items, 1)
		s.Equal("isp-R1", resp.Items[0].ID)
		s.Equal(domain.ItemKindISP, resp.Items[0].Ref.Kind)
		s.Equal("due-soon", resp.Items[0].Status)
		s.Equal(alertID.String(), resp.Items[0].ActiveAlertID)
		s.Nil(resp.Items[0].LastAction)
	})

	s.Run("empty overview is an empty array", func() {
		s.service.EXPECT().Overview(gomock.Any(), "sup-1").Return(nil, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/overview", nil)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "sup-1"))

		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`{"items":[]}`, rr.Body.String())
	})

	s.Run("unknown actor", func() {
		s.service.EXPECT().Overview(gomock.Any(), "ghost").Return(nil, dErrors.New(dErrors.CodeForbidden, "no role"))

		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/overview", nil)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "ghost"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})
}

func (s *OverviewHandlerSuite) TestChecklists() {
	s.service.EXPECT().GuardianChecklistOverview(gomock.Any(), "sup-1").Return(nil, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/overview/checklists", nil)
	rr := testutil.DoRequest(s.router, testutil.WithActor(req, "sup-1"))

	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"links":[]}`, rr.Body.String())
}

func (s *OverviewHandlerSuite) TestReminders() {
	s.Run("accepts string and structured refs", func() {
		want := []domain.ItemRef{
			{Kind: domain.ItemKindISP, EntityID: "R1"},
			{Kind: domain.ItemKindFireEvac, EntityID: "plan-1"},
		}
		s.service.EXPECT().SendReminders(gomock.Any(), "sup-1", want).Return(&models.ReminderSummary{
			Requested: 2, Resolved: 2, Sent: 1, NotFound: []domain.ItemRef{},
		}, nil)

		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/overview/reminders",
			`{"items":["isp-R1",{"kind":"fire-evac","entity_id":"plan-1"}]}`)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "sup-1"))

		s.Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[models.ReminderSummary](s.T(), rr)
		s.Equal(2, resp.Resolved)
		s.Equal(1, resp.Sent)
	})

	s.Run("empty item list", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/overview/reminders", `{"items":[]}`)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "sup-1"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
	})

	s.Run("malformed ref", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/overview/reminders", `{"items":["consent-1"]}`)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "sup-1"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("staff forbidden", func() {
		s.service.EXPECT().SendReminders(gomock.Any(), "staff-1", gomock.Any()).Return(nil, dErrors.New(dErrors.CodeForbidden, "insufficient role"))

		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/overview/reminders", `{"items":["isp-R1"]}`)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "staff-1"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})
}

func (s *OverviewHandlerSuite) TestExport() {
	s.Run("empty body exports everything", func() {
		s.service.EXPECT().ExportList(gomock.Any(), "staff-1", nil).Return([]byte("xlsx"), nil)

		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/overview/export", "")
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "staff-1"))

		s.Equal(http.StatusOK, rr.Code)
		s.Equal(xlsxContentType, rr.Header().Get("Content-Type"))
		s.Contains(rr.Header().Get("Content-Disposition"), "compliance.xlsx")
		s.Equal("xlsx", rr.Body.String())
	})

	s.Run("service failure", func() {
		s.service.EXPECT().ExportList(gomock.Any(), "staff-1", gomock.Any()).Return(nil, dErrors.New(dErrors.CodeInternal, "boom"))

		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/overview/export", `{"items":["isp-R1"]}`)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "staff-1"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, string(dErrors.CodeInternal))
	})
}
