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

	"carecompliance/internal/checklist/handler/mocks"
	"carecompliance/internal/checklist/models"
	"carecompliance/internal/checklist/service"
	"carecompliance/internal/notify"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type ChecklistHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	now     time.Time
}

func TestChecklistHandlerSuite(t *testing.T) {
	suite.Run(t, new(ChecklistHandlerSuite))
}

func (s *ChecklistHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	s.now = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.Register(s.router)
	h.RegisterPublic(s.router)
}

func (s *ChecklistHandlerSuite) link() *models.Link {
	return &models.Link{
		ID: uuid.New(), ResidentID: "R1", TemplateID: "tpl", GuardianEmail: "g@example.org",
		Token: "secret-token", SentAt: s.now, ExpiresAt: s.now.Add(models.DefaultLinkTTL),
	}
}

func (s *ChecklistHandlerSuite) TestSend() {
	s.Run("returns the link without its token", func() {
		link := s.link()
		s.service.EXPECT().SendChecklist(gomock.Any(), "sup-1", service.SendRequest{
			ResidentID: "R1", TemplateID: "tpl", GuardianEmail: "g@example.org",
		}).Return(&service.SendResult{Link: link, Delivery: notify.Result{To: "g@example.org", MessageID: "m-1"}}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/residents/R1/checklists", map[string]any{
			"template_id": "tpl", "guardian_email": "g@example.org",
		})
		rr := testutil.DoRequest(s.router, testutil.WithTime(testutil.WithActor(req, "sup-1"), s.now))

		s.Equal(http.StatusCreated, rr.Code)
		s.NotContains(rr.Body.String(), "secret-token")
		resp := testutil.UnmarshalResponse[SendResponse](s.T(), rr)
		s.Equal("sent", resp.Link.Status)
		s.True(resp.Delivery.Delivered)
	})

	s.Run("failed delivery is reported, not an error", func() {
		link := s.link()
		s.service.EXPECT().SendChecklist(gomock.Any(), "sup-1", gomock.Any()).
			Return(&service.SendResult{Link: link, Delivery: notify.Result{Err: dErrors.New(dErrors.CodeExternalService, "down")}}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/residents/R1/checklists", map[string]any{
			"template_id": "tpl", "guardian_email": "g@example.org",
		})
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "sup-1"))

		s.Equal(http.StatusCreated, rr.Code)
		resp := testutil.UnmarshalResponse[SendResponse](s.T(), rr)
		s.False(resp.Delivery.Delivered)
		s.Equal("delivery failed", resp.Delivery.Error)
	})

	s.Run("missing email is a validation error", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/residents/R1/checklists", map[string]any{"template_id": "tpl"})
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "sup-1"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
	})
}

func (s *ChecklistHandlerSuite) TestResend() {
	s.Run("bad id is not found", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checklists/xyz/resend", nil)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "sup-1"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})

	s.Run("completed link conflicts", func() {
		id := uuid.New()
		s.service.EXPECT().ResendChecklist(gomock.Any(), "sup-1", id).Return(nil, dErrors.New(dErrors.CodeInvalidState, "checklist already completed"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checklists/"+id.String()+"/resend", nil)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, "sup-1"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeInvalidState))
	})
}

func (s *ChecklistHandlerSuite) TestSubmit() {
	s.Run("passes responses through", func() {
		completed := s.now.Add(time.Hour)
		s.service.EXPECT().SubmitChecklist(gomock.Any(), "tok", []models.Response{{ItemID: "photo", Acknowledged: true}}).
			Return(&models.Link{Completed: true, CompletedAt: &completed}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checklists/submit", map[string]any{
			"token":     "tok",
			"responses": []map[string]any{{"item_id": "photo", "acknowledged": true}},
		})
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[SubmitResponse](s.T(), rr)
		s.Equal("completed", resp.Status)
	})

	s.Run("expired link conflicts", func() {
		s.service.EXPECT().SubmitChecklist(gomock.Any(), "tok", gomock.Any()).Return(nil, dErrors.New(dErrors.CodeInvalidState, "checklist link has expired"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checklists/submit", map[string]any{
			"token":     "tok",
			"responses": []map[string]any{{"item_id": "photo"}},
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeInvalidState))
	})
}

func (s *ChecklistHandlerSuite) TestOpen() {
	link := s.link()
	s.service.EXPECT().OpenChecklist(gomock.Any(), "tok").Return(link, &models.Template{
		Name: "Annual consent", Items: []models.TemplateItem{{ID: "photo", Prompt: "Photo consent"}},
	}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/checklists/form/tok", nil)
	rr := testutil.DoRequest(s.router, testutil.WithTime(req, s.now))

	s.Equal(http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[FormResponse](s.T(), rr)
	s.Equal("Annual consent", resp.TemplateName)
	s.Equal("sent", resp.Status)
	s.Len(resp.Items, 1)
}
