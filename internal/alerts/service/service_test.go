package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"carecompliance/internal/access"
	"carecompliance/internal/alerts/models"
	alertstore "carecompliance/internal/alerts/store"
	docmodels "carecompliance/internal/documents/models"
	docstore "carecompliance/internal/documents/store"
	"carecompliance/internal/due"
	"carecompliance/internal/subjects"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/audit"
	auditpublisher "carecompliance/pkg/platform/audit/publisher"
	auditmemory "carecompliance/pkg/platform/audit/store/memory"
	"carecompliance/pkg/requestcontext"
)

type failingAlerts struct {
	*alertstore.InMemoryAlerts
	failLocation string
}

func (f *failingAlerts) InsertIfNoActive(ctx context.Context, a *models.Alert) (bool, uuid.UUID, error) {
	if a.Location == f.failLocation {
		return false, uuid.Nil, errors.New("insert failed")
	}
	return f.InMemoryAlerts.InsertIfNoActive(ctx, a)
}

type AlertServiceSuite struct {
	suite.Suite
	t0       time.Time
	alerts   *alertstore.InMemoryAlerts
	isp      *docstore.InMemoryISP
	fireEvac *docstore.InMemoryFireEvac
	auditLog *auditmemory.InMemoryStore
	roles    *access.InMemoryRoleStore
	subjects *subjects.InMemory
	service  *Service
}

func TestAlertServiceSuite(t *testing.T) {
	suite.Run(t, new(AlertServiceSuite))
}

func (s *AlertServiceSuite) SetupTest() {
	s.t0 = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	s.roles = access.NewInMemoryRoleStore()
	s.Require().NoError(s.roles.Put(ctx, &access.Role{SubjectID: "admin-1", Role: access.RoleAdmin}))
	s.Require().NoError(s.roles.Put(ctx, &access.Role{SubjectID: "sup-alpha", Role: access.RoleSupervisor, Locations: []string{"Alpha"}}))
	s.Require().NoError(s.roles.Put(ctx, &access.Role{SubjectID: "staff-alpha", Role: access.RoleStaff, Locations: []string{"Alpha"}}))
	s.Require().NoError(s.roles.Put(ctx, &access.Role{SubjectID: "sup-beta", Role: access.RoleSupervisor, Locations: []string{"Beta"}}))

	s.subjects = subjects.NewInMemory(
		subjects.Subject{ID: "R1", Location: "Alpha"},
		subjects.Subject{ID: "R2", Location: "Beta"},
	)
	s.alerts = alertstore.NewInMemoryAlerts()
	s.isp = docstore.NewInMemoryISP()
	s.fireEvac = docstore.NewInMemoryFireEvac()
	s.auditLog = auditmemory.NewInMemoryStore()
	s.service = s.newService(s.alerts)
}

func (s *AlertServiceSuite) newService(alerts AlertStore) *Service {
	return New(alerts, alertstore.NewInMemorySettings(), s.isp, s.fireEvac, s.subjects, access.NewPolicy(s.roles),
		WithAuditEmitter(auditpublisher.NewPublisher(s.auditLog)),
	)
}

func (s *AlertServiceSuite) at(days int) context.Context {
	return requestcontext.WithTime(context.Background(), s.t0.Add(time.Duration(days)*24*time.Hour))
}

// activeISP stores an ISP file activated at t0.
func (s *AlertServiceSuite) activeISP(resident string) *docmodels.ISPFile {
	dueAt := due.ComputeDue(due.KindISP, s.t0)
	activated := s.t0
	f := &docmodels.ISPFile{
		ID:            uuid.New(),
		ResidentID:    resident,
		VersionLabel:  "v1",
		EffectiveDate: s.t0,
		Status:        docmodels.ISPStatusActive,
		File:          docmodels.FileRef{StorageID: uuid.NewString(), FileName: "isp.pdf", ContentType: docmodels.ContentTypePDF, Size: 100},
		DueAt:         &dueAt,
		ActivatedAt:   &activated,
		UploadedBy:    "staff-alpha",
		CreatedAt:     s.t0,
	}
	s.Require().NoError(s.isp.Create(context.Background(), f))
	return f
}

func (s *AlertServiceSuite) fireEvacPlan(location string, uploadedAt time.Time) *docmodels.FireEvacPlan {
	ctx := context.Background()
	version, err := s.fireEvac.NextVersion(ctx, location)
	s.Require().NoError(err)
	p := &docmodels.FireEvacPlan{
		ID:         uuid.New(),
		Location:   location,
		Version:    version,
		File:       docmodels.FileRef{StorageID: uuid.NewString(), FileName: "plan.pdf", ContentType: docmodels.ContentTypePDF, Size: 100},
		UploadedBy: "sup-alpha",
		UploadedAt: uploadedAt,
		DueAt:      due.ComputeDue(due.KindFireEvac, uploadedAt),
	}
	s.Require().NoError(s.fireEvac.Create(ctx, p))
	return p
}

func (s *AlertServiceSuite) TestGenerateAlerts() {
	s.Run("isp inside the window creates one alert and reruns are idempotent", func() {
		s.activeISP("R1")

		summary, err := s.service.GenerateAlerts(s.at(155))
		s.Require().NoError(err)
		s.Equal(1, summary.Scanned)
		s.Equal(1, summary.Created)

		summary, err = s.service.GenerateAlerts(s.at(156))
		s.Require().NoError(err)
		s.Equal(0, summary.Created)
		s.Equal(1, summary.Existing)

		count, err := s.alerts.Count(context.Background())
		s.Require().NoError(err)
		s.Equal(1, count)

		active, err := s.service.ListActiveAlerts(s.at(156), "sup-alpha", "")
		s.Require().NoError(err)
		s.Require().Len(active, 1)
		s.Equal(models.AlertTypeISP, active[0].Type)
		s.Equal("Alpha", active[0].Location)
		s.Equal("25", active[0].Details["days_until_due"])

		records, err := s.auditLog.ListByEvent(context.Background(), audit.EventAlertCreated)
		s.Require().NoError(err)
		s.Len(records, 1)
	})
}

func (s *AlertServiceSuite) TestGenerateAlerts_OutsideWindow() {
	s.activeISP("R1")
	s.fireEvacPlan("Alpha", s.t0)

	summary, err := s.service.GenerateAlerts(s.at(100))
	s.Require().NoError(err)
	s.Equal(0, summary.Scanned)
	s.Equal(0, summary.Created)
}

func (s *AlertServiceSuite) TestGenerateAlerts_OnlyLatestFireEvacPlan() {
	s.fireEvacPlan("Alpha", s.t0)
	s.fireEvacPlan("Alpha", s.t0.Add(200*24*time.Hour))
	s.fireEvacPlan("Beta", s.t0)

	summary, err := s.service.GenerateAlerts(s.at(350))
	s.Require().NoError(err)
	s.Equal(1, summary.Created)

	active, err := s.service.ListActiveAlerts(s.at(350), "admin-1", "")
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal("Beta", active[0].Location)
	s.Equal("1", active[0].Details["version"])
}

func (s *AlertServiceSuite) TestGenerateAlerts_StepFailureDoesNotAbortRun() {
	svc := s.newService(&failingAlerts{InMemoryAlerts: s.alerts, failLocation: "Alpha"})
	s.activeISP("R1")
	s.activeISP("R2")

	summary, err := svc.GenerateAlerts(s.at(170))
	s.Require().NoError(err)
	s.Equal(2, summary.Scanned)
	s.Equal(1, summary.Created)
	s.Equal(1, summary.Failed)
}

func (s *AlertServiceSuite) TestGenerateAlerts_UnknownResidentCountsAsFailure() {
	s.activeISP("R-gone")

	summary, err := s.service.GenerateAlerts(s.at(170))
	s.Require().NoError(err)
	s.Equal(0, summary.Created)
	s.Equal(1, summary.Failed)
}

func (s *AlertServiceSuite) TestDismissAlert() {
	s.activeISP("R1")
	_, err := s.service.GenerateAlerts(s.at(160))
	s.Require().NoError(err)
	active, err := s.service.ListActiveAlerts(s.at(160), "admin-1", "")
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	id := active[0].ID

	s.Run("staff cannot dismiss", func() {
		_, err := s.service.DismissAlert(s.at(160), "staff-alpha", id)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("supervisor of another location sees not found", func() {
		_, err := s.service.DismissAlert(s.at(160), "sup-beta", id)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unknown alert", func() {
		_, err := s.service.DismissAlert(s.at(160), "admin-1", uuid.New())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("supervisor dismisses", func() {
		dismissed, err := s.service.DismissAlert(s.at(160), "sup-alpha", id)
		s.Require().NoError(err)
		s.False(dismissed.Active)
		s.Equal("sup-alpha", dismissed.DismissedBy)

		active, err := s.service.ListActiveAlerts(s.at(160), "sup-alpha", "Alpha")
		s.Require().NoError(err)
		s.Empty(active)
	})

	s.Run("second dismissal is invalid state", func() {
		_, err := s.service.DismissAlert(s.at(161), "sup-alpha", id)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("next run recreates the alert", func() {
		summary, err := s.service.GenerateAlerts(s.at(162))
		s.Require().NoError(err)
		s.Equal(1, summary.Created)

		active, err := s.service.ListActiveAlerts(s.at(162), "sup-alpha", "")
		s.Require().NoError(err)
		s.Require().Len(active, 1)
		s.NotEqual(id, active[0].ID)
	})
}

func (s *AlertServiceSuite) TestListActiveAlerts_Scope() {
	s.activeISP("R1")
	s.activeISP("R2")
	_, err := s.service.GenerateAlerts(s.at(170))
	s.Require().NoError(err)

	s.Run("supervisor sees own location", func() {
		active, err := s.service.ListActiveAlerts(s.at(170), "sup-beta", "")
		s.Require().NoError(err)
		s.Require().Len(active, 1)
		s.Equal("Beta", active[0].Location)
	})

	s.Run("admin sees all", func() {
		active, err := s.service.ListActiveAlerts(s.at(170), "admin-1", "")
		s.Require().NoError(err)
		s.Len(active, 2)
	})

	s.Run("filter outside scope is not found", func() {
		_, err := s.service.ListActiveAlerts(s.at(170), "sup-beta", "Alpha")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unknown actor is forbidden", func() {
		_, err := s.service.ListActiveAlerts(s.at(170), "nobody", "")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *AlertServiceSuite) TestSettings() {
	ctx := s.at(0)

	s.Run("defaults before first save", func() {
		st, err := s.service.GetSettings(ctx, "staff-alpha")
		s.Require().NoError(err)
		s.True(st.Enabled)
		s.Equal("0 6 * * *", st.Schedule)
	})

	s.Run("supervisor cannot update", func() {
		_, err := s.service.UpdateSettings(ctx, "sup-alpha", false, "0 7 * * *")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("invalid schedule", func() {
		_, err := s.service.UpdateSettings(ctx, "admin-1", true, "every day")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("admin update notifies listeners", func() {
		var seen []models.Settings
		s.service.OnSettingsChange(func(st models.Settings) { seen = append(seen, st) })

		st, err := s.service.UpdateSettings(ctx, "admin-1", false, " 30 5 * * 1-5 ")
		s.Require().NoError(err)
		s.False(st.Enabled)
		s.Equal("30 5 * * 1-5", st.Schedule)
		s.Equal("admin-1", st.UpdatedBy)
		s.Require().Len(seen, 1)
		s.Equal("30 5 * * 1-5", seen[0].Schedule)

		current, err := s.service.CurrentSettings(ctx)
		s.Require().NoError(err)
		s.False(current.Enabled)

		records, err := s.auditLog.ListByEvent(context.Background(), audit.EventSettingsUpdated)
		s.Require().NoError(err)
		s.Len(records, 1)
	})
}

func (s *AlertServiceSuite) TestRunNow() {
	s.activeISP("R1")

	_, err := s.service.RunNow(s.at(170), "sup-alpha")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	summary, err := s.service.RunNow(s.at(170), "admin-1")
	s.Require().NoError(err)
	s.Equal(1, summary.Created)
}
