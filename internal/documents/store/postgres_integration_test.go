//go:build integration

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"carecompliance/internal/documents/models"
	"carecompliance/internal/platform/postgres"
	"carecompliance/pkg/platform/sentinel"
	"carecompliance/pkg/testutil/containers"
)

type PostgresDocumentsSuite struct {
	suite.Suite
	pg       *containers.PostgresContainer
	isp      *PostgresISP
	fireEvac *PostgresFireEvac
	tx       *postgres.TxManager
	ctx      context.Context
	now      time.Time
}

func TestPostgresDocumentsSuite(t *testing.T) {
	suite.Run(t, new(PostgresDocumentsSuite))
}

func (s *PostgresDocumentsSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.isp = NewPostgresISP(s.pg.Pool)
	s.fireEvac = NewPostgresFireEvac(s.pg.Pool)
	s.tx = postgres.NewTxManager(s.pg.Pool)
	s.ctx = context.Background()
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresDocumentsSuite) SetupTest() {
	s.pg.Truncate(s.T(), "isp_files", "fire_evac_plans", "fire_evac_versions")
}

func (s *PostgresDocumentsSuite) draft(resident, label string) *models.ISPFile {
	return &models.ISPFile{
		ID:            uuid.New(),
		ResidentID:    resident,
		VersionLabel:  label,
		EffectiveDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:        models.ISPStatusDraft,
		File:          models.FileRef{StorageID: "blob", FileName: "f.pdf", ContentType: models.ContentTypePDF, Size: 10},
		UploadedBy:    "staff-1",
		CreatedAt:     s.now,
	}
}

func (s *PostgresDocumentsSuite) TestDuplicateLabelConflicts() {
	s.Require().NoError(s.isp.Create(s.ctx, s.draft("R1", "v1")))
	err := s.isp.Create(s.ctx, s.draft("R1", "v1"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresDocumentsSuite) TestActivationInTransaction() {
	first := s.draft("R1", "v1")
	second := s.draft("R1", "v2")
	s.Require().NoError(s.isp.Create(s.ctx, first))
	s.Require().NoError(s.isp.Create(s.ctx, second))

	activate := func(id uuid.UUID) error {
		return s.tx.RunInTx(s.ctx, func(txCtx context.Context) error {
			if _, err := s.isp.ArchiveActiveForResident(txCtx, "R1", id, s.now); err != nil {
				return err
			}
			_, err := s.isp.Execute(txCtx, id, (*models.ISPFile).CanActivate,
				func(f *models.ISPFile) { f.ApplyActivation(s.now, s.now.Add(time.Hour)) })
			return err
		})
	}
	s.Require().NoError(activate(first.ID))
	s.Require().NoError(activate(second.ID))

	active, err := s.isp.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal(second.ID, active[0].ID)
}

func (s *PostgresDocumentsSuite) TestSecondActiveRowIsRejected() {
	a := s.draft("R1", "a")
	a.ApplyActivation(s.now, s.now)
	b := s.draft("R1", "b")
	b.ApplyActivation(s.now, s.now)
	s.Require().NoError(s.isp.Create(s.ctx, a))
	s.Require().ErrorIs(s.isp.Create(s.ctx, b), sentinel.ErrConflict)
}

func (s *PostgresDocumentsSuite) TestConcurrentFireEvacUploads() {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.tx.RunInTx(s.ctx, func(txCtx context.Context) error {
				v, err := s.fireEvac.NextVersion(txCtx, "Beta")
				if err != nil {
					return err
				}
				return s.fireEvac.Create(txCtx, &models.FireEvacPlan{
					ID: uuid.New(), Location: "Beta", Version: v,
					File:       models.FileRef{StorageID: "b", FileName: "p.pdf", ContentType: models.ContentTypePDF, Size: 1},
					UploadedBy: "sup", UploadedAt: s.now, DueAt: s.now,
				})
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	plans, err := s.fireEvac.ListByLocation(s.ctx, "Beta")
	s.Require().NoError(err)
	s.Require().Len(plans, 8)
	for i, p := range plans {
		s.Equal(8-i, p.Version)
	}

	latest, err := s.fireEvac.ListLatest(s.ctx, false, []string{"Beta"})
	s.Require().NoError(err)
	s.Require().Len(latest, 1)
	s.Equal(8, latest[0].Version)
}
