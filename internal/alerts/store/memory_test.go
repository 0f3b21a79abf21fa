package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"carecompliance/internal/alerts/models"
	"carecompliance/pkg/platform/sentinel"
)

type AlertStoreSuite struct {
	suite.Suite
	store *InMemoryAlerts
	ctx   context.Context
	now   time.Time
}

func TestAlertStoreSuite(t *testing.T) {
	suite.Run(t, new(AlertStoreSuite))
}

func (s *AlertStoreSuite) SetupTest() {
	s.store = NewInMemoryAlerts()
	s.ctx = context.Background()
	s.now = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
}

func (s *AlertStoreSuite) TestInsertIfNoActive() {
	dueAt := s.now.Add(10 * 24 * time.Hour)

	first := models.NewAlert(models.AlertTypeISP, "Alpha", dueAt, s.now, nil)
	created, id, err := s.store.InsertIfNoActive(s.ctx, first)
	s.Require().NoError(err)
	s.True(created)
	s.Equal(first.ID, id)

	s.Run("same key is not inserted again", func() {
		created, id, err := s.store.InsertIfNoActive(s.ctx, models.NewAlert(models.AlertTypeISP, "Alpha", dueAt, s.now, nil))
		s.Require().NoError(err)
		s.False(created)
		s.Equal(first.ID, id)
	})

	s.Run("different type, location or due date are separate keys", func() {
		for _, a := range []*models.Alert{
			models.NewAlert(models.AlertTypeFireEvac, "Alpha", dueAt, s.now, nil),
			models.NewAlert(models.AlertTypeISP, "Beta", dueAt, s.now, nil),
			models.NewAlert(models.AlertTypeISP, "Alpha", dueAt.Add(time.Hour), s.now, nil),
		} {
			created, _, err := s.store.InsertIfNoActive(s.ctx, a)
			s.Require().NoError(err)
			s.True(created)
		}
	})

	s.Run("dismissed key can be inserted again", func() {
		_, err := s.store.Execute(s.ctx, first.ID, (*models.Alert).CanDismiss,
			func(a *models.Alert) { a.ApplyDismiss("sup", s.now) })
		s.Require().NoError(err)

		created, _, err := s.store.InsertIfNoActive(s.ctx, models.NewAlert(models.AlertTypeISP, "Alpha", dueAt, s.now, nil))
		s.Require().NoError(err)
		s.True(created)
	})
}

func (s *AlertStoreSuite) TestConcurrentInsertsCreateOne() {
	dueAt := s.now.Add(5 * 24 * time.Hour)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := s.store.InsertIfNoActive(s.ctx, models.NewAlert(models.AlertTypeFireEvac, "Beta", dueAt, s.now, nil))
			s.NoError(err)
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(1, created)
}

func (s *AlertStoreSuite) TestListActiveScoped() {
	for _, loc := range []string{"Alpha", "Beta"} {
		_, _, err := s.store.InsertIfNoActive(s.ctx, models.NewAlert(models.AlertTypeISP, loc, s.now, s.now, nil))
		s.Require().NoError(err)
	}
	scoped, err := s.store.ListActive(s.ctx, false, []string{"Beta"})
	s.Require().NoError(err)
	s.Require().Len(scoped, 1)
	s.Equal("Beta", scoped[0].Location)

	all, err := s.store.ListActive(s.ctx, true, nil)
	s.Require().NoError(err)
	s.Len(all, 2)

	_, err = s.store.FindByID(s.ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func TestInMemorySettings(t *testing.T) {
	store := NewInMemorySettings()

	_, err := store.Get(context.Background())
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, store.Save(context.Background(), &models.Settings{Enabled: true, Schedule: "@daily"}))
	got, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "@daily", got.Schedule)
}
