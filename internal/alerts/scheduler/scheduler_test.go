package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carecompliance/internal/alerts/models"
	"carecompliance/pkg/requestcontext"
)

type fakeRunner struct {
	mu       sync.Mutex
	settings models.Settings
	runs     []time.Time
	err      error
}

func (f *fakeRunner) GenerateAlerts(ctx context.Context) (models.RunSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, requestcontext.Now(ctx))
	return models.RunSummary{}, f.err
}

func (f *fakeRunner) CurrentSettings(context.Context) (*models.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.settings
	return &st, nil
}

type fakeLocker struct {
	held     bool
	err      error
	released int
}

func (f *fakeLocker) TryLock(context.Context, string, time.Duration) (func(context.Context), bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	if f.held {
		return nil, false, nil
	}
	f.held = true
	return func(context.Context) {
		f.held = false
		f.released++
	}, true, nil
}

func newScheduler(runner Runner, locker Locker) *Scheduler {
	s := New(runner, WithLocker(locker), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.now = func() time.Time { return time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC) }
	return s
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("runs with a pinned clock and releases the lock", func(t *testing.T) {
		runner := &fakeRunner{settings: models.Settings{Enabled: true, Schedule: "0 6 * * *"}}
		locker := &fakeLocker{}
		s := newScheduler(runner, locker)

		ran, err := s.RunOnce(ctx)
		require.NoError(t, err)
		assert.True(t, ran)
		require.Len(t, runner.runs, 1)
		assert.Equal(t, time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC), runner.runs[0])
		assert.Equal(t, 1, locker.released)
	})

	t.Run("disabled settings skip the run", func(t *testing.T) {
		runner := &fakeRunner{settings: models.Settings{Enabled: false, Schedule: "0 6 * * *"}}
		s := newScheduler(runner, &fakeLocker{})

		ran, err := s.RunOnce(ctx)
		require.NoError(t, err)
		assert.False(t, ran)
		assert.Empty(t, runner.runs)
	})

	t.Run("lock held elsewhere skips the run", func(t *testing.T) {
		runner := &fakeRunner{settings: models.Settings{Enabled: true, Schedule: "0 6 * * *"}}
		s := newScheduler(runner, &fakeLocker{held: true})

		ran, err := s.RunOnce(ctx)
		require.NoError(t, err)
		assert.False(t, ran)
		assert.Empty(t, runner.runs)
	})

	t.Run("lock error is returned", func(t *testing.T) {
		runner := &fakeRunner{settings: models.Settings{Enabled: true, Schedule: "0 6 * * *"}}
		s := newScheduler(runner, &fakeLocker{err: errors.New("redis down")})

		ran, err := s.RunOnce(ctx)
		require.Error(t, err)
		assert.False(t, ran)
	})

	t.Run("run failure still releases the lock", func(t *testing.T) {
		runner := &fakeRunner{settings: models.Settings{Enabled: true, Schedule: "0 6 * * *"}, err: errors.New("boom")}
		locker := &fakeLocker{}
		s := newScheduler(runner, locker)

		ran, err := s.RunOnce(ctx)
		require.Error(t, err)
		assert.True(t, ran)
		assert.Equal(t, 1, locker.released)
	})
}

func TestReload(t *testing.T) {
	runner := &fakeRunner{settings: models.Settings{Enabled: true, Schedule: "0 6 * * *"}}
	s := newScheduler(runner, NoopLocker{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Stop(context.Background()) }()
	require.Len(t, s.cron.Entries(), 1)
	first := s.entry

	s.Reload(models.Settings{Enabled: true, Schedule: "30 7 * * *"})
	assert.Len(t, s.cron.Entries(), 1)
	assert.NotEqual(t, first, s.entry)
	assert.Equal(t, "30 7 * * *", s.schedule)

	s.Reload(models.Settings{Enabled: true, Schedule: "not a schedule"})
	assert.Equal(t, "30 7 * * *", s.schedule)
}

func TestStart_InvalidSchedule(t *testing.T) {
	runner := &fakeRunner{settings: models.Settings{Enabled: true, Schedule: "bogus"}}
	s := newScheduler(runner, NoopLocker{})
	require.Error(t, s.Start(context.Background()))
}
