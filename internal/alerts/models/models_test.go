package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "carecompliance/pkg/domain-errors"
)

func TestAlert_Dismiss(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	a := NewAlert(AlertTypeISP, "Alpha", now.Add(48*time.Hour), now, nil)
	require.NoError(t, a.CanDismiss())

	a.ApplyDismiss("sup-1", now)
	assert.False(t, a.Active)
	assert.Equal(t, "sup-1", a.DismissedBy)
	assert.True(t, dErrors.HasCode(a.CanDismiss(), dErrors.CodeInvalidState))
}

func TestAlert_KeyNormalizesZone(t *testing.T) {
	dueAt := time.Date(2026, 4, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	a := NewAlert(AlertTypeFireEvac, "Beta", dueAt, dueAt, nil)
	b := NewAlert(AlertTypeFireEvac, "Beta", dueAt.UTC(), dueAt, nil)
	assert.Equal(t, a.Key(), b.Key())
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 6 * * *"))
	assert.NoError(t, ValidateSchedule("@daily"))
	assert.True(t, dErrors.HasCode(ValidateSchedule("every day"), dErrors.CodeValidation))
	assert.True(t, dErrors.HasCode(ValidateSchedule(""), dErrors.CodeValidation))
}

func TestParseAlertType(t *testing.T) {
	typ, err := ParseAlertType("fire_evac")
	require.NoError(t, err)
	assert.Equal(t, AlertTypeFireEvac, typ)

	_, err = ParseAlertType("consent")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}
