package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProjectDurationDays(t *testing.T) {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	p := Project{StartDate: start, EndDate: start.AddDate(0, 0, 4)}
	require.Equal(t, 5, p.DurationDays())

	sameDay := Project{StartDate: start, EndDate: start}
	require.Equal(t, 1, sameDay.DurationDays())

	inverted := Project{StartDate: start, EndDate: start.AddDate(0, 0, -2)}
	require.Equal(t, 1, inverted.DurationDays())
}

func TestInvitationRespondable(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	open := Invitation{Status: InvitationPending, ExpiresAt: &future}
	require.True(t, open.Respondable(now))
	require.Equal(t, string(InvitationPending), open.EffectiveStatus(now))

	noDeadline := Invitation{Status: InvitationPending}
	require.True(t, noDeadline.Respondable(now))

	stale := Invitation{Status: InvitationPending, ExpiresAt: &past}
	require.False(t, stale.Respondable(now))
	require.Equal(t, InvitationExpired, stale.EffectiveStatus(now))

	// Terminal statuses are never respondable and never report expired.
	done := Invitation{Status: InvitationAccepted, ExpiresAt: &past}
	require.False(t, done.Respondable(now))
	require.Equal(t, string(InvitationAccepted), done.EffectiveStatus(now))
}

func TestProjectMutable(t *testing.T) {
	require.True(t, (&Project{Status: ProjectDraft}).Mutable())
	require.True(t, (&Project{Status: ProjectInProgress}).Mutable())
	require.False(t, (&Project{Status: ProjectCompleted}).Mutable())
	require.False(t, (&Project{Status: ProjectCancelled}).Mutable())
}
