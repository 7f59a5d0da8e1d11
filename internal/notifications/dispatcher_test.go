package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crewlinkhq/crewlink/internal/database/testutil"
	"github.com/crewlinkhq/crewlink/internal/models"
)

func TestDispatcherPersistsDeliveryRecord(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	d := NewDispatcher(db, nil)

	d.Notify(context.Background(), Event{
		Type:          EventInvitationReceived,
		RecipientID:   "worker-1",
		RecipientRole: models.RoleWorker,
		Title:         "New invitation",
		Message:       "You have been invited to Warehouse Shift",
		Payload:       map[string]any{"invitation_id": "inv-1"},
	})

	var rows []models.Notification
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, EventInvitationReceived, rows[0].Type)
	require.Equal(t, models.RoleWorker, rows[0].RecipientRole)
	require.False(t, rows[0].IsRead)
	require.Contains(t, string(rows[0].Metadata), "inv-1")
}

func TestDispatcherSwallowsMalformedEvents(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	d := NewDispatcher(db, nil)

	// Missing recipient must not panic or persist anything.
	d.Notify(context.Background(), Event{Type: EventJobPaid})

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count)
}
