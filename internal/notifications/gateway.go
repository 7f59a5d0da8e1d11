package notifications

import (
	"context"

	"github.com/crewlinkhq/crewlink/internal/models"
)

// Event type identifiers emitted by the engagement lifecycle.
const (
	EventInvitationReceived  = "invitation_received"
	EventInvitationCancelled = "invitation_cancelled"
	EventInvitationAccepted  = "invitation_accepted"
	EventInvitationRejected  = "invitation_rejected"
	EventJobCheckedIn        = "job_checked_in"
	EventJobStarted          = "job_started"
	EventJobCompleted        = "job_completed"
	EventJobConfirmed        = "job_confirmed"
	EventJobPaid             = "job_paid"
)

// Event is a typed lifecycle notification addressed to one actor.
type Event struct {
	Type          string
	RecipientID   string
	RecipientRole models.ActorRole
	Title         string
	Message       string
	Payload       map[string]any
}

// Gateway receives lifecycle events for delivery. Delivery is best-effort and
// outside the consistency boundary of the operation that produced the event:
// implementations log failures and never surface them to the caller.
type Gateway interface {
	Notify(ctx context.Context, event Event)
}

// NopGateway discards all events. Used in tests that do not assert delivery.
type NopGateway struct{}

// Notify implements Gateway.
func (NopGateway) Notify(ctx context.Context, event Event) {}
