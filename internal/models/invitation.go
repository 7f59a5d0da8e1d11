package models

import "time"

// InvitationStatus enumerates stored invitation states. Expiry is derived at
// read time from ExpiresAt and is never written back as a stored status.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationRejected  InvitationStatus = "rejected"
	InvitationCancelled InvitationStatus = "cancelled"
)

// InvitationExpired is the derived, read-only status bucket for pending
// invitations whose response window has closed.
const InvitationExpired = "expired"

// Invitation is an offer, at a snapshotted wage, from a company to one worker
// for one project. The (project_id, worker_id) pair is unique for the life of
// the system; the composite index backs the conditional-insert dispatch path.
type Invitation struct {
	BaseModel

	ProjectID string `gorm:"type:uuid;not null;uniqueIndex:idx_invitations_project_worker" json:"project_id"`
	WorkerID  string `gorm:"type:uuid;not null;uniqueIndex:idx_invitations_project_worker" json:"worker_id"`
	CompanyID string `gorm:"type:uuid;not null;index" json:"company_id"`

	Message string `gorm:"type:text" json:"message"`

	// Wage terms are copied from the project at creation time. Later project
	// edits must not retroactively change an already-sent offer.
	WageAmount   float64  `gorm:"not null" json:"wage_amount"`
	OriginalWage float64  `gorm:"not null" json:"original_wage"`
	WageUnit     WageUnit `gorm:"type:varchar(8);not null" json:"wage_unit"`

	Status       InvitationStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	ExpiresAt    *time.Time       `gorm:"index" json:"expires_at,omitempty"`
	RespondedAt  *time.Time       `json:"responded_at,omitempty"`
	ResponseNote string           `gorm:"type:text" json:"response_note,omitempty"`

	Project *Project `gorm:"constraint:OnDelete:CASCADE" json:"project,omitempty"`
	Worker  *Worker  `gorm:"constraint:OnDelete:CASCADE" json:"worker,omitempty"`
}

// Expired reports whether the response window has closed at the given instant.
func (i *Invitation) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}

// Respondable reports whether a worker response is still legal: the stored
// status must be pending and the response window still open.
func (i *Invitation) Respondable(now time.Time) bool {
	return i.Status == InvitationPending && !i.Expired(now)
}

// EffectiveStatus returns the status as seen by readers, substituting the
// derived expired bucket for stale pending invitations.
func (i *Invitation) EffectiveStatus(now time.Time) string {
	if i.Status == InvitationPending && i.Expired(now) {
		return InvitationExpired
	}
	return string(i.Status)
}
