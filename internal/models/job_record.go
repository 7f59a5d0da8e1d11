package models

import (
	"time"

	"gorm.io/datatypes"
)

// JobStatus enumerates the linear job execution pipeline.
type JobStatus string

const (
	JobActive     JobStatus = "active"
	JobCheckedIn  JobStatus = "checked_in"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobConfirmed  JobStatus = "confirmed"
	JobPaid       JobStatus = "paid"
)

// PaymentMethod enumerates how a confirmed job is settled. Settlement itself
// happens outside this service; paying a job only records the closure.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

// JobRecord tracks a single engagement from acceptance through payment.
// It is created exactly once, as a side effect of an invitation being
// accepted, and its wage is fixed at invitation-time for its whole life.
type JobRecord struct {
	BaseModel

	InvitationID string `gorm:"type:uuid;not null;uniqueIndex" json:"invitation_id"`
	ProjectID    string `gorm:"type:uuid;not null;index" json:"project_id"`
	CompanyID    string `gorm:"type:uuid;not null;index" json:"company_id"`
	WorkerID     string `gorm:"type:uuid;not null;index" json:"worker_id"`

	// WageAmount is the canonical daily payment figure; OriginalWage keeps
	// the offer as entered (e.g. 50/hour) for display. Both are copied from
	// the invitation at creation and never re-derived.
	WageAmount   float64   `gorm:"not null" json:"wage_amount"`
	OriginalWage float64   `gorm:"not null" json:"original_wage"`
	WageUnit     WageUnit  `gorm:"type:varchar(8);not null" json:"wage_unit"`
	StartDate    time.Time `gorm:"not null" json:"start_date"`

	Status JobStatus `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`

	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`

	CompletionNote   string         `gorm:"type:text" json:"completion_note,omitempty"`
	CompletionPhotos datatypes.JSON `json:"completion_photos,omitempty"`

	QualityRating    *int   `json:"quality_rating,omitempty"`
	ConfirmationNote string `gorm:"type:text" json:"confirmation_note,omitempty"`

	PaymentMethod  PaymentMethod `gorm:"type:varchar(16)" json:"payment_method,omitempty"`
	TransactionRef string        `gorm:"type:varchar(128)" json:"transaction_ref,omitempty"`

	Invitation *Invitation `gorm:"constraint:OnDelete:CASCADE" json:"invitation,omitempty"`
	Project    *Project    `gorm:"constraint:OnDelete:CASCADE" json:"project,omitempty"`
}
