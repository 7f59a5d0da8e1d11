package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/internal/notifications"
	apperrors "github.com/crewlinkhq/crewlink/pkg/errors"
	"github.com/crewlinkhq/crewlink/pkg/metrics"
)

// Decision is a worker's answer to an invitation.
type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionRejected Decision = "rejected"
)

// ResponseOption customises ResponseService behaviour.
type ResponseOption func(*ResponseService)

// WithResponseClock injects a custom clock primarily for testing.
func WithResponseClock(clock func() time.Time) ResponseOption {
	return func(s *ResponseService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// ResponseService processes worker responses to invitations. Accepting an
// invitation atomically creates exactly one job record: the status flip and
// the insert share one transaction, so no reader can observe an accepted
// invitation without its job or a job whose invitation is still pending.
type ResponseService struct {
	db      *gorm.DB
	gateway notifications.Gateway
	now     func() time.Time
}

// NewResponseService constructs a ResponseService.
func NewResponseService(db *gorm.DB, gateway notifications.Gateway, opts ...ResponseOption) (*ResponseService, error) {
	if db == nil {
		return nil, errors.New("response service: db is required")
	}
	if gateway == nil {
		gateway = notifications.NopGateway{}
	}

	service := &ResponseService{
		db:      db,
		gateway: gateway,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Respond applies a worker's decision. Preconditions are checked in order so
// each failure mode is distinct: unknown or foreign invitation, already
// processed, past the response window.
func (s *ResponseService) Respond(ctx context.Context, invitationID, workerID string, decision Decision, note string) (*models.JobRecord, error) {
	ctx = ensureContext(ctx)

	if decision != DecisionAccepted && decision != DecisionRejected {
		return nil, apperrors.NewValidation("decision", fmt.Sprintf("unknown decision %q", decision))
	}

	var invitation models.Invitation
	if err := s.db.WithContext(ctx).
		Preload("Project").
		First(&invitation, "id = ?", invitationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("invitation", invitationID)
		}
		return nil, fmt.Errorf("response service: load invitation: %w", err)
	}
	if invitation.WorkerID != workerID {
		return nil, apperrors.NewNotFound("invitation", invitationID)
	}

	if invitation.Status != models.InvitationPending {
		return nil, apperrors.NewState("invitation", string(invitation.Status), string(models.InvitationPending)).
			WithDetail("reason", "already processed")
	}

	now := s.now()
	if invitation.Expired(now) {
		return nil, apperrors.NewExpired("invitation", invitationID)
	}

	note = strings.TrimSpace(note)
	target := models.InvitationRejected
	if decision == DecisionAccepted {
		target = models.InvitationAccepted
	}

	var job *models.JobRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional update, not read-modify-write: of two simultaneous
		// responses only one flips the row, the other sees zero rows.
		res := tx.Model(&models.Invitation{}).
			Where("id = ? AND status = ?", invitationID, models.InvitationPending).
			Updates(map[string]any{
				"status":        target,
				"responded_at":  now,
				"response_note": note,
			})
		if res.Error != nil {
			return fmt.Errorf("response service: update invitation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost a race with a concurrent response; report the
			// state the winner left behind.
			var current models.Invitation
			if err := tx.Select("status").First(&current, "id = ?", invitationID).Error; err != nil {
				return fmt.Errorf("response service: reload invitation: %w", err)
			}
			return apperrors.NewState("invitation", string(current.Status), string(models.InvitationPending)).
				WithDetail("reason", "already processed")
		}

		if decision != DecisionAccepted {
			return nil
		}

		startDate := now
		if invitation.Project != nil {
			startDate = invitation.Project.StartDate
		}

		record := models.JobRecord{
			InvitationID: invitation.ID,
			ProjectID:    invitation.ProjectID,
			CompanyID:    invitation.CompanyID,
			WorkerID:     invitation.WorkerID,
			WageAmount:   invitation.WageAmount,
			OriginalWage: invitation.OriginalWage,
			WageUnit:     invitation.WageUnit,
			StartDate:    startDate,
			Status:       models.JobActive,
		}
		if err := tx.Create(&record).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.NewConflict("job_record", "job already exists for this invitation")
			}
			return fmt.Errorf("response service: create job record: %w", err)
		}

		job = &record
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.InvitationResponses.WithLabelValues(string(decision)).Inc()
	s.notifyCompany(ctx, &invitation, decision, note)

	return job, nil
}

func (s *ResponseService) notifyCompany(ctx context.Context, invitation *models.Invitation, decision Decision, note string) {
	eventType := notifications.EventInvitationRejected
	title := "Invitation declined"
	if decision == DecisionAccepted {
		eventType = notifications.EventInvitationAccepted
		title = "Invitation accepted"
	}

	s.gateway.Notify(ctx, notifications.Event{
		Type:          eventType,
		RecipientID:   invitation.CompanyID,
		RecipientRole: models.RoleCompany,
		Title:         title,
		Message:       note,
		Payload: map[string]any{
			"invitation_id": invitation.ID,
			"project_id":    invitation.ProjectID,
			"worker_id":     invitation.WorkerID,
			"decision":      decision,
			"note":          note,
		},
	})
}
