package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/internal/notifications"
	apperrors "github.com/crewlinkhq/crewlink/pkg/errors"
	"github.com/crewlinkhq/crewlink/pkg/metrics"
)

// InvitationOption customises InvitationService behaviour.
type InvitationOption func(*InvitationService)

// WithInvitationClock injects a custom clock primarily for testing.
func WithInvitationClock(clock func() time.Time) InvitationOption {
	return func(s *InvitationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// InvitationService creates and cancels invitations on behalf of companies.
// Uniqueness of the (project, worker) pair is enforced by the storage layer
// through a conditional insert, never by a check-then-insert sequence.
type InvitationService struct {
	db      *gorm.DB
	gateway notifications.Gateway
	now     func() time.Time
}

// NewInvitationService constructs an InvitationService.
func NewInvitationService(db *gorm.DB, gateway notifications.Gateway, opts ...InvitationOption) (*InvitationService, error) {
	if db == nil {
		return nil, errors.New("invitation service: db is required")
	}
	if gateway == nil {
		gateway = notifications.NopGateway{}
	}

	service := &InvitationService{
		db:      db,
		gateway: gateway,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// BatchFailure reports one worker that could not be invited.
type BatchFailure struct {
	WorkerID string              `json:"worker_id"`
	Error    *apperrors.AppError `json:"error"`
}

// BatchResult reports the per-worker outcome of a dispatch call. Dispatch is
// deliberately not atomic across workers: partial success is expected and
// reported, never rolled back.
type BatchResult struct {
	Created []models.Invitation `json:"created"`
	Skipped []string            `json:"skipped"`
	Failed  []BatchFailure      `json:"failed"`
}

// InviteWorkersInput bundles a dispatch request.
type InviteWorkersInput struct {
	ProjectID string
	WorkerIDs []string
	Message   string
	ExpiresAt *time.Time
}

// InviteWorkers creates one invitation per candidate worker, snapshotting the
// project's current wage terms. Each worker's outcome is independent: an
// existing (project, worker) pair is skipped, a missing worker is reported as
// failed, and neither stops the rest of the batch.
func (s *InvitationService) InviteWorkers(ctx context.Context, input InviteWorkersInput, actor Actor) (*BatchResult, error) {
	ctx = ensureContext(ctx)

	project, err := s.loadDispatchable(ctx, input.ProjectID, actor)
	if err != nil {
		return nil, err
	}

	workerIDs := normaliseIDs(input.WorkerIDs)
	if len(workerIDs) == 0 {
		return nil, apperrors.NewValidation("worker_ids", "at least one worker id is required")
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(s.now()) {
		return nil, apperrors.NewValidation("expires_at", "expiry must be in the future")
	}

	result := &BatchResult{}
	for _, workerID := range workerIDs {
		invitation, err := s.createOne(ctx, project, workerID, input.Message, input.ExpiresAt)
		switch {
		case err == nil && invitation == nil:
			result.Skipped = append(result.Skipped, workerID)
			metrics.InvitationsDispatched.WithLabelValues("skipped").Inc()
		case err == nil:
			result.Created = append(result.Created, *invitation)
			metrics.InvitationsDispatched.WithLabelValues("created").Inc()
			s.gateway.Notify(ctx, notifications.Event{
				Type:          notifications.EventInvitationReceived,
				RecipientID:   workerID,
				RecipientRole: models.RoleWorker,
				Title:         "New invitation",
				Message:       fmt.Sprintf("You have been invited to %s", project.Name),
				Payload: map[string]any{
					"invitation_id": invitation.ID,
					"project_id":    project.ID,
					"wage_amount":   invitation.WageAmount,
					"wage_unit":     invitation.WageUnit,
				},
			})
		default:
			result.Failed = append(result.Failed, BatchFailure{
				WorkerID: workerID,
				Error:    apperrors.FromError(err),
			})
			metrics.InvitationsDispatched.WithLabelValues("failed").Inc()
		}
	}

	return result, nil
}

// Invite is the single-create path. Unlike batch dispatch, an existing
// (project, worker) pair surfaces as a ConflictError.
func (s *InvitationService) Invite(ctx context.Context, projectID, workerID, message string, expiresAt *time.Time, actor Actor) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	project, err := s.loadDispatchable(ctx, projectID, actor)
	if err != nil {
		return nil, err
	}
	if expiresAt != nil && !expiresAt.After(s.now()) {
		return nil, apperrors.NewValidation("expires_at", "expiry must be in the future")
	}

	invitation, err := s.createOne(ctx, project, workerID, message, expiresAt)
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, apperrors.NewConflict("invitation", "worker already invited to this project").
			WithDetail("project_id", projectID).
			WithDetail("worker_id", workerID)
	}

	metrics.InvitationsDispatched.WithLabelValues("created").Inc()
	s.gateway.Notify(ctx, notifications.Event{
		Type:          notifications.EventInvitationReceived,
		RecipientID:   workerID,
		RecipientRole: models.RoleWorker,
		Title:         "New invitation",
		Message:       fmt.Sprintf("You have been invited to %s", project.Name),
		Payload:       map[string]any{"invitation_id": invitation.ID, "project_id": project.ID},
	})
	return invitation, nil
}

// Cancel withdraws a pending invitation. Legal only from pending and only for
// the owning company; the write is conditional on the pending status.
func (s *InvitationService) Cancel(ctx context.Context, invitationID string, actor Actor) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	if !actor.IsCompany() {
		return nil, apperrors.NewAuthorization("cancel_invitation", string(models.RoleCompany))
	}

	var invitation models.Invitation
	if err := s.db.WithContext(ctx).First(&invitation, "id = ?", invitationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("invitation", invitationID)
		}
		return nil, fmt.Errorf("invitation service: load invitation: %w", err)
	}
	if invitation.CompanyID != actor.ID {
		return nil, apperrors.NewNotFound("invitation", invitationID)
	}

	res := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ? AND status = ?", invitationID, models.InvitationPending).
		Update("status", models.InvitationCancelled)
	if res.Error != nil {
		return nil, fmt.Errorf("invitation service: cancel: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewState("invitation", string(invitation.Status), string(models.InvitationPending))
	}

	invitation.Status = models.InvitationCancelled
	s.gateway.Notify(ctx, notifications.Event{
		Type:          notifications.EventInvitationCancelled,
		RecipientID:   invitation.WorkerID,
		RecipientRole: models.RoleWorker,
		Title:         "Invitation withdrawn",
		Message:       "The company withdrew its invitation",
		Payload:       map[string]any{"invitation_id": invitation.ID, "project_id": invitation.ProjectID},
	})
	return &invitation, nil
}

// Get returns a single invitation visible to the given actor.
func (s *InvitationService) Get(ctx context.Context, invitationID string, actor Actor) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	var invitation models.Invitation
	if err := s.db.WithContext(ctx).First(&invitation, "id = ?", invitationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("invitation", invitationID)
		}
		return nil, fmt.Errorf("invitation service: load invitation: %w", err)
	}

	owns := (actor.IsCompany() && invitation.CompanyID == actor.ID) ||
		(actor.IsWorker() && invitation.WorkerID == actor.ID)
	if !owns {
		return nil, apperrors.NewNotFound("invitation", invitationID)
	}

	return &invitation, nil
}

// ListForWorker returns a worker's invitations, newest first.
func (s *InvitationService) ListForWorker(ctx context.Context, workerID string) ([]models.Invitation, error) {
	ctx = ensureContext(ctx)

	var invitations []models.Invitation
	if err := s.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("invitation service: list for worker: %w", err)
	}
	return invitations, nil
}

// ListForProject returns a project's invitations, newest first. Only the
// owning company may read the list; anyone else sees a not found.
func (s *InvitationService) ListForProject(ctx context.Context, projectID string, actor Actor) ([]models.Invitation, error) {
	ctx = ensureContext(ctx)

	var project models.Project
	if err := s.db.WithContext(ctx).Select("id", "company_id").First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("project", projectID)
		}
		return nil, fmt.Errorf("invitation service: load project: %w", err)
	}
	if !actor.IsCompany() || project.CompanyID != actor.ID {
		return nil, apperrors.NewNotFound("project", projectID)
	}

	var invitations []models.Invitation
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("invitation service: list for project: %w", err)
	}
	return invitations, nil
}

// createOne inserts a single invitation. A nil invitation with a nil error
// means the (project, worker) pair already exists. The insert is atomic: the
// composite unique index plus ON CONFLICT DO NOTHING guarantees concurrent
// dispatches for the same pair produce exactly one row.
func (s *InvitationService) createOne(ctx context.Context, project *models.Project, workerID, message string, expiresAt *time.Time) (*models.Invitation, error) {
	var worker models.Worker
	if err := s.db.WithContext(ctx).Select("id").First(&worker, "id = ?", workerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("worker", workerID)
		}
		return nil, fmt.Errorf("invitation service: load worker: %w", err)
	}

	invitation := models.Invitation{
		ProjectID: project.ID,
		WorkerID:  workerID,
		CompanyID: project.CompanyID,
		Message:   message,
		// Snapshot of the project's wage terms at dispatch time.
		WageAmount:   project.DailyWage,
		OriginalWage: project.OriginalWage,
		WageUnit:     project.WageUnit,
		Status:       models.InvitationPending,
		ExpiresAt:    expiresAt,
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "worker_id"}},
			DoNothing: true,
		}).
		Create(&invitation)
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return nil, nil
		}
		return nil, fmt.Errorf("invitation service: create invitation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	return &invitation, nil
}

func (s *InvitationService) loadDispatchable(ctx context.Context, projectID string, actor Actor) (*models.Project, error) {
	if !actor.IsCompany() {
		return nil, apperrors.NewAuthorization("invite_workers", string(models.RoleCompany))
	}

	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("project", projectID)
		}
		return nil, fmt.Errorf("invitation service: load project: %w", err)
	}
	if project.CompanyID != actor.ID {
		return nil, apperrors.NewNotFound("project", projectID)
	}
	if !project.Mutable() {
		return nil, apperrors.NewState("project", string(project.Status),
			string(models.ProjectDraft), string(models.ProjectInProgress))
	}

	return &project, nil
}
