package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/internal/notifications"
	apperrors "github.com/crewlinkhq/crewlink/pkg/errors"
	"github.com/crewlinkhq/crewlink/pkg/metrics"
)

// JobAction identifies a lifecycle transition request.
type JobAction string

const (
	ActionCheckIn      JobAction = "check_in"
	ActionStartWork    JobAction = "start_work"
	ActionCompleteWork JobAction = "complete_work"
	ActionConfirm      JobAction = "confirm"
	ActionPay          JobAction = "pay"
)

type jobTransition struct {
	from      models.JobStatus
	to        models.JobStatus
	role      models.ActorRole
	event     string
	timestamp string
}

// jobTransitions is the full lifecycle: a linear pipeline with role gating.
// Workers drive execution, the company drives closure.
var jobTransitions = map[JobAction]jobTransition{
	ActionCheckIn:      {models.JobActive, models.JobCheckedIn, models.RoleWorker, notifications.EventJobCheckedIn, "checked_in_at"},
	ActionStartWork:    {models.JobCheckedIn, models.JobInProgress, models.RoleWorker, notifications.EventJobStarted, "started_at"},
	ActionCompleteWork: {models.JobInProgress, models.JobCompleted, models.RoleWorker, notifications.EventJobCompleted, "completed_at"},
	ActionConfirm:      {models.JobCompleted, models.JobConfirmed, models.RoleCompany, notifications.EventJobConfirmed, "confirmed_at"},
	ActionPay:          {models.JobConfirmed, models.JobPaid, models.RoleCompany, notifications.EventJobPaid, "paid_at"},
}

// AdvancePayload carries the optional attachments of a transition. Which
// fields are consulted depends on the action.
type AdvancePayload struct {
	CompletionNote   string
	CompletionPhotos []string
	QualityRating    int
	ConfirmationNote string
	PaymentMethod    models.PaymentMethod
	TransactionRef   string
}

// JobOption customises JobService behaviour.
type JobOption func(*JobService)

// WithJobClock injects a custom clock primarily for testing.
func WithJobClock(clock func() time.Time) JobOption {
	return func(s *JobService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// JobService drives job records through the execution and closure pipeline.
// Every transition is a conditional update on the predecessor status, so an
// out-of-order or concurrent call can never mutate state.
type JobService struct {
	db      *gorm.DB
	gateway notifications.Gateway
	now     func() time.Time
}

// NewJobService constructs a JobService.
func NewJobService(db *gorm.DB, gateway notifications.Gateway, opts ...JobOption) (*JobService, error) {
	if db == nil {
		return nil, errors.New("job service: db is required")
	}
	if gateway == nil {
		gateway = notifications.NopGateway{}
	}

	service := &JobService{
		db:      db,
		gateway: gateway,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Advance applies one lifecycle action to a job on behalf of an actor.
// The payment amount is fixed at invitation-time wage; confirm and pay only
// record closure details, they never touch the amount.
func (s *JobService) Advance(ctx context.Context, jobID string, action JobAction, actor Actor, payload AdvancePayload) (*models.JobRecord, error) {
	ctx = ensureContext(ctx)

	t, ok := jobTransitions[action]
	if !ok {
		return nil, apperrors.NewValidation("action", fmt.Sprintf("unknown action %q", action))
	}

	job, err := s.loadForActor(ctx, jobID, actor, action, t)
	if err != nil {
		return nil, err
	}

	updates, err := s.buildUpdates(action, t, payload)
	if err != nil {
		metrics.JobTransitions.WithLabelValues(string(action), "denied").Inc()
		return nil, err
	}

	res := s.db.WithContext(ctx).
		Model(&models.JobRecord{}).
		Where("id = ? AND status = ?", jobID, t.from).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("job service: %s: %w", action, res.Error)
	}
	if res.RowsAffected == 0 {
		metrics.JobTransitions.WithLabelValues(string(action), "denied").Inc()
		var current models.JobRecord
		if err := s.db.WithContext(ctx).Select("status").First(&current, "id = ?", jobID).Error; err != nil {
			return nil, fmt.Errorf("job service: reload job: %w", err)
		}
		return nil, apperrors.NewState("job", string(current.Status), string(t.from)).
			WithDetail("action", string(action))
	}

	metrics.JobTransitions.WithLabelValues(string(action), "ok").Inc()

	if err := s.db.WithContext(ctx).First(job, "id = ?", jobID).Error; err != nil {
		return nil, fmt.Errorf("job service: reload job: %w", err)
	}

	s.notifyCounterpart(ctx, job, t)
	return job, nil
}

// Get returns a job visible to one of its two parties.
func (s *JobService) Get(ctx context.Context, jobID string, actor Actor) (*models.JobRecord, error) {
	ctx = ensureContext(ctx)

	var job models.JobRecord
	if err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("job", jobID)
		}
		return nil, fmt.Errorf("job service: load job: %w", err)
	}

	owns := (actor.IsCompany() && job.CompanyID == actor.ID) ||
		(actor.IsWorker() && job.WorkerID == actor.ID)
	if !owns {
		return nil, apperrors.NewNotFound("job", jobID)
	}

	return &job, nil
}

// ListForWorker returns a worker's jobs, newest first.
func (s *JobService) ListForWorker(ctx context.Context, workerID string) ([]models.JobRecord, error) {
	ctx = ensureContext(ctx)

	var jobs []models.JobRecord
	if err := s.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("job service: list for worker: %w", err)
	}
	return jobs, nil
}

// ListForCompany returns a company's jobs, newest first.
func (s *JobService) ListForCompany(ctx context.Context, companyID string) ([]models.JobRecord, error) {
	ctx = ensureContext(ctx)

	var jobs []models.JobRecord
	if err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("job service: list for company: %w", err)
	}
	return jobs, nil
}

func (s *JobService) loadForActor(ctx context.Context, jobID string, actor Actor, action JobAction, t jobTransition) (*models.JobRecord, error) {
	var job models.JobRecord
	if err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("job", jobID)
		}
		return nil, fmt.Errorf("job service: load job: %w", err)
	}

	// A party to the job with the wrong role is an authorization failure;
	// an outsider reads as absence.
	party := job.WorkerID == actor.ID || job.CompanyID == actor.ID
	if !party {
		return nil, apperrors.NewNotFound("job", jobID)
	}
	if actor.Role != t.role || (t.role == models.RoleWorker && job.WorkerID != actor.ID) ||
		(t.role == models.RoleCompany && job.CompanyID != actor.ID) {
		return nil, apperrors.NewAuthorization(string(action), string(t.role))
	}

	return &job, nil
}

func (s *JobService) buildUpdates(action JobAction, t jobTransition, payload AdvancePayload) (map[string]any, error) {
	now := s.now()
	updates := map[string]any{
		"status":    t.to,
		t.timestamp: now,
	}

	switch action {
	case ActionCompleteWork:
		updates["completion_note"] = strings.TrimSpace(payload.CompletionNote)
		if len(payload.CompletionPhotos) > 0 {
			data, err := json.Marshal(payload.CompletionPhotos)
			if err != nil {
				return nil, fmt.Errorf("job service: marshal photos: %w", err)
			}
			updates["completion_photos"] = datatypes.JSON(data)
		}

	case ActionConfirm:
		if payload.QualityRating < 1 || payload.QualityRating > 5 {
			return nil, apperrors.NewValidation("quality_rating", "quality rating must be between 1 and 5")
		}
		updates["quality_rating"] = payload.QualityRating
		updates["confirmation_note"] = strings.TrimSpace(payload.ConfirmationNote)

	case ActionPay:
		switch payload.PaymentMethod {
		case models.PaymentMethodCash:
			// Transaction reference is optional for cash settlements.
		case models.PaymentMethodTransfer:
			if strings.TrimSpace(payload.TransactionRef) == "" {
				return nil, apperrors.NewValidation("transaction_ref", "transaction reference is required for transfers")
			}
		default:
			return nil, apperrors.NewValidation("payment_method", "payment method must be cash or transfer")
		}
		updates["payment_method"] = payload.PaymentMethod
		updates["transaction_ref"] = strings.TrimSpace(payload.TransactionRef)
	}

	return updates, nil
}

func (s *JobService) notifyCounterpart(ctx context.Context, job *models.JobRecord, t jobTransition) {
	recipientID := job.CompanyID
	recipientRole := models.RoleCompany
	if t.role == models.RoleCompany {
		recipientID = job.WorkerID
		recipientRole = models.RoleWorker
	}

	s.gateway.Notify(ctx, notifications.Event{
		Type:          t.event,
		RecipientID:   recipientID,
		RecipientRole: recipientRole,
		Title:         "Job update",
		Message:       fmt.Sprintf("Job is now %s", job.Status),
		Payload: map[string]any{
			"job_id":     job.ID,
			"project_id": job.ProjectID,
			"status":     job.Status,
		},
	})
}
