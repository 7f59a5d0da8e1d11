package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/internal/wage"
	apperrors "github.com/crewlinkhq/crewlink/pkg/errors"
)

// projectTransitions lists the legal predecessor states for each target status.
var projectTransitions = map[models.ProjectStatus][]models.ProjectStatus{
	models.ProjectInProgress: {models.ProjectDraft},
	models.ProjectCompleted:  {models.ProjectInProgress},
	models.ProjectCancelled:  {models.ProjectDraft, models.ProjectInProgress},
}

// ProjectOption customises ProjectService behaviour.
type ProjectOption func(*ProjectService)

// WithProjectClock injects a custom clock primarily for testing.
func WithProjectClock(clock func() time.Time) ProjectOption {
	return func(s *ProjectService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// ProjectService owns project entities and their coarse lifecycle.
type ProjectService struct {
	db         *gorm.DB
	normalizer *wage.Normalizer
	now        func() time.Time
}

// NewProjectService constructs a ProjectService.
func NewProjectService(db *gorm.DB, normalizer *wage.Normalizer, opts ...ProjectOption) (*ProjectService, error) {
	if db == nil {
		return nil, errors.New("project service: db is required")
	}
	if normalizer == nil {
		normalizer = wage.NewNormalizer()
	}

	service := &ProjectService{
		db:         db,
		normalizer: normalizer,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CreateProjectInput defines the attributes required to post a project.
type CreateProjectInput struct {
	CompanyID       string
	Name            string
	Address         string
	RequiredWorkers int
	PaymentType     models.PaymentType
	Amount          float64
	StartDate       time.Time
	EndDate         time.Time
}

// Create validates the input, derives the canonical wage fields and persists
// the project in draft status.
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.CompanyID) == "" {
		return nil, apperrors.NewValidation("company_id", "company id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidation("name", "project name is required")
	}
	if strings.TrimSpace(input.Address) == "" {
		return nil, apperrors.NewValidation("address", "project address is required")
	}
	if input.RequiredWorkers <= 0 {
		return nil, apperrors.NewValidation("required_workers", "required worker count must be positive")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, apperrors.NewValidation("start_date", "project date window is required")
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, apperrors.NewValidation("end_date", "end date must not precede start date")
	}

	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", input.CompanyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("company", input.CompanyID)
		}
		return nil, fmt.Errorf("project service: load company: %w", err)
	}

	project := models.Project{
		CompanyID:       input.CompanyID,
		Name:            strings.TrimSpace(input.Name),
		Address:         strings.TrimSpace(input.Address),
		RequiredWorkers: input.RequiredWorkers,
		PaymentType:     input.PaymentType,
		Amount:          input.Amount,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Status:          models.ProjectDraft,
	}

	breakdown, err := s.normalizer.Normalize(wage.Input{
		PaymentType:  input.PaymentType,
		Amount:       input.Amount,
		DurationDays: project.DurationDays(),
	})
	if err != nil {
		return nil, err
	}
	project.DailyWage = breakdown.DailyWage
	project.OriginalWage = breakdown.OriginalWage
	project.WageUnit = breakdown.Unit

	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, fmt.Errorf("project service: create project: %w", err)
	}

	return &project, nil
}

// UpdateWage replaces the payment terms of a still-mutable project, rederiving
// the canonical wage fields. Invitations already sent keep their snapshot.
func (s *ProjectService) UpdateWage(ctx context.Context, projectID string, paymentType models.PaymentType, amount float64, actor Actor) (*models.Project, error) {
	ctx = ensureContext(ctx)

	project, err := s.loadOwned(ctx, projectID, actor)
	if err != nil {
		return nil, err
	}
	if !project.Mutable() {
		return nil, apperrors.NewState("project", string(project.Status),
			string(models.ProjectDraft), string(models.ProjectInProgress))
	}

	breakdown, err := s.normalizer.Normalize(wage.Input{
		PaymentType:  paymentType,
		Amount:       amount,
		DurationDays: project.DurationDays(),
	})
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"payment_type":  paymentType,
		"amount":        amount,
		"daily_wage":    breakdown.DailyWage,
		"original_wage": breakdown.OriginalWage,
		"wage_unit":     breakdown.Unit,
	}
	if err := s.db.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("project service: update wage: %w", err)
	}

	project.PaymentType = paymentType
	project.Amount = amount
	project.DailyWage = breakdown.DailyWage
	project.OriginalWage = breakdown.OriginalWage
	project.WageUnit = breakdown.Unit
	return project, nil
}

// Transition moves the project along its lifecycle. Only the owning company
// may transition, and only along the legal edges; the write is conditional on
// the predecessor status so concurrent calls cannot double-apply.
func (s *ProjectService) Transition(ctx context.Context, projectID string, target models.ProjectStatus, actor Actor) (*models.Project, error) {
	ctx = ensureContext(ctx)

	priors, ok := projectTransitions[target]
	if !ok {
		return nil, apperrors.NewValidation("status", fmt.Sprintf("unknown target status %q", target))
	}

	project, err := s.loadOwned(ctx, projectID, actor)
	if err != nil {
		return nil, err
	}

	expected := make([]string, len(priors))
	for i, p := range priors {
		expected[i] = string(p)
	}

	res := s.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ? AND status IN ?", projectID, priors).
		Update("status", target)
	if res.Error != nil {
		return nil, fmt.Errorf("project service: transition: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Best-effort re-read so the error carries the current status.
		_ = s.db.WithContext(ctx).First(project, "id = ?", projectID).Error
		return nil, apperrors.NewState("project", string(project.Status), expected...)
	}

	project.Status = target
	return project, nil
}

// InvitationCounts aggregates a project's invitations by effective status.
// The expired bucket is derived at read time from pending invitations whose
// response window has closed; nothing is mutated.
type InvitationCounts struct {
	Pending   int64 `json:"pending"`
	Accepted  int64 `json:"accepted"`
	Rejected  int64 `json:"rejected"`
	Cancelled int64 `json:"cancelled"`
	Expired   int64 `json:"expired"`
}

// ProjectDetail is the read model for a single project.
type ProjectDetail struct {
	Project     *models.Project  `json:"project"`
	Invitations InvitationCounts `json:"invitations"`
}

// Get returns the project together with invitation aggregates.
func (s *ProjectService) Get(ctx context.Context, projectID string) (*ProjectDetail, error) {
	ctx = ensureContext(ctx)

	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("project", projectID)
		}
		return nil, fmt.Errorf("project service: load project: %w", err)
	}

	counts, err := s.invitationCounts(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &ProjectDetail{Project: &project, Invitations: counts}, nil
}

// ListForCompany returns the company's projects ordered by recency.
func (s *ProjectService) ListForCompany(ctx context.Context, companyID string) ([]models.Project, error) {
	ctx = ensureContext(ctx)

	var projects []models.Project
	if err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("project service: list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) invitationCounts(ctx context.Context, projectID string) (InvitationCounts, error) {
	var counts InvitationCounts
	now := s.now()

	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	if err := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Select("status, count(*) as total").
		Where("project_id = ?", projectID).
		Group("status").
		Find(&rows).Error; err != nil {
		return counts, fmt.Errorf("project service: count invitations: %w", err)
	}

	for _, r := range rows {
		switch models.InvitationStatus(r.Status) {
		case models.InvitationPending:
			counts.Pending = r.Total
		case models.InvitationAccepted:
			counts.Accepted = r.Total
		case models.InvitationRejected:
			counts.Rejected = r.Total
		case models.InvitationCancelled:
			counts.Cancelled = r.Total
		}
	}

	if counts.Pending > 0 {
		var expired int64
		if err := s.db.WithContext(ctx).
			Model(&models.Invitation{}).
			Where("project_id = ? AND status = ? AND expires_at IS NOT NULL AND expires_at < ?",
				projectID, models.InvitationPending, now).
			Count(&expired).Error; err != nil {
			return counts, fmt.Errorf("project service: count expired invitations: %w", err)
		}
		counts.Pending -= expired
		counts.Expired = expired
	}

	return counts, nil
}

func (s *ProjectService) loadOwned(ctx context.Context, projectID string, actor Actor) (*models.Project, error) {
	if !actor.IsCompany() {
		return nil, apperrors.NewAuthorization("manage_project", string(models.RoleCompany))
	}

	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("project", projectID)
		}
		return nil, fmt.Errorf("project service: load project: %w", err)
	}

	if project.CompanyID != actor.ID {
		// Ownership failures read as absence so callers cannot probe
		// for other companies' projects.
		return nil, apperrors.NewNotFound("project", projectID)
	}

	return &project, nil
}
