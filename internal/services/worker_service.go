package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/models"
	apperrors "github.com/crewlinkhq/crewlink/pkg/errors"
)

// WorkerService manages worker identity and candidate search for dispatch.
type WorkerService struct {
	db     *gorm.DB
	skills *SkillIndex
}

// NewWorkerService constructs a WorkerService. The skill index may be nil, in
// which case candidate searches always hit storage.
func NewWorkerService(db *gorm.DB, skills *SkillIndex) (*WorkerService, error) {
	if db == nil {
		return nil, errors.New("worker service: db is required")
	}
	return &WorkerService{db: db, skills: skills}, nil
}

// RegisterWorkerInput defines attributes required to register a worker.
type RegisterWorkerInput struct {
	Name   string
	Phone  string
	Skills []string
}

// Register persists a new worker profile.
func (s *WorkerService) Register(ctx context.Context, input RegisterWorkerInput) (*models.Worker, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidation("name", "worker name is required")
	}

	worker := models.Worker{
		Name:  strings.TrimSpace(input.Name),
		Phone: strings.TrimSpace(input.Phone),
	}

	skills := normaliseIDs(input.Skills)
	if len(skills) > 0 {
		data, err := json.Marshal(skills)
		if err != nil {
			return nil, fmt.Errorf("worker service: encode skills: %w", err)
		}
		worker.Skills = datatypes.JSON(data)
	}

	if err := s.db.WithContext(ctx).Create(&worker).Error; err != nil {
		return nil, fmt.Errorf("worker service: create worker: %w", err)
	}

	if s.skills != nil && len(skills) > 0 {
		if err := s.skills.Invalidate(ctx, skills...); err != nil {
			return nil, fmt.Errorf("worker service: invalidate skill index: %w", err)
		}
	}

	return &worker, nil
}

// Get returns a worker by ID.
func (s *WorkerService) Get(ctx context.Context, workerID string) (*models.Worker, error) {
	ctx = ensureContext(ctx)

	var worker models.Worker
	if err := s.db.WithContext(ctx).First(&worker, "id = ?", workerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("worker", workerID)
		}
		return nil, fmt.Errorf("worker service: load worker: %w", err)
	}
	return &worker, nil
}

// FindBySkill returns IDs of workers advertising the given skill, serving
// repeated lookups from the skill index until its TTL elapses.
func (s *WorkerService) FindBySkill(ctx context.Context, skill string) ([]string, error) {
	ctx = ensureContext(ctx)

	skill = strings.TrimSpace(skill)
	if skill == "" {
		return nil, apperrors.NewValidation("skill", "skill is required")
	}

	if s.skills != nil {
		if ids, ok, err := s.skills.Lookup(ctx, skill); err == nil && ok {
			return ids, nil
		}
	}

	var workers []models.Worker
	if err := s.db.WithContext(ctx).Select("id", "skills").Find(&workers).Error; err != nil {
		return nil, fmt.Errorf("worker service: scan workers: %w", err)
	}

	var ids []string
	for _, worker := range workers {
		if len(worker.Skills) == 0 {
			continue
		}
		var skills []string
		if err := json.Unmarshal(worker.Skills, &skills); err != nil {
			continue
		}
		for _, candidate := range skills {
			if strings.EqualFold(candidate, skill) {
				ids = append(ids, worker.ID)
				break
			}
		}
	}

	if s.skills != nil {
		if err := s.skills.Store(ctx, skill, ids); err != nil {
			return nil, fmt.Errorf("worker service: cache skill lookup: %w", err)
		}
	}

	return ids, nil
}
