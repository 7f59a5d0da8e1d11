package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/internal/services"
	"github.com/crewlinkhq/crewlink/internal/wage"
	appErrors "github.com/crewlinkhq/crewlink/pkg/errors"
	"github.com/crewlinkhq/crewlink/pkg/response"
)

// ProjectHandler exposes project lifecycle endpoints for company actors.
type ProjectHandler struct {
	projects *services.ProjectService
}

// NewProjectHandler constructs a project handler.
func NewProjectHandler(db *gorm.DB, normalizer *wage.Normalizer) (*ProjectHandler, error) {
	projects, err := services.NewProjectService(db, normalizer)
	if err != nil {
		return nil, err
	}
	return &ProjectHandler{projects: projects}, nil
}

type createProjectRequest struct {
	Name            string    `json:"name" validate:"required,max=255"`
	Address         string    `json:"address" validate:"required,max=512"`
	RequiredWorkers int       `json:"required_workers" validate:"required,gt=0"`
	PaymentType     string    `json:"payment_type" validate:"required,payment_type"`
	Amount          float64   `json:"amount" validate:"required,gt=0"`
	StartDate       time.Time `json:"start_date" validate:"required"`
	EndDate         time.Time `json:"end_date" validate:"required"`
}

type updateWageRequest struct {
	PaymentType string  `json:"payment_type" validate:"required,payment_type"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
}

type transitionRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress completed cancelled"`
}

// Create posts a new project in draft status.
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req createProjectRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.projects.Create(requestContext(c), services.CreateProjectInput{
		CompanyID:       actor.ID,
		Name:            req.Name,
		Address:         req.Address,
		RequiredWorkers: req.RequiredWorkers,
		PaymentType:     models.PaymentType(req.PaymentType),
		Amount:          req.Amount,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, project)
}

// Get returns a project together with its invitation aggregates.
// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	detail, err := h.projects.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// List returns the authenticated company's projects.
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	projects, err := h.projects.ListForCompany(requestContext(c), actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, projects)
}

// UpdateWage replaces the payment terms of a still-mutable project.
// PATCH /api/projects/:id/wage
func (h *ProjectHandler) UpdateWage(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req updateWageRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.projects.UpdateWage(requestContext(c),
		strings.TrimSpace(c.Param("id")),
		models.PaymentType(req.PaymentType),
		req.Amount,
		actor,
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, project)
}

// Transition moves the project along its coarse lifecycle.
// POST /api/projects/:id/transition
func (h *ProjectHandler) Transition(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req transitionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.projects.Transition(requestContext(c),
		strings.TrimSpace(c.Param("id")),
		models.ProjectStatus(req.Status),
		actor,
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, project)
}
