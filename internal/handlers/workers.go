package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/crewlinkhq/crewlink/internal/auth"
	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/internal/services"
	appErrors "github.com/crewlinkhq/crewlink/pkg/errors"
	"github.com/crewlinkhq/crewlink/pkg/response"
)

// WorkerHandler exposes worker registration, profile and candidate search.
type WorkerHandler struct {
	workers *services.WorkerService
	jwt     *iauth.JWTService
}

// NewWorkerHandler constructs a worker handler.
func NewWorkerHandler(db *gorm.DB, skills *services.SkillIndex, jwt *iauth.JWTService) (*WorkerHandler, error) {
	workers, err := services.NewWorkerService(db, skills)
	if err != nil {
		return nil, err
	}
	return &WorkerHandler{workers: workers, jwt: jwt}, nil
}

type registerWorkerRequest struct {
	Name   string   `json:"name" validate:"required,max=255"`
	Phone  string   `json:"phone" validate:"omitempty,max=32"`
	Skills []string `json:"skills" validate:"omitempty,max=32,dive,max=64"`
}

// Register creates a worker profile and issues its bearer token.
// POST /api/workers
func (h *WorkerHandler) Register(c *gin.Context) {
	var req registerWorkerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	worker, err := h.workers.Register(requestContext(c), services.RegisterWorkerInput{
		Name:   req.Name,
		Phone:  req.Phone,
		Skills: req.Skills,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwt.GenerateToken(worker.ID, models.RoleWorker)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, registeredResponse{ID: worker.ID, Token: token})
}

// Get returns a worker profile.
// GET /api/workers/:id
func (h *WorkerHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	worker, err := h.workers.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, worker)
}

// Search returns IDs of workers advertising the requested skill.
// GET /api/workers/search?skill=...
func (h *WorkerHandler) Search(c *gin.Context) {
	skill := strings.TrimSpace(c.Query("skill"))
	if skill == "" {
		response.Error(c, appErrors.NewValidation("skill", "skill query parameter is required"))
		return
	}

	ids, err := h.workers.FindBySkill(requestContext(c), skill)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"worker_ids": ids})
}
