package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/internal/notifications"
	"github.com/crewlinkhq/crewlink/internal/services"
	appErrors "github.com/crewlinkhq/crewlink/pkg/errors"
	"github.com/crewlinkhq/crewlink/pkg/response"
)

// JobHandler exposes the job execution and closure pipeline.
type JobHandler struct {
	jobs *services.JobService
}

// NewJobHandler constructs a job handler.
func NewJobHandler(db *gorm.DB, gateway notifications.Gateway) (*JobHandler, error) {
	jobs, err := services.NewJobService(db, gateway)
	if err != nil {
		return nil, err
	}
	return &JobHandler{jobs: jobs}, nil
}

type advanceRequest struct {
	Action           string   `json:"action" validate:"required,oneof=check_in start_work complete_work confirm pay"`
	CompletionNote   string   `json:"completion_note" validate:"omitempty,max=2000"`
	CompletionPhotos []string `json:"completion_photos" validate:"omitempty,max=10,dive,max=512"`
	QualityRating    int      `json:"quality_rating" validate:"omitempty,min=1,max=5"`
	ConfirmationNote string   `json:"confirmation_note" validate:"omitempty,max=2000"`
	PaymentMethod    string   `json:"payment_method" validate:"omitempty,oneof=cash transfer"`
	TransactionRef   string   `json:"transaction_ref" validate:"omitempty,max=128"`
}

// Advance applies one lifecycle action to a job.
// POST /api/jobs/:id/advance
func (h *JobHandler) Advance(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req advanceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	job, err := h.jobs.Advance(requestContext(c),
		strings.TrimSpace(c.Param("id")),
		services.JobAction(req.Action),
		actor,
		services.AdvancePayload{
			CompletionNote:   req.CompletionNote,
			CompletionPhotos: req.CompletionPhotos,
			QualityRating:    req.QualityRating,
			ConfirmationNote: req.ConfirmationNote,
			PaymentMethod:    models.PaymentMethod(req.PaymentMethod),
			TransactionRef:   req.TransactionRef,
		},
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, job)
}

// Get returns a job visible to one of its two parties.
// GET /api/jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	job, err := h.jobs.Get(requestContext(c), strings.TrimSpace(c.Param("id")), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, job)
}

// List returns the caller's jobs, on whichever side of the engagement they sit.
// GET /api/jobs
func (h *JobHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var (
		jobs []models.JobRecord
		err  error
	)
	if actor.IsCompany() {
		jobs, err = h.jobs.ListForCompany(requestContext(c), actor.ID)
	} else {
		jobs, err = h.jobs.ListForWorker(requestContext(c), actor.ID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, jobs)
}
