package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/notifications"
	"github.com/crewlinkhq/crewlink/internal/services"
	appErrors "github.com/crewlinkhq/crewlink/pkg/errors"
	"github.com/crewlinkhq/crewlink/pkg/response"
)

// InvitationHandler exposes invitation dispatch, withdrawal and worker
// response endpoints.
type InvitationHandler struct {
	invitations *services.InvitationService
	responses   *services.ResponseService
}

// NewInvitationHandler constructs an invitation handler.
func NewInvitationHandler(db *gorm.DB, gateway notifications.Gateway) (*InvitationHandler, error) {
	invitations, err := services.NewInvitationService(db, gateway)
	if err != nil {
		return nil, err
	}
	responses, err := services.NewResponseService(db, gateway)
	if err != nil {
		return nil, err
	}
	return &InvitationHandler{invitations: invitations, responses: responses}, nil
}

type dispatchRequest struct {
	ProjectID string     `json:"project_id" validate:"required"`
	WorkerIDs []string   `json:"worker_ids" validate:"required,min=1,max=100"`
	Message   string     `json:"message" validate:"omitempty,max=1000"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type respondRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accepted rejected"`
	Note     string `json:"note" validate:"omitempty,max=1000"`
}

// Dispatch creates invitations for a batch of workers.
// POST /api/invitations/dispatch
func (h *InvitationHandler) Dispatch(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dispatchRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.invitations.InviteWorkers(requestContext(c), services.InviteWorkersInput{
		ProjectID: req.ProjectID,
		WorkerIDs: req.WorkerIDs,
		Message:   req.Message,
		ExpiresAt: req.ExpiresAt,
	}, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Partial failures are a success at the batch level.
	response.Success(c, http.StatusOK, result)
}

// Get returns a single invitation visible to the caller.
// GET /api/invitations/:id
func (h *InvitationHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	invitation, err := h.invitations.Get(requestContext(c), strings.TrimSpace(c.Param("id")), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, invitation)
}

// ListMine returns the authenticated worker's invitations.
// GET /api/invitations
func (h *InvitationHandler) ListMine(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	invitations, err := h.invitations.ListForWorker(requestContext(c), actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, invitations)
}

// ListForProject returns a project's invitations for its owning company.
// GET /api/projects/:id/invitations
func (h *InvitationHandler) ListForProject(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	invitations, err := h.invitations.ListForProject(requestContext(c), strings.TrimSpace(c.Param("id")), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, invitations)
}

// Cancel withdraws a pending invitation.
// POST /api/invitations/:id/cancel
func (h *InvitationHandler) Cancel(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	invitation, err := h.invitations.Cancel(requestContext(c), strings.TrimSpace(c.Param("id")), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, invitation)
}

// Respond applies the authenticated worker's decision to an invitation.
// Accepting returns the job record born from the acceptance.
// POST /api/invitations/:id/respond
func (h *InvitationHandler) Respond(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req respondRequest
	if !bindAndValidate(c, &req) {
		return
	}

	job, err := h.responses.Respond(requestContext(c),
		strings.TrimSpace(c.Param("id")),
		actor.ID,
		services.Decision(req.Decision),
		req.Note,
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	if job == nil {
		response.Success(c, http.StatusOK, gin.H{"decision": req.Decision})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"decision": req.Decision, "job": job})
}
