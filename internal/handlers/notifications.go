package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/realtime"
	"github.com/crewlinkhq/crewlink/internal/services"
	appErrors "github.com/crewlinkhq/crewlink/pkg/errors"
	"github.com/crewlinkhq/crewlink/pkg/response"
)

// NotificationHandler exposes the notification inbox and its live stream.
type NotificationHandler struct {
	service *services.NotificationService
	hub     *realtime.Hub
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(db *gorm.DB, hub *realtime.Hub) (*NotificationHandler, error) {
	service, err := services.NewNotificationService(db)
	if err != nil {
		return nil, err
	}
	return &NotificationHandler{service: service, hub: hub}, nil
}

// List returns the caller's notifications.
// GET /api/notifications?unread=true&limit=25&offset=0
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, err := h.service.List(requestContext(c), services.ListInput{
		Actor:  actor,
		Unread: strings.EqualFold(c.Query("unread"), "true"),
		Limit:  parseIntQuery(c, "limit", 25),
		Offset: parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// MarkRead acknowledges a single notification.
// POST /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.MarkRead(requestContext(c), strings.TrimSpace(c.Param("id")), actor); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"read": true})
}

// MarkAllRead acknowledges every unread notification of the caller.
// POST /api/notifications/read_all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	updated, err := h.service.MarkAllRead(requestContext(c), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}

// Stream upgrades the connection to a WebSocket delivering lifecycle events
// as they happen.
// GET /api/notifications/stream
func (h *NotificationHandler) Stream(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if h.hub == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	h.hub.Serve(string(actor.Role), actor.ID, c.Writer, c.Request)
}
