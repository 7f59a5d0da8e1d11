package notifications

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/internal/realtime"
	"github.com/crewlinkhq/crewlink/pkg/logger"
	"github.com/crewlinkhq/crewlink/pkg/metrics"
)

// Dispatcher is the production Gateway: it writes a persistent delivery
// record and pushes the event to any connected client of the recipient.
type Dispatcher struct {
	db  *gorm.DB
	hub *realtime.Hub
	log *zap.Logger
}

// NewDispatcher constructs a Dispatcher. The hub may be nil, in which case
// events are persisted without a realtime push.
func NewDispatcher(db *gorm.DB, hub *realtime.Hub) *Dispatcher {
	return &Dispatcher{
		db:  db,
		hub: hub,
		log: logger.WithModule("notifications"),
	}
}

// Notify implements Gateway. Failures are logged and swallowed: notification
// delivery must never roll back or fail the operation that emitted the event.
func (d *Dispatcher) Notify(ctx context.Context, event Event) {
	if event.RecipientID == "" || event.Type == "" {
		d.log.Warn("dropping malformed event", zap.String("type", event.Type))
		metrics.NotificationsEmitted.WithLabelValues("failed").Inc()
		return
	}

	record := models.Notification{
		RecipientID:   event.RecipientID,
		RecipientRole: event.RecipientRole,
		Type:          event.Type,
		Title:         event.Title,
		Message:       event.Message,
	}

	if len(event.Payload) > 0 {
		if data, err := json.Marshal(event.Payload); err == nil {
			record.Metadata = datatypes.JSON(data)
		} else {
			d.log.Warn("marshal event payload", zap.String("type", event.Type), zap.Error(err))
		}
	}

	if err := d.db.WithContext(ctx).Create(&record).Error; err != nil {
		d.log.Error("persist notification",
			zap.String("type", event.Type),
			zap.String("recipient", event.RecipientID),
			zap.Error(err),
		)
		metrics.NotificationsEmitted.WithLabelValues("failed").Inc()
		return
	}

	if d.hub != nil {
		d.hub.Broadcast(string(event.RecipientRole), event.RecipientID, realtime.Message{
			Event: event.Type,
			Data:  record,
		})
	}

	metrics.NotificationsEmitted.WithLabelValues("delivered").Inc()
}
