package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmarable/wavecrate-backend/pkg/enums"
)

// WebhookDeadLetter stores a verified provider event whose local persistence
// failed. The provider is still acknowledged with a 200, so this table is the
// only durable record of the failure until an operator replays it.
type WebhookDeadLetter struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID    string                 `gorm:"column:event_id;not null;unique"`
	EventType  string                 `gorm:"column:event_type;not null"`
	Payload    []byte                 `gorm:"column:payload;not null"`
	Reason     string                 `gorm:"column:reason;not null"`
	Status     enums.DeadLetterStatus `gorm:"column:status;not null;default:'pending'"`
	ResolvedAt *time.Time             `gorm:"column:resolved_at"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}
