package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDownload is an append-only log of sample downloads.
type UserDownload struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"column:email;not null"`
	IP        string    `gorm:"column:ip;not null"`
	SampleID  uuid.UUID `gorm:"column:sample_id;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
