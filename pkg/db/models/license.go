package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// License is a purchasable usage tier for a sample. Price is stored in whole
// USD; the payment flow converts to cents when charging.
type License struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string         `gorm:"column:name;not null;unique"`
	Price     int            `gorm:"column:price;not null"`
	Features  pq.StringArray `gorm:"column:features;type:text[];not null;default:ARRAY[]::text[]"`
	IsPopular bool           `gorm:"column:is_popular;not null;default:false"`
	IsActive  bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
