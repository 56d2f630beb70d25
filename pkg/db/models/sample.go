package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Sample is a catalog row for a downloadable audio sample. The audio itself
// lives in the object store under GCSKey; the row only carries metadata and
// counters.
type Sample struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string         `gorm:"column:name;not null"`
	ArtistName    string         `gorm:"column:artist_name;not null"`
	Genre         string         `gorm:"column:genre;not null"`
	BPM           int            `gorm:"column:bpm;not null"`
	MusicalKey    string         `gorm:"column:musical_key;not null"`
	DurationSecs  float64        `gorm:"column:duration_secs;not null;default:0"`
	Tags          pq.StringArray `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	GCSKey        string         `gorm:"column:gcs_key;not null"`
	DownloadCount int            `gorm:"column:download_count;not null;default:0"`
	LikeCount     int            `gorm:"column:like_count;not null;default:0"`
	IsPremium     bool           `gorm:"column:is_premium;not null;default:false"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
