package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/northfiber/fiberops-backend/pkg/types"
)

// Campaign is a drawn marketing target area, independent of the customer
// lifecycle.
type Campaign struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string          `gorm:"column:name;type:text;not null" json:"name"`
	Deal         string          `gorm:"column:deal;type:text" json:"deal"`
	Details      string          `gorm:"column:details;type:text" json:"details"`
	Polygons     []types.Polygon `gorm:"column:polygons;type:jsonb;serializer:json" json:"polygons"`
	AddressCount int             `gorm:"column:address_count;not null;default:0" json:"addressCount"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
