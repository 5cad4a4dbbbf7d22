package models

import "github.com/google/uuid"

// MarketingPoint is one row of the bulk-loaded address reference dataset.
// The whole collection is replaced on each upload.
type MarketingPoint struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Lat        float64           `gorm:"column:lat;not null;index" json:"lat"`
	Lng        float64           `gorm:"column:lng;not null;index" json:"lng"`
	Properties map[string]string `gorm:"column:properties;type:jsonb;serializer:json" json:"properties"`
}
