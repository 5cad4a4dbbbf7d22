package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/northfiber/fiberops-backend/pkg/enums"
	"github.com/northfiber/fiberops-backend/pkg/types"
)

// Customer is the single aggregate of the install workflow. Every nested
// group lives in a jsonb column owned by the row; nothing here has an
// independent lifecycle.
type Customer struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerName       string               `gorm:"column:customer_name;type:text;not null" json:"customerName"`
	Address            string               `gorm:"column:address;type:text" json:"address"`
	ServiceOrderNumber string               `gorm:"column:service_order_number;type:text" json:"serviceOrderNumber"`
	ServiceSpeed       string               `gorm:"column:service_speed;type:text" json:"serviceSpeed"`
	Status             enums.CustomerStatus `gorm:"column:status;type:text;not null;default:'New Order'" json:"status"`
	// StatusBeforeHold is set on entering hold and consulted, never cleared,
	// when leaving it.
	StatusBeforeHold *enums.CustomerStatus `gorm:"column:status_before_hold;type:text" json:"statusBeforeHold,omitempty"`

	Contacts       []types.Contact      `gorm:"column:contacts;type:jsonb;serializer:json" json:"contacts"`
	PrimaryContact types.PrimaryContact `gorm:"column:primary_contact;type:jsonb;serializer:json" json:"primaryContact"`
	Coordinates    *types.LatLng        `gorm:"column:coordinates;type:jsonb;serializer:json" json:"coordinates,omitempty"`

	PreInstallChecklist   types.PreInstallChecklist   `gorm:"column:pre_install_checklist;type:jsonb;serializer:json" json:"preInstallChecklist"`
	TorysListChecklist    types.TorysListChecklist    `gorm:"column:torys_list_checklist;type:jsonb;serializer:json" json:"torysListChecklist"`
	InstallReadyChecklist types.InstallReadyChecklist `gorm:"column:install_ready_checklist;type:jsonb;serializer:json" json:"installReadyChecklist"`
	PostInstallChecklist  types.PostInstallChecklist  `gorm:"column:post_install_checklist;type:jsonb;serializer:json" json:"postInstallChecklist"`
	InstallDetails        types.InstallDetails        `gorm:"column:install_details;type:jsonb;serializer:json" json:"installDetails"`
	SplicingDetails       types.SplicingDetails       `gorm:"column:splicing_details;type:jsonb;serializer:json" json:"splicingDetails"`

	ExemptFromStats bool   `gorm:"column:exempt_from_stats;not null;default:false" json:"exemptFromStats"`
	GeneralNotes    string `gorm:"column:general_notes;type:text" json:"generalNotes"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// AfterFind normalizes the legacy stage spelling at the storage boundary so
// no read site ever sees it.
func (c *Customer) AfterFind(*gorm.DB) error {
	c.Status = enums.NormalizeCustomerStatus(c.Status)
	if c.StatusBeforeHold != nil {
		normalized := enums.NormalizeCustomerStatus(*c.StatusBeforeHold)
		c.StatusBeforeHold = &normalized
	}
	return nil
}
