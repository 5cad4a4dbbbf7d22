package customers

import (
	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/enums"
	"github.com/northfiber/fiberops-backend/pkg/types"
)

// CreateCustomerInput holds the fields accepted at order intake. Every new
// record starts at New Order.
type CreateCustomerInput struct {
	CustomerName       string               `json:"customerName" validate:"required"`
	Address            string               `json:"address"`
	ServiceOrderNumber string               `json:"serviceOrderNumber"`
	ServiceSpeed       string               `json:"serviceSpeed"`
	Contacts           []types.Contact      `json:"contacts"`
	PrimaryContact     types.PrimaryContact `json:"primaryContact"`
	GeneralNotes       string               `json:"generalNotes"`
}

// DetailPatch is the typed replacement for dotted-path partial updates: each
// nested group is optional and, when supplied, written whole to its column.
// Unset checkboxes inside a supplied group arrive as false, never as an
// absent field.
type DetailPatch struct {
	CustomerName       *string `json:"customerName,omitempty"`
	Address            *string `json:"address,omitempty"`
	ServiceOrderNumber *string `json:"serviceOrderNumber,omitempty"`
	ServiceSpeed       *string `json:"serviceSpeed,omitempty"`
	GeneralNotes       *string `json:"generalNotes,omitempty"`
	ExemptFromStats    *bool   `json:"exemptFromStats,omitempty"`

	Contacts       *[]types.Contact      `json:"contacts,omitempty"`
	PrimaryContact *types.PrimaryContact `json:"primaryContact,omitempty"`

	PreInstallChecklist   *types.PreInstallChecklist   `json:"preInstallChecklist,omitempty"`
	TorysListChecklist    *types.TorysListChecklist    `json:"torysListChecklist,omitempty"`
	InstallReadyChecklist *types.InstallReadyChecklist `json:"installReadyChecklist,omitempty"`
	PostInstallChecklist  *types.PostInstallChecklist  `json:"postInstallChecklist,omitempty"`
	InstallDetails        *types.InstallDetails        `json:"installDetails,omitempty"`
	SplicingDetails       *types.SplicingDetails       `json:"splicingDetails,omitempty"`
}

// Empty reports whether the patch carries no changes at all.
func (p DetailPatch) Empty() bool {
	return p.CustomerName == nil &&
		p.Address == nil &&
		p.ServiceOrderNumber == nil &&
		p.ServiceSpeed == nil &&
		p.GeneralNotes == nil &&
		p.ExemptFromStats == nil &&
		p.Contacts == nil &&
		p.PrimaryContact == nil &&
		p.PreInstallChecklist == nil &&
		p.TorysListChecklist == nil &&
		p.InstallReadyChecklist == nil &&
		p.PostInstallChecklist == nil &&
		p.InstallDetails == nil &&
		p.SplicingDetails == nil
}

// StagePage identifies which single detail page the client shows for a
// record.
type StagePage string

const (
	PageNewOrder     StagePage = "new-order"
	PageSiteSurvey   StagePage = "site-survey"
	PageTorysList    StagePage = "drops"
	PageNIDReady     StagePage = "splicing"
	PageInstallReady StagePage = "install"
	PageFinal        StagePage = "final"
)

var stagePages = map[enums.CustomerStatus]StagePage{
	enums.StatusNewOrder:        PageNewOrder,
	enums.StatusSiteSurveyReady: PageSiteSurvey,
	enums.StatusTorysList:       PageTorysList,
	enums.StatusNIDReady:        PageNIDReady,
	enums.StatusInstallReady:    PageInstallReady,
	enums.StatusCompleted:       PageFinal,
	enums.StatusArchived:        PageFinal,
}

// StagePageFor resolves the detail page for the record's current status. A
// record on hold shows the page for its remembered pre-hold stage.
func StagePageFor(customer *models.Customer) StagePage {
	status := enums.NormalizeCustomerStatus(customer.Status)
	if status == enums.StatusOnHold {
		if customer.StatusBeforeHold != nil {
			if page, ok := stagePages[enums.NormalizeCustomerStatus(*customer.StatusBeforeHold)]; ok {
				return page
			}
		}
		return PageNewOrder
	}
	if page, ok := stagePages[status]; ok {
		return page
	}
	return PageNewOrder
}
