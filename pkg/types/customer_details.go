package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/northfiber/fiberops-backend/pkg/enums"
)

// Contact is one phone entry on a customer record. The first contact mirrors
// into PrimaryContact.Phone for the legacy detail view.
type Contact struct {
	ID     uuid.UUID         `json:"id"`
	Type   enums.ContactType `json:"type"`
	Number string            `json:"number"`
	Name   string            `json:"name,omitempty"`
}

type PrimaryContact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// PreInstallChecklist covers the New Order and Site Survey stages.
type PreInstallChecklist struct {
	SiteSurveyCompleted bool   `json:"siteSurveyCompleted"`
	WelcomeEmailSent    bool   `json:"welcomeEmailSent"`
	DepositCollected    bool   `json:"depositCollected"`
	Notes               string `json:"notes,omitempty"`
}

// TorysListChecklist tracks the buried-drop work queue.
type TorysListChecklist struct {
	// AddedAt is stamped exactly once, on the first transition into the stage.
	AddedAt     *time.Time `json:"addedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	IsPriority  bool       `json:"isPriority"`
	LocateDone  bool       `json:"locateDone"`
	Notes       string     `json:"notes,omitempty"`
}

// InstallReadyChecklist covers scheduling once splicing is done.
type InstallReadyChecklist struct {
	ScheduledAt       *time.Time `json:"scheduledAt,omitempty"`
	ScheduleConfirmed bool       `json:"scheduleConfirmed"`
	RouterProvisioned bool       `json:"routerProvisioned"`
	Notes             string     `json:"notes,omitempty"`
}

// PostInstallChecklist covers billing wrap-up after completion.
type PostInstallChecklist struct {
	BillingEmailAdded  bool   `json:"billingEmailAdded"`
	SpeedTestCompleted bool   `json:"speedTestCompleted"`
	Notes              string `json:"notes,omitempty"`
}

type InstallDetails struct {
	DropNotes    string     `json:"dropNotes,omitempty"`
	InstallNotes string     `json:"installNotes,omitempty"`
	Technician   string     `json:"technician,omitempty"`
	InstalledAt  *time.Time `json:"installedAt,omitempty"`
}

// SplicingDetails tracks the NID splice work item. Assigned is true iff
// Handhole and AssignedSplicer were supplied together.
type SplicingDetails struct {
	Handhole        string     `json:"handhole,omitempty"`
	AssignedSplicer string     `json:"assignedSplicer,omitempty"`
	Assigned        bool       `json:"assigned"`
	Completed       bool       `json:"completed"`
	AssignedAt      *time.Time `json:"assignedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// Polygon is a drawn marketing area boundary.
type Polygon struct {
	Points []LatLng `json:"points"`
}
