// Package views derives every screen's working list from the full customer
// collection with pure predicate, comparator, and grouping functions. A
// fresh snapshot recomputes each screen from scratch; no incremental
// diffing, the collection is hundreds of rows.
package views

import (
	"sort"
	"strings"
	"time"

	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/enums"
)

// TrackerTab selects one of the main screen's three tabs.
type TrackerTab string

const (
	TabActive   TrackerTab = "active"
	TabBilling  TrackerTab = "billing"
	TabArchived TrackerTab = "archived"
)

// TrackerQuery is the tracker screen's filter state.
type TrackerQuery struct {
	Tab    TrackerTab
	Stage  *enums.CustomerStatus // optional stage pill
	Search string
}

// Tracker filters the collection for the main screen, newest first.
func Tracker(customers []models.Customer, query TrackerQuery) []models.Customer {
	var out []models.Customer
	for _, customer := range customers {
		if !matchesTab(customer, query.Tab) {
			continue
		}
		if query.Stage != nil && enums.NormalizeCustomerStatus(customer.Status) != enums.NormalizeCustomerStatus(*query.Stage) {
			continue
		}
		if !MatchesSearch(customer, query.Search) {
			continue
		}
		out = append(out, customer)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matchesTab(customer models.Customer, tab TrackerTab) bool {
	status := enums.NormalizeCustomerStatus(customer.Status)
	switch tab {
	case TabBilling:
		return status == enums.StatusCompleted && !customer.PostInstallChecklist.BillingEmailAdded
	case TabArchived:
		return status == enums.StatusArchived
	default:
		return status != enums.StatusArchived && status != enums.StatusCompleted
	}
}

// MatchesSearch is a case-insensitive substring match ORed across name,
// address, and service order number. An empty term matches everything.
func MatchesSearch(customer models.Customer, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []string{
		customer.CustomerName,
		customer.Address,
		customer.ServiceOrderNumber,
	} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// DropsSort names the user-selectable drop queue orderings.
type DropsSort string

const (
	DropsSortName   DropsSort = "name"
	DropsSortNewest DropsSort = "newest"
	DropsSortOldest DropsSort = "oldest"
)

// DropsView is the drop queue split into the fast-track and standard lanes.
type DropsView struct {
	Priority []models.Customer `json:"priority"`
	Standard []models.Customer `json:"standard"`
}

// Drops filters to the drop queue and splits priority from standard, each
// lane sharing the selected ordering.
func Drops(customers []models.Customer, sortMode DropsSort) DropsView {
	var view DropsView
	for _, customer := range customers {
		if enums.NormalizeCustomerStatus(customer.Status) != enums.StatusTorysList {
			continue
		}
		if customer.TorysListChecklist.IsPriority {
			view.Priority = append(view.Priority, customer)
		} else {
			view.Standard = append(view.Standard, customer)
		}
	}
	sortDrops(view.Priority, sortMode)
	sortDrops(view.Standard, sortMode)
	return view
}

func sortDrops(rows []models.Customer, mode DropsSort) {
	switch mode {
	case DropsSortName:
		sort.SliceStable(rows, func(i, j int) bool {
			return strings.ToLower(rows[i].CustomerName) < strings.ToLower(rows[j].CustomerName)
		})
	case DropsSortNewest:
		sort.SliceStable(rows, func(i, j int) bool {
			return addedAtOrZero(rows[i]).After(addedAtOrZero(rows[j]))
		})
	default: // oldest first
		sort.SliceStable(rows, func(i, j int) bool {
			return addedAtOrZero(rows[i]).Before(addedAtOrZero(rows[j]))
		})
	}
}

func addedAtOrZero(customer models.Customer) time.Time {
	if customer.TorysListChecklist.AddedAt != nil {
		return *customer.TorysListChecklist.AddedAt
	}
	return time.Time{}
}

// SplicingQueue lists unassigned splice work items, oldest drop first so the
// longest-waiting record is dispatched next.
func SplicingQueue(customers []models.Customer) []models.Customer {
	var out []models.Customer
	for _, customer := range customers {
		if enums.NormalizeCustomerStatus(customer.Status) != enums.StatusNIDReady {
			continue
		}
		if customer.SplicingDetails.Assigned {
			continue
		}
		out = append(out, customer)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return dropCompletedAtOrMax(out[i]).Before(dropCompletedAtOrMax(out[j]))
	})
	return out
}

// dropCompletedAtOrMax sorts records without a completion stamp to the back.
func dropCompletedAtOrMax(customer models.Customer) time.Time {
	if customer.TorysListChecklist.CompletedAt != nil {
		return *customer.TorysListChecklist.CompletedAt
	}
	return time.Unix(1<<62, 0)
}

// SplicerNames collects the distinct splicer names with open work, sorted,
// one tab per name.
func SplicerNames(customers []models.Customer) []string {
	seen := map[string]bool{}
	for _, customer := range customers {
		if !isOpenSpliceAssignment(customer) {
			continue
		}
		seen[customer.SplicingDetails.AssignedSplicer] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SplicerTab lists the open assignments for one splicer, in collection
// order.
func SplicerTab(customers []models.Customer, splicer string) []models.Customer {
	var out []models.Customer
	for _, customer := range customers {
		if !isOpenSpliceAssignment(customer) {
			continue
		}
		if !strings.EqualFold(customer.SplicingDetails.AssignedSplicer, splicer) {
			continue
		}
		out = append(out, customer)
	}
	return out
}

func isOpenSpliceAssignment(customer models.Customer) bool {
	if enums.NormalizeCustomerStatus(customer.Status) != enums.StatusNIDReady {
		return false
	}
	return customer.SplicingDetails.Assigned &&
		!customer.SplicingDetails.Completed &&
		customer.SplicingDetails.AssignedSplicer != ""
}

// MapView groups plottable records by status. Statuses absent from the
// enabled set are filtered out; a nil set enables everything.
func MapView(customers []models.Customer, enabled map[enums.CustomerStatus]bool) map[enums.CustomerStatus][]models.Customer {
	out := map[enums.CustomerStatus][]models.Customer{}
	for _, customer := range customers {
		if customer.Coordinates == nil || !customer.Coordinates.Valid() {
			continue
		}
		status := enums.NormalizeCustomerStatus(customer.Status)
		if enabled != nil && !enabled[status] {
			continue
		}
		out[status] = append(out[status], customer)
	}
	return out
}

// AgeBand colors the drop queue by how long a record has been waiting.
type AgeBand string

const (
	AgeBandNormal  AgeBand = "normal"  // <= 7 days
	AgeBandWarning AgeBand = "warning" // 8-14 days
	AgeBandUrgent  AgeBand = "urgent"  // > 14 days
)

// AgeDays is whole days outstanding, rounded up. The reference point is the
// drop queue entry stamp while in that stage, otherwise record creation.
func AgeDays(customer models.Customer, now time.Time) int {
	ref := customer.CreatedAt
	if enums.NormalizeCustomerStatus(customer.Status) == enums.StatusTorysList &&
		customer.TorysListChecklist.AddedAt != nil {
		ref = *customer.TorysListChecklist.AddedAt
	}
	elapsed := now.Sub(ref)
	if elapsed <= 0 {
		return 0
	}
	days := int(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// AgeBandFor buckets an age in days into its display band.
func AgeBandFor(days int) AgeBand {
	switch {
	case days > 14:
		return AgeBandUrgent
	case days > 7:
		return AgeBandWarning
	default:
		return AgeBandNormal
	}
}
