package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/enums"
	"github.com/northfiber/fiberops-backend/pkg/types"
)

func customerAt(name string, status enums.CustomerStatus, createdAt time.Time) models.Customer {
	return models.Customer{
		CustomerName: name,
		Status:       status,
		CreatedAt:    createdAt,
	}
}

func TestTrackerActiveTabExcludesArchivedAndCompleted(t *testing.T) {
	now := time.Now()
	collection := []models.Customer{
		customerAt("Alice Smith", enums.StatusNewOrder, now.Add(-time.Hour)),
		customerAt("Bob Jones", enums.StatusCompleted, now.Add(-2*time.Hour)),
		customerAt("Cara White", enums.StatusArchived, now.Add(-3*time.Hour)),
		customerAt("Dan Brown", enums.StatusOnHold, now.Add(-30*time.Minute)),
	}

	rows := Tracker(collection, TrackerQuery{Tab: TabActive})
	require.Len(t, rows, 2)
	// newest first
	assert.Equal(t, "Dan Brown", rows[0].CustomerName)
	assert.Equal(t, "Alice Smith", rows[1].CustomerName)
}

func TestTrackerBillingTabWantsCompletedWithoutBillingEmail(t *testing.T) {
	now := time.Now()
	withBilling := customerAt("Done Billed", enums.StatusCompleted, now)
	withBilling.PostInstallChecklist.BillingEmailAdded = true
	collection := []models.Customer{
		withBilling,
		customerAt("Done Unbilled", enums.StatusCompleted, now),
		customerAt("Still Active", enums.StatusInstallReady, now),
	}

	rows := Tracker(collection, TrackerQuery{Tab: TabBilling})
	require.Len(t, rows, 1)
	assert.Equal(t, "Done Unbilled", rows[0].CustomerName)
}

func TestTrackerSearchMatchesAnyOfThreeFields(t *testing.T) {
	now := time.Now()
	alice := customerAt("Alice Smith", enums.StatusNewOrder, now)
	bob := customerAt("Bob Jones", enums.StatusNewOrder, now)
	bob.Address = "500 Smithfield Rd"
	carol := customerAt("Carol King", enums.StatusNewOrder, now)
	carol.ServiceOrderNumber = "990011"
	collection := []models.Customer{alice, bob, carol}

	rows := Tracker(collection, TrackerQuery{Tab: TabActive, Search: "smith"})
	require.Len(t, rows, 2)

	rows = Tracker(collection, TrackerQuery{Tab: TabActive, Search: "990011"})
	require.Len(t, rows, 1)
	assert.Equal(t, "Carol King", rows[0].CustomerName)

	rows = Tracker(collection, TrackerQuery{Tab: TabActive, Search: "SMITH"})
	assert.Len(t, rows, 2, "search must be case-insensitive")
}

func TestTrackerStagePillTreatsLegacySpellingAsCanonical(t *testing.T) {
	now := time.Now()
	legacy := customerAt("Legacy Row", enums.CustomerStatus("Tory's List"), now)
	canonical := customerAt("Canonical Row", enums.StatusTorysList, now)
	collection := []models.Customer{legacy, canonical, customerAt("Other", enums.StatusNewOrder, now)}

	stage := enums.StatusTorysList
	rows := Tracker(collection, TrackerQuery{Tab: TabActive, Stage: &stage})
	assert.Len(t, rows, 2)
}

func dropRecord(name string, addedSecondsAgo int, priority bool) models.Customer {
	added := time.Now().Add(-time.Duration(addedSecondsAgo) * time.Second)
	return models.Customer{
		CustomerName: name,
		Status:       enums.StatusTorysList,
		TorysListChecklist: types.TorysListChecklist{
			AddedAt:    &added,
			IsPriority: priority,
		},
	}
}

func TestDropsSplitsPriorityFromStandard(t *testing.T) {
	collection := []models.Customer{
		dropRecord("Fast Track", 100, true),
		dropRecord("Standard One", 200, false),
		customerAt("Not A Drop", enums.StatusNewOrder, time.Now()),
	}

	view := Drops(collection, DropsSortOldest)
	require.Len(t, view.Priority, 1)
	require.Len(t, view.Standard, 1)
	assert.Equal(t, "Fast Track", view.Priority[0].CustomerName)
}

func TestDropsOldestSortOrdersByAddedAt(t *testing.T) {
	collection := []models.Customer{
		dropRecord("Three Hundred", 300, false),
		dropRecord("One Hundred", 100, false),
		dropRecord("Two Hundred", 200, false),
	}

	view := Drops(collection, DropsSortOldest)
	require.Len(t, view.Standard, 3)
	assert.Equal(t, "Three Hundred", view.Standard[0].CustomerName)
	assert.Equal(t, "Two Hundred", view.Standard[1].CustomerName)
	assert.Equal(t, "One Hundred", view.Standard[2].CustomerName)
}

func TestDropsNewestSortReversesOldest(t *testing.T) {
	collection := []models.Customer{
		dropRecord("Older", 500, false),
		dropRecord("Newer", 50, false),
	}

	view := Drops(collection, DropsSortNewest)
	require.Len(t, view.Standard, 2)
	assert.Equal(t, "Newer", view.Standard[0].CustomerName)
}

func TestDropsNameSortIsCaseInsensitive(t *testing.T) {
	collection := []models.Customer{
		dropRecord("zeta", 100, false),
		dropRecord("Alpha", 200, false),
	}

	view := Drops(collection, DropsSortName)
	require.Len(t, view.Standard, 2)
	assert.Equal(t, "Alpha", view.Standard[0].CustomerName)
}

func spliceRecord(name string, completedSecondsAgo int, assigned bool, splicer string, done bool) models.Customer {
	completed := time.Now().Add(-time.Duration(completedSecondsAgo) * time.Second)
	return models.Customer{
		CustomerName: name,
		Status:       enums.StatusNIDReady,
		TorysListChecklist: types.TorysListChecklist{
			CompletedAt: &completed,
		},
		SplicingDetails: types.SplicingDetails{
			Assigned:        assigned,
			AssignedSplicer: splicer,
			Completed:       done,
		},
	}
}

func TestSplicingQueueOldestDropFirst(t *testing.T) {
	collection := []models.Customer{
		spliceRecord("Recent", 100, false, "", false),
		spliceRecord("Oldest", 900, false, "", false),
		spliceRecord("Assigned Out", 500, true, "Mike", false),
		customerAt("Wrong Stage", enums.StatusInstallReady, time.Now()),
	}

	rows := SplicingQueue(collection)
	require.Len(t, rows, 2)
	assert.Equal(t, "Oldest", rows[0].CustomerName)
	assert.Equal(t, "Recent", rows[1].CustomerName)
}

func TestSplicerTabsGroupByAssignedSplicer(t *testing.T) {
	collection := []models.Customer{
		spliceRecord("For Mike", 100, true, "Mike", false),
		spliceRecord("For Dave", 200, true, "Dave", false),
		spliceRecord("Mike Done", 300, true, "Mike", true),
		spliceRecord("Unassigned", 400, false, "", false),
	}

	assert.Equal(t, []string{"Dave", "Mike"}, SplicerNames(collection))

	mike := SplicerTab(collection, "mike")
	require.Len(t, mike, 1)
	assert.Equal(t, "For Mike", mike[0].CustomerName)
}

func TestMapViewGroupsByStatusAndSkipsUnplottable(t *testing.T) {
	plotted := customerAt("Plotted", enums.StatusNewOrder, time.Now())
	plotted.Coordinates = &types.LatLng{Lat: 41.06, Lng: -86.21}
	origin := customerAt("Origin Coordinate", enums.StatusNewOrder, time.Now())
	origin.Coordinates = &types.LatLng{}
	unresolved := customerAt("Unresolved", enums.StatusTorysList, time.Now())

	grouped := MapView([]models.Customer{plotted, origin, unresolved}, nil)
	require.Len(t, grouped, 1)
	require.Len(t, grouped[enums.StatusNewOrder], 1)
	assert.Equal(t, "Plotted", grouped[enums.StatusNewOrder][0].CustomerName)
}

func TestMapViewStatusToggleFilters(t *testing.T) {
	a := customerAt("A", enums.StatusNewOrder, time.Now())
	a.Coordinates = &types.LatLng{Lat: 41, Lng: -86}
	b := customerAt("B", enums.StatusCompleted, time.Now())
	b.Coordinates = &types.LatLng{Lat: 41.1, Lng: -86.1}

	grouped := MapView([]models.Customer{a, b}, map[enums.CustomerStatus]bool{
		enums.StatusCompleted: true,
	})
	require.Len(t, grouped, 1)
	assert.Contains(t, grouped, enums.StatusCompleted)
}

func TestAgeDaysRoundsUpFromReferenceStamp(t *testing.T) {
	now := time.Now()

	inDrops := dropRecord("Waiting", 0, false)
	fifteenDays := now.Add(-15 * 24 * time.Hour)
	inDrops.TorysListChecklist.AddedAt = &fifteenDays
	assert.Equal(t, 15, AgeDays(inDrops, now))
	assert.Equal(t, AgeBandUrgent, AgeBandFor(AgeDays(inDrops, now)))

	exactlySeven := dropRecord("Week Old", 0, false)
	sevenDays := now.Add(-7 * 24 * time.Hour)
	exactlySeven.TorysListChecklist.AddedAt = &sevenDays
	assert.Equal(t, 7, AgeDays(exactlySeven, now))
	assert.Equal(t, AgeBandNormal, AgeBandFor(AgeDays(exactlySeven, now)))

	partial := dropRecord("Partial Day", 0, false)
	halfDay := now.Add(-36 * time.Hour)
	partial.TorysListChecklist.AddedAt = &halfDay
	assert.Equal(t, 2, AgeDays(partial, now), "partial days round up")
}

func TestAgeDaysFallsBackToCreatedAtOutsideDropQueue(t *testing.T) {
	now := time.Now()
	customer := customerAt("New", enums.StatusNewOrder, now.Add(-10*24*time.Hour))
	stamp := now.Add(-2 * 24 * time.Hour)
	customer.TorysListChecklist.AddedAt = &stamp

	// not in the drop queue, so the stamp is ignored
	assert.Equal(t, 10, AgeDays(customer, now))
}

func TestAgeBandBoundaries(t *testing.T) {
	assert.Equal(t, AgeBandNormal, AgeBandFor(7))
	assert.Equal(t, AgeBandWarning, AgeBandFor(8))
	assert.Equal(t, AgeBandWarning, AgeBandFor(14))
	assert.Equal(t, AgeBandUrgent, AgeBandFor(15))
}
