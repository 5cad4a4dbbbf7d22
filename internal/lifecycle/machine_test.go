package lifecycle

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/enums"
	"github.com/northfiber/fiberops-backend/pkg/errors"
)

func newCustomer(status enums.CustomerStatus) *models.Customer {
	return &models.Customer{
		CustomerName: "Jane Smith",
		Status:       status,
	}
}

func TestAdvanceMovesForwardThroughWorkflow(t *testing.T) {
	now := time.Now()
	customer := newCustomer(enums.StatusNewOrder)

	expected := []enums.CustomerStatus{
		enums.StatusSiteSurveyReady,
		enums.StatusTorysList,
		enums.StatusNIDReady,
		enums.StatusInstallReady,
		enums.StatusCompleted,
	}
	for _, want := range expected {
		change, err := Advance(customer, 1, now)
		require.NoError(t, err)
		assert.Equal(t, want, change.To)
		assert.Equal(t, want, customer.Status)
	}
}

func TestAdvanceForwardAtCompletedIsNoOp(t *testing.T) {
	customer := newCustomer(enums.StatusCompleted)
	change, err := Advance(customer, 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, enums.StatusCompleted, customer.Status)
	assert.True(t, change.NoOp())
}

func TestAdvanceBackwardAtNewOrderIsNoOp(t *testing.T) {
	customer := newCustomer(enums.StatusNewOrder)
	change, err := Advance(customer, -1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, enums.StatusNewOrder, customer.Status)
	assert.True(t, change.NoOp())
}

func TestAdvanceResolvesHoldFirst(t *testing.T) {
	before := enums.StatusTorysList
	customer := newCustomer(enums.StatusOnHold)
	customer.StatusBeforeHold = &before

	change, err := Advance(customer, 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, enums.StatusNIDReady, change.To)
}

func TestAdvanceZeroResolvesHoldWithoutMoving(t *testing.T) {
	before := enums.StatusInstallReady
	customer := newCustomer(enums.StatusOnHold)
	customer.StatusBeforeHold = &before

	change, err := Advance(customer, 0, time.Now())
	require.NoError(t, err)
	assert.Equal(t, enums.StatusInstallReady, change.To)
	assert.Equal(t, enums.StatusOnHold, change.From)
}

func TestAdvanceFromArchivedIsConflict(t *testing.T) {
	customer := newCustomer(enums.StatusArchived)
	_, err := Advance(customer, 1, time.Now())
	require.Error(t, err)

	appErr := errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeStateConflict, appErr.Code())
}

func TestAdvanceRejectsLargeDirection(t *testing.T) {
	customer := newCustomer(enums.StatusNewOrder)
	_, err := Advance(customer, 2, time.Now())
	require.Error(t, err)
}

func TestAdvanceStampsTorysListEntry(t *testing.T) {
	now := time.Now()
	customer := newCustomer(enums.StatusSiteSurveyReady)

	change, err := Advance(customer, 1, now)
	require.NoError(t, err)
	assert.Equal(t, enums.StatusTorysList, change.To)
	require.NotNil(t, customer.TorysListChecklist.AddedAt)
	assert.Equal(t, now, *customer.TorysListChecklist.AddedAt)
	assert.Contains(t, change.Columns, ColumnTorysListChecklist)
}

func TestHoldRoundTripRestoresEveryStage(t *testing.T) {
	for _, stage := range enums.Workflow() {
		customer := newCustomer(stage)

		holdChange, err := EnterHold(customer)
		require.NoError(t, err, "stage %s", stage)
		assert.Equal(t, enums.StatusOnHold, customer.Status)
		assert.True(t, holdChange.StatusChanged())

		leaveChange, err := LeaveHold(customer)
		require.NoError(t, err, "stage %s", stage)
		assert.Equal(t, stage, customer.Status, "hold round-trip must restore %s", stage)
		assert.Equal(t, stage, leaveChange.To)
	}
}

func TestEnterHoldIsIdempotent(t *testing.T) {
	before := enums.StatusNIDReady
	customer := newCustomer(enums.StatusOnHold)
	customer.StatusBeforeHold = &before

	change, err := EnterHold(customer)
	require.NoError(t, err)
	assert.True(t, change.NoOp())
	// the remembered stage must survive the re-entry
	require.NotNil(t, customer.StatusBeforeHold)
	assert.Equal(t, enums.StatusNIDReady, *customer.StatusBeforeHold)
}

func TestLeaveHoldDefaultsToNewOrder(t *testing.T) {
	customer := newCustomer(enums.StatusOnHold)
	change, err := LeaveHold(customer)
	require.NoError(t, err)
	assert.Equal(t, enums.StatusNewOrder, change.To)
}

func TestLeaveHoldOffHoldIsNoOp(t *testing.T) {
	customer := newCustomer(enums.StatusTorysList)
	change, err := LeaveHold(customer)
	require.NoError(t, err)
	assert.True(t, change.NoOp())
	assert.Equal(t, enums.StatusTorysList, customer.Status)
}

func TestArchiveOnlyFromCompleted(t *testing.T) {
	for _, status := range []enums.CustomerStatus{
		enums.StatusNewOrder,
		enums.StatusTorysList,
		enums.StatusInstallReady,
		enums.StatusOnHold,
		enums.StatusArchived,
	} {
		customer := newCustomer(status)
		_, err := Archive(customer)
		require.Error(t, err, "archive from %s must fail", status)
		assert.Equal(t, status, customer.Status)
	}

	customer := newCustomer(enums.StatusCompleted)
	change, err := Archive(customer)
	require.NoError(t, err)
	assert.Equal(t, enums.StatusArchived, change.To)
}

func TestUnarchiveOnlyFromArchivedYieldsCompleted(t *testing.T) {
	customer := newCustomer(enums.StatusCompleted)
	_, err := Unarchive(customer)
	require.Error(t, err)

	customer = newCustomer(enums.StatusArchived)
	change, err := Unarchive(customer)
	require.NoError(t, err)
	assert.Equal(t, enums.StatusCompleted, change.To)
	assert.Equal(t, enums.StatusCompleted, customer.Status)
}

func TestEnterTorysListStampsOnceOnly(t *testing.T) {
	now := time.Now()
	customer := newCustomer(enums.StatusNewOrder)

	change, err := EnterTorysList(customer, now)
	require.NoError(t, err)
	assert.Equal(t, enums.StatusTorysList, change.To)
	require.NotNil(t, customer.TorysListChecklist.AddedAt)
	first := *customer.TorysListChecklist.AddedAt

	// re-save while still in the stage never re-stamps
	later, err := EnterTorysList(customer, now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, later.NoOp())
	assert.Equal(t, first, *customer.TorysListChecklist.AddedAt)
}

func TestEnterTorysListKeepsExistingStampOnReEntry(t *testing.T) {
	original := time.Now().Add(-72 * time.Hour)
	customer := newCustomer(enums.StatusNIDReady)
	customer.TorysListChecklist.AddedAt = &original

	_, err := EnterTorysList(customer, time.Now())
	require.NoError(t, err)
	assert.Equal(t, original, *customer.TorysListChecklist.AddedAt)
}

func TestReturnToTorysListClearsCompletionAndFastTracks(t *testing.T) {
	now := time.Now()
	completed := now.Add(-24 * time.Hour)
	customer := newCustomer(enums.StatusNIDReady)
	customer.TorysListChecklist.CompletedAt = &completed
	customer.TorysListChecklist.IsPriority = false
	customer.InstallDetails.DropNotes = "existing note"

	change, err := ReturnToTorysList(customer, "handhole flooded", now)
	require.NoError(t, err)

	assert.Equal(t, enums.StatusTorysList, change.To)
	assert.Nil(t, customer.TorysListChecklist.CompletedAt)
	assert.True(t, customer.TorysListChecklist.IsPriority)
	assert.True(t, strings.HasPrefix(customer.InstallDetails.DropNotes, "existing note\n"))
	assert.Contains(t, customer.InstallDetails.DropNotes, "handhole flooded")
	assert.Contains(t, customer.InstallDetails.DropNotes, now.Format("2006-01-02"))
}

func TestReturnToTorysListRejectsOtherStages(t *testing.T) {
	customer := newCustomer(enums.StatusInstallReady)
	_, err := ReturnToTorysList(customer, "reason", time.Now())
	require.Error(t, err)

	appErr := errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeStateConflict, appErr.Code())
}

func TestTransitionsAlwaysLandOnKnownStatus(t *testing.T) {
	now := time.Now()
	for _, start := range []enums.CustomerStatus{
		enums.StatusNewOrder,
		enums.StatusSiteSurveyReady,
		enums.StatusTorysList,
		enums.StatusNIDReady,
		enums.StatusInstallReady,
		enums.StatusCompleted,
		enums.StatusOnHold,
	} {
		for _, direction := range []int{-1, 0, 1} {
			customer := newCustomer(start)
			if _, err := Advance(customer, direction, now); err == nil {
				assert.True(t, customer.Status.IsValid(), "advance(%s, %d) landed on %q", start, direction, customer.Status)
			}
		}
	}
}

func TestLegacySpellingIsNormalizedByTransitions(t *testing.T) {
	customer := newCustomer(enums.CustomerStatus("Tory's List"))
	change, err := Advance(customer, 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, enums.StatusTorysList, change.From)
	assert.Equal(t, enums.StatusNIDReady, change.To)
}
