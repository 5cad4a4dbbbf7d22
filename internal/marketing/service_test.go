package marketing

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/types"
)

type stubPointsRepo struct {
	points []models.MarketingPoint
}

func (s *stubPointsRepo) ReplaceAll(_ context.Context, points []models.MarketingPoint) error {
	s.points = points
	return nil
}

func (s *stubPointsRepo) ListAll(_ context.Context) ([]models.MarketingPoint, error) {
	return s.points, nil
}

func (s *stubPointsRepo) ListInBounds(_ context.Context, box types.BoundingBox) ([]models.MarketingPoint, error) {
	var out []models.MarketingPoint
	for _, point := range s.points {
		if box.Contains(types.LatLng{Lat: point.Lat, Lng: point.Lng}) {
			out = append(out, point)
		}
	}
	return out, nil
}

func (s *stubPointsRepo) Count(_ context.Context) (int64, error) {
	return int64(len(s.points)), nil
}

func TestParseCSVDetectsCoordinateColumns(t *testing.T) {
	input := strings.Join([]string{
		"Address,Latitude,Longitude,Owner",
		`"123 Main St",41.0645,-86.2158,Smith`,
		`"456 Oak Ave",41.0700,-86.2200,"Jones, Bob"`,
	}, "\n")

	points, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, 41.0645, points[0].Lat)
	assert.Equal(t, -86.2158, points[0].Lng)
	assert.Equal(t, "123 Main St", points[0].Properties["Address"])
	assert.Equal(t, "Smith", points[0].Properties["Owner"])
	assert.Equal(t, "Jones, Bob", points[1].Properties["Owner"])
	// coordinate columns never leak into properties
	assert.NotContains(t, points[0].Properties, "Latitude")
	assert.NotContains(t, points[0].Properties, "Longitude")
}

func TestParseCSVAcceptsLngSpelling(t *testing.T) {
	input := "lat,lng\n41.0,-86.0\n"
	points, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, -86.0, points[0].Lng)
}

func TestParseCSVRejectsMissingCoordinateColumns(t *testing.T) {
	input := "name,address\nSmith,123 Main St\n"
	_, err := ParseCSV(strings.NewReader(input))
	require.Error(t, err)
}

func TestParseCSVRejectsBadCoordinateValue(t *testing.T) {
	input := "lat,lng\nnot-a-number,-86.0\n"
	_, err := ParseCSV(strings.NewReader(input))
	require.Error(t, err)
}

func TestWriteCSVUsesFirstRecordKeysAndDoublesQuotes(t *testing.T) {
	points := []models.MarketingPoint{
		{Lat: 41.0, Lng: -86.0, Properties: map[string]string{
			"address": `123 "A" Main St`,
			"owner":   "Smith",
		}},
		{Lat: 41.1, Lng: -86.1, Properties: map[string]string{
			"address": "456 Oak Ave",
			"owner":   "Jones",
			"extra":   "dropped, not in header",
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, points))
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "lat,lng,address,owner", lines[0])
	assert.Contains(t, lines[1], `"123 ""A"" Main St"`)
	assert.NotContains(t, lines[0], "extra", "header comes from the first record only")
}

func TestImportCSVRoundTripThroughService(t *testing.T) {
	repo := &stubPointsRepo{}
	svc, err := NewService(repo)
	require.NoError(t, err)

	input := "lat,lng,town\n41.0,-86.0,Rochester\n41.5,-86.5,Akron\n"
	count, err := svc.ImportCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, repo.points, 2)
	assert.Equal(t, "Rochester", repo.points[0].Properties["town"])

	var buf bytes.Buffer
	exported, err := svc.ExportCSV(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, exported)
	assert.Contains(t, buf.String(), "Rochester")
}

func TestInBoundsFiltersThroughRepo(t *testing.T) {
	repo := &stubPointsRepo{points: []models.MarketingPoint{
		{Lat: 41.0, Lng: -86.0},
		{Lat: 45.0, Lng: -90.0},
	}}
	svc, err := NewService(repo)
	require.NoError(t, err)

	rows, err := svc.InBounds(context.Background(), types.BoundingBox{
		SouthWest: types.LatLng{Lat: 40, Lng: -87},
		NorthEast: types.LatLng{Lat: 42, Lng: -85},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 41.0, rows[0].Lat)
}
