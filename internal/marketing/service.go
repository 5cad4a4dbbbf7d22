package marketing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/northfiber/fiberops-backend/pkg/db/models"
	pkgerrors "github.com/northfiber/fiberops-backend/pkg/errors"
	"github.com/northfiber/fiberops-backend/pkg/types"
)

var (
	latHeaderRe = regexp.MustCompile(`(?i)lat`)
	lngHeaderRe = regexp.MustCompile(`(?i)lon|lng`)
)

type pointsRepository interface {
	ReplaceAll(ctx context.Context, points []models.MarketingPoint) error
	ListAll(ctx context.Context) ([]models.MarketingPoint, error)
	ListInBounds(ctx context.Context, box types.BoundingBox) ([]models.MarketingPoint, error)
	Count(ctx context.Context) (int64, error)
}

// Service exposes the bulk-loaded address dataset.
type Service interface {
	ReplaceAll(ctx context.Context, points []models.MarketingPoint) (int, error)
	ImportCSV(ctx context.Context, r io.Reader) (int, error)
	List(ctx context.Context) ([]models.MarketingPoint, error)
	InBounds(ctx context.Context, box types.BoundingBox) ([]models.MarketingPoint, error)
	ExportCSV(ctx context.Context, w io.Writer) (int, error)
}

type service struct {
	repo pointsRepository
}

// NewService builds the marketing point service.
func NewService(repo pointsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("points repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ReplaceAll(ctx context.Context, points []models.MarketingPoint) (int, error) {
	if err := s.repo.ReplaceAll(ctx, points); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace marketing points")
	}
	return len(points), nil
}

// ImportCSV parses the upload and replaces the whole dataset. The first
// column matching /lat/i and the first matching /lon|lng/i are the
// coordinates; every other column rides along as an opaque string property.
func (s *service) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	points, err := ParseCSV(r)
	if err != nil {
		return 0, err
	}
	return s.ReplaceAll(ctx, points)
}

func (s *service) List(ctx context.Context) ([]models.MarketingPoint, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list marketing points")
	}
	return rows, nil
}

func (s *service) InBounds(ctx context.Context, box types.BoundingBox) ([]models.MarketingPoint, error) {
	rows, err := s.repo.ListInBounds(ctx, box)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query marketing points")
	}
	return rows, nil
}

// ExportCSV writes the dataset as CSV. The header is the coordinate pair
// plus the first record's property keys, applied uniformly; embedded quotes
// are doubled by the writer.
func (s *service) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list marketing points")
	}
	if err := WriteCSV(w, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ParseCSV decodes marketing points from CSV text with a header row.
func ParseCSV(r io.Reader) ([]models.MarketingPoint, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read csv header")
	}

	latIdx, lngIdx := -1, -1
	for i, name := range header {
		if latIdx == -1 && latHeaderRe.MatchString(name) {
			latIdx = i
			continue
		}
		if lngIdx == -1 && lngHeaderRe.MatchString(name) {
			lngIdx = i
		}
	}
	if latIdx == -1 || lngIdx == -1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv needs a latitude and a longitude column")
	}

	var points []models.MarketingPoint
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("read csv line %d", line))
		}
		if latIdx >= len(record) || lngIdx >= len(record) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("csv line %d is missing coordinate columns", line))
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(record[latIdx]), 64)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("csv line %d latitude", line))
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(record[lngIdx]), 64)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("csv line %d longitude", line))
		}

		properties := map[string]string{}
		for i, value := range record {
			if i == latIdx || i == lngIdx || i >= len(header) {
				continue
			}
			properties[header[i]] = value
		}

		points = append(points, models.MarketingPoint{
			Lat:        lat,
			Lng:        lng,
			Properties: properties,
		})
	}
	return points, nil
}

// WriteCSV encodes the dataset with a uniform header taken from the first
// record's property keys.
func WriteCSV(w io.Writer, points []models.MarketingPoint) error {
	writer := csv.NewWriter(w)

	header := []string{"lat", "lng"}
	var keys []string
	if len(points) > 0 {
		for key := range points[0].Properties {
			keys = append(keys, key)
		}
		sort.Strings(keys)
	}
	header = append(header, keys...)
	if err := writer.Write(header); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}

	for _, point := range points {
		record := []string{
			strconv.FormatFloat(point.Lat, 'f', -1, 64),
			strconv.FormatFloat(point.Lng, 'f', -1, 64),
		}
		for _, key := range keys {
			record = append(record, point.Properties[key])
		}
		if err := writer.Write(record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv record")
		}
	}

	writer.Flush()
	return writer.Error()
}
