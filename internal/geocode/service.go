package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/northfiber/fiberops-backend/pkg/db/models"
	pkgerrors "github.com/northfiber/fiberops-backend/pkg/errors"
	"github.com/northfiber/fiberops-backend/pkg/geocoder"
	"github.com/northfiber/fiberops-backend/pkg/logger"
	"github.com/northfiber/fiberops-backend/pkg/metrics"
	"github.com/northfiber/fiberops-backend/pkg/types"
)

type geocoderClient interface {
	Geocode(ctx context.Context, address string) (*geocoder.Result, error)
}

type customerStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	ListAll(ctx context.Context) ([]models.Customer, error)
	SaveCoordinates(ctx context.Context, customer *models.Customer) error
	ClearAllCoordinates(ctx context.Context) error
}

// Resolution is the explicit outcome of a single lookup: the coordinate (nil
// when unresolved) plus whether the cache write landed.
type Resolution struct {
	Location  *types.LatLng `json:"location,omitempty"`
	CacheHit  bool          `json:"cacheHit"`
	Persisted bool          `json:"persisted"`
}

// PlotReport summarizes a bulk plot pass over the collection.
type PlotReport struct {
	Total      int `json:"total"`
	CacheHits  int `json:"cacheHits"`
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
	Failed     int `json:"failed"`
}

// Service is the cache-through layer between the customer collection and the
// external geocoder.
type Service struct {
	store   customerStore
	client  geocoderClient
	logg    *logger.Logger
	metrics *metrics.OpsMetrics

	stagger      time.Duration
	retryBackoff time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewService builds the geocode service. Stagger spaces bulk requests;
// retryBackoff is the single rate-limit retry delay.
func NewService(store customerStore, client geocoderClient, logg *logger.Logger, opsMetrics *metrics.OpsMetrics, stagger, retryBackoff time.Duration) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("customer store required")
	}
	if client == nil {
		return nil, fmt.Errorf("geocoder client required")
	}
	return &Service{
		store:        store,
		client:       client,
		logg:         logg,
		metrics:      opsMetrics,
		stagger:      stagger,
		retryBackoff: retryBackoff,
		sleep:        sleepContext,
	}, nil
}

// Resolve returns the customer's coordinate, from cache when valid,
// otherwise from one geocoder lookup whose result is written back. A failed
// cache write is logged and counted but does not discard the lookup.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID) (*Resolution, error) {
	customer, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return s.resolveCustomer(ctx, customer, false)
}

func (s *Service) resolveCustomer(ctx context.Context, customer *models.Customer, retryRateLimit bool) (*Resolution, error) {
	if customer.Coordinates != nil && customer.Coordinates.Valid() {
		s.metrics.IncGeocode(metrics.OutcomeHit)
		return &Resolution{Location: customer.Coordinates, CacheHit: true, Persisted: true}, nil
	}

	address := strings.TrimSpace(customer.Address)
	if address == "" {
		return &Resolution{}, nil
	}

	start := time.Now()
	result, err := s.client.Geocode(ctx, address)
	if errors.Is(err, geocoder.ErrRateLimited) && retryRateLimit {
		if sleepErr := s.sleep(ctx, s.retryBackoff); sleepErr != nil {
			return nil, sleepErr
		}
		result, err = s.client.Geocode(ctx, address)
	}
	s.metrics.ObserveGeocodeDuration("lookup", time.Since(start))

	if err != nil {
		if errors.Is(err, geocoder.ErrUnresolved) {
			s.metrics.IncGeocode(metrics.OutcomeFailed)
			return &Resolution{}, nil
		}
		s.metrics.IncGeocode(metrics.OutcomeFailed)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "geocode address")
	}

	location := result.Location
	customer.Coordinates = &location
	resolution := &Resolution{Location: &location, Persisted: true}
	if err := s.store.SaveCoordinates(ctx, customer); err != nil {
		resolution.Persisted = false
		s.metrics.IncGeocode(metrics.OutcomePersistFailed)
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{"customer_id": customer.ID.String()})
			s.logg.Error(logCtx, "geocode cache write failed", err)
		}
	} else {
		s.metrics.IncGeocode(metrics.OutcomeResolved)
	}
	return resolution, nil
}

// BulkPlot resolves every record missing a coordinate, spacing requests by
// the configured stagger. A rate-limited lookup gets exactly one retry after
// the backoff delay, then that record is given up on. Per-record failures
// are aggregated, not fatal.
func (s *Service) BulkPlot(ctx context.Context) (PlotReport, error) {
	customers, err := s.store.ListAll(ctx)
	if err != nil {
		return PlotReport{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}

	report := PlotReport{Total: len(customers)}
	var errs error
	first := true
	for i := range customers {
		customer := &customers[i]
		if customer.Coordinates != nil && customer.Coordinates.Valid() {
			report.CacheHits++
			continue
		}

		if !first {
			if err := s.sleep(ctx, s.stagger); err != nil {
				return report, multierr.Append(errs, err)
			}
		}
		first = false

		resolution, err := s.resolveCustomer(ctx, customer, true)
		switch {
		case err != nil:
			report.Failed++
			errs = multierr.Append(errs, fmt.Errorf("customer %s: %w", customer.ID, err))
		case resolution.Location == nil:
			report.Unresolved++
		default:
			report.Resolved++
		}
	}
	return report, errs
}

// ReplotAll nulls every cached coordinate, then bulk plots the collection.
// Intended for bulk address corrections.
func (s *Service) ReplotAll(ctx context.Context) (PlotReport, error) {
	if err := s.store.ClearAllCoordinates(ctx); err != nil {
		return PlotReport{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear coordinates")
	}
	if s.logg != nil {
		s.logg.Info(ctx, "cleared all cached coordinates for replot")
	}
	return s.BulkPlot(ctx)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
