package campaigns

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/northfiber/fiberops-backend/pkg/db/models"
	pkgerrors "github.com/northfiber/fiberops-backend/pkg/errors"
	"github.com/northfiber/fiberops-backend/pkg/types"
)

type campaignsRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	ListAll(ctx context.Context) ([]models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign, columns []string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type pointsInBounds interface {
	ListInBounds(ctx context.Context, box types.BoundingBox) ([]models.MarketingPoint, error)
}

// CampaignInput carries the editable campaign fields.
type CampaignInput struct {
	Name     string          `json:"name" validate:"required"`
	Deal     string          `json:"deal"`
	Details  string          `json:"details"`
	Polygons []types.Polygon `json:"polygons"`
}

// Service exposes drawn marketing target areas.
type Service interface {
	Create(ctx context.Context, input CampaignInput) (*models.Campaign, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context) ([]models.Campaign, error)
	Update(ctx context.Context, id uuid.UUID, input CampaignInput) (*models.Campaign, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RefreshAddressCount(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
}

type service struct {
	repo   campaignsRepository
	points pointsInBounds
}

// NewService builds the campaign service. The point store feeds the address
// count refresh.
func NewService(repo campaignsRepository, points pointsInBounds) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("campaign repository required")
	}
	if points == nil {
		return nil, fmt.Errorf("marketing point store required")
	}
	return &service{repo: repo, points: points}, nil
}

func (s *service) Create(ctx context.Context, input CampaignInput) (*models.Campaign, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	campaign := &models.Campaign{
		Name:     name,
		Deal:     input.Deal,
		Details:  input.Details,
		Polygons: input.Polygons,
	}
	count, err := s.countAddresses(ctx, campaign.Polygons)
	if err != nil {
		return nil, err
	}
	campaign.AddressCount = count

	created, err := s.repo.Create(ctx, campaign)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create campaign")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return s.load(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.Campaign, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list campaigns")
	}
	return rows, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input CampaignInput) (*models.Campaign, error) {
	campaign, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	campaign.Name = name
	campaign.Deal = input.Deal
	campaign.Details = input.Details
	campaign.Polygons = input.Polygons

	count, err := s.countAddresses(ctx, campaign.Polygons)
	if err != nil {
		return nil, err
	}
	campaign.AddressCount = count

	columns := []string{"name", "deal", "details", "polygons", "address_count"}
	if err := s.repo.Update(ctx, campaign, columns); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update campaign")
	}
	return campaign, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	campaign, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, campaign.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete campaign")
	}
	return nil
}

// RefreshAddressCount recomputes how many dataset points fall inside the
// drawn areas and stores the result.
func (s *service) RefreshAddressCount(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	campaign, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.countAddresses(ctx, campaign.Polygons)
	if err != nil {
		return nil, err
	}
	campaign.AddressCount = count

	if err := s.repo.Update(ctx, campaign, []string{"address_count"}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store address count")
	}
	return campaign, nil
}

// countAddresses bbox-prefilters per polygon, then ray-casts the survivors.
// A point inside two overlapping polygons counts once.
func (s *service) countAddresses(ctx context.Context, polygons []types.Polygon) (int, error) {
	counted := map[uuid.UUID]bool{}
	for _, polygon := range polygons {
		box, ok := polygonBounds(polygon)
		if !ok {
			continue
		}
		points, err := s.points.ListInBounds(ctx, box)
		if err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query points in campaign area")
		}
		for _, point := range points {
			if counted[point.ID] {
				continue
			}
			if polygonContains(polygon, types.LatLng{Lat: point.Lat, Lng: point.Lng}) {
				counted[point.ID] = true
			}
		}
	}
	return len(counted), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign id is required")
	}
	campaign, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
	}
	return campaign, nil
}
