package controllers

import (
	"net/http"

	"github.com/northfiber/fiberops-backend/api/responses"
	"github.com/northfiber/fiberops-backend/api/validators"
	"github.com/northfiber/fiberops-backend/internal/marketing"
	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/logger"
	"github.com/northfiber/fiberops-backend/pkg/types"
)

type replacePointsRequest struct {
	Points []models.MarketingPoint `json:"points" validate:"required"`
}

// MarketingList serves the address dataset, optionally cut to a bounding box
// (sw_lat, sw_lng, ne_lat, ne_lng).
func MarketingList(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("sw_lat") {
			box, err := parseBoundingBox(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			points, err := svc.InBounds(r.Context(), box)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, points)
			return
		}

		points, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, points)
	}
}

// MarketingReplace swaps the whole dataset for the posted one.
func MarketingReplace(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireConfirm(r, "replace"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body replacePointsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.ReplaceAll(r.Context(), body.Points)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"count": count})
	}
}

// MarketingImportCSV replaces the dataset from a CSV upload posted as the
// request body.
func MarketingImportCSV(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireConfirm(r, "import"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.ImportCSV(r.Context(), r.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"count": count})
	}
}

// MarketingExportCSV streams the dataset as a CSV attachment.
func MarketingExportCSV(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="marketing-points.csv"`)
		if _, err := svc.ExportCSV(r.Context(), w); err != nil {
			// headers are gone already; log and drop the connection
			if logg != nil {
				logg.Error(r.Context(), "marketing export failed", err)
			}
		}
	}
}

func parseBoundingBox(r *http.Request) (types.BoundingBox, error) {
	swLat, err := validators.ParseQueryFloat(r, "sw_lat")
	if err != nil {
		return types.BoundingBox{}, err
	}
	swLng, err := validators.ParseQueryFloat(r, "sw_lng")
	if err != nil {
		return types.BoundingBox{}, err
	}
	neLat, err := validators.ParseQueryFloat(r, "ne_lat")
	if err != nil {
		return types.BoundingBox{}, err
	}
	neLng, err := validators.ParseQueryFloat(r, "ne_lng")
	if err != nil {
		return types.BoundingBox{}, err
	}
	return types.BoundingBox{
		SouthWest: types.LatLng{Lat: swLat, Lng: swLng},
		NorthEast: types.LatLng{Lat: neLat, Lng: neLng},
	}, nil
}
