package controllers

import (
	"net/http"

	"github.com/northfiber/fiberops-backend/api/responses"
	"github.com/northfiber/fiberops-backend/api/validators"
	"github.com/northfiber/fiberops-backend/internal/geocode"
	"github.com/northfiber/fiberops-backend/pkg/logger"
)

// GeocodeResolve looks up one customer's coordinate, cache first.
func GeocodeResolve(svc *geocode.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolution, err := svc.Resolve(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resolution)
	}
}

// GeocodeBulkPlot resolves every record missing a coordinate.
func GeocodeBulkPlot(svc *geocode.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.BulkPlot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// GeocodeReplotAll nulls every cached coordinate before replotting, so it
// insists on the confirm flag.
func GeocodeReplotAll(svc *geocode.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireConfirm(r, "replot"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.ReplotAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
