package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/northfiber/fiberops-backend/api/responses"
	"github.com/northfiber/fiberops-backend/internal/customers"
	"github.com/northfiber/fiberops-backend/internal/views"
	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/enums"
	pkgerrors "github.com/northfiber/fiberops-backend/pkg/errors"
	"github.com/northfiber/fiberops-backend/pkg/logger"
)

// dropRow decorates a drop queue entry with its waiting-time band.
type dropRow struct {
	models.Customer
	AgeDays int           `json:"age_days"`
	AgeBand views.AgeBand `json:"age_band"`
}

type dropsResponse struct {
	Priority []dropRow `json:"priority"`
	Standard []dropRow `json:"standard"`
}

// ViewsTracker serves the main screen's filtered list.
func ViewsTracker(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := views.TrackerQuery{
			Tab:    views.TabActive,
			Search: strings.TrimSpace(r.URL.Query().Get("q")),
		}
		if tab := strings.TrimSpace(r.URL.Query().Get("tab")); tab != "" {
			query.Tab = views.TrackerTab(tab)
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("stage")); raw != "" {
			stage, err := enums.ParseCustomerStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown stage filter"))
				return
			}
			query.Stage = &stage
		}

		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.Tracker(rows, query))
	}
}

// ViewsDrops serves the drop queue split into lanes, each row carrying its
// age band.
func ViewsDrops(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sortMode := views.DropsSortOldest
		if raw := strings.TrimSpace(r.URL.Query().Get("sort")); raw != "" {
			sortMode = views.DropsSort(raw)
		}

		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view := views.Drops(rows, sortMode)
		now := time.Now().UTC()
		responses.WriteSuccess(w, dropsResponse{
			Priority: decorateDrops(view.Priority, now),
			Standard: decorateDrops(view.Standard, now),
		})
	}
}

func decorateDrops(rows []models.Customer, now time.Time) []dropRow {
	out := make([]dropRow, 0, len(rows))
	for _, customer := range rows {
		days := views.AgeDays(customer, now)
		out = append(out, dropRow{
			Customer: customer,
			AgeDays:  days,
			AgeBand:  views.AgeBandFor(days),
		})
	}
	return out
}

// ViewsSplicing serves the unassigned splice queue, oldest drop first.
func ViewsSplicing(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.SplicingQueue(rows))
	}
}

// ViewsSplicers lists splicer names holding open work.
func ViewsSplicers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.SplicerNames(rows))
	}
}

// ViewsSplicerTab serves one splicer's open assignments.
func ViewsSplicerTab(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		splicer := strings.TrimSpace(chi.URLParam(r, "splicerName"))
		if splicer == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "splicer name is required"))
			return
		}

		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.SplicerTab(rows, splicer))
	}
}

// ViewsMap groups plottable records by status. The statuses query parameter
// is a comma-separated enable list; absent means everything.
func ViewsMap(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var enabled map[enums.CustomerStatus]bool
		if raw := strings.TrimSpace(r.URL.Query().Get("statuses")); raw != "" {
			enabled = map[enums.CustomerStatus]bool{}
			for _, part := range strings.Split(raw, ",") {
				status, err := enums.ParseCustomerStatus(strings.TrimSpace(part))
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown status in filter"))
					return
				}
				enabled[status] = true
			}
		}

		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.MapView(rows, enabled))
	}
}
