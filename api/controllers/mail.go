package controllers

import (
	"net/http"

	"github.com/northfiber/fiberops-backend/api/middleware"
	"github.com/northfiber/fiberops-backend/api/responses"
	"github.com/northfiber/fiberops-backend/api/validators"
	"github.com/northfiber/fiberops-backend/internal/mailer"
	"github.com/northfiber/fiberops-backend/pkg/logger"
	"github.com/northfiber/fiberops-backend/pkg/pagination"
)

type sendWelcomeRequest struct {
	Recipients []string `json:"recipients" validate:"required,min=1"`
}

// MailSendWelcome queues the welcome mail for the customer; delivery happens
// asynchronously in the mail worker.
func MailSendWelcome(svc mailer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body sendWelcomeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.SendWelcome(r.Context(), mailer.EnqueueInput{
			CustomerID: id,
			Recipients: body.Recipients,
			Actor:      middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, message)
	}
}

// MailList serves the outbound mail log one cursor page at a time.
func MailList(svc mailer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListRecent(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
