package controllers

import (
	"net/http"

	"github.com/northfiber/fiberops-backend/api/responses"
	"github.com/northfiber/fiberops-backend/api/validators"
	"github.com/northfiber/fiberops-backend/internal/intake"
	"github.com/northfiber/fiberops-backend/pkg/logger"
)

type intakeExtractRequest struct {
	Text string `json:"text" validate:"required"`
}

// IntakeExtract runs the heuristic passes over pasted service-order text and
// returns the advisory prefill. Nothing is persisted; the operator reviews
// the fields before creating the record.
func IntakeExtract(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body intakeExtractRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefill := intake.Extract(body.Text)
		responses.WriteSuccess(w, map[string]any{
			"prefill": prefill,
			"address": prefill.Address(),
		})
	}
}
