package controllers

import (
	"net/http"

	"github.com/bazaarlabs/bazaar-backend/api/responses"
	analyticsvc "github.com/bazaarlabs/bazaar-backend/internal/analytics"
	"github.com/bazaarlabs/bazaar-backend/pkg/logger"
)

// AdminAnalytics returns the dashboard summary aggregates.
func AdminAnalytics(svc analyticsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summarize(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
