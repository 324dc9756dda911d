package controllers

import (
	"net/http"
	"strconv"

	"github.com/bazaarlabs/bazaar-backend/api/responses"
	productsvc "github.com/bazaarlabs/bazaar-backend/internal/products"
	"github.com/bazaarlabs/bazaar-backend/pkg/logger"
	"github.com/bazaarlabs/bazaar-backend/pkg/pagination"
	"github.com/google/uuid"
)

// ListProducts serves the public catalog.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := productsvc.ListFilters{Query: r.URL.Query().Get("q")}
		if raw := r.URL.Query().Get("featured"); raw != "" {
			if featured, err := strconv.ParseBool(raw); err == nil {
				filters.Featured = &featured
			}
		}
		if raw := r.URL.Query().Get("seller_id"); raw != "" {
			if sellerID, err := uuid.Parse(raw); err == nil {
				filters.SellerID = &sellerID
			}
		}
		page := pagination.Params{Cursor: r.URL.Query().Get("cursor")}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if limit, err := strconv.Atoi(raw); err == nil {
				page.Limit = limit
			}
		}

		result, err := svc.ListProducts(r.Context(), filters, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetProduct serves a single catalog entry.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
