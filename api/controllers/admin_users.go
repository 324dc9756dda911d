package controllers

import (
	"net/http"
	"time"

	"github.com/bazaarlabs/bazaar-backend/api/responses"
	"github.com/bazaarlabs/bazaar-backend/api/validators"
	usersvc "github.com/bazaarlabs/bazaar-backend/internal/users"
	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/bazaarlabs/bazaar-backend/pkg/errors"
	"github.com/bazaarlabs/bazaar-backend/pkg/logger"
	"github.com/google/uuid"
)

type adminUserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsSeller  bool      `json:"is_seller"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func newAdminUserListResponse(rows []models.User) []adminUserResponse {
	out := make([]adminUserResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, adminUserResponse{
			ID:        row.ID,
			Email:     row.Email,
			FullName:  row.FullName,
			IsSeller:  row.IsSeller,
			IsActive:  row.IsActive,
			CreatedAt: row.CreatedAt,
		})
	}
	return out
}

// AdminUsers lists every non-staff account, newest first.
func AdminUsers(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListCustomers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAdminUserListResponse(rows))
	}
}

type userToggleRequest struct {
	Field string `json:"field" validate:"required,oneof=is_active is_seller"`
	Value *bool  `json:"value" validate:"required"`
}

// AdminUserToggle flips one whitelisted account flag. The accepted fields
// are a closed set; no other attribute can be set through this endpoint.
func AdminUserToggle(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload userToggleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		flag, err := usersvc.ParseUserFlag(payload.Field)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}
		if err := svc.SetUserFlag(r.Context(), userID, flag, *payload.Value); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}
