package controllers

import (
	"net/http"

	"github.com/bazaarlabs/bazaar-backend/api/middleware"
	pkgAuth "github.com/bazaarlabs/bazaar-backend/pkg/auth"
	pkgerrors "github.com/bazaarlabs/bazaar-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func callerIdentity(r *http.Request) (pkgAuth.Identity, error) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return pkgAuth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return identity, nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
