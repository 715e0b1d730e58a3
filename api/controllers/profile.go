package controllers

import (
	"net/http"

	"github.com/rgavilanm/localspot-backend/api/middleware"
	"github.com/rgavilanm/localspot-backend/api/responses"
	"github.com/rgavilanm/localspot-backend/api/validators"
	"github.com/rgavilanm/localspot-backend/internal/session"
	pkgerrors "github.com/rgavilanm/localspot-backend/pkg/errors"
	"github.com/rgavilanm/localspot-backend/pkg/logger"
)

// ProfileGet returns the authenticated wallet's profile.
func ProfileGet(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		address := middleware.WalletAddressFromContext(r.Context())
		if address == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "wallet context missing"))
			return
		}

		user, err := svc.Refresh(r.Context(), address)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session.FromModel(user))
	}
}

// ProfileUpdate applies a partial update to the authenticated wallet's profile.
func ProfileUpdate(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		address := middleware.WalletAddressFromContext(r.Context())
		if address == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "wallet context missing"))
			return
		}

		var payload session.ProfileUpdate
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.UpdateProfile(r.Context(), address, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session.FromModel(user))
	}
}
