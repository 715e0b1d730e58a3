package controllers

import (
	"net/http"

	"github.com/rgavilanm/localspot-backend/api/responses"
	"github.com/rgavilanm/localspot-backend/api/validators"
	"github.com/rgavilanm/localspot-backend/internal/identity"
	pkgerrors "github.com/rgavilanm/localspot-backend/pkg/errors"
	"github.com/rgavilanm/localspot-backend/pkg/logger"
)

// AuthChallenge issues a one-time sign-in message for a wallet address.
func AuthChallenge(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable"))
			return
		}

		var payload identity.ChallengeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		challenge, err := svc.Challenge(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, challenge)
	}
}

// AuthVerify checks the signed challenge and returns a token pair plus the
// connected profile.
func AuthVerify(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable"))
			return
		}

		var payload identity.VerifyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Verify(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
