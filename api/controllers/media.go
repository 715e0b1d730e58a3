package controllers

import (
	"net/http"

	"github.com/rgavilanm/localspot-backend/api/responses"
	"github.com/rgavilanm/localspot-backend/api/validators"
	"github.com/rgavilanm/localspot-backend/internal/media"
	pkgerrors "github.com/rgavilanm/localspot-backend/pkg/errors"
	"github.com/rgavilanm/localspot-backend/pkg/logger"
)

// MediaPresign returns a signed PUT URL for one listing image upload.
func MediaPresign(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		businessID, err := parseIDParam(r, "businessID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload media.PresignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PresignUpload(r.Context(), actorFromContext(r.Context()), businessID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// MediaAttach records an uploaded object as a listing image.
func MediaAttach(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		businessID, err := parseIDParam(r, "businessID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload media.AttachRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Attach(r.Context(), actorFromContext(r.Context()), businessID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// MediaList returns a listing's images ordered by position.
func MediaList(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		businessID, err := parseIDParam(r, "businessID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		images, err := svc.List(r.Context(), businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, images)
	}
}

// MediaDelete removes a listing image and its stored object.
func MediaDelete(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		imageID, err := parseIDParam(r, "imageID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actorFromContext(r.Context()), imageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
