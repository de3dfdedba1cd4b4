package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/tinylink/internal/auth/service"
	"github.com/aussiebroadwan/tinylink/pkg/authsdk"
	"github.com/aussiebroadwan/tinylink/pkg/httpx"
)

// LinksHandler serves the short link endpoints.
type LinksHandler struct {
	LinkService *service.LinkService
	Validate    *validator.Validate
}

// decodeURL reads a ShortenRequest body and validates the URL.
func (h *LinksHandler) decodeURL(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req authsdk.ShortenRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidJSON.WriteError(w)
		return "", false
	}
	if err := h.Validate.Struct(req); err != nil {
		authsdk.ErrInvalidURL.WriteError(w)
		return "", false
	}
	return req.URL, true
}

func (h *LinksHandler) writeLinkExists(w http.ResponseWriter, r *http.Request, err error) {
	var le *service.LinkExistsError
	if errors.As(err, &le) {
		(&authsdk.LinkExistsError{
			ShortURL:     h.LinkService.ShortURL(le.Code),
			GeneratedURI: le.Code,
		}).WriteError(w)
		return
	}
	writeServiceError(w, r, err)
}

// HandleCreate handles POST /
//
//	@Summary		Shorten URL
//	@Description	Creates a short code for url. A URL that is already shortened returns 409 with the existing code.
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string					true	"Bearer token of an admin"
//	@Param			request			body		authsdk.ShortenRequest	true	"URL to shorten"
//	@Success		201				{object}	authsdk.ShortenResponse	"short_url, generated_uri"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		403				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		409				{object}	authsdk.LinkExistsError	"existing short_url, generated_uri"
//	@Failure		503				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/ [post].
func (h *LinksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	url, ok := h.decodeURL(w, r)
	if !ok {
		return
	}

	claims, _ := httpx.ClaimsFromContext(r.Context())
	link, err := h.LinkService.Shorten(r.Context(), url, claims.Subject)
	if err != nil {
		h.writeLinkExists(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.ShortenResponse{
		ShortURL:     h.LinkService.ShortURL(link.Code),
		GeneratedURI: link.Code,
	})
}

// HandleList handles GET /
//
//	@Summary		List Links
//	@Description	Returns every link, newest first.
//	@Tags			Links
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string					true	"Bearer token of an admin"
//	@Success		200				{array}		authsdk.LinkInfo		"links"
//	@Failure		401				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		403				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/ [get].
func (h *LinksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	links, err := h.LinkService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]authsdk.LinkInfo, len(links))
	for i, l := range links {
		out[i] = authsdk.LinkInfo{
			GeneratedURI: l.Code,
			URL:          h.LinkService.ShortURL(l.Code),
			OriginalURL:  l.URL,
			CreatedAt:    l.CreatedAt,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleRedirect handles GET /{id}
//
//	@Summary		Follow Short Link
//	@Description	Redirects to the URL stored under id.
//	@Tags			Links
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string					true	"Bearer token"
//	@Param			id				path		string					true	"Short code"
//	@Success		301				"Redirect to the original URL"
//	@Failure		401				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		404				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/{id} [get].
func (h *LinksHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	link, err := h.LinkService.Resolve(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Links can be repointed or deleted, so the 301 must not be cached.
	httpx.NoCache(w)
	http.Redirect(w, r, link.URL, http.StatusMovedPermanently)
}

// HandleUpdate handles PUT /{id}
//
//	@Summary		Update Link
//	@Description	Points an existing short code at a new URL. The creation time is kept.
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string					true	"Bearer token of an admin"
//	@Param			id				path		string					true	"Short code"
//	@Param			request			body		authsdk.ShortenRequest	true	"New URL"
//	@Success		200				{object}	authsdk.MessageResponse	"message"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		404				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		409				{object}	authsdk.LinkExistsError	"URL already shortened under another code"
//	@Router			/{id} [put].
func (h *LinksHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	url, ok := h.decodeURL(w, r)
	if !ok {
		return
	}

	if _, err := h.LinkService.Update(r.Context(), r.PathValue("id"), url); err != nil {
		h.writeLinkExists(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Updated"})
}

// HandleDelete handles DELETE /{id}
//
//	@Summary		Delete Link
//	@Description	Removes a short code. The code may be issued again later.
//	@Tags			Links
//	@Security		BearerAuth
//	@Param			Authorization	header		string					true	"Bearer token of an admin"
//	@Param			id				path		string					true	"Short code"
//	@Success		204				"Link deleted"
//	@Failure		404				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/{id} [delete].
func (h *LinksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.LinkService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnsupportedDelete handles DELETE /
//
//	@Summary		Delete Collection
//	@Description	Deleting every link at once is not supported.
//	@Tags			Links
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string					true	"Bearer token of an admin"
//	@Failure		404				{object}	authsdk.ErrorResponse	"method not supported"
//	@Router			/ [delete].
func (h *LinksHandler) HandleUnsupportedDelete(w http.ResponseWriter, r *http.Request) {
	authsdk.ErrMethodNotSupported.WriteError(w)
}

// HandleKeys handles GET /keys
//
//	@Summary		List Short Codes
//	@Description	Returns every issued short code. An empty store is reported as 404.
//	@Tags			Links
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string					true	"Bearer token"
//	@Success		200				{array}		string					"short codes"
//	@Failure		404				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/keys [get].
func (h *LinksHandler) HandleKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.LinkService.Keys(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(keys) == 0 {
		authsdk.NewAPIError(http.StatusNotFound, authsdk.ErrorCodeNotFound, "no URL identifiers found").WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, keys)
}

// HandleSearch handles GET /search/{uri}
//
//	@Summary		Look Up Short Code
//	@Description	Returns the original URL, short URL and creation time of a code.
//	@Tags			Links
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string					true	"Bearer token"
//	@Param			uri				path		string					true	"Short code"
//	@Success		200				{object}	authsdk.SearchResponse	"original_url, shortened_url, timestamp"
//	@Failure		404				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/search/{uri} [get].
func (h *LinksHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("uri")
	link, err := h.LinkService.Resolve(r.Context(), code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.SearchResponse{
		OriginalURL:  link.URL,
		ShortenedURL: h.LinkService.ShortURL(link.Code),
		Timestamp:    link.CreatedAt,
	})
}
