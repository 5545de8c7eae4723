// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"propsite/internal/app"
	"propsite/internal/auth"
	"propsite/internal/domain"
)

type Handlers struct {
	Q     *app.QueryService
	P     *app.PropertyService
	Users domain.UserDirectory
	Guest *GuestLimiter
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.With(h.Guest.Middleware).Get("/v1/properties/{id}", h.getProperty)
	s.mux.Get("/v1/themes", h.listThemes)

	s.mux.Route("/v1/admin", func(r chi.Router) {
		r.Use(Authenticate(h.Users))
		r.Get("/properties", h.adminList)
		r.Post("/properties", h.adminCreate)
		r.Post("/properties/publish-all", h.adminPublishAll)
		r.Get("/properties/{id}", h.adminLatest)
		r.Get("/properties/{id}/preview", h.adminPreview)
		r.Get("/properties/{id}/history", h.adminHistory)
		r.Patch("/properties/{id}", h.adminUpdate)
		r.Post("/properties/{id}/publish", h.adminPublish)
		r.Post("/properties/{id}/revert", h.adminRevert)
		r.Put("/themes/{name}", h.adminPutTheme)
	})
}

// selectLang returns the first Accept-Language entry with a supported base language.
func selectLang(al string) string {
	tags, _, err := language.ParseAcceptLanguage(al)
	if err != nil {
		return domain.DefaultLanguage
	}
	for _, t := range tags {
		base, _ := t.Base()
		if domain.IsSupportedLanguage(base.String()) {
			return base.String()
		}
	}
	return domain.DefaultLanguage
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors for read paths. Invalid stored data is a server fault.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrAuth):
		w.Header().Set("WWW-Authenticate", `Basic realm="propsite admin"`)
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
	case errors.Is(err, domain.ErrPermission):
		writeProblem(w, http.StatusForbidden, "Forbidden", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "data unavailable")
	}
}

// writeCommandError is writeError for write paths, where invalid data means a bad payload.
func writeCommandError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidData) {
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid Data", err.Error())
		return
	}
	writeError(w, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// ---- public ----

func (h *Handlers) getProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()
	req := app.GuestRequest{
		Source:      q.Get("source"),
		BookingID:   q.Get("bookingId"),
		BookingDate: q.Get("bookingDate"),
		Lang:        q.Get("lang"),
	}

	var (
		resp domain.PropertyView
		err  error
	)
	if req.IsGuest() {
		var d app.GuestDecision
		resp, d, err = h.Q.GetGuestProperty(r.Context(), id, req)
		if err != nil {
			writeError(w, err)
			return
		}
		if d.Redirects() {
			http.Redirect(w, r, d.RedirectURL(*r.URL), http.StatusFound)
			return
		}
		w.Header().Set("Cache-Control", "private, no-store")
	} else {
		lang := req.Lang
		if lang == "" {
			lang = selectLang(r.Header.Get("Accept-Language"))
		}
		resp, err = h.Q.GetProperty(r.Context(), id, lang)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	etag, body := calcETagAndBody(resp)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Language", resp.Language)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getProperty body")
	}
}

func (h *Handlers) listThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.Q.Themes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, themes)
}

// ---- admin ----

func (h *Handlers) adminList(w http.ResponseWriter, r *http.Request) {
	out, err := h.P.List(r.Context(), auth.SessionFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) adminCreate(w http.ResponseWriter, r *http.Request) {
	var in app.CreateShellInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	id, err := h.P.CreateShell(r.Context(), auth.SessionFrom(r.Context()), in)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/admin/properties/"+id)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handlers) adminLatest(w http.ResponseWriter, r *http.Request) {
	p, err := h.P.Latest(r.Context(), auth.SessionFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) adminPreview(w http.ResponseWriter, r *http.Request) {
	pv, err := h.P.Preview(r.Context(), auth.SessionFrom(r.Context()), chi.URLParam(r, "id"), r.URL.Query().Get("lang"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, pv)
}

func (h *Handlers) adminHistory(w http.ResponseWriter, r *http.Request) {
	hist, err := h.P.History(r.Context(), auth.SessionFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

func (h *Handlers) adminUpdate(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", "body must be a JSON object")
		return
	}
	stamp, err := h.P.Update(r.Context(), auth.SessionFrom(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"version": stamp})
}

func (h *Handlers) adminPublish(w http.ResponseWriter, r *http.Request) {
	ok, err := h.P.Publish(r.Context(), auth.SessionFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"published": ok})
}

func (h *Handlers) adminPublishAll(w http.ResponseWriter, r *http.Request) {
	rep, err := h.P.PublishAll(r.Context(), auth.SessionFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handlers) adminRevert(w http.ResponseWriter, r *http.Request) {
	if err := h.P.Revert(r.Context(), auth.SessionFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) adminPutTheme(w http.ResponseWriter, r *http.Request) {
	var t domain.Theme
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	t.Name = chi.URLParam(r, "name")
	if err := h.P.PutTheme(r.Context(), auth.SessionFrom(r.Context()), t); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
