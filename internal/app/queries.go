package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"propsite/internal/adapters/observability"
	"propsite/internal/domain"
	"propsite/internal/versions"
)

// QueryService serves the public site. It only ever reads published records.
type QueryService struct {
	store    *versions.Store
	themes   domain.ThemeLibrary
	cache    domain.Cache
	cacheTTL time.Duration
	fallback string
}

func NewQueryService(s *versions.Store, themes domain.ThemeLibrary, c domain.Cache, ttl time.Duration, fallback string) *QueryService {
	if fallback == "" {
		fallback = domain.DefaultLanguage
	}
	return &QueryService{store: s, themes: themes, cache: c, cacheTTL: ttl, fallback: fallback}
}

func viewKey(id, lang string) string { return fmt.Sprintf("property:%s:%s", id, lang) }

// GetProperty returns the published record of id resolved for lang.
func (s *QueryService) GetProperty(ctx context.Context, id, lang string) (domain.PropertyView, error) {
	lang = domain.NormalizeLanguage(lang, s.fallback)
	key := viewKey(id, lang)
	var pv domain.PropertyView
	if s.cache != nil {
		ok, err := s.cache.Get(ctx, key, &pv)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cached view unreadable, rebuilding")
			pv = domain.PropertyView{}
		} else if ok {
			return pv, nil
		}
	}
	p, err := s.store.GetPublished(ctx, id)
	if err != nil {
		return domain.PropertyView{}, err
	}
	lib, err := s.themes.Themes(ctx)
	if err != nil {
		return domain.PropertyView{}, err
	}
	pv = mapView(p, lang, s.fallback, lib)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, pv, int(s.cacheTTL.Seconds()))
	}
	return pv, nil
}

// GetGuestProperty resolves a guest-link request. When the decision redirects, the
// returned view is empty and the caller must send the guest to d.RedirectURL.
// Guest views carry booking data and are never cached.
func (s *QueryService) GetGuestProperty(ctx context.Context, id string, req GuestRequest) (domain.PropertyView, GuestDecision, error) {
	if !req.IsGuest() {
		pv, err := s.GetProperty(ctx, id, req.Lang)
		return pv, DecideGuest(req, nil, s.fallback), err
	}

	p, err := s.store.GetPublished(ctx, id)
	if err != nil {
		return domain.PropertyView{}, GuestDecision{}, err
	}
	d := DecideGuest(req, FindPropertyBooking(p, req.BookingID, req.BookingDate), s.fallback)
	observability.ObserveGuest(d.Action.String())
	if d.Redirects() {
		log.Debug().Str("id", id).Str("outcome", d.Action.String()).Msg("guest link redirect")
		return domain.PropertyView{}, d, nil
	}

	lib, err := s.themes.Themes(ctx)
	if err != nil {
		return domain.PropertyView{}, GuestDecision{}, err
	}
	pv := mapView(p, d.Lang, s.fallback, lib)
	pv.Guest = mapGuest(p, d.Booking, d.Lang, s.fallback)
	return pv, d, nil
}

// Themes lists the shared theme library, each entry resolved against the defaults.
func (s *QueryService) Themes(ctx context.Context) ([]domain.Theme, error) {
	lib, err := s.themes.Themes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Theme, 0, len(lib))
	for name := range lib {
		out = append(out, ResolveTheme(domain.ThemeRef{Name: name}, lib))
	}
	sortThemes(out)
	return out, nil
}
