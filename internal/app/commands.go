package app

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"propsite/internal/domain"
	"propsite/internal/versions"
)

// PropertyService is the admin surface. Every call takes the caller's session
// explicitly; a nil session fails with ErrAuth, a low role with ErrPermission.
type PropertyService struct {
	store   *versions.Store
	themes  domain.ThemeLibrary
	cache   domain.Cache
	workers int
}

func NewPropertyService(s *versions.Store, themes domain.ThemeLibrary, c domain.Cache, workers int) *PropertyService {
	if workers <= 0 {
		workers = 4
	}
	return &PropertyService{store: s, themes: themes, cache: c, workers: workers}
}

type CreateShellInput struct {
	ID               string                `json:"id"`
	Name             domain.LocalizedValue `json:"name"`
	Status           string                `json:"status"`
	ListingLanguages []string              `json:"listingLanguages"`
}

func (s *PropertyService) CreateShell(ctx context.Context, sess *domain.Session, in CreateShellInput) (string, error) {
	if err := sess.Require(domain.RoleAdmin); err != nil {
		return "", err
	}
	if in.ID == "" {
		in.ID = domain.Slugify(in.Name.String())
	}
	return s.store.CreateShell(ctx, versions.ShellInput{
		ID:               in.ID,
		Name:             in.Name,
		Status:           in.Status,
		ListingLanguages: in.ListingLanguages,
	})
}

// Latest returns the raw record an editor works on (draft preferred).
func (s *PropertyService) Latest(ctx context.Context, sess *domain.Session, id string) (*domain.Property, error) {
	if err := sess.Require(domain.RoleViewer); err != nil {
		return nil, err
	}
	return s.store.GetLatest(ctx, id)
}

// Preview resolves the latest record the way the public site would show it once published.
func (s *PropertyService) Preview(ctx context.Context, sess *domain.Session, id, lang string) (domain.PropertyView, error) {
	p, err := s.Latest(ctx, sess, id)
	if err != nil {
		return domain.PropertyView{}, err
	}
	lib, err := s.themes.Themes(ctx)
	if err != nil {
		return domain.PropertyView{}, err
	}
	return mapView(p, domain.NormalizeLanguage(lang, domain.DefaultLanguage), domain.DefaultLanguage, lib), nil
}

func (s *PropertyService) List(ctx context.Context, sess *domain.Session) ([]domain.PropertySummary, error) {
	if err := sess.Require(domain.RoleViewer); err != nil {
		return nil, err
	}
	ids, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PropertySummary, 0, len(ids))
	for _, id := range ids {
		p, err := s.store.GetLatest(ctx, id)
		if err != nil {
			return nil, err
		}
		drafts, err := s.store.Drafts(ctx, id)
		if err != nil {
			return nil, err
		}
		published := p.IsPublished
		if len(drafts) > 0 {
			_, perr := s.store.GetPublished(ctx, id)
			if perr != nil && !errors.Is(perr, domain.ErrNotFound) {
				return nil, perr
			}
			published = perr == nil
		}
		out = append(out, mapSummary(p, len(drafts) > 0, published))
	}
	return out, nil
}

type History struct {
	Drafts  []string `json:"drafts"`
	Archive []string `json:"archive"`
}

// History lists pending draft stamps and archived entries of id.
func (s *PropertyService) History(ctx context.Context, sess *domain.Session, id string) (History, error) {
	if err := sess.Require(domain.RoleViewer); err != nil {
		return History{}, err
	}
	if _, err := s.store.GetLatest(ctx, id); err != nil {
		return History{}, err
	}
	drafts, err := s.store.Drafts(ctx, id)
	if err != nil {
		return History{}, err
	}
	archive, err := s.store.Archive(ctx, id)
	if err != nil {
		return History{}, err
	}
	return History{Drafts: drafts, Archive: archive}, nil
}

func (s *PropertyService) Update(ctx context.Context, sess *domain.Session, id string, patch map[string]json.RawMessage) (string, error) {
	if err := sess.Require(domain.RoleEditor); err != nil {
		return "", err
	}
	stamp, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return "", err
	}
	log.Info().Str("id", id).Str("version", stamp).Str("by", sess.Email).Msg("draft saved")
	return stamp, nil
}

func (s *PropertyService) Publish(ctx context.Context, sess *domain.Session, id string) (bool, error) {
	if err := sess.Require(domain.RoleAdmin); err != nil {
		return false, err
	}
	return s.publish(ctx, id)
}

func (s *PropertyService) publish(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.Publish(ctx, id)
	if err != nil {
		return false, err
	}
	if ok && s.cache != nil {
		s.invalidateProperty(ctx, id)
	}
	return ok, nil
}

// Revert drops the newest draft; the published record, and so the cache, is unaffected.
func (s *PropertyService) Revert(ctx context.Context, sess *domain.Session, id string) error {
	if err := sess.Require(domain.RoleEditor); err != nil {
		return err
	}
	return s.store.Revert(ctx, id)
}

type PublishReport struct {
	Published []string          `json:"published"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// PublishAll publishes every property with pending drafts, at most s.workers at a time.
func (s *PropertyService) PublishAll(ctx context.Context, sess *domain.Session) (PublishReport, error) {
	if err := sess.Require(domain.RoleAdmin); err != nil {
		return PublishReport{}, err
	}
	ids, err := s.store.List(ctx)
	if err != nil {
		return PublishReport{}, err
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		rep = PublishReport{Failed: map[string]string{}}
		sem = semaphore.NewWeighted(int64(s.workers))
	)
	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return rep, err
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer sem.Release(1)

			ok, err := s.publish(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Str("id", id).Err(err).Msg("publish failed")
				rep.Failed[id] = err.Error()
				return
			}
			if ok {
				rep.Published = append(rep.Published, id)
			}
		}(id)
	}
	wg.Wait()
	sort.Strings(rep.Published)
	return rep, nil
}

func (s *PropertyService) PutTheme(ctx context.Context, sess *domain.Session, t domain.Theme) error {
	if err := sess.Require(domain.RoleEditor); err != nil {
		return err
	}
	if err := s.themes.PutTheme(ctx, t); err != nil {
		return err
	}
	// a shared theme can back any property's cached view
	if s.cache != nil {
		ids, err := s.store.List(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			s.invalidateProperty(ctx, id)
		}
	}
	log.Info().Str("theme", t.Name).Str("by", sess.Email).Msg("theme saved")
	return nil
}

func (s *PropertyService) invalidateProperty(ctx context.Context, id string) {
	for _, l := range domain.SupportedLanguages {
		_ = s.cache.Del(ctx, viewKey(id, l))
	}
}
