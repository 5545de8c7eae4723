package versions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"propsite/internal/adapters/observability"
	"propsite/internal/domain"
)

// fields a patch can never replace
var immutableFields = map[string]bool{"id": true, "version": true, "isPublished": true}

const maxStampAttempts = 16

// Store implements the draft/publish/archive protocol on top of a RecordBackend.
// Concurrent Update calls on one property race read-modify-write; the last writer wins.
type Store struct {
	b   domain.RecordBackend
	now func() time.Time
}

func New(b domain.RecordBackend) *Store {
	return &Store{b: b, now: time.Now}
}

// WithClock replaces the stamp clock (tests).
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

type ShellInput struct {
	ID               string
	Name             domain.LocalizedValue
	Status           string
	ListingLanguages []string
}

// CreateShell writes the first, unpublished draft of a new property.
func (s *Store) CreateShell(ctx context.Context, in ShellInput) (string, error) {
	id, err := s.createShell(ctx, in)
	observability.ObserveStore("create", err)
	return id, err
}

func (s *Store) createShell(ctx context.Context, in ShellInput) (string, error) {
	if err := domain.ValidateID(in.ID); err != nil {
		return "", err
	}
	if err := domain.ValidateStatus(in.Status); err != nil {
		return "", err
	}
	langs := in.ListingLanguages
	if len(langs) == 0 {
		langs = []string{domain.DefaultLanguage}
	}
	for _, l := range langs {
		if !domain.IsSupportedLanguage(l) {
			return "", fmt.Errorf("%w: unsupported listing language %q", domain.ErrInvalidData, l)
		}
	}

	pub, err := s.b.ReadPublished(ctx, in.ID)
	if err != nil {
		return "", err
	}
	stamps, err := s.b.DraftStamps(ctx, in.ID)
	if err != nil {
		return "", err
	}
	if pub != nil || len(stamps) > 0 {
		return "", fmt.Errorf("property %s: %w", in.ID, domain.ErrAlreadyExists)
	}

	p := domain.Property{
		ID:               in.ID,
		Name:             in.Name,
		Status:           in.Status,
		ListingLanguages: langs,
	}
	if _, err := s.writeDraft(ctx, p, nil); err != nil {
		return "", err
	}
	log.Info().Str("id", in.ID).Str("status", in.Status).Msg("property shell created")
	return in.ID, nil
}

// existing guards operations on stored properties. Ids that could never have been
// created (for example ".." or ids containing "/") are reported as not found.
func existing(id string) error {
	if domain.ValidateID(id) != nil {
		return fmt.Errorf("property %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetLatest prefers the newest draft over the published record.
func (s *Store) GetLatest(ctx context.Context, id string) (*domain.Property, error) {
	if err := existing(id); err != nil {
		return nil, err
	}
	stamps, err := s.b.DraftStamps(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(stamps) > 0 {
		return s.b.ReadDraft(ctx, id, stamps[len(stamps)-1])
	}
	return s.GetPublished(ctx, id)
}

func (s *Store) GetPublished(ctx context.Context, id string) (*domain.Property, error) {
	if err := existing(id); err != nil {
		return nil, err
	}
	p, err := s.b.ReadPublished(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// Update applies patch to the latest record and stores the result as a new draft.
// Each top-level field in patch replaces the stored field wholesale; nested objects
// are not merged. Returns the stamp of the new draft.
func (s *Store) Update(ctx context.Context, id string, patch map[string]json.RawMessage) (string, error) {
	stamp, err := s.update(ctx, id, patch)
	observability.ObserveStore("update", err)
	return stamp, err
}

func (s *Store) update(ctx context.Context, id string, patch map[string]json.RawMessage) (string, error) {
	cur, err := s.GetLatest(ctx, id)
	if err != nil {
		return "", err
	}
	next, err := ApplyPatch(*cur, patch)
	if err != nil {
		return "", err
	}
	next.ID = id
	next.IsPublished = false
	known := []string{cur.Version}
	return s.writeDraft(ctx, next, known)
}

// ApplyPatch merges top-level JSON fields of patch onto p.
func ApplyPatch(p domain.Property, patch map[string]json.RawMessage) (domain.Property, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return domain.Property{}, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.Property{}, err
	}
	for k, v := range patch {
		if immutableFields[k] {
			continue
		}
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return domain.Property{}, fmt.Errorf("%w: %v", domain.ErrInvalidData, err)
	}
	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	var out domain.Property
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, domain.ErrInvalidData) {
			return domain.Property{}, err
		}
		return domain.Property{}, fmt.Errorf("%w: %v", domain.ErrInvalidData, err)
	}
	if err := domain.ValidateStatus(out.Status); err != nil {
		return domain.Property{}, err
	}
	return out, nil
}

// Publish promotes the newest draft. Without drafts it is a no-op and reports false.
func (s *Store) Publish(ctx context.Context, id string) (bool, error) {
	err := existing(id)
	var stamps []string
	if err == nil {
		stamps, err = s.b.DraftStamps(ctx, id)
	}
	if err != nil {
		observability.ObserveStore("publish", err)
		return false, err
	}
	if len(stamps) == 0 {
		return false, nil
	}
	latest := stamps[len(stamps)-1]
	err = s.b.Promote(ctx, id, latest)
	observability.ObserveStore("publish", err)
	if err != nil {
		return false, fmt.Errorf("publish %s@%s: %w", id, latest, err)
	}
	log.Info().Str("id", id).Str("version", latest).Int("archived_drafts", len(stamps)).Msg("property published")
	return true, nil
}

// Revert discards the newest draft only.
func (s *Store) Revert(ctx context.Context, id string) error {
	err := s.revert(ctx, id)
	observability.ObserveStore("revert", err)
	return err
}

func (s *Store) revert(ctx context.Context, id string) error {
	if err := existing(id); err != nil {
		return err
	}
	stamps, err := s.b.DraftStamps(ctx, id)
	if err != nil {
		return err
	}
	if len(stamps) == 0 {
		return fmt.Errorf("property %s has no draft: %w", id, domain.ErrNotFound)
	}
	latest := stamps[len(stamps)-1]
	if err := s.b.DeleteDraft(ctx, id, latest); err != nil {
		return err
	}
	log.Info().Str("id", id).Str("version", latest).Msg("draft reverted")
	return nil
}

func (s *Store) List(ctx context.Context) ([]string, error) { return s.b.ListIDs(ctx) }

func (s *Store) Drafts(ctx context.Context, id string) ([]string, error) {
	if err := existing(id); err != nil {
		return nil, err
	}
	return s.b.DraftStamps(ctx, id)
}

func (s *Store) Archive(ctx context.Context, id string) ([]string, error) {
	if err := existing(id); err != nil {
		return nil, err
	}
	return s.b.ArchiveEntries(ctx, id)
}

// writeDraft assigns a fresh stamp newer than every draft, the published record and
// known, retrying with a suffixed stamp when the backend reports a collision.
func (s *Store) writeDraft(ctx context.Context, p domain.Property, known []string) (string, error) {
	stamps, err := s.b.DraftStamps(ctx, p.ID)
	if err != nil {
		return "", err
	}
	known = append(known, stamps...)
	if pub, err := s.b.ReadPublished(ctx, p.ID); err != nil {
		return "", err
	} else if pub != nil {
		known = append(known, pub.Version)
	}

	for i := 0; i < maxStampAttempts; i++ {
		p.Version = NextStamp(s.now(), known)
		err := s.b.WriteDraft(ctx, p)
		if err == nil {
			return p.Version, nil
		}
		if !errors.Is(err, domain.ErrStampTaken) {
			return "", err
		}
		known = append(known, p.Version)
	}
	return "", fmt.Errorf("property %s: %w after %d attempts", p.ID, domain.ErrStampTaken, maxStampAttempts)
}
