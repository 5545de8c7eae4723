package domain

import "context"

// RecordBackend persists the published/draft/archive slots of property records.
// Read methods return (nil, nil) for an empty published slot and ErrNotFound for a
// missing draft.
type RecordBackend interface {
	ListIDs(ctx context.Context) ([]string, error)
	ReadPublished(ctx context.Context, id string) (*Property, error)
	// DraftStamps returns the version stamps of pending drafts in ascending order.
	DraftStamps(ctx context.Context, id string) ([]string, error)
	ReadDraft(ctx context.Context, id, stamp string) (*Property, error)
	// WriteDraft stores p under p.Version and fails with ErrStampTaken instead of overwriting.
	WriteDraft(ctx context.Context, p Property) error
	DeleteDraft(ctx context.Context, id, stamp string) error
	// Promote makes draft stamp the published record, then archives the previous
	// published record and every draft. Readers never see an empty published slot.
	Promote(ctx context.Context, id, stamp string) error
	ArchiveEntries(ctx context.Context, id string) ([]string, error)
}

type ThemeLibrary interface {
	Themes(ctx context.Context) (map[string]Theme, error)
	PutTheme(ctx context.Context, t Theme) error
}

type UserDirectory interface {
	Users(ctx context.Context) ([]User, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
