package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"propsite/internal/domain"
)

const (
	publishedFile = "data.json"
	draftPrefix   = "data-v"
	archivePrefix = "data-archive-v"
	jsonExt       = ".json"
	archiveDir    = "archive"
	themesFile    = "themes.json"
	usersFile     = "users.json"
)

// Store keeps one directory per property under root:
//
//	<root>/<id>/data.json                        published
//	<root>/<id>/data-v<stamp>.json               drafts
//	<root>/<id>/archive/data-archive-v<stamp>.json superseded published records
//	<root>/<id>/archive/data-v<stamp>.json       relocated drafts
//
// plus themes.json and users.json at the root.
type Store struct {
	root string
	mu   sync.Mutex // guards themes.json and users.json read-modify-write
}

func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string { return s.root }

func (s *Store) dir(id string) string { return filepath.Join(s.root, id) }

func draftName(stamp string) string   { return draftPrefix + stamp + jsonExt }
func archiveName(stamp string) string { return archivePrefix + stamp + jsonExt }

// ---- RecordBackend ----

func (s *Store) ListIDs(_ context.Context) ([]string, error) {
	ents, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range ents {
		if !e.IsDir() || domain.ValidateID(e.Name()) != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.dir(e.Name()), publishedFile)); err == nil {
			ids = append(ids, e.Name())
			continue
		}
		stamps, err := s.draftStamps(e.Name())
		if err != nil {
			return nil, err
		}
		if len(stamps) > 0 {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) ReadPublished(_ context.Context, id string) (*domain.Property, error) {
	p, err := readRecord(filepath.Join(s.dir(id), publishedFile), id)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return p, err
}

func (s *Store) DraftStamps(_ context.Context, id string) ([]string, error) {
	return s.draftStamps(id)
}

func (s *Store) draftStamps(id string) ([]string, error) {
	ents, err := os.ReadDir(s.dir(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var stamps []string
	for _, e := range ents {
		n := e.Name()
		if e.IsDir() || !strings.HasPrefix(n, draftPrefix) || !strings.HasSuffix(n, jsonExt) {
			continue
		}
		stamps = append(stamps, strings.TrimSuffix(strings.TrimPrefix(n, draftPrefix), jsonExt))
	}
	sort.Strings(stamps)
	return stamps, nil
}

func (s *Store) ReadDraft(_ context.Context, id, stamp string) (*domain.Property, error) {
	p, err := readRecord(filepath.Join(s.dir(id), draftName(stamp)), id)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("draft %s@%s: %w", id, stamp, domain.ErrNotFound)
	}
	return p, err
}

func (s *Store) WriteDraft(_ context.Context, p domain.Property) error {
	if err := os.MkdirAll(s.dir(p.ID), 0o755); err != nil {
		return err
	}
	b, err := encode(p)
	if err != nil {
		return err
	}
	err = writeExclusive(filepath.Join(s.dir(p.ID), draftName(p.Version)), b)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("draft %s@%s: %w", p.ID, p.Version, domain.ErrStampTaken)
	}
	return err
}

func (s *Store) DeleteDraft(_ context.Context, id, stamp string) error {
	err := os.Remove(filepath.Join(s.dir(id), draftName(stamp)))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("draft %s@%s: %w", id, stamp, domain.ErrNotFound)
	}
	return err
}

// Promote copies the old data.json into the archive, renames a fully written temp file
// over data.json, and only then moves the drafts away. data.json exists at every step.
func (s *Store) Promote(_ context.Context, id, stamp string) error {
	dir := s.dir(id)
	arch := filepath.Join(dir, archiveDir)

	next, err := readRecord(filepath.Join(dir, draftName(stamp)), id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("draft %s@%s: %w", id, stamp, domain.ErrNotFound)
		}
		return err
	}
	next.IsPublished = true
	body, err := encode(*next)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(arch, 0o755); err != nil {
		return err
	}

	// 1) archive a copy of the current published record
	pubPath := filepath.Join(dir, publishedFile)
	old, err := readRecord(pubPath, id)
	switch {
	case err == nil:
		raw, err := os.ReadFile(pubPath)
		if err != nil {
			return err
		}
		if err := writeExclusive(uniquePath(arch, archiveName(old.Version)), raw); err != nil {
			return fmt.Errorf("archive published: %w", err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}

	// 2) atomic swap of the published slot
	if err := writeReplace(pubPath, body); err != nil {
		return fmt.Errorf("write published: %w", err)
	}

	// 3) relocate every draft, the promoted one included
	stamps, err := s.draftStamps(id)
	if err != nil {
		return err
	}
	for _, st := range stamps {
		name := draftName(st)
		if err := os.Rename(filepath.Join(dir, name), uniquePath(arch, name)); err != nil {
			return fmt.Errorf("archive draft %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) ArchiveEntries(_ context.Context, id string) ([]string, error) {
	ents, err := os.ReadDir(filepath.Join(s.dir(id), archiveDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range ents {
		if !e.IsDir() && strings.HasSuffix(e.Name(), jsonExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ---- file helpers ----

func readRecord(path, id string) (*domain.Property, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p domain.Property
	if err := json.Unmarshal(raw, &p); err != nil {
		if errors.Is(err, domain.ErrInvalidData) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidData, path, err)
	}
	if p.ID == "" {
		p.ID = id
	}
	return &p, nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTemp(path string, b []byte) (string, error) {
	tmp := path + ".tmp-" + uuid.NewString()
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return tmp, nil
}

// writeExclusive publishes complete content under path, failing with fs.ErrExist if
// path is already taken.
func writeExclusive(path string, b []byte) error {
	tmp, err := writeTemp(path, b)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)
	return os.Link(tmp, path)
}

// writeReplace atomically replaces path with b.
func writeReplace(path string, b []byte) error {
	tmp, err := writeTemp(path, b)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// uniquePath returns dir/name, or dir/<base>~N<ext> when that name is already used.
func uniquePath(dir, name string) string {
	p := filepath.Join(dir, name)
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return p
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		p = filepath.Join(dir, fmt.Sprintf("%s~%d%s", base, i, ext))
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			return p
		}
	}
}
