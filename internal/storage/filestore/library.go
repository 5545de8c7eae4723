package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"propsite/internal/domain"
)

type ThemesFile struct {
	Themes []domain.Theme `json:"themes"`
}

type UsersFile struct {
	Users []domain.User `json:"users"`
}

// loadJSON decodes path into dst. A missing file leaves dst untouched.
func loadJSON(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidData, path, err)
	}
	return nil
}

func saveJSON(path string, v any) error {
	b, err := encode(v)
	if err != nil {
		return err
	}
	return writeReplace(path, b)
}

// ---- themes ----

func (s *Store) Themes(_ context.Context) (map[string]domain.Theme, error) {
	var tf ThemesFile
	if err := loadJSON(filepath.Join(s.root, themesFile), &tf); err != nil {
		return nil, err
	}
	out := make(map[string]domain.Theme, len(tf.Themes))
	for _, t := range tf.Themes {
		out[t.Name] = t
	}
	return out, nil
}

func (s *Store) PutTheme(_ context.Context, t domain.Theme) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: theme name is required", domain.ErrInvalidData)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.root, themesFile)
	var tf ThemesFile
	if err := loadJSON(path, &tf); err != nil {
		return err
	}
	replaced := false
	for i := range tf.Themes {
		if tf.Themes[i].Name == t.Name {
			tf.Themes[i] = t
			replaced = true
		}
	}
	if !replaced {
		tf.Themes = append(tf.Themes, t)
	}
	sort.Slice(tf.Themes, func(i, j int) bool { return tf.Themes[i].Name < tf.Themes[j].Name })
	return saveJSON(path, tf)
}

// ---- users ----

func (s *Store) Users(_ context.Context) ([]domain.User, error) {
	var uf UsersFile
	if err := loadJSON(filepath.Join(s.root, usersFile), &uf); err != nil {
		return nil, err
	}
	return uf.Users, nil
}

// PutUser adds or replaces the user with the same (case-insensitive) email.
func (s *Store) PutUser(_ context.Context, u domain.User) error {
	if u.Email == "" || u.PasswordHash == "" {
		return fmt.Errorf("%w: user email and password hash are required", domain.ErrInvalidData)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.root, usersFile)
	var uf UsersFile
	if err := loadJSON(path, &uf); err != nil {
		return err
	}
	replaced := false
	for i := range uf.Users {
		if strings.EqualFold(uf.Users[i].Email, u.Email) {
			uf.Users[i] = u
			replaced = true
		}
	}
	if !replaced {
		uf.Users = append(uf.Users, u)
	}
	return saveJSON(path, uf)
}
