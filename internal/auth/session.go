package auth

import (
	"context"
	"fmt"
	"strings"

	"propsite/internal/domain"
)

type ctxKey struct{}

func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// SessionFrom returns nil when the request is unauthenticated.
func SessionFrom(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(ctxKey{}).(*domain.Session)
	return s
}

// Authenticate checks email/password against the user directory.
// Unknown users and wrong passwords both yield ErrAuth.
func Authenticate(ctx context.Context, dir domain.UserDirectory, email, password string) (*domain.Session, error) {
	users, err := dir.Users(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if !strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			continue
		}
		ok, err := CheckPassword(password, u.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("%w: user %s: %v", domain.ErrAuth, u.Email, err)
		}
		if !ok {
			break
		}
		return &domain.Session{Email: u.Email, Name: u.Name, Role: u.Role}, nil
	}
	return nil, fmt.Errorf("%w: invalid credentials", domain.ErrAuth)
}
