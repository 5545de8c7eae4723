package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propsite/internal/auth"
	"propsite/internal/domain"
)

type users []domain.User

func (u users) Users(context.Context) ([]domain.User, error) { return u, nil }

func TestHashAndCheckPassword(t *testing.T) {
	h, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	assert.Contains(t, h, "$argon2id$")

	ok, err := auth.CheckPassword("s3cret", h)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.CheckPassword("wrong", h)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = auth.CheckPassword("x", "not-a-hash")
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	h, err := auth.HashPassword("pw")
	require.NoError(t, err)
	dir := users{{Email: "Ana@Example.com", Name: "Ana", Role: domain.RoleEditor, PasswordHash: h}}

	s, err := auth.Authenticate(context.Background(), dir, "ana@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEditor, s.Role)

	_, err = auth.Authenticate(context.Background(), dir, "ana@example.com", "nope")
	assert.True(t, errors.Is(err, domain.ErrAuth))

	_, err = auth.Authenticate(context.Background(), dir, "bob@example.com", "pw")
	assert.True(t, errors.Is(err, domain.ErrAuth))
}

func TestSessionContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, auth.SessionFrom(ctx))

	s := &domain.Session{Email: "a@b.c", Role: domain.RoleAdmin}
	assert.Same(t, s, auth.SessionFrom(auth.WithSession(ctx, s)))
}
