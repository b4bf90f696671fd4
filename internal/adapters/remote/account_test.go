package remote_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/daybook/internal/core/domain"
)

func TestStore_UserExists(t *testing.T) {
	s := openStore(t)
	ctx := t.Context()

	_, err := s.Create(ctx, domain.ResourceUser, "u1", domain.User{Email: "Ada@Example.com", Nickname: "ada"}.Fields())
	require.NoError(t, err)

	tests := []struct {
		email string
		want  bool
	}{
		{email: "ada@example.com", want: true},
		{email: " ADA@example.com ", want: true},
		{email: "bob@example.com", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			ok, err := s.UserExists(ctx, tt.email)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	_, err = s.UserExists(ctx, "not an email")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestStore_RequestPasswordReset(t *testing.T) {
	s := openStore(t)
	ctx := t.Context()

	redirect := "http://localhost:5173/update-password?email=ada%40example.com"
	require.NoError(t, s.RequestPasswordReset(ctx, "Ada@example.com", redirect))
	require.NoError(t, s.RequestPasswordReset(ctx, "ada@example.com", redirect+"&again=1"))

	urls, err := s.PasswordResets(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{redirect, redirect + "&again=1"}, urls)

	err = s.RequestPasswordReset(ctx, "", redirect)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}
