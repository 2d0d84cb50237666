package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/migueg98/empleo-portal/internal/apperrors"
)

func newTestSessions(t *testing.T) *Sessions {
	t.Helper()
	s, err := NewSessions(NewMemoryTokens(), "admin", "s3cret", "", time.Minute, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestLoginIssuesToken(t *testing.T) {
	s := newTestSessions(t)
	ctx := context.Background()

	token, err := s.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, s.Validate(ctx, "Bearer "+token))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestSessions(t)
	ctx := context.Background()

	_, err := s.Login(ctx, "admin", "wrong")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeUnauthorized, apperrors.TypeOf(err))

	_, err = s.Login(ctx, "root", "s3cret")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeUnauthorized, apperrors.TypeOf(err))
}

func TestValidateRejectsMissingOrUnknownToken(t *testing.T) {
	s := newTestSessions(t)
	ctx := context.Background()

	assert.Error(t, s.Validate(ctx, ""))
	assert.Error(t, s.Validate(ctx, "Bearer "))
	assert.Error(t, s.Validate(ctx, "Bearer not-a-real-token"))
	assert.Error(t, s.Validate(ctx, "just-a-token-no-scheme"))
}

func TestLogoutInvalidatesToken(t *testing.T) {
	s := newTestSessions(t)
	ctx := context.Background()

	token, err := s.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx, token))

	assert.Error(t, s.Validate(ctx, "Bearer "+token))
}

func TestMemoryTokensExpire(t *testing.T) {
	m := NewMemoryTokens()
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, "tok", -time.Second))
	ok, err := m.Exists(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}
