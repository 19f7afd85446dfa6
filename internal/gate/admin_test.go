package gate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAdminAuth(t *testing.T) (*AdminAuth, *fakeClock) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	auth := NewAdminAuth(AdminSettings{
		Email:        "Admin@Example.com",
		PasswordHash: string(hash),
		JWTSecret:    "test-secret",
		TokenTTL:     time.Hour,
	}, NewThrottle(NewMemoryCounterStore(), WithClock(clock.Now)))
	auth.now = clock.Now
	return auth, clock
}

func TestAdminLogin_IssuesVerifiableToken(t *testing.T) {
	auth, _ := newAdminAuth(t)

	token, res, err := auth.Login(context.Background(), "ip", "admin@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, Admitted, res.Outcome)

	subject, err := auth.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", subject)

	_, err = auth.Verify(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminLogin_TokenExpires(t *testing.T) {
	auth, clock := newAdminAuth(t)

	token, _, err := auth.Login(context.Background(), "ip", "admin@example.com", "s3cret!")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = auth.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminLogin_LockoutAfterThreeFailures(t *testing.T) {
	auth, clock := newAdminAuth(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, res, err := auth.Login(ctx, "ip", "admin@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, Rejected, res.Outcome)
	}

	_, res, err := auth.Login(ctx, "ip", "admin@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, LockedOut, res.Outcome)

	clock.Advance(DefaultLockout)
	token, res, err := auth.Login(ctx, "ip", "admin@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, Admitted, res.Outcome)
	assert.NotEmpty(t, token)
}
