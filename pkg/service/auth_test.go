package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gilchrisn/network-analysis-service/pkg/models"
	"github.com/gilchrisn/network-analysis-service/pkg/store"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	svc := NewAuthService(store.NewUserStore(store.NewMemoryKV()), "test-secret", 30*time.Minute, time.Hour)
	svc.bcryptCost = bcrypt.MinCost
	return svc
}

func TestSignupAndLogin(t *testing.T) {
	svc := newTestAuthService(t)

	user, token, err := svc.Signup(models.SignupRequest{
		Name: "Ada", Username: "ada", Email: "ada@example.com", Password: "engine",
	})
	require.NoError(t, err)
	assert.Equal(t, &models.SessionUser{Email: "ada@example.com", Name: "Ada", Username: "ada"}, user)
	assert.NotEmpty(t, token)

	session, err := svc.ParseSession(token)
	require.NoError(t, err)
	assert.Equal(t, user, session)

	_, token, err = svc.Login(models.LoginRequest{Email: "ada@example.com", Password: "engine"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(models.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(models.LoginRequest{Email: "nobody@example.com", Password: "engine"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(models.LoginRequest{Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSignupConflicts(t *testing.T) {
	svc := newTestAuthService(t)
	require.NoError(t, svc.SeedDemoUser())
	require.NoError(t, svc.SeedDemoUser(), "seeding is idempotent")

	_, _, err := svc.Signup(models.SignupRequest{Name: "X", Username: "x", Email: DemoEmail, Password: "p"})
	assert.ErrorIs(t, err, store.ErrUserExists)

	_, _, err = svc.Signup(models.SignupRequest{Name: "X", Username: "testuser", Email: "x@example.com", Password: "p"})
	assert.ErrorIs(t, err, store.ErrUsernameTaken)

	_, _, err = svc.Signup(models.SignupRequest{Name: "X", Username: "x", Email: "bad", Password: "p"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestPasswordReset(t *testing.T) {
	svc := newTestAuthService(t)
	require.NoError(t, svc.SeedDemoUser())

	_, err := svc.ForgotPassword(models.ForgotPasswordRequest{Email: "ghost@example.com"})
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	token, err := svc.ForgotPassword(models.ForgotPasswordRequest{Email: DemoEmail})
	require.NoError(t, err)

	err = svc.ResetPassword(models.ResetPasswordRequest{Token: "bogus", Password: "new"})
	assert.ErrorIs(t, err, store.ErrInvalidToken)

	require.NoError(t, svc.ResetPassword(models.ResetPasswordRequest{Token: token, Password: "new-secret"}))

	_, _, err = svc.Login(models.LoginRequest{Email: DemoEmail, Password: DemoPassword})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(models.LoginRequest{Email: DemoEmail, Password: "new-secret"})
	assert.NoError(t, err)

	err = svc.ResetPassword(models.ResetPasswordRequest{Token: token, Password: "again"})
	assert.ErrorIs(t, err, store.ErrInvalidToken)
}

func TestParseSession(t *testing.T) {
	svc := newTestAuthService(t)
	require.NoError(t, svc.SeedDemoUser())

	_, token, err := svc.Login(models.LoginRequest{Email: DemoEmail, Password: DemoPassword})
	require.NoError(t, err)

	t.Run("Empty", func(t *testing.T) {
		_, err := svc.ParseSession("")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("Tampered", func(t *testing.T) {
		_, err := svc.ParseSession(token + "x")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := newTestAuthService(t)
		other.secret = []byte("different")
		_, err := other.ParseSession(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("Expired", func(t *testing.T) {
		later := time.Now().Add(31 * time.Minute)
		svc.now = func() time.Time { return later }
		defer func() { svc.now = time.Now }()

		_, err := svc.ParseSession(token)
		assert.ErrorIs(t, err, ErrSessionExpired)
	})
}
