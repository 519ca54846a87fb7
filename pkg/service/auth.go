package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/gilchrisn/network-analysis-service/pkg/models"
	"github.com/gilchrisn/network-analysis-service/pkg/store"
	"github.com/gilchrisn/network-analysis-service/pkg/utils"
)

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")
	ErrSessionExpired     = errors.New("session has expired")
)

// Demo account created at start-up when seeding is enabled.
const (
	DemoEmail    = "test@example.com"
	DemoPassword = "password123"
)

// SessionClaims are the JWT claims carried by the session cookie.
type SessionClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService handles accounts, password resets and signed sessions.
type AuthService struct {
	users      *store.UserStore
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
	bcryptCost int
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users *store.UserStore, secret string, sessionTTL, resetTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// SessionTTL returns the lifetime of issued sessions.
func (s *AuthService) SessionTTL() time.Duration { return s.sessionTTL }

// Signup registers an account and opens a session for it.
func (s *AuthService) Signup(req models.SignupRequest) (*models.SessionUser, string, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &store.User{
		Email:        req.Email,
		Name:         req.Name,
		Username:     req.Username,
		PasswordHash: string(hash),
		Mobile:       req.Mobile,
		Address:      req.Address,
	}
	if err := s.users.Create(user); err != nil {
		return nil, "", err
	}

	log.Info().Str("username", user.Username).Msg("User registered")

	return s.openSession(user)
}

// Login checks credentials and opens a session.
func (s *AuthService) Login(req models.LoginRequest) (*models.SessionUser, string, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	user, err := s.users.GetByEmail(req.Email)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	return s.openSession(user)
}

// ForgotPassword issues a reset token for a registered email. Delivery is
// out of band; the token is only logged.
func (s *AuthService) ForgotPassword(req models.ForgotPasswordRequest) (string, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	token, err := s.users.CreateResetToken(req.Email, s.resetTTL)
	if err != nil {
		return "", err
	}

	log.Debug().Str("email", req.Email).Str("token", token).Msg("Password reset token issued")
	return token, nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *AuthService) ResetPassword(req models.ResetPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	email, err := s.users.ConsumeResetToken(req.Token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePasswordHash(email, string(hash))
}

// ParseSession validates a session token and returns its user.
func (s *AuthService) ParseSession(token string) (*models.SessionUser, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !parsed.Valid || claims.Email == "" {
		return nil, ErrInvalidSession
	}

	return &models.SessionUser{
		Email:    claims.Email,
		Name:     claims.Name,
		Username: claims.Username,
	}, nil
}

// SeedDemoUser creates the demo account if it does not exist yet.
func (s *AuthService) SeedDemoUser() error {
	_, _, err := s.Signup(models.SignupRequest{
		Name:     "Test User",
		Username: "testuser",
		Email:    DemoEmail,
		Password: DemoPassword,
		Mobile:   "1234567890",
		Address:  "123 Main St",
	})
	if errors.Is(err, store.ErrUserExists) || errors.Is(err, store.ErrUsernameTaken) {
		return nil
	}
	return err
}

func (s *AuthService) openSession(u *store.User) (*models.SessionUser, string, error) {
	now := s.now()
	claims := SessionClaims{
		Email:    u.Email,
		Name:     u.Name,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session: %w", err)
	}

	return &models.SessionUser{Email: u.Email, Name: u.Name, Username: u.Username}, token, nil
}
