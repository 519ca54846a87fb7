package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Key prefixes for the account records
const (
	prefixUser     = "user:"     // email -> User
	prefixUsername = "username:" // username -> email
	prefixReset    = "reset:"    // token -> email
)

var (
	ErrUserExists    = errors.New("user with this email already exists")
	ErrUsernameTaken = errors.New("username is already taken")
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidToken  = errors.New("invalid token")
)

// User is a stored account. PasswordHash is never serialized to clients.
type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Mobile       string    `json:"mobile"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStore keeps accounts and password reset tokens in a KV.
type UserStore struct {
	kv    KV
	mutex sync.Mutex // serializes read-modify-write sequences on kv
}

// NewUserStore creates a user store over kv.
func NewUserStore(kv KV) *UserStore {
	return &UserStore{kv: kv}
}

// Create stores a new account. Emails and usernames are unique.
func (s *UserStore) Create(u *User) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.kv.Get(prefixUser + u.Email); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, err := s.kv.Get(prefixUsername + u.Username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	if err := s.put(u); err != nil {
		return err
	}
	if err := s.kv.Set(prefixUsername+u.Username, []byte(u.Email), 0); err != nil {
		if delErr := s.kv.Delete(prefixUser + u.Email); delErr != nil {
			return fmt.Errorf("indexing username %q: %w (rollback: %v)", u.Username, err, delErr)
		}
		return fmt.Errorf("indexing username %q: %w", u.Username, err)
	}
	return nil
}

// GetByEmail returns the account registered under email.
func (s *UserStore) GetByEmail(email string) (*User, error) {
	data, err := s.kv.Get(prefixUser + email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("decoding user %q: %w", email, err)
	}
	return &u, nil
}

// UpdatePasswordHash replaces the stored password hash of an account.
func (s *UserStore) UpdatePasswordHash(email, hash string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	u, err := s.GetByEmail(email)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return s.put(u)
}

// Count returns the number of stored accounts.
func (s *UserStore) Count() (int, error) {
	keys, err := s.kv.Keys(prefixUser)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// CreateResetToken issues a single-use reset token for email valid for ttl.
func (s *UserStore) CreateResetToken(email string, ttl time.Duration) (string, error) {
	if _, err := s.GetByEmail(email); err != nil {
		return "", err
	}

	token := uuid.New().String()
	if err := s.kv.Set(prefixReset+token, []byte(email), ttl); err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeResetToken resolves and invalidates a reset token. A token can be
// consumed once.
func (s *UserStore) ConsumeResetToken(token string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := s.kv.Get(prefixReset + token)
	if errors.Is(err, ErrNotFound) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	if err := s.kv.Delete(prefixReset + token); err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *UserStore) put(u *User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding user %q: %w", u.Email, err)
	}
	return s.kv.Set(prefixUser+u.Email, data, 0)
}
