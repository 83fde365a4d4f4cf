package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/lborres/reisetagebuch/core"
)

// DefaultVerifyBaseURL is the origin used in verification links when none is configured
const DefaultVerifyBaseURL = "http://localhost:5173"

// RegisterInput holds the fields of the registration form
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BirthDate string `json:"birthDate"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

// RegisterResult is returned by Register
type RegisterResult struct {
	User             core.StoredUser
	VerificationLink string
}

// AuthStore manages locally registered accounts and the logged-in user.
// Email comparison is case-insensitive everywhere.
type AuthStore struct {
	kv             core.KVStorage
	users          *Collection[core.StoredUser]
	passwordHasher core.PasswordHandler
	verifyBaseURL  string
	state          *core.Writable[core.AuthState]
	logger         *slog.Logger
}

type AuthConfig struct {
	PasswordHasher core.PasswordHandler
	VerifyBaseURL  string
	IDs            *IDClock
	Logger         *slog.Logger
}

func NewAuthStore(kv core.KVStorage, cfg AuthConfig) *AuthStore {
	if cfg.PasswordHasher == nil {
		cfg.PasswordHasher = core.Plaintext{}
	}
	if cfg.VerifyBaseURL == "" {
		cfg.VerifyBaseURL = DefaultVerifyBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &AuthStore{
		kv:             kv,
		users:          NewCollection[core.StoredUser](kv, core.KeyUsers, cfg.IDs, cfg.Logger),
		passwordHasher: cfg.PasswordHasher,
		verifyBaseURL:  strings.TrimRight(cfg.VerifyBaseURL, "/"),
		logger:         cfg.Logger,
	}
	s.state = core.NewWritable(core.AuthState{User: s.loadCurrentUser()})
	return s
}

// Register creates an unverified account and returns its verification link
func (s *AuthStore) Register(input RegisterInput) (*RegisterResult, error) {
	// Step 1: Validate the form
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input, ""); err != nil {
		if ve, ok := err.(*core.ValidationError); ok && len(ve.Fields) == 1 && ve.Fields[0] == "email" {
			return nil, fmt.Errorf("%w: %s", core.ErrInvalidEmail, input.Email)
		}
		return nil, err
	}

	// Step 2: Reject duplicates ignoring case
	if _, found := s.findByEmail(input.Email); found {
		return nil, core.ErrUserExists
	}

	// Step 3: Store the password
	stored, err := s.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 4: Create the user
	user, err := s.users.Create(func(id int64) core.StoredUser {
		return core.StoredUser{
			ID:        id,
			Email:     input.Email,
			Password:  stored,
			Name:      strings.TrimSpace(input.FirstName + " " + input.LastName),
			BirthDate: input.BirthDate,
			Verified:  false,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &RegisterResult{
		User:             user,
		VerificationLink: s.verificationLink(input.Email),
	}, nil
}

func (s *AuthStore) verificationLink(email string) string {
	return s.verifyBaseURL + "/auth/verify?email=" + url.QueryEscape(email)
}

// Verify marks the account verified and logs it in
func (s *AuthStore) Verify(email string) (core.StoredUser, error) {
	user, found := s.findByEmail(email)
	if !found {
		return core.StoredUser{}, core.ErrUserNotFound
	}

	verified, err := s.users.Update(user.ID, func(u *core.StoredUser) {
		u.Verified = true
	})
	if err != nil {
		return core.StoredUser{}, fmt.Errorf("failed to verify user: %w", err)
	}

	if err := s.setCurrentUser(&verified); err != nil {
		return core.StoredUser{}, err
	}
	return verified, nil
}

// Login authenticates with email and password.
// Unknown accounts, unverified accounts and wrong passwords fail with distinct errors.
func (s *AuthStore) Login(email, password string) (core.StoredUser, error) {
	// Step 1: Find the user by email
	user, found := s.findByEmail(email)
	if !found {
		return core.StoredUser{}, core.ErrUserNotFound
	}

	// Step 2: Require a verified address
	if !user.Verified {
		return core.StoredUser{}, core.ErrNotVerified
	}

	// Step 3: Verify the password
	valid, err := s.passwordHasher.Verify(password, user.Password)
	if err != nil {
		return core.StoredUser{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return core.StoredUser{}, core.ErrInvalidCredentials
	}

	// Step 4: Remember the session
	if err := s.setCurrentUser(&user); err != nil {
		return core.StoredUser{}, err
	}
	return user, nil
}

// Logout forgets the current user
func (s *AuthStore) Logout() error {
	return s.setCurrentUser(nil)
}

// CurrentUser returns the logged-in user, or nil
func (s *AuthStore) CurrentUser() *core.StoredUser {
	return s.state.Get().User
}

func (s *AuthStore) Subscribe(fn func(core.AuthState)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}

func (s *AuthStore) findByEmail(email string) (core.StoredUser, bool) {
	email = strings.TrimSpace(email)
	for _, u := range s.users.Load() {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return core.StoredUser{}, false
}

func (s *AuthStore) loadCurrentUser() *core.StoredUser {
	if s.kv == nil {
		return nil
	}
	raw, ok, err := s.kv.GetItem(core.KeyCurrentUser)
	if err != nil || !ok {
		return nil
	}
	var user *core.StoredUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil
	}
	return user
}

func (s *AuthStore) setCurrentUser(user *core.StoredUser) error {
	if s.kv != nil {
		if user == nil {
			if err := s.kv.RemoveItem(core.KeyCurrentUser); err != nil {
				return fmt.Errorf("failed to clear current user: %w", err)
			}
		} else {
			raw, err := json.Marshal(user)
			if err != nil {
				return fmt.Errorf("failed to encode current user: %w", err)
			}
			if err := s.kv.SetItem(core.KeyCurrentUser, raw); err != nil {
				return fmt.Errorf("failed to persist current user: %w", err)
			}
		}
	}

	s.state.Set(core.AuthState{User: user})
	return nil
}
