package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/reisetagebuch/core"
)

func newTestAuthStore(kv core.KVStorage, hasher core.PasswordHandler) *AuthStore {
	return NewAuthStore(kv, AuthConfig{PasswordHasher: hasher, VerifyBaseURL: "https://reise.test/"})
}

func registerInput(email string) RegisterInput {
	return RegisterInput{FirstName: "Mia", LastName: "Berg", BirthDate: "1994-03-02", Email: email, Password: "geheim"}
}

// Requirement: Register creates an unverified user and returns a verification link.
func TestAuthStore_Register(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*AuthStore)
		input    RegisterInput
		wantErr  error
		wantLink string
	}{
		{
			name:     "creates unverified user",
			input:    registerInput("mia+reise@example.com"),
			wantLink: "https://reise.test/auth/verify?email=mia%2Breise%40example.com",
		},
		{
			name:    "rejects invalid email",
			input:   registerInput("mia-at-example"),
			wantErr: core.ErrInvalidEmail,
		},
		{
			name:    "rejects empty email",
			input:   registerInput(""),
			wantErr: core.ErrInvalidEmail,
		},
		{
			name: "rejects email differing only in case",
			setup: func(s *AuthStore) {
				_, _ = s.Register(registerInput("mia@example.com"))
			},
			input:   registerInput("MIA@Example.com"),
			wantErr: core.ErrUserExists,
		},
		{
			name:    "rejects empty password",
			input:   RegisterInput{Email: "mia@example.com"},
			wantErr: core.ErrValidation,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			store := newTestAuthStore(NewFakeKV(), nil)
			if test.setup != nil {
				test.setup(store)
			}

			// Act
			result, err := store.Register(test.input)

			// Assert
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.wantLink, result.VerificationLink)
			assert.Equal(t, "Mia Berg", result.User.Name)
			assert.False(t, result.User.Verified)
			assert.Nil(t, store.CurrentUser())
		})
	}
}

// Requirement: Login reports unknown, unverified and wrong-password cases distinctly.
func TestAuthStore_Login(t *testing.T) {
	tests := []struct {
		name     string
		verify   bool
		email    string
		password string
		wantErr  error
	}{
		{name: "unknown email", verify: true, email: "nobody@example.com", password: "geheim", wantErr: core.ErrUserNotFound},
		{name: "unverified with correct password", verify: false, email: "mia@example.com", password: "geheim", wantErr: core.ErrNotVerified},
		{name: "wrong password", verify: true, email: "mia@example.com", password: "falsch", wantErr: core.ErrInvalidCredentials},
		{name: "success ignores email case", verify: true, email: "Mia@Example.COM", password: "geheim"},
	}

	for _, hasherName := range []string{core.HasherPlaintext, core.HasherArgon2} {
		for _, test := range tests {
			test := test
			t.Run(hasherName+"/"+test.name, func(t *testing.T) {
				// Arrange
				hasher, err := core.NewPasswordHandler(hasherName)
				require.NoError(t, err)
				if a, ok := hasher.(*core.Argon2); ok {
					a.Memory, a.Iterations, a.Parallelism = 8*1024, 1, 1
				}
				store := newTestAuthStore(NewFakeKV(), hasher)
				_, err = store.Register(registerInput("mia@example.com"))
				require.NoError(t, err)
				if test.verify {
					_, err = store.Verify("mia@example.com")
					require.NoError(t, err)
					require.NoError(t, store.Logout())
				}

				// Act
				user, err := store.Login(test.email, test.password)

				// Assert
				if test.wantErr != nil {
					assert.ErrorIs(t, err, test.wantErr)
					assert.Nil(t, store.CurrentUser())
					return
				}
				require.NoError(t, err)
				assert.Equal(t, "mia@example.com", user.Email)
				require.NotNil(t, store.CurrentUser())
				assert.Equal(t, user.ID, store.CurrentUser().ID)
			})
		}
	}
}

func TestAuthStore_PasswordStorage(t *testing.T) {
	// Arrange
	kv := NewFakeKV()
	argon := &core.Argon2{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	store := newTestAuthStore(kv, argon)

	// Act
	_, err := store.Register(registerInput("mia@example.com"))

	// Assert
	require.NoError(t, err)
	assert.NotContains(t, kv.Raw(core.KeyUsers), `"password":"geheim"`)
	assert.True(t, strings.Contains(kv.Raw(core.KeyUsers), "$argon2id$"))
}

// Requirement: Verify marks the user verified, logs it in and persists the current user.
func TestAuthStore_VerifyAndLogout(t *testing.T) {
	// Arrange
	kv := NewFakeKV()
	store := newTestAuthStore(kv, nil)
	_, err := store.Register(registerInput("mia@example.com"))
	require.NoError(t, err)
	var states []core.AuthState
	store.Subscribe(func(s core.AuthState) { states = append(states, s) })

	// Act
	user, err := store.Verify("MIA@example.com")

	// Assert
	require.NoError(t, err)
	assert.True(t, user.Verified)
	assert.Contains(t, kv.Raw(core.KeyCurrentUser), `"verified":true`)

	reopened := newTestAuthStore(kv, nil)
	require.NotNil(t, reopened.CurrentUser())
	assert.Equal(t, user.ID, reopened.CurrentUser().ID)

	require.NoError(t, store.Logout())
	_, present, _ := kv.GetItem(core.KeyCurrentUser)
	assert.False(t, present)
	assert.Nil(t, store.CurrentUser())

	require.Len(t, states, 3)
	assert.Nil(t, states[0].User)
	assert.NotNil(t, states[1].User)
	assert.Nil(t, states[2].User)
}

func TestAuthStore_VerifyUnknownEmail(t *testing.T) {
	store := newTestAuthStore(NewFakeKV(), nil)

	_, err := store.Verify("ghost@example.com")

	assert.ErrorIs(t, err, core.ErrUserNotFound)
}

func TestAuthStore_CorruptCurrentUserIsLoggedOut(t *testing.T) {
	kv := NewFakeKV()
	_ = kv.SetItem(core.KeyCurrentUser, []byte("{broken"))

	store := newTestAuthStore(kv, nil)

	assert.Nil(t, store.CurrentUser())
}
