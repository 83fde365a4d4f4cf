package core

import (
	"errors"
	"strings"
	"testing"
)

// Requirement: the plaintext handler keeps stored passwords comparable
// with records written before hashing was available.
func TestPlaintext_HashAndVerify(t *testing.T) {
	tests := []struct {
		name    string
		stored  string
		attempt string
		wantOk  bool
	}{
		{name: "exact match", stored: "geheim", attempt: "geheim", wantOk: true},
		{name: "case differs", stored: "geheim", attempt: "Geheim", wantOk: false},
		{name: "trailing space", stored: "geheim", attempt: "geheim ", wantOk: false},
		{name: "empty both", stored: "", attempt: "", wantOk: true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			p := Plaintext{}
			stored, err := p.Hash(test.stored)
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}
			if stored != test.stored {
				t.Fatalf("Hash() = %q, want the password unchanged", stored)
			}

			// Act
			ok, err := p.Verify(test.attempt, stored)

			// Assert
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if ok != test.wantOk {
				t.Errorf("Verify() = %v, want %v", ok, test.wantOk)
			}
		})
	}
}

// Requirement: PASSWORD_HASHER names resolve to a handler, unknown names fail.
func TestNewPasswordHandler(t *testing.T) {
	tests := []struct {
		name     string
		hasher   string
		wantType string
		wantErr  error
	}{
		{name: "empty defaults to plaintext", hasher: "", wantType: "plaintext"},
		{name: "plaintext", hasher: "plaintext", wantType: "plaintext"},
		{name: "argon2 mixed case", hasher: " Argon2 ", wantType: "argon2"},
		{name: "unknown", hasher: "bcrypt", wantErr: ErrUnknownPasswordHasher},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			h, err := NewPasswordHandler(test.hasher)

			// Assert
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("NewPasswordHandler() error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPasswordHandler() error = %v", err)
			}
			switch h.(type) {
			case Plaintext:
				if test.wantType != "plaintext" {
					t.Errorf("got plaintext handler, want %s", test.wantType)
				}
			case *Argon2:
				if test.wantType != "argon2" {
					t.Errorf("got argon2 handler, want %s", test.wantType)
				}
			default:
				t.Errorf("unexpected handler %T", h)
			}
		})
	}
}

func TestArgon2_Hash(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "success", password: "testPassword123"},
		{name: "empty password", password: ""},
		{name: "unicode", password: "Reisepass✈"},
		{name: "long password", password: strings.Repeat("a", 128)},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			a := &Argon2{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

			// Act
			hash, err := a.Hash(test.password)

			// Assert
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}
			if !strings.HasPrefix(hash, "$argon2id$") {
				t.Errorf("Hash() should start with $argon2id$, got %q", hash)
			}
			if len(strings.Split(hash, "$")) != 6 {
				t.Error("Hash() should have 6 parts")
			}
		})
	}
}

func TestArgon2_Hash_UniqueSalts(t *testing.T) {
	// Arrange
	a := &Argon2{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

	// Act
	hash1, _ := a.Hash("samePassword")
	hash2, _ := a.Hash("samePassword")

	// Assert
	if hash1 == hash2 {
		t.Error("Hash() should generate different hashes with unique salts")
	}
}

func TestArgon2_Verify(t *testing.T) {
	tests := []struct {
		name     string
		password string
		attempt  string
		wantOk   bool
	}{
		{name: "correct password", password: "correctPassword", attempt: "correctPassword", wantOk: true},
		{name: "wrong password", password: "correctPassword", attempt: "wrongPassword", wantOk: false},
		{name: "case sensitive", password: "Password", attempt: "password", wantOk: false},
		{name: "empty attempt", password: "password", attempt: "", wantOk: false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			a := &Argon2{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
			hash, _ := a.Hash(test.password)

			// Act
			ok, err := a.Verify(test.attempt, hash)

			// Assert
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if ok != test.wantOk {
				t.Errorf("Verify() = %v, want %v", ok, test.wantOk)
			}
		})
	}
}

func TestArgon2_Verify_InvalidHashes(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{name: "empty", hash: ""},
		{name: "plaintext value", hash: "geheim"},
		{name: "too few parts", hash: "$argon2id$v=19$m=65536,t=3,p=2$salt"},
		{name: "unsupported algorithm", hash: "$argon2i$v=19$m=65536,t=3,p=2$salt$hash"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			_, err := NewArgon2().Verify("password", test.hash)

			// Assert
			if err == nil {
				t.Errorf("Verify() should return error for %s", test.name)
			}
		})
	}
}

func TestArgon2_Verify_DecodesStoredParameters(t *testing.T) {
	// Arrange
	weak := &Argon2{Memory: 8 * 1024, Iterations: 2, Parallelism: 1, SaltLength: 8, KeyLength: 16}
	hash, _ := weak.Hash("test")

	// Act
	ok, err := NewArgon2().Verify("test", hash)

	// Assert
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Error("Verify() should use the parameters encoded in the hash")
	}
}
