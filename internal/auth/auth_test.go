package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/debtplan/internal/models"
	"github.com/mmynk/debtplan/internal/storage"
)

type memoryUsers struct {
	byEmail map[string]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]*models.User{}}
}

func (m *memoryUsers) CreateUser(_ context.Context, user *models.User) error {
	m.byEmail[user.Email] = user
	return nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
}

func (m *memoryUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemoryUsers()).WithCost(bcrypt.MinCost)

	user, err := a.Register(ctx, "  Ana@Example.com ", "Ana", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Errorf("Email = %q, want normalized", user.Email)
	}
	if user.PasswordHash == "correct horse" {
		t.Error("password stored in plain text")
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "ana@example.com", "correct horse", nil},
		{"email case", "ANA@example.com", "correct horse", nil},
		{"wrong password", "ana@example.com", "battery staple", ErrInvalidCredentials},
		{"unknown user", "bia@example.com", "correct horse", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Authenticate(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.ID != user.ID {
				t.Errorf("Authenticate() user = %s, want %s", got.ID, user.ID)
			}
		})
	}

	registerErrors := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"duplicate", "ana@example.com", "another password", ErrEmailExists},
		{"weak password", "caio@example.com", "short", ErrWeakPassword},
		{"bad email", "not-an-email", "long enough", ErrInvalidEmail},
	}
	for _, tt := range registerErrors {
		t.Run("Register "+tt.name, func(t *testing.T) {
			if _, err := a.Register(ctx, tt.email, "X", tt.password); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRegistration(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		displayName string
		want        Registration
		wantErr     error
	}{
		{"normalized", "  Ana@Example.COM ", "  Ana Souza ", Registration{Email: "ana@example.com", DisplayName: "Ana Souza"}, nil},
		{"longest name", "bia@example.com", strings.Repeat("é", MaxDisplayNameLength), Registration{Email: "bia@example.com", DisplayName: strings.Repeat("é", MaxDisplayNameLength)}, nil},
		{"empty email", "  ", "Ana", Registration{}, ErrInvalidEmail},
		{"no domain", "ana", "Ana", Registration{}, ErrInvalidEmail},
		{"named address", "Ana <ana@example.com>", "Ana", Registration{}, ErrInvalidEmail},
		{"blank name", "ana@example.com", "   ", Registration{}, ErrInvalidDisplayName},
		{"name too long", "ana@example.com", strings.Repeat("a", MaxDisplayNameLength+1), Registration{}, ErrInvalidDisplayName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewRegistration(tt.email, tt.displayName)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewRegistration() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NewRegistration() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRegisterStoresTrimmedDisplayName(t *testing.T) {
	a := NewPasswordAuthenticator(newMemoryUsers()).WithCost(bcrypt.MinCost)
	user, err := a.Register(context.Background(), "caio@example.com", "  Caio  ", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.DisplayName != "Caio" {
		t.Errorf("DisplayName = %q, want %q", user.DisplayName, "Caio")
	}
	if _, err := a.Register(context.Background(), "dani@example.com", "", "correct horse"); !errors.Is(err, ErrInvalidDisplayName) {
		t.Errorf("Register() without a name = %v, want ErrInvalidDisplayName", err)
	}
}

func TestJWTManager(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	m := NewJWTManager("test-secret", time.Hour).WithClock(func() time.Time { return clock })
	user := &models.User{ID: "user-1", Email: "ana@example.com", DisplayName: "Ana"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "ana@example.com" || claims.DisplayName != "Ana" {
		t.Errorf("claims = %+v", claims)
	}

	t.Run("expired", func(t *testing.T) {
		clock = issued.Add(2 * time.Hour)
		defer func() { clock = issued }()
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour).WithClock(func() time.Time { return clock })
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
		}
	})
}
