package auth

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"blogicum/config"
	"blogicum/internal/database"

	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.DSN = filepath.Join(t.TempDir(), "test.db")
	cfg.Session.Expiration = time.Hour
	config.AppConfig = cfg

	require.NoError(t, database.InitDB(cfg))
	t.Cleanup(func() { database.DB.Close() })
}

func TestValidateUserCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		username string
		password string
		wantErr  bool
	}{
		{"valid", "user@example.com", "alice", "secret1", false},
		{"valid cyrillic username", "user@example.com", "алиса", "secret1", false},
		{"bad email", "not-an-email", "alice", "secret1", true},
		{"short username", "user@example.com", "ab", "secret1", true},
		{"username with spaces", "user@example.com", "a b c", "secret1", true},
		{"short password", "user@example.com", "alice", "12345", true},
		{"long password", "user@example.com", "alice", strings.Repeat("x", 40), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUserCredentials(tt.email, tt.username, tt.password)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRegisterUser(t *testing.T) {
	setupTestDB(t)

	user, err := RegisterUser("alice@example.com", "alice", "secret1")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "alice", user.Username)

	_, err = RegisterUser("alice@example.com", "other", "secret1")
	require.True(t, errors.Is(err, ErrEmailExists))

	_, err = RegisterUser("other@example.com", "alice", "secret1")
	require.True(t, errors.Is(err, ErrUsernameExists))

	// Имя пользователя уникально без учета регистра
	_, err = RegisterUser("third@example.com", "ALICE", "secret1")
	require.True(t, errors.Is(err, ErrUsernameExists))
}

func TestLoginSessionRoundTrip(t *testing.T) {
	setupTestDB(t)

	_, err := RegisterUser("alice@example.com", "alice", "secret1")
	require.NoError(t, err)

	_, _, err = LoginUser("alice", "wrong-password")
	require.True(t, errors.Is(err, ErrInvalidPassword))

	_, _, err = LoginUser("nobody", "secret1")
	require.True(t, errors.Is(err, ErrUserNotFound))

	// Вход по имени пользователя
	user, session, err := LoginUser("alice", "secret1")
	require.NoError(t, err)
	require.Equal(t, user.ID, session.UserID)

	got, err := GetUserBySession(session.UUID)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, "alice", got.Username)

	// Повторный вход по email инвалидирует старую сессию
	_, second, err := LoginUser("alice@example.com", "secret1")
	require.NoError(t, err)
	_, err = GetUserBySession(session.UUID)
	require.True(t, errors.Is(err, ErrSessionNotFound))

	require.NoError(t, LogoutUser(second.UUID))
	_, err = GetUserBySession(second.UUID)
	require.True(t, errors.Is(err, ErrSessionNotFound))

	require.True(t, errors.Is(LogoutUser(second.UUID), ErrSessionNotFound))
}
