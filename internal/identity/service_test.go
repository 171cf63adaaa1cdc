package identity

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	pkgauth "github.com/brewhaven/brewhaven-backend/pkg/auth"
	"github.com/brewhaven/brewhaven-backend/pkg/auth/session"
	"github.com/brewhaven/brewhaven-backend/pkg/config"
	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
)

const usersDDL = `
CREATE TABLE users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	full_name TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'shopper',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	last_login_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:identity_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(usersDDL).Error)
	return conn
}

// fakeSessionManager mirrors the redis-backed manager without the network.
type fakeSessionManager struct {
	mu       sync.Mutex
	sessions map[string]string
	revoked  []string
}

func newFakeSessionManager() *fakeSessionManager {
	return &fakeSessionManager{sessions: map[string]string{}}
}

func (f *fakeSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := "refresh-" + uuid.NewString()
	f.sessions[accessID] = token
	return token, nil
}

func (f *fakeSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.sessions[oldAccessID]
	if !ok || current != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.sessions, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + uuid.NewString()
	f.sessions[newID] = token
	return newID, token, nil
}

func (f *fakeSessionManager) Revoke(_ context.Context, accessID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, accessID)
	f.revoked = append(f.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test-1234",
		Issuer:            "brewhaven",
		ExpirationMinutes: 15,
	}
}

func testPasswordConfig() config.PasswordConfig {
	// Small parameters keep the hashing fast under test.
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T) (Service, *Repository, *fakeSessionManager) {
	t.Helper()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	sessions := newFakeSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)
	return svc, repo, sessions
}

func TestRegisterAndLogin(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{
		Email:    "  Maya@Example.COM ",
		Password: "espresso-shots",
		FullName: " Maya Chen ",
	})
	require.NoError(t, err)
	assert.Equal(t, "maya@example.com", resp.User.Email)
	assert.Equal(t, "Maya Chen", resp.User.FullName)
	assert.Equal(t, "shopper", resp.User.Role.String())
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.NotEmpty(t, claims.ID)

	login, err := svc.Login(ctx, LoginRequest{Email: "MAYA@example.com", Password: "espresso-shots"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	stored, err := repo.FindByID(ctx, resp.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
	assert.WithinDuration(t, time.Now().UTC(), *stored.LastLoginAt, 5*time.Second)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "espresso-shots", FullName: "Maya"}},
		{"short password", RegisterRequest{Email: "maya@example.com", Password: "short", FullName: "Maya"}},
		{"blank name", RegisterRequest{Email: "maya@example.com", Password: "espresso-shots", FullName: "  "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.req)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	req := RegisterRequest{Email: "maya@example.com", Password: "espresso-shots", FullName: "Maya"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{
		Email:    "maya@example.com",
		Password: "espresso-shots",
		FullName: "Maya",
	})
	require.NoError(t, err)

	for name, req := range map[string]LoginRequest{
		"wrong password": {Email: "maya@example.com", Password: "wrong-password"},
		"unknown email":  {Email: "nobody@example.com", Password: "espresso-shots"},
		"blank email":    {Email: "  ", Password: "espresso-shots"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(ctx, req)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
			assert.Equal(t, "invalid credentials", typed.Message())
		})
	}

	// Deactivated accounts get the same answer as a wrong password.
	err = repo.db.Exec("UPDATE users SET is_active = FALSE WHERE id = ?", resp.User.ID).Error
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "maya@example.com", Password: "espresso-shots"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
	assert.Equal(t, "invalid credentials", typed.Message())
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{
		Email:    "maya@example.com",
		Password: "espresso-shots",
		FullName: "Maya",
	})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, resp.AccessToken, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)
	assert.NotEqual(t, resp.AccessToken, rotated.AccessToken)
	assert.Equal(t, resp.User.ID, rotated.User.ID)

	// The consumed pair no longer works.
	_, err = svc.Refresh(ctx, resp.AccessToken, resp.RefreshToken)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())

	// One live session remains after the rotation.
	sessions.mu.Lock()
	assert.Len(t, sessions.sessions, 1)
	sessions.mu.Unlock()
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Refresh(context.Background(), "not-a-jwt", "whatever")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{
		Email:    "maya@example.com",
		Password: "espresso-shots",
		FullName: "Maya",
	})
	require.NoError(t, err)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims.ID))
	assert.Contains(t, sessions.revoked, claims.ID)

	err = svc.Logout(ctx, "  ")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{
		Email:    "maya@example.com",
		Password: "espresso-shots",
		FullName: "Maya",
	})
	require.NoError(t, err)

	view, err := svc.Profile(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "maya@example.com", view.Email)
	assert.Equal(t, "Maya", view.FullName)

	_, err = svc.Profile(ctx, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCountUsers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Register(ctx, RegisterRequest{
			Email:    fmt.Sprintf("shopper%d@example.com", i),
			Password: "espresso-shots",
			FullName: "Shopper",
		})
		require.NoError(t, err)
	}

	count, err := svc.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
