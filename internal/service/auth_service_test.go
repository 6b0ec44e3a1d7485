package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/helpdesk-kit/query-service/internal/auth"
	"github.com/helpdesk-kit/query-service/internal/config"
	"github.com/helpdesk-kit/query-service/internal/domain"
	apperrors "github.com/helpdesk-kit/query-service/pkg/errorutil"
)

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserRepo, *fakeSessionRepo, *fakeRevoker) {
	t.Helper()

	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	revoker := newFakeRevoker()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
		},
	}
	svc := NewAuthService(cfg, AuthDependencies{
		UserRepo:    users,
		SessionRepo: sessions,
		Revoker:     revoker,
	})
	return svc, users, sessions, revoker
}

func TestRegisterNormalizesUsernameAndHashes(t *testing.T) {
	svc, users, _, _ := newTestAuthService(t)

	user, err := svc.Register(context.Background(), "  bob ", "s3cret", domain.RoleClient)
	require.NoError(t, err)

	assert.Equal(t, "BOB", user.Username)
	assert.Equal(t, domain.RoleClient, user.Role)
	assert.NotEqual(t, "s3cret", user.HashedPassword)
	assert.NoError(t, auth.ComparePassword(user.HashedPassword, "s3cret"))

	stored, err := users.GetByUsername(context.Background(), "BOB")
	require.NoError(t, err)
	assert.Equal(t, user.Username, stored.Username)
}

func TestRegisterDuplicateUsernameAcrossRoles(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), "bob", "pw", domain.RoleClient)
	require.NoError(t, err)

	// Uniqueness is global; a different role does not free the name.
	_, err = svc.Register(context.Background(), "BOB", "other", domain.RoleSupport)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateUsername))
}

func TestAuthenticateRoleIsPartOfTheLookupKey(t *testing.T) {
	svc, _, sessions, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), "sam", "pw", domain.RoleSupport)
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		role     domain.Role
		wantErr  bool
	}{
		{name: "correct triple", username: "sam", password: "pw", role: domain.RoleSupport},
		{name: "wrong role", username: "sam", password: "pw", role: domain.RoleAdmin, wantErr: true},
		{name: "wrong password", username: "sam", password: "nope", role: domain.RoleSupport, wantErr: true},
		{name: "unknown user", username: "ghost", password: "pw", role: domain.RoleSupport, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, token, expiresAt, err := svc.Authenticate(context.Background(), tt.username, tt.password, tt.role)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "SAM", user.Username)
			assert.NotEmpty(t, token)
			assert.True(t, expiresAt.After(time.Now()))
		})
	}

	// Only the successful attempt opened a ledger record.
	records, err := sessions.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "SAM", records[0].Username)
	assert.Nil(t, records[0].LogoutTime)
}

func TestAuthenticateIssuesParseableToken(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), "amy", "pw", domain.RoleAdmin)
	require.NoError(t, err)

	_, token, _, err := svc.Authenticate(context.Background(), "amy", "pw", domain.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "AMY", claims.Username)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestLogoutClosesNewestOpenSessionAndRevokesToken(t *testing.T) {
	svc, _, sessions, revoker := newTestAuthService(t)

	base := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	_, err := sessions.Open(context.Background(), "SAM", base)
	require.NoError(t, err)
	_, err = sessions.Open(context.Background(), "SAM", base.Add(time.Hour))
	require.NoError(t, err)

	logoutAt := base.Add(2 * time.Hour)
	svc.now = func() time.Time { return logoutAt }

	err = svc.Logout(context.Background(), "sam", "jti-1", logoutAt.Add(time.Hour))
	require.NoError(t, err)

	records, err := sessions.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Nil(t, records[0].LogoutTime, "older session stays open")
	require.NotNil(t, records[1].LogoutTime)
	assert.Equal(t, logoutAt, *records[1].LogoutTime)

	revoked, err := revoker.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLogoutWithoutOpenSessionIsNoop(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	err := svc.Logout(context.Background(), "nobody", "jti-2", time.Now().Add(time.Hour))
	assert.NoError(t, err)
}

func TestResetPassword(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), "bob", "old", domain.RoleClient)
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(context.Background(), "bob", "new"))

	_, _, _, err = svc.Authenticate(context.Background(), "bob", "old", domain.RoleClient)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))

	_, _, _, err = svc.Authenticate(context.Background(), "bob", "new", domain.RoleClient)
	assert.NoError(t, err)
}

func TestResetPasswordUnknownUser(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	err := svc.ResetPassword(context.Background(), "ghost", "pw")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
