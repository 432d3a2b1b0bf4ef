package service

import (
	"context"
	"testing"
	"time"

	"github.com/pribylovaa/accounts-service/internal/config"
	"github.com/pribylovaa/accounts-service/internal/models"
	"github.com/pribylovaa/accounts-service/mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:    "unit-access-secret",
		RefreshSecret:   "unit-refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "accounts-service",
	}
}

func newSvc(t *testing.T) (*Service, *mocks.MockStorage, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	svc := New(st, testAuthCfg(), "http://localhost:5000")
	return svc, st, ctrl
}

func testIdentity() models.Identity {
	return models.Identity{
		ID:          uuid.NewString(),
		Login:       "user@example.com",
		IsActivated: true,
	}
}

func TestIssueTokens_AndValidate_OK(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	identity := testIdentity()
	now := time.Now().UTC()

	pair, err := svc.issueTokens(identity, now)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	require.WithinDuration(t, now.Add(testAuthCfg().AccessTokenTTL), pair.AccessExpiresAt, time.Second)

	got, err := svc.validateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, identity.ID, got.ID)
	require.Equal(t, identity.Login, got.Login)
	require.True(t, got.IsActivated)

	got, err = svc.validateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, identity.ID, got.ID)
}

// Два выпуска для одной identity в один и тот же момент времени дают разные
// токены: iat/exp усечены до секунды, и уникальность обеспечивает только jti.
// Совпадение refresh-токенов превратило бы ротацию в no-op.
func TestIssueTokens_DistinctWithinSameInstant(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	identity := testIdentity()
	now := time.Now().UTC()

	first, err := svc.issueTokens(identity, now)
	require.NoError(t, err)

	second, err := svc.issueTokens(identity, now)
	require.NoError(t, err)

	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.NotEqual(t, first.AccessToken, second.AccessToken)
}

// Access-токен не проходит проверку refresh-секретом и наоборот.
func TestValidateToken_SecretsAreNotInterchangeable(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	pair, err := svc.issueTokens(testIdentity(), time.Now().UTC())
	require.NoError(t, err)

	_, err = svc.validateRefreshToken(pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.validateAccessToken(pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.validateAccessToken(tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	// Выпуск в прошлом дальше leeway (5s).
	past := time.Now().UTC().Add(-testAuthCfg().AccessTokenTTL - time.Minute)
	pair, err := svc.issueTokens(testIdentity(), past)
	require.NoError(t, err)

	_, err = svc.validateAccessToken(pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_WrongAlg_WrongIssuer_EmptyUID(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	secret := []byte(testAuthCfg().AccessSecret)
	now := time.Now().UTC()

	baseClaims := func() jwt.MapClaims {
		return jwt.MapClaims{
			"uid":       uuid.NewString(),
			"login":     "user@example.com",
			"activated": true,
			"iss":       testAuthCfg().Issuer,
			"exp":       now.Add(15 * time.Minute).Unix(),
			"iat":       now.Unix(),
		}
	}

	t.Run("wrong alg", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, baseClaims())
		signed, err := token.SignedString(secret)
		require.NoError(t, err)

		_, err = svc.validateAccessToken(signed)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := baseClaims()
		claims["iss"] = "another-issuer"
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString(secret)
		require.NoError(t, err)

		_, err = svc.validateAccessToken(signed)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty uid", func(t *testing.T) {
		claims := baseClaims()
		claims["uid"] = ""
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString(secret)
		require.NoError(t, err)

		_, err = svc.validateAccessToken(signed)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestValidateToken_PublicWrapper(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	identity := testIdentity()
	pair, err := svc.issueTokens(identity, time.Now().UTC())
	require.NoError(t, err)

	got, err := svc.ValidateToken(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, identity.ID, got.ID)

	_, err = svc.ValidateToken(context.Background(), "bogus")
	require.ErrorIs(t, err, ErrInvalidToken)
}
