package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/pribylovaa/accounts-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// identityClaims — полезная нагрузка access и refresh токенов.
// Хэш пароля в токены не попадает никогда.
type identityClaims struct {
	UserID      string `json:"uid"`
	Login       string `json:"login"`
	IsActivated bool   `json:"activated"`
	jwt.RegisteredClaims
}

// issueTokens выпускает пару подписанных токенов для identity:
// access с коротким TTL и refresh с длинным, каждый со своим секретом.
// Чистая функция от identity, секретов и текущего времени.
func (s *Service) issueTokens(identity models.Identity, now time.Time) (*models.TokenPair, error) {
	const op = "service.token.issueTokens"

	access, err := s.signToken(identity, s.cfg.AccessSecret, s.cfg.AccessTokenTTL, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refresh, err := s.signToken(identity, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}, nil
}

// signToken подписывает identity секретом secret со сроком действия ttl.
// Клейм jti делает каждый выпуск уникальным: iat/exp хранятся с точностью
// до секунды, и без jti две подписи в пределах одной секунды совпали бы
// байт в байт, из-за чего ротация refresh-токена вернула бы старое значение.
func (s *Service) signToken(identity models.Identity, secret string, ttl time.Duration, now time.Time) (string, error) {
	const op = "service.token.signToken"

	claims := identityClaims{
		UserID:      identity.ID,
		Login:       identity.Login,
		IsActivated: identity.IsActivated,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
			Subject:   identity.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// validateAccessToken проверяет подпись и срок действия access-токена.
func (s *Service) validateAccessToken(tokenStr string) (*models.Identity, error) {
	return s.validateToken(tokenStr, s.cfg.AccessSecret)
}

// validateRefreshToken проверяет подпись и срок действия refresh-токена.
func (s *Service) validateRefreshToken(tokenStr string) (*models.Identity, error) {
	return s.validateToken(tokenStr, s.cfg.RefreshSecret)
}

// validateToken разбирает токен и возвращает зашитую в него identity.
// Любой некорректный вход (пустая строка, мусор, чужая подпись) даёт
// ErrInvalidToken, истёкший срок — ErrTokenExpired; паник не бывает.
func (s *Service) validateToken(tokenStr, secret string) (*models.Identity, error) {
	const op = "service.token.validateToken"

	token, err := jwt.ParseWithClaims(tokenStr, &identityClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Issuer),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*identityClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return &models.Identity{
		ID:          claims.UserID,
		Login:       claims.Login,
		IsActivated: claims.IsActivated,
	}, nil
}
