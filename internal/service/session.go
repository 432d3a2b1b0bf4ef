package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/accounts-service/internal/cache"
	"github.com/pribylovaa/accounts-service/internal/models"
	"github.com/pribylovaa/accounts-service/internal/pkg/log"
	"github.com/pribylovaa/accounts-service/internal/storage"
)

// loginSession — единственный путь выпуска сессии: им пользуются
// регистрация, вход и ротация. Выпускает пару токенов и сохраняет
// refresh в хранилище (upsert по владельцу), перезаписывая прежний.
func (s *Service) loginSession(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	const op = "service.session.loginSession"

	now := time.Now().UTC()
	identity := models.IdentityFromUser(user)

	pair, err := s.issueTokens(identity, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	expiresAt := now.Add(s.cfg.RefreshTokenTTL)
	prev, err := s.storage.UpsertToken(ctx, user.ID, pair.RefreshToken, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cacheSwap(ctx, prev, pair.RefreshToken, user.ID, expiresAt)

	return pair, nil
}

// RefreshTokens обновляет пару токенов по refresh-токену (ротация).
//
// Порядок проверок:
//  1. подпись/срок действия refresh-токена;
//  2. точное совпадение со значением в хранилище — валидная подпись сама по
//     себе не означает, что это *текущий* токен (logout или более поздняя
//     ротация делают его недействительным);
//  3. повторное чтение учётной записи — is_activated мог измениться;
//  4. compare-and-swap ротация: проигравший конкурентный refresh получает
//     ErrInvalidToken, а не молча затирает чужую свежевыпущенную пару.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, *models.Identity, error) {
	const op = "service.session.RefreshTokens"

	lg := log.From(ctx)

	if refreshToken == "" {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claimed, err := s.validateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.checkStoredToken(ctx, refreshToken); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByID(ctx, claimed.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Учётная запись удалена — сессия больше не существует.
			return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	identity := models.IdentityFromUser(user)

	pair, err := s.issueTokens(identity, now)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	expiresAt := now.Add(s.cfg.RefreshTokenTTL)
	if err := s.storage.RotateToken(ctx, user.ID, refreshToken, pair.RefreshToken, expiresAt); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("refresh_rotation_lost",
				slog.String("op", op),
				slog.String("user_id", user.ID),
			)
			return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cacheSwap(ctx, refreshToken, pair.RefreshToken, user.ID, expiresAt)

	return pair, &identity, nil
}

// Logout удаляет серверную запись refresh-токена. Отсутствующий или уже
// недействительный токен не является ошибкой: с точки зрения клиента
// выход всегда успешен. Наружу уходят только сбои хранилища.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	const op = "service.session.Logout"

	if refreshToken == "" {
		return nil
	}

	if _, err := s.storage.DeleteTokenByValue(ctx, refreshToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.cacheDelete(ctx, refreshToken)

	return nil
}

// ValidateToken проверяет access-токен и возвращает identity пользователя.
// Хранилище не затрагивается: access-токен по построению stateless.
func (s *Service) ValidateToken(ctx context.Context, accessToken string) (*models.Identity, error) {
	const op = "service.session.ValidateToken"

	identity, err := s.validateAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return identity, nil
}

// Me возвращает актуальную identity владельца refresh-токена.
// Данные перечитываются из хранилища: состояние активации могло измениться
// с момента выпуска токена. Хэш пароля наружу не попадает никогда.
func (s *Service) Me(ctx context.Context, refreshToken string) (*models.Identity, error) {
	const op = "service.session.Me"

	if refreshToken == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claimed, err := s.validateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByID(ctx, claimed.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	identity := models.IdentityFromUser(user)
	return &identity, nil
}

// checkStoredToken подтверждает, что предъявленный refresh-токен — текущий.
// Сначала кэш (положительный сигнал), затем хранилище. Ошибки кэша
// деградируют до похода в БД и не фатальны.
func (s *Service) checkStoredToken(ctx context.Context, refreshToken string) error {
	const op = "service.session.checkStoredToken"

	lg := log.From(ctx)

	if s.rcache != nil {
		entry, ok, err := s.rcache.Get(ctx, refreshToken)
		if err != nil {
			lg.Warn("refresh_cache_get_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		} else if ok && time.Now().UTC().Before(entry.ExpiresAt) {
			return nil
		}
	}

	if _, err := s.storage.TokenByValue(ctx, refreshToken); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("refresh_lookup_not_found", slog.String("op", op))
			return fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// cacheSwap инвалидирует прежний токен в кэше и сохраняет новый.
// Все операции best-effort: кэш — ускоритель, а не источник истины.
func (s *Service) cacheSwap(ctx context.Context, prev, next, userID string, expiresAt time.Time) {
	if s.rcache == nil {
		return
	}

	lg := log.From(ctx)

	if prev != "" && prev != next {
		if err := s.rcache.Delete(ctx, prev); err != nil {
			lg.Warn("refresh_cache_delete_failed", slog.String("err", err.Error()))
		}
	}

	entry := &cache.Entry{UserID: userID, ExpiresAt: expiresAt}
	if err := s.rcache.Set(ctx, next, entry, time.Until(expiresAt)); err != nil {
		lg.Warn("refresh_cache_set_failed", slog.String("err", err.Error()))
	}
}

func (s *Service) cacheDelete(ctx context.Context, token string) {
	if s.rcache == nil {
		return
	}

	if err := s.rcache.Delete(ctx, token); err != nil {
		log.From(ctx).Warn("refresh_cache_delete_failed", slog.String("err", err.Error()))
	}
}
