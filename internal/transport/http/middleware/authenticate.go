package middleware

import (
	"context"
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/accounts-service/internal/errors"
	"github.com/pribylovaa/accounts-service/internal/models"
	"github.com/pribylovaa/accounts-service/internal/service"
)

// TokenValidator — контракт проверки access-токена; реализуется сервисным слоем.
type TokenValidator interface {
	ValidateToken(ctx context.Context, accessToken string) (*models.Identity, error)
}

type identityKey struct{}

// IdentityFrom достаёт identity аутентифицированного пользователя из контекста.
func IdentityFrom(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*models.Identity)
	return identity, ok
}

// Authenticate — гейт перед защищёнными маршрутами.
//
// Контракт: достаёт credential из "Authorization: Bearer <token>" и проверяет
// его как access-токен. Отсутствующий заголовок, не-Bearer схема или
// невалидный/просроченный токен -> 401. При успехе identity кладётся в
// контекст запроса (см. IdentityFrom).
//
// Хранилище не затрагивается: access-токены stateless, мгновенный отзыв
// сознательно разменян на отсутствие похода в БД на каждый запрос.
func Authenticate(v TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				apierrors.WriteError(w, r, service.ErrInvalidToken)
				return
			}

			identity, err := v.ValidateToken(r.Context(), token)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken извлекает токен из Authorization; false — заголовка нет
// или он не соответствует форме "Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}

	token := strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return "", false
	}

	return token, true
}
