package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pribylovaa/accounts-service/internal/models"
	"github.com/pribylovaa/accounts-service/internal/service"
)

// refreshCookie — имя http-only cookie с refresh-токеном.
const refreshCookie = "refreshToken"

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	svc        *service.Service
	refreshTTL time.Duration
	clientURL  string
}

// New создаёт Handlers поверх сервисного слоя.
// refreshTTL задаёт срок жизни refresh-cookie, clientURL — адрес редиректа
// после активации.
func New(svc *service.Service, refreshTTL time.Duration, clientURL string) *Handlers {
	return &Handlers{
		svc:        svc,
		refreshTTL: refreshTTL,
		clientURL:  clientURL,
	}
}

// authResponse — тело ответа signup/signin/refresh (форма исторического API).
type authResponse struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         models.Identity `json:"user"`
}

func newAuthResponse(pair *models.TokenPair, identity *models.Identity) authResponse {
	return authResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         *identity,
	}
}

// setRefreshCookie выставляет http-only cookie с refresh-токеном.
func (h *Handlers) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearRefreshCookie сбрасывает cookie при выходе.
func (h *Handlers) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// refreshFromCookie возвращает refresh-токен из cookie ("" — cookie нет).
func refreshFromCookie(r *http.Request) string {
	c, err := r.Cookie(refreshCookie)
	if err != nil {
		return ""
	}

	return c.Value
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}
