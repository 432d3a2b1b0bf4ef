package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/accounts-service/internal/errors"
)

// credentialsRequest — тело запросов signup/signin.
type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// SignUp — POST /signup: регистрация нового пользователя.
// Успех: пара токенов + identity, refresh-токен дублируется в http-only cookie.
func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	pair, identity, err := h.svc.RegisterUser(r.Context(), in.Login, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, newAuthResponse(pair, identity))
}

// SignIn — POST /signin: вход по логину и паролю.
func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	pair, identity, err := h.svc.LoginUser(r.Context(), in.Login, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, newAuthResponse(pair, identity))
}

// LogOut — POST /logout: удаляет серверную запись refresh-токена и
// сбрасывает cookie. Для клиента операция всегда успешна, в том числе
// без cookie или с уже недействительным токеном.
func (h *Handlers) LogOut(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), refreshFromCookie(r)); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Refresh — GET /refresh: ротация пары токенов по refresh-cookie.
// Предыдущий refresh-токен после успешного ответа недействителен.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	pair, identity, err := h.svc.RefreshTokens(r.Context(), refreshFromCookie(r))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, newAuthResponse(pair, identity))
}

// Me — GET /me: сводка по владельцу refresh-cookie.
// Маршрут дополнительно закрыт гейтом по access-токену; тело ответа
// не содержит ничего, кроме публичных полей identity.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := h.svc.Me(r.Context(), refreshFromCookie(r))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, identity)
}

// Activate — GET /activate/{link}: активация учётной записи с редиректом
// на клиентское приложение.
func (h *Handlers) Activate(w http.ResponseWriter, r *http.Request) {
	link := chi.URLParam(r, "link")

	if err := h.svc.Activate(r.Context(), link); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	http.Redirect(w, r, h.clientURL, http.StatusFound)
}
