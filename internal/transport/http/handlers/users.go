package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/accounts-service/internal/errors"
)

// Users — GET /users: список всех учётных записей.
// Хэши паролей и ссылки активации в сериализацию не попадают (json:"-").
func (h *Handlers) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// UserByID — GET /user/{id}: учётная запись по идентификатору.
func (h *Handlers) UserByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.svc.UserByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUser — DELETE /user/{id}: удаляет учётную запись и возвращает
// удалённую запись; серверный refresh-токен пользователя удаляется каскадно.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.svc.DeleteUser(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
