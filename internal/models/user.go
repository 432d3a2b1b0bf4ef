// Package models содержит доменные сущности accounts-сервиса.
package models

import "time"

// User — учётная запись пользователя (MongoDB).
//
// Важно:
//   - ID — ObjectID MongoDB в hex-представлении; наружу/вовнутрь конвертируется в string.
//   - Login — уникальный e-mail пользователя.
//   - PasswordHash — bcrypt-хэш; никогда не сериализуется наружу (json:"-").
//   - ActivationLink — одноразовый opaque-токен подтверждения адреса (UUID).
//   - IsActivated — выставляется в true после перехода по ссылке активации.
type User struct {
	ID             string    `json:"id"`
	Login          string    `json:"login"`
	PasswordHash   string    `json:"-"`
	IsActivated    bool      `json:"isActivated"`
	ActivationLink string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
