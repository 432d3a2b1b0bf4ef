package models

import "time"

// StoredToken — серверная запись refresh-токена для управления сессиями.
//
// Инвариант: на одного пользователя существует не более одной записи —
// выпуск новой пары перезаписывает предыдущий токен (ротация).
// ExpiresAt дублирует срок действия refresh-токена и обслуживает
// TTL-индекс MongoDB: просроченные записи удаляются самой БД.
type StoredToken struct {
	UserID       string
	RefreshToken string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}
