package models

// Identity — минимальный набор данных о пользователе, зашиваемый в токены.
//
// Никогда не содержит хэш пароля: структура строится только из публичных
// полей учётной записи и после создания не изменяется.
type Identity struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	IsActivated bool   `json:"isActivated"`
}

// IdentityFromUser строит Identity из учётной записи.
func IdentityFromUser(u *User) Identity {
	return Identity{
		ID:          u.ID,
		Login:       u.Login,
		IsActivated: u.IsActivated,
	}
}
