package models

import "time"

// TokenPair — пара токенов, выдаваемая при регистрации/входе/обновлении.
//
// Описание:
//   - AccessToken — короткоживущий JWT для доступа к API; сервером не хранится,
//     проверяется только по подписи и сроку действия;
//   - RefreshToken — долгоживущий JWT с отдельным секретом; его значение
//     хранится на сервере (одна запись на пользователя) и предъявляется
//     для выпуска новой пары;
//   - AccessExpiresAt — момент истечения access-токена (UTC).
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}
