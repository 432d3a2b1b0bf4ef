package storage

import (
	"context"
	"errors"
	"time"

	"github.com/pribylovaa/accounts-service/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/токен).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (login/user_id).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над учётными записями.
type UserStorage interface {
	// SaveUser создает нового пользователя; возвращает запись с присвоенным ID.
	SaveUser(ctx context.Context, user *models.User) (*models.User, error)
	// UserByLogin находит пользователя по логину.
	UserByLogin(ctx context.Context, login string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id string) (*models.User, error)
	// UserByActivationLink находит пользователя по ссылке активации.
	UserByActivationLink(ctx context.Context, link string) (*models.User, error)
	// ActivateUser выставляет is_activated=true.
	ActivateUser(ctx context.Context, id string) error
	// Users возвращает все учётные записи.
	Users(ctx context.Context) ([]models.User, error)
	// DeleteUserByID удаляет пользователя и возвращает удалённую запись.
	DeleteUserByID(ctx context.Context, id string) (*models.User, error)
}

// TokenStorage выполняет операции над refresh-токенами.
//
// Контракт "одна запись на пользователя" обеспечивается уникальным индексом
// по user_id и upsert-семантикой UpsertToken.
type TokenStorage interface {
	// UpsertToken заменяет (или создаёт) токен пользователя.
	// Возвращает предыдущее значение токена ("" — записи не было).
	UpsertToken(ctx context.Context, userID, token string, expiresAt time.Time) (string, error)
	// TokenByValue находит запись по точному значению токена.
	TokenByValue(ctx context.Context, token string) (*models.StoredToken, error)
	// RotateToken заменяет токен пользователя при условии, что текущее
	// значение равно old (compare-and-swap). Если условие не выполнено —
	// ErrNotFound: токен уже ротирован конкурентным запросом или отозван.
	RotateToken(ctx context.Context, userID, old, next string, expiresAt time.Time) error
	// DeleteTokenByValue удаляет запись по значению токена.
	// Идемпотентна: отсутствие записи не является ошибкой, count=0.
	DeleteTokenByValue(ctx context.Context, token string) (int64, error)
	// DeleteTokenByUserID удаляет запись пользователя (каскад при удалении аккаунта).
	DeleteTokenByUserID(ctx context.Context, userID string) error
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	TokenStorage
	Close(ctx context.Context) error
}
