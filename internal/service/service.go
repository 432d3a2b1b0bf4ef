// service содержит бизнес-логику accounts-сервиса: регистрацию и вход,
// выпуск/проверку/ротацию токенов, активацию по ссылке и операции над
// учётными записями поверх интерфейсов из пакета storage.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданное хранилище (storage.Storage) потокобезопасно.
//   - Ошибки возвращаются и далее маппятся
//     транспортом на HTTP-статусы (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"github.com/pribylovaa/accounts-service/internal/cache"
	"github.com/pribylovaa/accounts-service/internal/config"
	"github.com/pribylovaa/accounts-service/internal/mail"
	"github.com/pribylovaa/accounts-service/internal/storage"
)

var (
	// ErrInvalidCredentials — пароль не подошёл к найденной учётной записи.
	// Транспорт: HTTP 400.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен (access/refresh) некорректен по формату/подписи
	// или отсутствует в хранилище (ротирован/отозван). Транспорт: HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. Транспорт: HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrLoginTaken — логин уже занят другим пользователем. Транспорт: HTTP 409.
	ErrLoginTaken = errors.New("login already taken")

	// ErrUserNotFound — учётная запись не найдена (по логину или id).
	// Транспорт: HTTP 404.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidLogin — логин имеет некорректный формат e-mail. Транспорт: HTTP 400.
	ErrInvalidLogin = errors.New("invalid login format")

	// ErrInvalidPassword — пароль не проходит ограничения длины. Транспорт: HTTP 400.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidActivationLink — нет учётной записи с такой ссылкой активации.
	// Транспорт: HTTP 400.
	ErrInvalidActivationLink = errors.New("invalid activation link")
)

// Service описывает бизнес-логику accounts-сервиса.
type Service struct {
	storage storage.Storage
	cfg     config.AuthConfig
	apiURL  string
	mailer  mail.Sender        // может быть nil, если SMTP не сконфигурирован
	rcache  cache.RefreshCache // может быть nil, если кэш не сконфигурирован
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, cfg config.AuthConfig, apiURL string) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
		apiURL:  apiURL,
	}
}

// SetMailSender устанавливает отправителя писем активации (опционально).
func (s *Service) SetMailSender(m mail.Sender) {
	s.mailer = m
}

// SetRefreshCache устанавливает кэш refresh-токенов (опционально).
func (s *Service) SetRefreshCache(c cache.RefreshCache) {
	s.rcache = c
}
