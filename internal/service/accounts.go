package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/pribylovaa/accounts-service/internal/models"
	"github.com/pribylovaa/accounts-service/internal/pkg/log"
	"github.com/pribylovaa/accounts-service/internal/pkg/redact"
	"github.com/pribylovaa/accounts-service/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterUser регистрирует нового пользователя: создаёт учётную запись
// (неактивированную), отправляет письмо активации и открывает сессию.
// Отправка письма best-effort: её сбой не откатывает регистрацию.
func (s *Service) RegisterUser(ctx context.Context, login, password string) (*models.TokenPair, *models.Identity, error) {
	const op = "service.accounts.RegisterUser"

	normLogin, err := validateLogin(login)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidLogin)
	}

	if err := validatePassword(password); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.storage.UserByLogin(ctx, normLogin)
	if err == nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrLoginTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	user := &models.User{
		Login:          normLogin,
		PasswordHash:   hashedPassword,
		IsActivated:    false,
		ActivationLink: uuid.NewString(),
	}

	created, err := s.storage.SaveUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrLoginTaken)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	s.sendActivationMail(ctx, created)

	pair, err := s.loginSession(ctx, created)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	identity := models.IdentityFromUser(created)
	return pair, &identity, nil
}

// LoginUser выполняет вход по логину и паролю.
func (s *Service) LoginUser(ctx context.Context, login, password string) (*models.TokenPair, *models.Identity, error) {
	const op = "service.accounts.LoginUser"

	normLogin := strings.ToLower(strings.TrimSpace(login))
	if normLogin == "" {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	user, err := s.storage.UserByLogin(ctx, normLogin)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.loginSession(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	identity := models.IdentityFromUser(user)
	return pair, &identity, nil
}

// Activate подтверждает адрес по одноразовой ссылке активации.
// Повторная активация уже активированной записи не является ошибкой.
func (s *Service) Activate(ctx context.Context, activationLink string) error {
	const op = "service.accounts.Activate"

	user, err := s.storage.UserByActivationLink(ctx, strings.TrimSpace(activationLink))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrInvalidActivationLink)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if user.IsActivated {
		return nil
	}

	if err := s.storage.ActivateUser(ctx, user.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrInvalidActivationLink)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Users возвращает все учётные записи.
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	const op = "service.accounts.Users"

	users, err := s.storage.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

// UserByID возвращает учётную запись по идентификатору.
func (s *Service) UserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "service.accounts.UserByID"

	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// DeleteUser безвозвратно удаляет учётную запись и возвращает удалённую
// запись. Серверный refresh-токен пользователя удаляется каскадно, чтобы
// не оставлять осиротевшую сессию.
func (s *Service) DeleteUser(ctx context.Context, id string) (*models.User, error) {
	const op = "service.accounts.DeleteUser"

	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	user, err := s.storage.DeleteUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Учётная запись уже удалена; сбой каскада не возвращаем клиенту.
	if err := s.storage.DeleteTokenByUserID(ctx, user.ID); err != nil {
		log.From(ctx).Warn("token_cascade_delete_failed",
			slog.String("op", op),
			slog.String("user_id", user.ID),
			slog.String("err", err.Error()),
		)
	}

	return user, nil
}

// sendActivationMail отправляет письмо активации в фоне.
// Запросный контекст не используется: ответ клиенту не должен ждать SMTP.
func (s *Service) sendActivationMail(ctx context.Context, user *models.User) {
	const op = "service.accounts.sendActivationMail"

	lg := log.From(ctx)

	if s.mailer == nil {
		lg.Debug("activation_mail_disabled", slog.String("op", op))
		return
	}

	activationURL := fmt.Sprintf("%s/activate/%s", strings.TrimRight(s.apiURL, "/"), user.ActivationLink)
	to := user.Login

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.mailer.SendActivationMail(sendCtx, to, activationURL); err != nil {
			lg.Warn("activation_mail_failed",
				slog.String("op", op),
				slog.String("login", redact.Login(to)),
				slog.String("err", err.Error()),
			)
		}
	}()
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.accounts.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateLogin проверяет базовый формат e-mail и обрезает пробелы снаружи.
func validateLogin(raw string) (string, error) {
	const op = "service.accounts.validateLogin"

	login := strings.TrimSpace(raw)
	if login == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidLogin)
	}

	if _, err := mail.ParseAddress(login); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidLogin)
	}

	return strings.ToLower(login), nil
}

// validatePassword проверяет ограничения длины пароля: 3–32 символа.
func validatePassword(pw string) error {
	const op = "service.accounts.validatePassword"

	if n := len([]rune(pw)); n < 3 || n > 32 {
		return fmt.Errorf("%s: %w", op, ErrInvalidPassword)
	}

	return nil
}
