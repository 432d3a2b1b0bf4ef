package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pribylovaa/accounts-service/internal/models"
	"github.com/pribylovaa/accounts-service/internal/storage"
	"github.com/pribylovaa/accounts-service/mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func mustHashPW(t *testing.T, pw string) string {
	t.Helper()
	h, err := hashPassword(pw)
	require.NoError(t, err)
	return h
}

func TestRegisterUser_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	login := "User@Example.com"
	norm := "user@example.com"
	pw := "qwerty1"

	st.EXPECT().UserByLogin(gomock.Any(), norm).Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) (*models.User, error) {
			require.Equal(t, norm, u.Login)
			require.False(t, u.IsActivated)
			require.NotEmpty(t, u.ActivationLink)
			require.NotEqual(t, pw, u.PasswordHash)
			require.True(t, checkPassword(u.PasswordHash, pw))

			created := *u
			created.ID = uuid.NewString()
			return &created, nil
		})
	st.EXPECT().UpsertToken(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", nil)

	pair, identity, err := svc.RegisterUser(ctx, login, pw)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, norm, identity.Login)
	require.False(t, identity.IsActivated)

	// Пара сразу рабочая: примем доступ по access-токену без похода в БД.
	got, err := svc.ValidateToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, identity.ID, got.ID)
}

func TestRegisterUser_LoginTaken(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	login := "user@example.com"
	st.EXPECT().UserByLogin(gomock.Any(), login).
		Return(&models.User{ID: uuid.NewString(), Login: login}, nil)

	_, _, err := svc.RegisterUser(context.Background(), login, "qwerty1")
	require.ErrorIs(t, err, ErrLoginTaken)
}

// Гонка двух регистраций: предварительная проверка прошла, но вставка
// упёрлась в уникальный индекс.
func TestRegisterUser_DuplicateOnInsert(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	login := "user@example.com"
	st.EXPECT().UserByLogin(gomock.Any(), login).Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(nil, storage.ErrAlreadyExists)

	_, _, err := svc.RegisterUser(context.Background(), login, "qwerty1")
	require.ErrorIs(t, err, ErrLoginTaken)
}

func TestRegisterUser_Validation(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()

	_, _, err := svc.RegisterUser(ctx, "", "qwerty1")
	require.ErrorIs(t, err, ErrInvalidLogin)

	_, _, err = svc.RegisterUser(ctx, "not-an-email", "qwerty1")
	require.ErrorIs(t, err, ErrInvalidLogin)

	_, _, err = svc.RegisterUser(ctx, "user@example.com", "ab")
	require.ErrorIs(t, err, ErrInvalidPassword)

	long := make([]rune, 33)
	for i := range long {
		long[i] = 'x'
	}
	_, _, err = svc.RegisterUser(ctx, "user@example.com", string(long))
	require.ErrorIs(t, err, ErrInvalidPassword)
}

func TestLoginUser_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	pw := "qwerty1"
	user := testUser()
	user.PasswordHash = mustHashPW(t, pw)

	st.EXPECT().UserByLogin(gomock.Any(), user.Login).Return(user, nil)
	st.EXPECT().UpsertToken(gomock.Any(), user.ID, gomock.Any(), gomock.Any()).
		Return("prev-token", nil)

	pair, identity, err := svc.LoginUser(context.Background(), user.Login, pw)
	require.NoError(t, err)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, user.ID, identity.ID)
	require.True(t, identity.IsActivated)
}

func TestLoginUser_UnknownLogin(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByLogin(gomock.Any(), "nobody@example.com").
		Return(nil, storage.ErrNotFound)

	_, _, err := svc.LoginUser(context.Background(), "nobody@example.com", "qwerty1")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoginUser_WrongPassword(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := testUser()
	user.PasswordHash = mustHashPW(t, "correct1")

	st.EXPECT().UserByLogin(gomock.Any(), user.Login).Return(user, nil)

	_, _, err := svc.LoginUser(context.Background(), user.Login, "wrong-pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestActivate_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := testUser()
	user.IsActivated = false

	st.EXPECT().UserByActivationLink(gomock.Any(), user.ActivationLink).Return(user, nil)
	st.EXPECT().ActivateUser(gomock.Any(), user.ID).Return(nil)

	require.NoError(t, svc.Activate(context.Background(), user.ActivationLink))
}

// Повторная активация уже активированной записи — no-op без похода в Update.
func TestActivate_AlreadyActivated(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := testUser()
	user.IsActivated = true

	st.EXPECT().UserByActivationLink(gomock.Any(), user.ActivationLink).Return(user, nil)

	require.NoError(t, svc.Activate(context.Background(), user.ActivationLink))
}

func TestActivate_UnknownLink(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByActivationLink(gomock.Any(), "no-such-link").
		Return(nil, storage.ErrNotFound)

	err := svc.Activate(context.Background(), "no-such-link")
	require.ErrorIs(t, err, ErrInvalidActivationLink)
}

func TestUsers_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	want := []models.User{*testUser(), *testUser()}
	st.EXPECT().Users(gomock.Any()).Return(want, nil)

	got, err := svc.Users(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestUserByID(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := testUser()

	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil)
	got, err := svc.UserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user, got)

	st.EXPECT().UserByID(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)
	_, err = svc.UserByID(ctx, "missing")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.UserByID(ctx, "  ")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser_CascadesToken(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := testUser()
	st.EXPECT().DeleteUserByID(gomock.Any(), user.ID).Return(user, nil)
	st.EXPECT().DeleteTokenByUserID(gomock.Any(), user.ID).Return(nil)

	got, err := svc.DeleteUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

// Сбой каскада не превращает успешное удаление аккаунта в ошибку.
func TestDeleteUser_CascadeFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := testUser()
	st.EXPECT().DeleteUserByID(gomock.Any(), user.ID).Return(user, nil)
	st.EXPECT().DeleteTokenByUserID(gomock.Any(), user.ID).Return(errors.New("db down"))

	got, err := svc.DeleteUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestDeleteUser_NotFound(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().DeleteUserByID(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

	_, err := svc.DeleteUser(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}

// Письмо активации уходит в фоне и не блокирует регистрацию.
func TestRegisterUser_SendsActivationMail(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	sent := make(chan string, 1)
	sender := mocks.NewMockSender(ctrl)
	sender.EXPECT().SendActivationMail(gomock.Any(), "user@example.com", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, url string) error {
			sent <- url
			return nil
		})
	svc.SetMailSender(sender)

	st.EXPECT().UserByLogin(gomock.Any(), "user@example.com").Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) (*models.User, error) {
			created := *u
			created.ID = uuid.NewString()
			return &created, nil
		})
	st.EXPECT().UpsertToken(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", nil)

	_, _, err := svc.RegisterUser(context.Background(), "user@example.com", "qwerty1")
	require.NoError(t, err)

	select {
	case url := <-sent:
		require.Contains(t, url, "/activate/")
	case <-time.After(2 * time.Second):
		t.Fatal("activation mail was not sent")
	}
}
