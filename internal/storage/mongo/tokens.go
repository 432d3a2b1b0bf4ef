package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pribylovaa/accounts-service/internal/models"
	"github.com/pribylovaa/accounts-service/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// tokenDoc — представление refresh-токена в коллекции tokens.
type tokenDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       primitive.ObjectID `bson:"user_id"`
	RefreshToken string             `bson:"refresh_token"`
	ExpiresAt    time.Time          `bson:"expires_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d *tokenDoc) toModel() *models.StoredToken {
	return &models.StoredToken{
		UserID:       d.UserID.Hex(),
		RefreshToken: d.RefreshToken,
		ExpiresAt:    d.ExpiresAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// UpsertToken заменяет (или создаёт) refresh-токен пользователя.
// Возвращает предыдущее значение токена ("" — записи не было), чтобы
// вызывающий мог инвалидировать его в кэше.
func (m *Mongo) UpsertToken(ctx context.Context, userID, token string, expiresAt time.Time) (string, error) {
	const op = "storage/mongo/UpsertToken"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(userID))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "refresh_token", Value: token},
		{Key: "expires_at", Value: toMS(expiresAt)},
		{Key: "updated_at", Value: toMS(time.Now())},
	}}}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	var prev tokenDoc
	err = m.tokens.FindOneAndUpdate(ctx, bson.D{{Key: "user_id", Value: oid}}, update, opts).Decode(&prev)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			// Записи не было — это вставка, предыдущего значения нет.
			return "", nil
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return prev.RefreshToken, nil
}

// TokenByValue находит запись по точному значению токена.
// Нет записи -> storage.ErrNotFound.
func (m *Mongo) TokenByValue(ctx context.Context, token string) (*models.StoredToken, error) {
	const op = "storage/mongo/TokenByValue"

	if token == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc tokenDoc
	if err := m.tokens.FindOne(ctx, bson.D{{Key: "refresh_token", Value: token}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

// RotateToken заменяет токен пользователя при условии совпадения текущего
// значения с old (compare-and-swap, без upsert). Если запись не совпала —
// storage.ErrNotFound: её уже ротировал конкурентный refresh или удалил logout.
func (m *Mongo) RotateToken(ctx context.Context, userID, old, next string, expiresAt time.Time) error {
	const op = "storage/mongo/RotateToken"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(userID))
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	filter := bson.D{
		{Key: "user_id", Value: oid},
		{Key: "refresh_token", Value: old},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "refresh_token", Value: next},
		{Key: "expires_at", Value: toMS(expiresAt)},
		{Key: "updated_at", Value: toMS(time.Now())},
	}}}

	res, err := m.tokens.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeleteTokenByValue удаляет запись по значению токена.
// Идемпотентна: отсутствие записи не является ошибкой.
func (m *Mongo) DeleteTokenByValue(ctx context.Context, token string) (int64, error) {
	const op = "storage/mongo/DeleteTokenByValue"

	if token == "" {
		return 0, nil
	}

	res, err := m.tokens.DeleteOne(ctx, bson.D{{Key: "refresh_token", Value: token}})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return res.DeletedCount, nil
}

// DeleteTokenByUserID удаляет запись пользователя (каскад при удалении аккаунта).
// Отсутствие записи не является ошибкой.
func (m *Mongo) DeleteTokenByUserID(ctx context.Context, userID string) error {
	const op = "storage/mongo/DeleteTokenByUserID"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(userID))
	if err != nil {
		return nil
	}

	if _, err := m.tokens.DeleteOne(ctx, bson.D{{Key: "user_id", Value: oid}}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
