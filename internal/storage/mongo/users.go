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

// userDoc — представление учётной записи в коллекции users.
// Доменная модель не несёт bson-тегов, поэтому маппинг выполняется здесь.
type userDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Login          string             `bson:"login"`
	PasswordHash   string             `bson:"password_hash"`
	IsActivated    bool               `bson:"is_activated"`
	ActivationLink string             `bson:"activation_link"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func (d *userDoc) toModel() *models.User {
	return &models.User{
		ID:             d.ID.Hex(),
		Login:          d.Login,
		PasswordHash:   d.PasswordHash,
		IsActivated:    d.IsActivated,
		ActivationLink: d.ActivationLink,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

// toMS — MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

// SaveUser создаёт нового пользователя. Конфликт по login -> storage.ErrAlreadyExists.
func (m *Mongo) SaveUser(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "storage/mongo/SaveUser"

	now := toMS(time.Now())
	doc := userDoc{
		Login:          user.Login,
		PasswordHash:   user.PasswordHash,
		IsActivated:    user.IsActivated,
		ActivationLink: user.ActivationLink,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	res, err := m.users.InsertOne(ctx, doc)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		// Mongo всегда возвращает ObjectID.
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	doc.ID = oid
	return doc.toModel(), nil
}

// UserByLogin возвращает пользователя по логину. Нет записи -> storage.ErrNotFound.
func (m *Mongo) UserByLogin(ctx context.Context, login string) (*models.User, error) {
	const op = "storage/mongo/UserByLogin"

	var doc userDoc
	if err := m.users.FindOne(ctx, bson.D{{Key: "login", Value: login}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

// UserByID возвращает пользователя по идентификатору.
// Некорректный формат id трактуется как «нет такой записи».
func (m *Mongo) UserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage/mongo/UserByID"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc userDoc
	if err := m.users.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

// UserByActivationLink возвращает пользователя по ссылке активации.
func (m *Mongo) UserByActivationLink(ctx context.Context, link string) (*models.User, error) {
	const op = "storage/mongo/UserByActivationLink"

	link = strings.TrimSpace(link)
	if link == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc userDoc
	if err := m.users.FindOne(ctx, bson.D{{Key: "activation_link", Value: link}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

// ActivateUser выставляет is_activated=true. Нет записи -> storage.ErrNotFound.
func (m *Mongo) ActivateUser(ctx context.Context, id string) error {
	const op = "storage/mongo/ActivateUser"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	res, err := m.users.UpdateByID(ctx, oid, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "is_activated", Value: true},
			{Key: "updated_at", Value: toMS(time.Now())},
		}},
	})

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// Users возвращает все учётные записи, отсортированные по дате создания.
func (m *Mongo) Users(ctx context.Context) ([]models.User, error) {
	const op = "storage/mongo/Users"

	cur, err := m.users.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = cur.Close(ctx) }()

	out := make([]models.User, 0)
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		out = append(out, *doc.toModel())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return out, nil
}

// DeleteUserByID удаляет пользователя и возвращает удалённую запись.
// Нет записи -> storage.ErrNotFound.
func (m *Mongo) DeleteUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage/mongo/DeleteUserByID"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc userDoc
	if err := m.users.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}
