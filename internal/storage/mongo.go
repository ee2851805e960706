package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/InQaaaaGit/link_admin.git/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// MongoOptions параметры подключения к MongoDB
type MongoOptions struct {
	URI                    string
	Database               string
	Collection             string
	ServerSelectionTimeout time.Duration
	ConnectTimeout         time.Duration
	SocketTimeout          time.Duration
	HeartbeatInterval      time.Duration
}

type mongoLinkMapping struct {
	Links string `bson:"links"`
}

type mongoPreferences struct {
	LinkMappings []mongoLinkMapping `bson:"linkMappings,omitempty"`
}

type mongoUser struct {
	ID          bson.RawValue     `bson:"_id,omitempty"`
	Username    string            `bson:"username"`
	Preferences *mongoPreferences `bson:"preferences,omitempty"`
}

// MongoStorage реализует UserStorage поверх коллекции MongoDB
type MongoStorage struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *zap.Logger
}

// NewMongoStorage подключается к MongoDB и проверяет соединение.
// Повторы чтения и записи выполняет драйвер, API их не повторяет.
func NewMongoStorage(ctx context.Context, opts MongoOptions, logger *zap.Logger) (*MongoStorage, error) {
	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(opts.ServerSelectionTimeout).
		SetConnectTimeout(opts.ConnectTimeout).
		SetSocketTimeout(opts.SocketTimeout).
		SetHeartbeatInterval(opts.HeartbeatInterval).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		if disconnectErr := client.Disconnect(context.Background()); disconnectErr != nil {
			logger.Error("Failed to disconnect after ping error", zap.Error(disconnectErr))
		}
		return nil, fmt.Errorf("mongo connection check error: %w", err)
	}

	logger.Info("Connected to MongoDB",
		zap.String("database", opts.Database),
		zap.String("collection", opts.Collection))

	ms := NewMongoStorageFromCollection(client.Database(opts.Database).Collection(opts.Collection), logger)
	ms.client = client
	return ms, nil
}

// NewMongoStorageFromCollection оборачивает уже открытую коллекцию.
// Соединение остается во владении вызывающего кода.
func NewMongoStorageFromCollection(coll *mongo.Collection, logger *zap.Logger) *MongoStorage {
	return &MongoStorage{
		coll:   coll,
		logger: logger,
	}
}

// ListUsers выбирает всех пользователей, кроме exclude, с проекцией username и preferences.linkMappings
func (ms *MongoStorage) ListUsers(ctx context.Context, exclude string) ([]models.User, error) {
	filter := bson.M{"username": bson.M{"$ne": exclude}}
	projection := bson.M{"username": 1, "preferences.linkMappings": 1}

	cursor, err := ms.coll.Find(ctx, filter, options.Find().SetProjection(projection))
	if err != nil {
		return nil, fmt.Errorf("find users error: %w", err)
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			ms.logger.Error("Error closing users cursor", zap.Error(err))
		}
	}()

	var docs []mongoUser
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users error: %w", err)
	}

	users := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.toModel())
	}
	return users, nil
}

// SetLinkMappings заменяет preferences.linkMappings одним updateOne
func (ms *MongoStorage) SetLinkMappings(ctx context.Context, username string, mappings []models.LinkMapping) error {
	update := bson.M{"$set": bson.M{"preferences.linkMappings": toMongoMappings(mappings)}}

	result, err := ms.coll.UpdateOne(ctx, bson.M{"username": username}, update)
	if err != nil {
		return fmt.Errorf("update linkMappings error: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// PutUser вставляет пользователя или заменяет его preferences
func (ms *MongoStorage) PutUser(ctx context.Context, user models.User) error {
	if user.Username == "" {
		return ErrEmptyUsername
	}

	update := bson.M{"$setOnInsert": bson.M{"_id": primitive.NewObjectID()}}
	if user.Preferences != nil {
		update["$set"] = bson.M{"preferences": mongoPreferences{
			LinkMappings: toMongoMappings(user.Preferences.LinkMappings),
		}}
	}

	_, err := ms.coll.UpdateOne(ctx, bson.M{"username": user.Username}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put user error: %w", err)
	}
	return nil
}

// CheckConnection проверяет соединение с MongoDB
func (ms *MongoStorage) CheckConnection(ctx context.Context) error {
	return ms.coll.Database().Client().Ping(ctx, readpref.Primary())
}

// Close отключает клиента, если хранилище само его создало
func (ms *MongoStorage) Close() error {
	if ms.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ms.client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("mongo disconnect error: %w", err)
	}
	return nil
}

func toMongoMappings(mappings []models.LinkMapping) []mongoLinkMapping {
	result := make([]mongoLinkMapping, 0, len(mappings))
	for _, m := range mappings {
		result = append(result, mongoLinkMapping{Links: m.Links})
	}
	return result
}

func (doc mongoUser) toModel() models.User {
	user := models.User{
		ID:       formatObjectID(doc.ID),
		Username: doc.Username,
	}
	if doc.Preferences != nil {
		user.Preferences = &models.Preferences{}
		if doc.Preferences.LinkMappings != nil {
			user.Preferences.LinkMappings = make([]models.LinkMapping, 0, len(doc.Preferences.LinkMappings))
			for _, m := range doc.Preferences.LinkMappings {
				user.Preferences.LinkMappings = append(user.Preferences.LinkMappings, models.LinkMapping{Links: m.Links})
			}
		}
	}
	return user
}

func formatObjectID(raw bson.RawValue) string {
	if raw.IsZero() {
		return ""
	}
	if oid, ok := raw.ObjectIDOK(); ok {
		return oid.Hex()
	}
	if s, ok := raw.StringValueOK(); ok {
		return s
	}
	return raw.String()
}
