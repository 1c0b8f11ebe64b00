// config/db.go
package config

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB establishes connection to MongoDB and ensures indexes
func ConnectDB(ctx context.Context, s *Settings, log *zap.Logger) (*mongo.Client, error) {
	if s.MongoURI == "" {
		return nil, errors.New("MONGO_URI or MONGODB_URI environment variable is required for the mongo backend")
	}

	log.Info("connecting to MongoDB", zap.String("uri", maskMongoURI(s.MongoURI)))

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.MongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	setupCollections(ctx, client.Database(s.DBName), log)
	log.Info("connected to MongoDB", zap.String("database", s.DBName))
	return client, nil
}

// setupCollections ensures the lookup indexes exist
func setupCollections(ctx context.Context, db *mongo.Database, log *zap.Logger) {
	indexes := map[string]mongo.IndexModel{
		"users": {
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		"customers": {
			Keys: bson.D{{Key: "salesmanId", Value: 1}, {Key: "saleDate", Value: -1}},
		},
	}
	for collName, model := range indexes {
		if _, err := db.Collection(collName).Indexes().CreateOne(ctx, model); err != nil {
			log.Warn("create index failed", zap.String("collection", collName), zap.Error(err))
		}
	}
	if _, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "referrerId", Value: 1}},
	}); err != nil {
		log.Warn("create referrer index failed", zap.Error(err))
	}
}

// maskMongoURI masks the password in MongoDB URI for logging
func maskMongoURI(uri string) string {
	if idx := strings.Index(uri, "@"); idx > 0 {
		if colonIdx := strings.LastIndex(uri[:idx], ":"); colonIdx > 0 && colonIdx > strings.Index(uri, "//")+1 {
			return uri[:colonIdx+1] + "***" + uri[idx:]
		}
	}
	return uri
}
