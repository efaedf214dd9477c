// Package db
package db

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/liftchain/governance-backend/types"
)

func (m *mongoDB) FindUserByAddress(ctx context.Context, address string) (*types.User, error) {
	var result *types.User
	err := m.db.Collection(cUsers).FindOne(ctx, bson.M{"address": strings.ToLower(address)}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, types.ErrUserNotFound
		}
		return nil, err
	}
	return result, nil
}

func (m *mongoDB) UpsertUser(ctx context.Context, user *types.User) error {
	user.Address = strings.ToLower(user.Address)
	update := bson.M{
		"$set": bson.M{"name": user.Name},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID().Hex(),
			"address":   user.Address,
			"createdAt": time.Now().Unix(),
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := m.db.Collection(cUsers).UpdateOne(ctx, bson.M{"address": user.Address}, update, opts)
	return err
}
