// Package db
package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/types"
)

func (m *mongoDB) InsertEvent(ctx context.Context, event *types.Event) error {
	if event.ID == "" {
		event.ID = primitive.NewObjectID().Hex()
	}
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().Unix()
	}
	if _, err := m.db.Collection(cEvents).InsertOne(ctx, event); err != nil {
		return err
	}
	return nil
}

func (m *mongoDB) EventsByEntity(ctx context.Context, entityType, entityID string) ([]*types.Event, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := m.db.Collection(cEvents).Find(ctx, bson.M{"entityType": entityType, "entityId": entityID}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			m.logger.Warn("Error when close cursor", zap.Error(err))
		}
	}()
	var events []*types.Event
	for cursor.Next(ctx) {
		ev := &types.Event{}
		if err := cursor.Decode(ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
