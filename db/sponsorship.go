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

func (m *mongoDB) InsertSponsorship(ctx context.Context, sp *types.Sponsorship) error {
	if sp.ID == "" {
		sp.ID = primitive.NewObjectID().Hex()
	}
	sp.CreatedAt = time.Now().Unix()
	if _, err := m.db.Collection(cSponsorships).InsertOne(ctx, sp); err != nil {
		if isDupKey(err) {
			return types.ErrAlreadySponsored
		}
		return err
	}
	return nil
}

func (m *mongoDB) CountSponsorships(ctx context.Context, proposalID string) (int64, error) {
	return m.db.Collection(cSponsorships).CountDocuments(ctx, bson.M{"proposalId": proposalID})
}

func (m *mongoDB) Sponsorships(ctx context.Context, proposalID string) ([]*types.Sponsorship, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := m.db.Collection(cSponsorships).Find(ctx, bson.M{"proposalId": proposalID}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			m.logger.Warn("Error when close cursor", zap.Error(err))
		}
	}()
	var sponsorships []*types.Sponsorship
	for cursor.Next(ctx) {
		sp := &types.Sponsorship{}
		if err := cursor.Decode(sp); err != nil {
			return nil, err
		}
		sponsorships = append(sponsorships, sp)
	}
	return sponsorships, nil
}
