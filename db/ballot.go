// Package db
package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/types"
)

func (m *mongoDB) UpsertBallot(ctx context.Context, ballot *types.Ballot) (bool, error) {
	filter := bson.M{"proposalId": ballot.ProposalID, "voter": ballot.Voter}
	update := bson.M{
		"$set": bson.M{
			"choice":      ballot.Choice,
			"votingPower": ballot.VotingPower,
			"reason":      ballot.Reason,
			"txRef":       ballot.TxRef,
			"blockNumber": ballot.BlockNumber,
			"createdAt":   time.Now().Unix(),
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID().Hex(),
			"proposalId": ballot.ProposalID,
			"voter":      ballot.Voter,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before)
	var prev types.Ballot
	err := m.db.Collection(cBallots).FindOneAndUpdate(ctx, filter, update, opts).Decode(&prev)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *mongoDB) BallotsByProposal(ctx context.Context, proposalID string) ([]*types.Ballot, error) {
	cursor, err := m.db.Collection(cBallots).Find(ctx, bson.M{"proposalId": proposalID})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			m.logger.Warn("Error when close cursor", zap.Error(err))
		}
	}()
	var ballots []*types.Ballot
	for cursor.Next(ctx) {
		b := &types.Ballot{}
		if err := cursor.Decode(b); err != nil {
			return nil, err
		}
		ballots = append(ballots, b)
	}
	return ballots, nil
}
