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

func (m *mongoDB) InsertForward(ctx context.Context, fwd *types.LiftForward) error {
	if fwd.ID == "" {
		fwd.ID = primitive.NewObjectID().Hex()
	}
	fwd.CreatedAt = time.Now().Unix()
	if _, err := m.db.Collection(cForwards).InsertOne(ctx, fwd); err != nil {
		return err
	}
	return nil
}

func (m *mongoDB) ForwardByID(ctx context.Context, id string) (*types.LiftForward, error) {
	var result *types.LiftForward
	err := m.db.Collection(cForwards).FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, types.ErrForwardNotFound
		}
		return nil, err
	}
	return result, nil
}

func (m *mongoDB) ForwardsByProposal(ctx context.Context, proposalID string) ([]*types.LiftForward, error) {
	cursor, err := m.db.Collection(cForwards).Find(ctx, bson.M{"proposalId": proposalID})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			m.logger.Warn("Error when close cursor", zap.Error(err))
		}
	}()
	var forwards []*types.LiftForward
	for cursor.Next(ctx) {
		f := &types.LiftForward{}
		if err := cursor.Decode(f); err != nil {
			return nil, err
		}
		forwards = append(forwards, f)
	}
	return forwards, nil
}

func (m *mongoDB) TransitionForward(ctx context.Context, id string, from, to types.ForwardStatus, completedAt int64) (bool, error) {
	set := bson.M{"status": to}
	if completedAt != 0 {
		set["completedAt"] = completedAt
	}
	res, err := m.db.Collection(cForwards).UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (m *mongoDB) InsertMilestones(ctx context.Context, milestones []*types.Milestone) error {
	docs := make([]interface{}, 0, len(milestones))
	for _, ms := range milestones {
		if ms.ID == "" {
			ms.ID = primitive.NewObjectID().Hex()
		}
		docs = append(docs, ms)
	}
	if _, err := m.db.Collection(cMilestones).InsertMany(ctx, docs); err != nil {
		return err
	}
	return nil
}

func (m *mongoDB) MilestoneByID(ctx context.Context, id string) (*types.Milestone, error) {
	var result *types.Milestone
	err := m.db.Collection(cMilestones).FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, types.ErrMilestoneNotFound
		}
		return nil, err
	}
	return result, nil
}

func (m *mongoDB) MilestonesByForward(ctx context.Context, forwardID string) ([]*types.Milestone, error) {
	opts := options.Find().SetSort(bson.M{"sequence": 1})
	return m.decodeMilestones(ctx, bson.M{"forwardId": forwardID}, opts)
}

func (m *mongoDB) MilestonesByStatus(ctx context.Context, status types.MilestoneStatus) ([]*types.Milestone, error) {
	opts := options.Find().SetSort(bson.M{"deadline": 1})
	return m.decodeMilestones(ctx, bson.M{"status": status}, opts)
}

func (m *mongoDB) decodeMilestones(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*types.Milestone, error) {
	cursor, err := m.db.Collection(cMilestones).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			m.logger.Warn("Error when close cursor", zap.Error(err))
		}
	}()
	var milestones []*types.Milestone
	for cursor.Next(ctx) {
		ms := &types.Milestone{}
		if err := cursor.Decode(ms); err != nil {
			return nil, err
		}
		milestones = append(milestones, ms)
	}
	return milestones, nil
}

func (m *mongoDB) TransitionMilestone(ctx context.Context, id string, from, to types.MilestoneStatus, patch *types.MilestonePatch) (bool, error) {
	set := bson.M{"status": to}
	if patch != nil {
		if patch.EvidenceBundleRef != nil {
			set["evidenceBundleRef"] = *patch.EvidenceBundleRef
		}
		if patch.SubmittedBy != nil {
			set["submittedBy"] = *patch.SubmittedBy
		}
		if patch.SubmittedAt != nil {
			set["submittedAt"] = *patch.SubmittedAt
		}
		if patch.ChallengeWindowEnd != nil {
			set["challengeWindowEnd"] = *patch.ChallengeWindowEnd
		}
		if patch.Verifier != nil {
			set["verifier"] = *patch.Verifier
		}
		if patch.VerifierNotes != nil {
			set["verifierNotes"] = *patch.VerifierNotes
		}
		if patch.AcceptedAt != nil {
			set["acceptedAt"] = *patch.AcceptedAt
		}
	}
	res, err := m.db.Collection(cMilestones).UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (m *mongoDB) InsertChallenge(ctx context.Context, ch *types.Challenge) error {
	if ch.ID == "" {
		ch.ID = primitive.NewObjectID().Hex()
	}
	ch.CreatedAt = time.Now().Unix()
	if _, err := m.db.Collection(cChallenges).InsertOne(ctx, ch); err != nil {
		return err
	}
	return nil
}

func (m *mongoDB) ChallengeByID(ctx context.Context, id string) (*types.Challenge, error) {
	var result *types.Challenge
	err := m.db.Collection(cChallenges).FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, types.ErrChallengeNotFound
		}
		return nil, err
	}
	return result, nil
}

func (m *mongoDB) ChallengesByMilestone(ctx context.Context, milestoneID string) ([]*types.Challenge, error) {
	cursor, err := m.db.Collection(cChallenges).Find(ctx, bson.M{"milestoneId": milestoneID})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			m.logger.Warn("Error when close cursor", zap.Error(err))
		}
	}()
	var challenges []*types.Challenge
	for cursor.Next(ctx) {
		ch := &types.Challenge{}
		if err := cursor.Decode(ch); err != nil {
			return nil, err
		}
		challenges = append(challenges, ch)
	}
	return challenges, nil
}

func (m *mongoDB) CountPendingChallenges(ctx context.Context, milestoneID string) (int64, error) {
	return m.db.Collection(cChallenges).CountDocuments(ctx, bson.M{"milestoneId": milestoneID, "status": types.ChallengePending})
}

func (m *mongoDB) ResolveChallenge(ctx context.Context, id, resolver string, to types.ChallengeStatus, notes string, resolvedAt int64) (bool, error) {
	res, err := m.db.Collection(cChallenges).UpdateOne(ctx,
		bson.M{"_id": id, "status": types.ChallengePending},
		bson.M{"$set": bson.M{
			"status":     to,
			"resolver":   resolver,
			"notes":      notes,
			"resolvedAt": resolvedAt,
		}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
