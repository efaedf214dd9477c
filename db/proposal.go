// Package db
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/types"
)

func (m *mongoDB) InsertProposal(ctx context.Context, proposal *types.Proposal) error {
	if proposal.ID == "" {
		proposal.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().Unix()
	proposal.CreatedAt = now
	proposal.UpdateTime = now
	if _, err := m.db.Collection(cProposals).InsertOne(ctx, proposal); err != nil {
		return err
	}
	return nil
}

func (m *mongoDB) ProposalByID(ctx context.Context, id string) (*types.Proposal, error) {
	var result *types.Proposal
	err := m.db.Collection(cProposals).FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, types.ErrProposalNotFound
		}
		return nil, err
	}
	return result, nil
}

func (m *mongoDB) Proposals(ctx context.Context, filter *types.ProposalsFilter) ([]*types.Proposal, uint64, error) {
	var (
		opts      []*options.FindOptions
		proposals []*types.Proposal
	)
	crit := bson.M{}
	if filter != nil {
		if filter.ChainID != 0 {
			crit["chainId"] = filter.ChainID
		}
		if filter.Status != "" {
			crit["status"] = filter.Status
		}
		if filter.Category != "" {
			crit["category"] = filter.Category
		}
		if filter.Proposer != "" {
			crit["proposer"] = filter.Proposer
		}
		if filter.Pagination != nil {
			opts = []*options.FindOptions{
				options.Find().SetSort(bson.M{"createdAt": -1}),
				options.Find().SetSkip(int64(filter.Pagination.Skip)),
				options.Find().SetLimit(int64(filter.Pagination.Limit)),
			}
		}
	}
	cursor, err := m.db.Collection(cProposals).Find(ctx, crit, opts...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get list proposals: %v", err)
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			m.logger.Warn("Error when close cursor", zap.Error(err))
		}
	}()
	for cursor.Next(ctx) {
		proposal := &types.Proposal{}
		if err := cursor.Decode(proposal); err != nil {
			return nil, 0, err
		}
		proposals = append(proposals, proposal)
	}
	total, err := m.db.Collection(cProposals).CountDocuments(ctx, crit)
	if err != nil {
		return nil, 0, err
	}
	return proposals, uint64(total), nil
}

func (m *mongoDB) TransitionProposal(ctx context.Context, id string, from, to types.ProposalStatus, patch *types.ProposalPatch) (bool, error) {
	set := bson.M{
		"status":     to,
		"updateTime": time.Now().Unix(),
	}
	if patch != nil {
		if patch.SnapshotBlock != nil {
			set["snapshotBlock"] = *patch.SnapshotBlock
		}
		if patch.StartBlock != nil {
			set["startBlock"] = *patch.StartBlock
		}
		if patch.EndBlock != nil {
			set["endBlock"] = *patch.EndBlock
		}
		if patch.TimelockEta != nil {
			set["timelockEta"] = *patch.TimelockEta
		}
		if patch.TimelockDelay != nil {
			set["timelockDelay"] = *patch.TimelockDelay
		}
		if patch.ExecutedTxRef != nil {
			set["executedTxRef"] = *patch.ExecutedTxRef
		}
		if patch.CancelReason != nil {
			set["cancelReason"] = *patch.CancelReason
		}
		if patch.DepositRefunded != nil {
			set["depositRefunded"] = *patch.DepositRefunded
		}
	}
	res, err := m.db.Collection(cProposals).UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (m *mongoDB) MarkDepositPaid(ctx context.Context, id, amount, txRef string) (bool, error) {
	res, err := m.db.Collection(cProposals).UpdateOne(ctx,
		bson.M{"_id": id, "depositPaid": false},
		bson.M{"$set": bson.M{
			"depositPaid":   true,
			"depositAmount": amount,
			"depositTxRef":  txRef,
			"updateTime":    time.Now().Unix(),
		}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (m *mongoDB) MarkDepositRefunded(ctx context.Context, id string) (bool, error) {
	res, err := m.db.Collection(cProposals).UpdateOne(ctx,
		bson.M{"_id": id, "depositPaid": true, "depositRefunded": false},
		bson.M{"$set": bson.M{"depositRefunded": true, "updateTime": time.Now().Unix()}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (m *mongoDB) SetVoteTotals(ctx context.Context, id, forVotes, againstVotes, abstainVotes string) error {
	_, err := m.db.Collection(cProposals).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"forVotes":     forVotes,
			"againstVotes": againstVotes,
			"abstainVotes": abstainVotes,
			"updateTime":   time.Now().Unix(),
		}})
	return err
}

func (m *mongoDB) QueuedProposalsByEta(ctx context.Context) ([]*types.Proposal, error) {
	opts := options.Find().SetSort(bson.M{"timelockEta": 1})
	cursor, err := m.db.Collection(cProposals).Find(ctx, bson.M{"status": types.StatusQueued}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			m.logger.Warn("Error when close cursor", zap.Error(err))
		}
	}()
	var proposals []*types.Proposal
	for cursor.Next(ctx) {
		proposal := &types.Proposal{}
		if err := cursor.Decode(proposal); err != nil {
			return nil, err
		}
		proposals = append(proposals, proposal)
	}
	return proposals, nil
}
