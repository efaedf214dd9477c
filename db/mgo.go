// Package db
package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	cProposals    = "Proposals"
	cSponsorships = "Sponsorships"
	cBallots      = "Ballots"
	cForwards     = "Forwards"
	cMilestones   = "Milestones"
	cChallenges   = "Challenges"
	cEvents       = "Events"
	cUsers        = "Users"
)

type mongoDB struct {
	logger *zap.Logger
	db     *mongo.Database
}

func newMongoDB(cfg Config) (*mongoDB, error) {
	ctx := context.Background()
	mgoOptions := options.Client()
	mgoOptions.ApplyURI(cfg.URL)
	mgoOptions.SetMinPoolSize(uint64(cfg.MinConn))
	mgoOptions.SetMaxPoolSize(uint64(cfg.MaxConn))
	mgoClient, err := mongo.NewClient(mgoOptions)
	if err != nil {
		return nil, err
	}
	if err := mgoClient.Connect(ctx); err != nil {
		return nil, err
	}

	dbClient := &mongoDB{
		logger: cfg.Logger,
		db:     mgoClient.Database(cfg.DbName),
	}
	if cfg.FlushDB {
		cfg.Logger.Info("Start flush database")
		if err := dbClient.db.Drop(ctx); err != nil {
			return nil, err
		}
	}
	_ = createIndexes(ctx, dbClient)

	return dbClient, nil
}

func createIndexes(ctx context.Context, dbClient *mongoDB) error {
	type CIndex struct {
		c     string
		model []mongo.IndexModel
	}

	indexes := []CIndex{
		{c: cProposals, model: []mongo.IndexModel{{Keys: bson.M{"status": 1}, Options: options.Index().SetSparse(true)}}},
		{c: cProposals, model: []mongo.IndexModel{{Keys: bson.D{{Key: "chainId", Value: 1}, {Key: "category", Value: 1}}, Options: options.Index().SetSparse(true)}}},
		{c: cProposals, model: []mongo.IndexModel{{Keys: bson.D{{Key: "status", Value: 1}, {Key: "timelockEta", Value: 1}}, Options: options.Index().SetSparse(true)}}},
		// one sponsorship per (proposal, sponsor)
		{c: cSponsorships, model: []mongo.IndexModel{{Keys: bson.D{{Key: "proposalId", Value: 1}, {Key: "sponsor", Value: 1}}, Options: options.Index().SetUnique(true)}}},
		// one ballot row per (proposal, voter); repeat votes replace in place
		{c: cBallots, model: []mongo.IndexModel{{Keys: bson.D{{Key: "proposalId", Value: 1}, {Key: "voter", Value: 1}}, Options: options.Index().SetUnique(true)}}},
		{c: cForwards, model: []mongo.IndexModel{{Keys: bson.M{"proposalId": 1}, Options: options.Index().SetSparse(true)}}},
		{c: cMilestones, model: []mongo.IndexModel{{Keys: bson.D{{Key: "forwardId", Value: 1}, {Key: "sequence", Value: 1}}, Options: options.Index().SetSparse(true)}}},
		{c: cMilestones, model: []mongo.IndexModel{{Keys: bson.D{{Key: "status", Value: 1}, {Key: "deadline", Value: 1}}, Options: options.Index().SetSparse(true)}}},
		{c: cChallenges, model: []mongo.IndexModel{{Keys: bson.D{{Key: "milestoneId", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetSparse(true)}}},
		{c: cEvents, model: []mongo.IndexModel{{Keys: bson.D{{Key: "entityType", Value: 1}, {Key: "entityId", Value: 1}, {Key: "createdAt", Value: 1}}, Options: options.Index().SetSparse(true)}}},
		{c: cUsers, model: []mongo.IndexModel{{Keys: bson.M{"address": 1}, Options: options.Index().SetUnique(true)}}},
	}
	for _, cIdx := range indexes {
		if _, err := dbClient.db.Collection(cIdx.c).Indexes().CreateMany(ctx, cIdx.model); err != nil {
			dbClient.logger.Warn("cannot create index", zap.String("collection", cIdx.c), zap.Error(err))
			return err
		}
	}
	return nil
}

// isDupKey reports whether err is a unique-index violation.
func isDupKey(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}
