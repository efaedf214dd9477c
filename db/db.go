// Package db
package db

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/types"
)

type Adapter string

const (
	MGO Adapter = "mgo"
)

type Config struct {
	DbAdapter Adapter
	DbName    string
	URL       string
	MinConn   int
	MaxConn   int
	FlushDB   bool

	Logger *zap.Logger
}

type IProposal interface {
	InsertProposal(ctx context.Context, proposal *types.Proposal) error
	ProposalByID(ctx context.Context, id string) (*types.Proposal, error)
	Proposals(ctx context.Context, filter *types.ProposalsFilter) ([]*types.Proposal, uint64, error)

	// TransitionProposal performs a compare-and-swap status write: the update
	// applies only while the stored status still equals from. Returns false
	// when another writer got there first.
	TransitionProposal(ctx context.Context, id string, from, to types.ProposalStatus, patch *types.ProposalPatch) (bool, error)

	// MarkDepositPaid succeeds once per proposal; a second call returns false.
	MarkDepositPaid(ctx context.Context, id, amount, txRef string) (bool, error)
	MarkDepositRefunded(ctx context.Context, id string) (bool, error)

	SetVoteTotals(ctx context.Context, id, forVotes, againstVotes, abstainVotes string) error
	QueuedProposalsByEta(ctx context.Context) ([]*types.Proposal, error)
}

type ISponsorship interface {
	// InsertSponsorship returns types.ErrAlreadySponsored when the
	// (proposalId, sponsor) unique key already exists.
	InsertSponsorship(ctx context.Context, sp *types.Sponsorship) error
	CountSponsorships(ctx context.Context, proposalID string) (int64, error)
	Sponsorships(ctx context.Context, proposalID string) ([]*types.Sponsorship, error)
}

type IBallot interface {
	// UpsertBallot replaces the voter's ballot under the (proposalId, voter)
	// unique key. Returns whether a prior ballot existed.
	UpsertBallot(ctx context.Context, ballot *types.Ballot) (bool, error)
	BallotsByProposal(ctx context.Context, proposalID string) ([]*types.Ballot, error)
}

type IForward interface {
	InsertForward(ctx context.Context, fwd *types.LiftForward) error
	ForwardByID(ctx context.Context, id string) (*types.LiftForward, error)
	ForwardsByProposal(ctx context.Context, proposalID string) ([]*types.LiftForward, error)
	TransitionForward(ctx context.Context, id string, from, to types.ForwardStatus, completedAt int64) (bool, error)

	InsertMilestones(ctx context.Context, milestones []*types.Milestone) error
	MilestoneByID(ctx context.Context, id string) (*types.Milestone, error)
	MilestonesByForward(ctx context.Context, forwardID string) ([]*types.Milestone, error)
	MilestonesByStatus(ctx context.Context, status types.MilestoneStatus) ([]*types.Milestone, error)
	TransitionMilestone(ctx context.Context, id string, from, to types.MilestoneStatus, patch *types.MilestonePatch) (bool, error)

	InsertChallenge(ctx context.Context, ch *types.Challenge) error
	ChallengeByID(ctx context.Context, id string) (*types.Challenge, error)
	ChallengesByMilestone(ctx context.Context, milestoneID string) ([]*types.Challenge, error)
	CountPendingChallenges(ctx context.Context, milestoneID string) (int64, error)
	ResolveChallenge(ctx context.Context, id, resolver string, to types.ChallengeStatus, notes string, resolvedAt int64) (bool, error)
}

type IEvent interface {
	InsertEvent(ctx context.Context, event *types.Event) error
	EventsByEntity(ctx context.Context, entityType, entityID string) ([]*types.Event, error)
}

type IUser interface {
	FindUserByAddress(ctx context.Context, address string) (*types.User, error)
	UpsertUser(ctx context.Context, user *types.User) error
}

type Client interface {
	IProposal
	ISponsorship
	IBallot
	IForward
	IEvent
	IUser
}

func NewClient(cfg Config) (Client, error) {
	switch cfg.DbAdapter {
	case MGO:
		return newMongoDB(cfg)
	default:
		return nil, errors.New("invalid db config")
	}
}
