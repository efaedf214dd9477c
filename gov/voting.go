// Package gov
package gov

import (
	"context"
	"math/big"

	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/types"
	"github.com/liftchain/governance-backend/utils"
)

type VoteRequest struct {
	ProposalID  string           `json:"proposalId"`
	Voter       string           `json:"voter"`
	Choice      types.VoteChoice `json:"choice"`
	VotingPower string           `json:"votingPower"`
	Reason      string           `json:"reason"`
	TxRef       string           `json:"txRef"`
	BlockNumber uint64           `json:"blockNumber"`
}

type VoteResult struct {
	Changed      bool   `json:"changed"`
	ForVotes     string `json:"forVotes"`
	AgainstVotes string `json:"againstVotes"`
	AbstainVotes string `json:"abstainVotes"`

	Finalized *FinalizeResult `json:"finalized,omitempty"`
}

// RecordVote upserts the voter's ballot and rewrites the proposal totals from
// a full re-aggregation of current ballots. A vote arriving at the period
// boundary still triggers the finalize check in the same call.
func (s *Service) RecordVote(ctx context.Context, req *VoteRequest) (*VoteResult, error) {
	lgr := s.logger.With(zap.String("method", "RecordVote"))

	if !req.Choice.Valid() {
		return nil, &types.PreconditionError{Unmet: []string{"vote choice must be FOR, AGAINST or ABSTAIN"}}
	}
	power, ok := utils.ParseAmount(req.VotingPower)
	if !ok || power.Sign() <= 0 {
		return nil, types.ErrNoVotingPower
	}

	proposal, err := s.dbClient.ProposalByID(ctx, req.ProposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != types.StatusActive {
		return nil, &types.InvalidStateError{Entity: "proposal", Current: string(proposal.Status), Expected: string(types.StatusActive)}
	}
	currentBlock, err := s.chainClient.LatestBlockNumber(ctx, proposal.ChainID)
	if err != nil {
		return nil, err
	}
	if currentBlock >= proposal.EndBlock {
		// the period just closed under this voter; settle the outcome now
		if _, err := s.FinalizeVotingIfEnded(ctx, req.ProposalID); err != nil {
			lgr.Warn("cannot finalize ended vote", zap.String("id", req.ProposalID), zap.Error(err))
		}
		return nil, types.ErrVotingEnded
	}

	ballot := &types.Ballot{
		ProposalID:  req.ProposalID,
		Voter:       req.Voter,
		Choice:      req.Choice,
		VotingPower: req.VotingPower,
		Reason:      req.Reason,
		TxRef:       req.TxRef,
		BlockNumber: req.BlockNumber,
	}
	existed, err := s.dbClient.UpsertBallot(ctx, ballot)
	if err != nil {
		return nil, err
	}
	forVotes, againstVotes, abstainVotes, err := s.retallyVotes(ctx, req.ProposalID)
	if err != nil {
		return nil, err
	}

	eventType := types.EventVoteCast
	if existed {
		eventType = types.EventVoteChanged
	}
	s.recordEvent(ctx, types.EntityProposal, req.ProposalID, eventType, map[string]interface{}{
		"voter":       req.Voter,
		"choice":      string(req.Choice),
		"votingPower": req.VotingPower,
	})

	result := &VoteResult{
		Changed:      existed,
		ForVotes:     forVotes,
		AgainstVotes: againstVotes,
		AbstainVotes: abstainVotes,
	}
	finalized, err := s.FinalizeVotingIfEnded(ctx, req.ProposalID)
	if err != nil {
		lgr.Warn("finalize check failed after vote", zap.String("id", req.ProposalID), zap.Error(err))
		return result, nil
	}
	if finalized.Ended {
		result.Finalized = finalized
	}
	return result, nil
}

// retallyVotes recomputes the three totals by grouping all current ballots by
// choice and writes them back. Full re-aggregation is deliberate: it cannot
// drift under concurrent upserts the way incremental counters do.
func (s *Service) retallyVotes(ctx context.Context, proposalID string) (string, string, string, error) {
	ballots, err := s.dbClient.BallotsByProposal(ctx, proposalID)
	if err != nil {
		return "", "", "", err
	}
	totals := map[types.VoteChoice]*big.Int{
		types.VoteFor:     new(big.Int),
		types.VoteAgainst: new(big.Int),
		types.VoteAbstain: new(big.Int),
	}
	for _, ballot := range ballots {
		power, ok := utils.ParseAmount(ballot.VotingPower)
		if !ok {
			s.logger.Warn("skipping malformed ballot power",
				zap.String("proposalId", proposalID),
				zap.String("voter", ballot.Voter))
			continue
		}
		totals[ballot.Choice].Add(totals[ballot.Choice], power)
	}
	forVotes := totals[types.VoteFor].String()
	againstVotes := totals[types.VoteAgainst].String()
	abstainVotes := totals[types.VoteAbstain].String()
	if err := s.dbClient.SetVoteTotals(ctx, proposalID, forVotes, againstVotes, abstainVotes); err != nil {
		return "", "", "", err
	}
	return forVotes, againstVotes, abstainVotes, nil
}

type QuorumResult struct {
	Met      bool    `json:"met"`
	Required string  `json:"required"`
	Actual   string  `json:"actual"`
	Percent  float64 `json:"percent"`
}

// CheckQuorum compares total vote weight against the category quorum share of
// total supply. Arithmetic stays in scaled integers; only the display percent
// is a float.
func (s *Service) CheckQuorum(ctx context.Context, proposalID string) (*QuorumResult, error) {
	proposal, err := s.dbClient.ProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	requirement, err := s.requirements.For(proposal.Category)
	if err != nil {
		return nil, err
	}
	supply := s.totalSupply(ctx, proposal.ChainID)
	return s.quorumAgainstSupply(proposal, requirement, supply), nil
}

func (s *Service) quorumAgainstSupply(proposal *types.Proposal, requirement Requirement, supply *big.Int) *QuorumResult {
	required := utils.ShareOfBps(supply, requirement.QuorumBps)
	actual := utils.SumAmounts(proposal.ForVotes, proposal.AgainstVotes, proposal.AbstainVotes)
	return &QuorumResult{
		Met:      actual.Cmp(required) >= 0,
		Required: required.String(),
		Actual:   actual.String(),
		Percent:  float64(utils.FractionBps(actual, supply)) / 100,
	}
}

// totalSupply reads the estimate from chain, degrading to the configured
// fallback on failure.
func (s *Service) totalSupply(ctx context.Context, chainID uint64) *big.Int {
	supply, err := s.chainClient.TotalSupply(ctx, chainID)
	if err != nil || supply == nil || supply.Sign() <= 0 {
		s.logger.Warn("cannot read total supply, using configured fallback",
			zap.Uint64("chainId", chainID),
			zap.Error(err))
		return s.defaultSupply
	}
	return supply
}

type FinalizeResult struct {
	Ended  bool                 `json:"ended"`
	Status types.ProposalStatus `json:"status"`

	Quorum      *QuorumResult `json:"quorum,omitempty"`
	ApprovalBps int64         `json:"approvalBps,omitempty"`
}

// FinalizeVotingIfEnded settles an ACTIVE proposal whose voting window has
// closed: quorum first, then the approval fraction with abstentions excluded
// from the denominator. The transition out of ACTIVE is compare-and-swapped,
// so concurrent finalizers settle exactly once and a repeat call is a no-op.
func (s *Service) FinalizeVotingIfEnded(ctx context.Context, proposalID string) (*FinalizeResult, error) {
	lgr := s.logger.With(zap.String("method", "FinalizeVotingIfEnded"))

	proposal, err := s.dbClient.ProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != types.StatusActive {
		return &FinalizeResult{Ended: false, Status: proposal.Status}, nil
	}
	currentBlock, err := s.chainClient.LatestBlockNumber(ctx, proposal.ChainID)
	if err != nil {
		return nil, err
	}
	if currentBlock < proposal.EndBlock {
		return &FinalizeResult{Ended: false, Status: proposal.Status}, nil
	}
	requirement, err := s.requirements.For(proposal.Category)
	if err != nil {
		return nil, err
	}

	supply := s.totalSupply(ctx, proposal.ChainID)
	quorum := s.quorumAgainstSupply(proposal, requirement, supply)

	forVotes := utils.SumAmounts(proposal.ForVotes)
	decisive := utils.SumAmounts(proposal.ForVotes, proposal.AgainstVotes)
	approvalBps := utils.FractionBps(forVotes, decisive)

	outcome := types.StatusDefeated
	if quorum.Met && decisive.Sign() > 0 && approvalBps >= requirement.ApprovalBps {
		outcome = types.StatusSucceeded
	}

	swapped, err := s.dbClient.TransitionProposal(ctx, proposalID, types.StatusActive, outcome, nil)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// another finalizer won the race; report what it decided
		proposal, err = s.dbClient.ProposalByID(ctx, proposalID)
		if err != nil {
			return nil, err
		}
		return &FinalizeResult{Ended: false, Status: proposal.Status}, nil
	}

	lgr.Info("Voting ended",
		zap.String("id", proposalID),
		zap.String("outcome", string(outcome)),
		zap.Bool("quorumMet", quorum.Met),
		zap.Int64("approvalBps", approvalBps))
	s.recordEvent(ctx, types.EntityProposal, proposalID, types.EventVotingEnded, map[string]interface{}{
		"outcome":        string(outcome),
		"forVotes":       proposal.ForVotes,
		"againstVotes":   proposal.AgainstVotes,
		"abstainVotes":   proposal.AbstainVotes,
		"quorumMet":      quorum.Met,
		"quorumRequired": quorum.Required,
		"quorumActual":   quorum.Actual,
		"approvalBps":    approvalBps,
	})

	result := &FinalizeResult{
		Ended:       true,
		Status:      outcome,
		Quorum:      quorum,
		ApprovalBps: approvalBps,
	}
	if outcome == types.StatusSucceeded {
		if _, err := s.QueueForTimelock(ctx, proposalID, requirement.TimelockHours); err != nil {
			lgr.Error("cannot queue succeeded proposal", zap.String("id", proposalID), zap.Error(err))
			return result, nil
		}
		result.Status = types.StatusQueued
	}
	return result, nil
}
