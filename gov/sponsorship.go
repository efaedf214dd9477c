// Package gov
package gov

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/types"
)

type SponsorshipResult struct {
	ThresholdMet bool  `json:"thresholdMet"`
	Current      int64 `json:"current"`
	Required     int64 `json:"required"`
}

// SubmitSponsorship records one endorsement and advances the proposal to
// PENDING at the call that first reaches the category threshold.
func (s *Service) SubmitSponsorship(ctx context.Context, proposalID, sponsor, votingPower string) (*SponsorshipResult, error) {
	lgr := s.logger.With(zap.String("method", "SubmitSponsorship"))

	proposal, err := s.dbClient.ProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != types.StatusPendingSponsorship {
		return nil, &types.InvalidStateError{Entity: "proposal", Current: string(proposal.Status), Expected: string(types.StatusPendingSponsorship)}
	}
	requirement, err := s.requirements.For(proposal.Category)
	if err != nil {
		return nil, err
	}

	sponsorship := &types.Sponsorship{
		ProposalID:  proposalID,
		Sponsor:     sponsor,
		VotingPower: votingPower,
	}
	if err := s.dbClient.InsertSponsorship(ctx, sponsorship); err != nil {
		return nil, err
	}
	count, err := s.dbClient.CountSponsorships(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	s.recordEvent(ctx, types.EntityProposal, proposalID, types.EventSponsorshipSubmitted, map[string]interface{}{
		"sponsor":  sponsor,
		"current":  count,
		"required": requirement.MinSponsors,
	})

	result := &SponsorshipResult{
		ThresholdMet: count >= requirement.MinSponsors,
		Current:      count,
		Required:     requirement.MinSponsors,
	}
	if result.ThresholdMet {
		// CAS keeps the advance single-shot under concurrent sponsors.
		swapped, err := s.dbClient.TransitionProposal(ctx, proposalID, types.StatusPendingSponsorship, types.StatusPending, nil)
		if err != nil {
			return nil, err
		}
		if swapped {
			lgr.Info("Sponsorship threshold met", zap.String("id", proposalID), zap.Int64("sponsors", count))
			s.recordEvent(ctx, types.EntityProposal, proposalID, types.EventSponsorshipMet, map[string]interface{}{
				"sponsors": count,
			})
		}
	}
	return result, nil
}

// SponsorshipStatus is the read model of the gate.
type SponsorshipStatus struct {
	Sponsorships []*types.Sponsorship `json:"sponsorships"`
	Current      int64                `json:"current"`
	Required     int64                `json:"required"`
	ThresholdMet bool                 `json:"thresholdMet"`
	DepositPaid  bool                 `json:"depositPaid"`
}

func (s *Service) GetSponsorshipStatus(ctx context.Context, proposalID string) (*SponsorshipStatus, error) {
	proposal, err := s.dbClient.ProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	requirement, err := s.requirements.For(proposal.Category)
	if err != nil {
		return nil, err
	}
	sponsorships, err := s.dbClient.Sponsorships(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	count := int64(len(sponsorships))
	return &SponsorshipStatus{
		Sponsorships: sponsorships,
		Current:      count,
		Required:     requirement.MinSponsors,
		ThresholdMet: count >= requirement.MinSponsors,
		DepositPaid:  proposal.DepositPaid,
	}, nil
}

type DepositResult struct {
	Amount     string `json:"amount"`
	TxRef      string `json:"txRef"`
	Idempotent bool   `json:"idempotent"`
}

// RecordDeposit marks the anti-spam bond paid. On-chain verification of the
// payment transaction belongs to the relay, not this layer. A retry carrying
// the same txRef resolves idempotently.
func (s *Service) RecordDeposit(ctx context.Context, proposalID, txRef, amount string) (*DepositResult, error) {
	proposal, err := s.dbClient.ProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.DepositPaid {
		return s.depositAlreadyPaid(proposal, txRef)
	}
	swapped, err := s.dbClient.MarkDepositPaid(ctx, proposalID, amount, txRef)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// lost the race, re-read and settle on retry semantics
		proposal, err = s.dbClient.ProposalByID(ctx, proposalID)
		if err != nil {
			return nil, err
		}
		return s.depositAlreadyPaid(proposal, txRef)
	}
	s.recordEvent(ctx, types.EntityProposal, proposalID, types.EventDepositPaid, map[string]interface{}{
		"amount": amount,
		"txRef":  txRef,
	})
	return &DepositResult{Amount: amount, TxRef: txRef}, nil
}

func (s *Service) depositAlreadyPaid(proposal *types.Proposal, txRef string) (*DepositResult, error) {
	if proposal.DepositTxRef == txRef {
		return &DepositResult{Amount: proposal.DepositAmount, TxRef: proposal.DepositTxRef, Idempotent: true}, nil
	}
	return nil, types.ErrAlreadyExists
}

// StartVotingPeriod opens voting once sponsorship and deposit preconditions
// hold. The voting window is a fixed seven days converted to blocks under the
// 12-second block-time assumption.
func (s *Service) StartVotingPeriod(ctx context.Context, proposalID string) (*types.Proposal, error) {
	lgr := s.logger.With(zap.String("method", "StartVotingPeriod"))

	proposal, err := s.dbClient.ProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	requirement, err := s.requirements.For(proposal.Category)
	if err != nil {
		return nil, err
	}
	count, err := s.dbClient.CountSponsorships(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	var unmet []string
	if proposal.Status != types.StatusPending {
		unmet = append(unmet, fmt.Sprintf("proposal status is %s, want %s", proposal.Status, types.StatusPending))
	}
	if count < requirement.MinSponsors {
		unmet = append(unmet, fmt.Sprintf("sponsorship threshold not met (%d of %d)", count, requirement.MinSponsors))
	}
	if !proposal.DepositPaid {
		unmet = append(unmet, "anti-spam deposit not paid")
	}
	if len(unmet) > 0 {
		return nil, &types.PreconditionError{Unmet: unmet}
	}

	currentBlock, err := s.chainClient.LatestBlockNumber(ctx, proposal.ChainID)
	if err != nil {
		return nil, fmt.Errorf("cannot read current block: %v", err)
	}
	periodBlocks := uint64(math.Ceil(votingPeriod.Seconds() / secondsPerBlock))
	endBlock := currentBlock + periodBlocks

	patch := &types.ProposalPatch{
		SnapshotBlock: &currentBlock,
		StartBlock:    &currentBlock,
		EndBlock:      &endBlock,
	}
	swapped, err := s.dbClient.TransitionProposal(ctx, proposalID, types.StatusPending, types.StatusActive, patch)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, &types.InvalidStateError{Entity: "proposal", Current: string(proposal.Status), Expected: string(types.StatusPending)}
	}
	proposal.Status = types.StatusActive
	proposal.SnapshotBlock = currentBlock
	proposal.StartBlock = currentBlock
	proposal.EndBlock = endBlock

	lgr.Info("Voting period started",
		zap.String("id", proposalID),
		zap.Uint64("startBlock", currentBlock),
		zap.Uint64("endBlock", endBlock))
	s.recordEvent(ctx, types.EntityProposal, proposalID, types.EventVotingStarted, map[string]interface{}{
		"snapshotBlock": currentBlock,
		"startBlock":    currentBlock,
		"endBlock":      endBlock,
	})
	return proposal, nil
}
