// Package gov
package gov

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/types"
)

type CreateProposalRequest struct {
	Proposer    string                 `json:"proposer"`
	ChainID     uint64                 `json:"chainId"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Category    types.ProposalCategory `json:"category"`
	Targets     []string               `json:"targets"`
	Values      []string               `json:"values"`
	Calldatas   []string               `json:"calldatas"`
}

// CreateProposal registers a new governance item. Heightened-scrutiny
// categories open directly for sponsorship; everything else starts in DRAFT.
func (s *Service) CreateProposal(ctx context.Context, req *CreateProposalRequest) (*types.Proposal, error) {
	lgr := s.logger.With(zap.String("method", "CreateProposal"))

	if len(req.Targets) != len(req.Values) || len(req.Targets) != len(req.Calldatas) {
		return nil, &types.PreconditionError{Unmet: []string{"target/value/calldata arrays must have equal length"}}
	}
	requirement, err := s.requirements.For(req.Category)
	if err != nil {
		return nil, err
	}
	if _, err := s.chainClient.GovernanceAddress(req.ChainID); err != nil {
		return nil, err
	}
	user, err := s.dbClient.FindUserByAddress(ctx, req.Proposer)
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	doc, err := s.docStore.Put(ctx, metadata, "proposal-metadata.json", map[string]string{
		"Entity-Type": types.EntityProposal,
		"Category":    string(req.Category),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot store proposal metadata: %v", err)
	}

	status := types.StatusDraft
	if requirement.SponsorshipFirst {
		status = types.StatusPendingSponsorship
	}
	proposal := &types.Proposal{
		OnChainID:      "0",
		ChainID:        req.ChainID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Status:         status,
		Proposer:       req.Proposer,
		ProposerUserID: user.ID,
		Targets:        req.Targets,
		Values:         req.Values,
		Calldatas:      req.Calldatas,
		ForVotes:       "0",
		AgainstVotes:   "0",
		AbstainVotes:   "0",
		DepositAmount:  "0",
		MetadataRef:    doc.ContentID,
	}
	if err := s.dbClient.InsertProposal(ctx, proposal); err != nil {
		return nil, err
	}
	lgr.Info("Proposal created",
		zap.String("id", proposal.ID),
		zap.String("category", string(proposal.Category)),
		zap.String("status", string(proposal.Status)))
	s.recordEvent(ctx, types.EntityProposal, proposal.ID, types.EventProposalCreated, map[string]interface{}{
		"proposer": proposal.Proposer,
		"category": string(proposal.Category),
		"status":   string(proposal.Status),
	})
	return proposal, nil
}

// PublishProposal moves a DRAFT proposal into its sponsorship round.
func (s *Service) PublishProposal(ctx context.Context, proposalID string) (*types.Proposal, error) {
	proposal, err := s.dbClient.ProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !proposal.Status.CanTransitionTo(types.StatusPendingSponsorship) {
		return nil, &types.InvalidStateError{Entity: "proposal", Current: string(proposal.Status), Expected: string(types.StatusDraft)}
	}
	swapped, err := s.dbClient.TransitionProposal(ctx, proposalID, types.StatusDraft, types.StatusPendingSponsorship, nil)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, &types.InvalidStateError{Entity: "proposal", Current: string(proposal.Status), Expected: string(types.StatusDraft)}
	}
	proposal.Status = types.StatusPendingSponsorship
	s.recordEvent(ctx, types.EntityProposal, proposalID, types.EventProposalPublished, nil)
	return proposal, nil
}

// GetProposal returns the stored record, merged best-effort with the live
// on-chain view. A failed chain read degrades to the stored record alone.
func (s *Service) GetProposal(ctx context.Context, proposalID string) (*types.ProposalDetail, error) {
	proposal, err := s.dbClient.ProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	detail := &types.ProposalDetail{Proposal: proposal}
	if proposal.OnChainID != "0" && proposal.OnChainID != "" {
		snapshot, err := s.chainClient.ProposalOnChainState(ctx, proposal.ChainID, proposal.OnChainID)
		if err != nil {
			s.logger.Warn("cannot read on-chain proposal state",
				zap.String("id", proposalID),
				zap.String("onChainId", proposal.OnChainID),
				zap.Error(err))
		} else {
			detail.OnChain = snapshot
		}
	}
	return detail, nil
}

func (s *Service) ListProposals(ctx context.Context, filter *types.ProposalsFilter) ([]*types.Proposal, uint64, error) {
	return s.dbClient.Proposals(ctx, filter)
}

func (s *Service) ProposalEvents(ctx context.Context, proposalID string) ([]*types.Event, error) {
	return s.dbClient.EventsByEntity(ctx, types.EntityProposal, proposalID)
}
