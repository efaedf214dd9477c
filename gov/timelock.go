// Package gov
package gov

import (
	"context"

	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/types"
)

// QueueForTimelock schedules a succeeded proposal for execution after the
// category delay.
func (s *Service) QueueForTimelock(ctx context.Context, proposalID string, timelockHours int64) (*types.Proposal, error) {
	proposal, err := s.dbClient.ProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != types.StatusSucceeded {
		return nil, &types.InvalidStateError{Entity: "proposal", Current: string(proposal.Status), Expected: string(types.StatusSucceeded)}
	}
	delay := timelockHours * 3600
	eta := s.now().Unix() + delay
	patch := &types.ProposalPatch{
		TimelockEta:   &eta,
		TimelockDelay: &delay,
	}
	swapped, err := s.dbClient.TransitionProposal(ctx, proposalID, types.StatusSucceeded, types.StatusQueued, patch)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, &types.InvalidStateError{Entity: "proposal", Current: string(proposal.Status), Expected: string(types.StatusSucceeded)}
	}
	proposal.Status = types.StatusQueued
	proposal.TimelockEta = eta
	proposal.TimelockDelay = delay

	s.logger.Info("Proposal queued",
		zap.String("id", proposalID),
		zap.Int64("eta", eta),
		zap.Int64("delaySeconds", delay))
	s.recordEvent(ctx, types.EntityProposal, proposalID, types.EventProposalQueued, map[string]interface{}{
		"eta":          eta,
		"delaySeconds": delay,
	})
	return proposal, nil
}

type ExecutionResult struct {
	Executed      bool   `json:"executed"`
	TxRef         string `json:"txRef,omitempty"`
	FailureReason string `json:"failureReason,omitempty"`
}

// Execute runs a queued proposal's call batch once its ETA has passed and the
// 24-hour grace window has not. A chain failure comes back as data, not an
// error, so the proposal stays queued and retryable.
func (s *Service) Execute(ctx context.Context, proposalID, executor string) (*ExecutionResult, error) {
	lgr := s.logger.With(zap.String("method", "Execute"))

	proposal, err := s.dbClient.ProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != types.StatusQueued {
		return nil, &types.InvalidStateError{Entity: "proposal", Current: string(proposal.Status), Expected: string(types.StatusQueued)}
	}
	now := s.now().Unix()
	if now < proposal.TimelockEta {
		return nil, &types.TimelockNotReadyError{RemainingSeconds: proposal.TimelockEta - now}
	}
	graceEnd := proposal.TimelockEta + int64(executionGrace.Seconds())
	if now > graceEnd {
		swapped, err := s.dbClient.TransitionProposal(ctx, proposalID, types.StatusQueued, types.StatusExpired, nil)
		if err != nil {
			return nil, err
		}
		if swapped {
			lgr.Warn("Proposal expired past grace window", zap.String("id", proposalID))
			s.recordEvent(ctx, types.EntityProposal, proposalID, types.EventProposalExpired, map[string]interface{}{
				"eta":      proposal.TimelockEta,
				"graceEnd": graceEnd,
			})
		}
		return nil, types.ErrTimelockExpired
	}

	txRef, err := s.chainClient.SubmitBatch(ctx, proposal.ChainID, proposal.Targets, proposal.Values, proposal.Calldatas)
	if err != nil {
		lgr.Error("execution batch failed", zap.String("id", proposalID), zap.Error(err))
		s.recordEvent(ctx, types.EntityProposal, proposalID, types.EventExecutionFailed, map[string]interface{}{
			"executor": executor,
			"error":    err.Error(),
		})
		return &ExecutionResult{Executed: false, FailureReason: err.Error()}, nil
	}

	patch := &types.ProposalPatch{ExecutedTxRef: &txRef}
	swapped, err := s.dbClient.TransitionProposal(ctx, proposalID, types.StatusQueued, types.StatusExecuted, patch)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, &types.InvalidStateError{Entity: "proposal", Current: string(types.StatusExecuted), Expected: string(types.StatusQueued)}
	}
	s.refundDeposit(ctx, proposalID)

	lgr.Info("Proposal executed", zap.String("id", proposalID), zap.String("txRef", txRef))
	s.recordEvent(ctx, types.EntityProposal, proposalID, types.EventProposalExecuted, map[string]interface{}{
		"executor": executor,
		"txRef":    txRef,
	})
	return &ExecutionResult{Executed: true, TxRef: txRef}, nil
}

// Cancel withdraws a queued proposal. Only the original proposer may cancel;
// widening this to an emergency guardian role is tracked with the product
// owner.
func (s *Service) Cancel(ctx context.Context, proposalID, canceller, reason string) (*types.Proposal, error) {
	proposal, err := s.dbClient.ProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != types.StatusQueued {
		return nil, &types.InvalidStateError{Entity: "proposal", Current: string(proposal.Status), Expected: string(types.StatusQueued)}
	}
	if proposal.Proposer != canceller {
		return nil, types.ErrNotProposer
	}
	patch := &types.ProposalPatch{CancelReason: &reason}
	swapped, err := s.dbClient.TransitionProposal(ctx, proposalID, types.StatusQueued, types.StatusCanceled, patch)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, &types.InvalidStateError{Entity: "proposal", Current: string(proposal.Status), Expected: string(types.StatusQueued)}
	}
	proposal.Status = types.StatusCanceled
	proposal.CancelReason = reason
	s.refundDeposit(ctx, proposalID)

	s.logger.Info("Proposal cancelled", zap.String("id", proposalID), zap.String("canceller", canceller))
	s.recordEvent(ctx, types.EntityProposal, proposalID, types.EventProposalCancelled, map[string]interface{}{
		"canceller": canceller,
		"reason":    reason,
	})
	return proposal, nil
}

func (s *Service) refundDeposit(ctx context.Context, proposalID string) {
	swapped, err := s.dbClient.MarkDepositRefunded(ctx, proposalID)
	if err != nil {
		s.logger.Warn("cannot refund deposit", zap.String("id", proposalID), zap.Error(err))
		return
	}
	if swapped {
		s.recordEvent(ctx, types.EntityProposal, proposalID, types.EventDepositRefunded, nil)
	}
}

// ListExecutable returns queued proposals inside their execution window,
// ascending by ETA. External schedulers poll this.
func (s *Service) ListExecutable(ctx context.Context) ([]*types.Proposal, error) {
	queued, err := s.dbClient.QueuedProposalsByEta(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().Unix()
	grace := int64(executionGrace.Seconds())
	var executable []*types.Proposal
	for _, proposal := range queued {
		if now >= proposal.TimelockEta && now <= proposal.TimelockEta+grace {
			executable = append(executable, proposal)
		}
	}
	return executable, nil
}
