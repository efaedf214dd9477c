// Package gov
package gov

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/types"
	"github.com/liftchain/governance-backend/utils"
)

type CreateForwardRequest struct {
	ProposalID string                `json:"proposalId"`
	Funder     string                `json:"funder"`
	ProjectRef string                `json:"projectRef"`
	Currency   string                `json:"currency"`
	Milestones []types.MilestoneSpec `json:"milestones"`
}

type ForwardDetail struct {
	Forward    *types.LiftForward `json:"forward"`
	Milestones []*types.Milestone `json:"milestones"`
}

// CreateForward opens an escrowed funding commitment against an accepted
// proposal, one milestone per tranche spec numbered from 1.
func (s *Service) CreateForward(ctx context.Context, req *CreateForwardRequest) (*ForwardDetail, error) {
	lgr := s.logger.With(zap.String("method", "CreateForward"))

	if len(req.Milestones) == 0 {
		return nil, &types.PreconditionError{Unmet: []string{"at least one milestone is required"}}
	}
	proposal, err := s.dbClient.ProposalByID(ctx, req.ProposalID)
	if err != nil {
		return nil, err
	}
	switch proposal.Status {
	case types.StatusSucceeded, types.StatusQueued, types.StatusExecuted:
	default:
		return nil, &types.InvalidStateError{Entity: "proposal", Current: string(proposal.Status), Expected: "SUCCEEDED, QUEUED or EXECUTED"}
	}

	amounts := make([]string, 0, len(req.Milestones))
	for _, spec := range req.Milestones {
		amounts = append(amounts, spec.Amount)
	}
	forward := &types.LiftForward{
		ProposalID:         req.ProposalID,
		Funder:             req.Funder,
		ProjectRef:         req.ProjectRef,
		TotalAmount:        utils.SumAmounts(amounts...).String(),
		Currency:           req.Currency,
		Status:             types.ForwardDraft,
		ChallengeWindowDay: challengeWindowDays,
	}
	if err := s.dbClient.InsertForward(ctx, forward); err != nil {
		return nil, err
	}

	deadline := s.now().Add(milestoneDeadlinePeriod).Unix()
	milestones := make([]*types.Milestone, 0, len(req.Milestones))
	for i, spec := range req.Milestones {
		milestones = append(milestones, &types.Milestone{
			ForwardID:        forward.ID,
			Sequence:         i + 1,
			Name:             spec.Name,
			Amount:           spec.Amount,
			RequiredEvidence: spec.RequiredEvidence,
			Deadline:         deadline,
			Status:           types.MilestonePending,
		})
	}
	if err := s.dbClient.InsertMilestones(ctx, milestones); err != nil {
		return nil, err
	}

	lgr.Info("Lift forward created",
		zap.String("id", forward.ID),
		zap.String("proposalId", req.ProposalID),
		zap.Int("milestones", len(milestones)))
	s.recordEvent(ctx, types.EntityForward, forward.ID, types.EventForwardCreated, map[string]interface{}{
		"proposalId":  req.ProposalID,
		"funder":      req.Funder,
		"totalAmount": forward.TotalAmount,
		"milestones":  len(milestones),
	})
	return &ForwardDetail{Forward: forward, Milestones: milestones}, nil
}

func (s *Service) GetForward(ctx context.Context, forwardID string) (*ForwardDetail, error) {
	forward, err := s.dbClient.ForwardByID(ctx, forwardID)
	if err != nil {
		return nil, err
	}
	milestones, err := s.dbClient.MilestonesByForward(ctx, forwardID)
	if err != nil {
		return nil, err
	}
	return &ForwardDetail{Forward: forward, Milestones: milestones}, nil
}

func (s *Service) ListForwards(ctx context.Context, proposalID string) ([]*types.LiftForward, error) {
	return s.dbClient.ForwardsByProposal(ctx, proposalID)
}

type EvidenceResult struct {
	Milestone  *types.Milestone `json:"milestone"`
	Idempotent bool             `json:"idempotent"`
}

// SubmitMilestoneEvidence validates the submitted bundle against the
// milestone's required evidence types, stores it, and opens the challenge
// window. A retry by the same submitter resolves idempotently.
func (s *Service) SubmitMilestoneEvidence(ctx context.Context, milestoneID, submitter string, evidence []types.EvidenceItem) (*EvidenceResult, error) {
	lgr := s.logger.With(zap.String("method", "SubmitMilestoneEvidence"))

	milestone, err := s.dbClient.MilestoneByID(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if milestone.Status == types.MilestoneSubmitted && milestone.SubmittedBy == submitter {
		return &EvidenceResult{Milestone: milestone, Idempotent: true}, nil
	}
	if milestone.Status != types.MilestonePending {
		return nil, &types.InvalidStateError{Entity: "milestone", Current: string(milestone.Status), Expected: string(types.MilestonePending)}
	}
	now := s.now()
	if now.Unix() > milestone.Deadline {
		return nil, &types.PreconditionError{Unmet: []string{"milestone deadline has passed"}}
	}

	present := make(map[string]bool)
	for _, item := range evidence {
		present[item.Type] = true
	}
	var missing []string
	for _, required := range milestone.RequiredEvidence {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &types.MissingEvidenceError{Missing: missing}
	}

	bundle, err := json.Marshal(evidence)
	if err != nil {
		return nil, err
	}
	doc, err := s.docStore.Put(ctx, bundle, fmt.Sprintf("milestone-%d-evidence.json", milestone.Sequence), map[string]string{
		"Entity-Type": types.EntityMilestone,
		"Forward-Id":  milestone.ForwardID,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot store evidence bundle: %v", err)
	}

	forward, err := s.dbClient.ForwardByID(ctx, milestone.ForwardID)
	if err != nil {
		return nil, err
	}
	windowEnd := now.AddDate(0, 0, forward.ChallengeWindowDay).Unix()
	submittedAt := now.Unix()
	patch := &types.MilestonePatch{
		EvidenceBundleRef:  &doc.ContentID,
		SubmittedBy:        &submitter,
		SubmittedAt:        &submittedAt,
		ChallengeWindowEnd: &windowEnd,
	}
	swapped, err := s.dbClient.TransitionMilestone(ctx, milestoneID, types.MilestonePending, types.MilestoneSubmitted, patch)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, &types.InvalidStateError{Entity: "milestone", Current: string(milestone.Status), Expected: string(types.MilestonePending)}
	}
	milestone.Status = types.MilestoneSubmitted
	milestone.EvidenceBundleRef = doc.ContentID
	milestone.SubmittedBy = submitter
	milestone.SubmittedAt = submittedAt
	milestone.ChallengeWindowEnd = windowEnd

	lgr.Info("Milestone evidence submitted",
		zap.String("id", milestoneID),
		zap.String("bundleRef", doc.ContentID),
		zap.Int64("challengeWindowEnd", windowEnd))
	s.recordEvent(ctx, types.EntityMilestone, milestoneID, types.EventMilestoneSubmitted, map[string]interface{}{
		"submitter":          submitter,
		"bundleRef":          doc.ContentID,
		"integrityHash":      doc.IntegrityHash,
		"challengeWindowEnd": windowEnd,
	})
	return &EvidenceResult{Milestone: milestone}, nil
}

type ChallengeRequest struct {
	Reason      string `json:"reason"`
	EvidenceRef string `json:"evidenceRef"`
	BondAmount  string `json:"bondAmount"`
}

// ChallengeMilestone disputes submitted evidence while the challenge window
// is open. The challenge bond is assumed paid by the caller's transaction.
func (s *Service) ChallengeMilestone(ctx context.Context, milestoneID, challenger string, req *ChallengeRequest) (*types.Challenge, error) {
	milestone, err := s.dbClient.MilestoneByID(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if milestone.Status != types.MilestoneSubmitted {
		return nil, &types.InvalidStateError{Entity: "milestone", Current: string(milestone.Status), Expected: string(types.MilestoneSubmitted)}
	}
	if s.now().Unix() > milestone.ChallengeWindowEnd {
		return nil, &types.PreconditionError{Unmet: []string{"challenge window has closed"}}
	}

	challenge := &types.Challenge{
		MilestoneID: milestoneID,
		Challenger:  challenger,
		Reason:      req.Reason,
		EvidenceRef: req.EvidenceRef,
		BondAmount:  req.BondAmount,
		Status:      types.ChallengePending,
	}
	if err := s.dbClient.InsertChallenge(ctx, challenge); err != nil {
		return nil, err
	}
	swapped, err := s.dbClient.TransitionMilestone(ctx, milestoneID, types.MilestoneSubmitted, types.MilestoneChallenged, nil)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// a concurrent challenge already flipped the milestone; ours still counts
		s.logger.Info("milestone already challenged", zap.String("id", milestoneID))
	}
	s.recordEvent(ctx, types.EntityMilestone, milestoneID, types.EventMilestoneChallenged, map[string]interface{}{
		"challenger":  challenger,
		"challengeId": challenge.ID,
		"reason":      req.Reason,
	})
	return challenge, nil
}

// ResolveChallenge settles a pending challenge either way. The milestone
// itself stays CHALLENGED until a verifier accepts it.
func (s *Service) ResolveChallenge(ctx context.Context, challengeID, resolver string, dismissed bool, notes string) (*types.Challenge, error) {
	challenge, err := s.dbClient.ChallengeByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	outcome := types.ChallengeUpheld
	if dismissed {
		outcome = types.ChallengeDismissed
	}
	resolvedAt := s.now().Unix()
	swapped, err := s.dbClient.ResolveChallenge(ctx, challengeID, resolver, outcome, notes, resolvedAt)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, &types.InvalidStateError{Entity: "challenge", Current: string(challenge.Status), Expected: string(types.ChallengePending)}
	}
	challenge.Status = outcome
	challenge.Resolver = resolver
	challenge.Notes = notes
	challenge.ResolvedAt = resolvedAt
	s.recordEvent(ctx, types.EntityMilestone, challenge.MilestoneID, types.EventChallengeResolved, map[string]interface{}{
		"challengeId": challengeID,
		"resolver":    resolver,
		"outcome":     string(outcome),
	})
	return challenge, nil
}

type AcceptResult struct {
	Milestone        *types.Milestone `json:"milestone"`
	ForwardCompleted bool             `json:"forwardCompleted"`
}

// AcceptMilestone closes out a milestone after its challenge window ran
// clean, or after every challenge against it was resolved. Accepting the last
// milestone completes the forward in the same logical operation.
func (s *Service) AcceptMilestone(ctx context.Context, milestoneID, verifier, notes string) (*AcceptResult, error) {
	lgr := s.logger.With(zap.String("method", "AcceptMilestone"))

	milestone, err := s.dbClient.MilestoneByID(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	now := s.now().Unix()
	switch milestone.Status {
	case types.MilestoneSubmitted:
		if now <= milestone.ChallengeWindowEnd {
			return nil, &types.PreconditionError{Unmet: []string{"challenge window is still open"}}
		}
	case types.MilestoneChallenged:
		pending, err := s.dbClient.CountPendingChallenges(ctx, milestoneID)
		if err != nil {
			return nil, err
		}
		if pending > 0 {
			return nil, &types.PreconditionError{Unmet: []string{fmt.Sprintf("%d unresolved challenges", pending)}}
		}
	default:
		return nil, &types.InvalidStateError{Entity: "milestone", Current: string(milestone.Status), Expected: "SUBMITTED or CHALLENGED"}
	}

	acceptedAt := now
	patch := &types.MilestonePatch{
		Verifier:      &verifier,
		VerifierNotes: &notes,
		AcceptedAt:    &acceptedAt,
	}
	swapped, err := s.dbClient.TransitionMilestone(ctx, milestoneID, milestone.Status, types.MilestoneAccepted, patch)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, &types.InvalidStateError{Entity: "milestone", Current: string(milestone.Status), Expected: "SUBMITTED or CHALLENGED"}
	}
	milestone.Status = types.MilestoneAccepted
	milestone.Verifier = verifier
	milestone.VerifierNotes = notes
	milestone.AcceptedAt = acceptedAt

	completed, err := s.completeForwardIfDone(ctx, milestone.ForwardID)
	if err != nil {
		lgr.Warn("cannot check forward completion", zap.String("forwardId", milestone.ForwardID), zap.Error(err))
	}
	lgr.Info("Milestone accepted",
		zap.String("id", milestoneID),
		zap.String("verifier", verifier),
		zap.Bool("forwardCompleted", completed))
	s.recordEvent(ctx, types.EntityMilestone, milestoneID, types.EventMilestoneAccepted, map[string]interface{}{
		"verifier":         verifier,
		"forwardCompleted": completed,
	})
	return &AcceptResult{Milestone: milestone, ForwardCompleted: completed}, nil
}

func (s *Service) completeForwardIfDone(ctx context.Context, forwardID string) (bool, error) {
	milestones, err := s.dbClient.MilestonesByForward(ctx, forwardID)
	if err != nil {
		return false, err
	}
	for _, ms := range milestones {
		if ms.Status != types.MilestoneAccepted {
			return false, nil
		}
	}
	swapped, err := s.dbClient.TransitionForward(ctx, forwardID, types.ForwardDraft, types.ForwardCompleted, s.now().Unix())
	if err != nil {
		return false, err
	}
	if swapped {
		s.recordEvent(ctx, types.EntityForward, forwardID, types.EventForwardCompleted, map[string]interface{}{
			"milestones": len(milestones),
		})
	}
	return swapped, nil
}

// MilestoneWorklists are the three disjoint action queues surfaced to
// dashboards and the poller.
type MilestoneWorklists struct {
	NeedSubmission []*types.Milestone `json:"needSubmission"`
	NeedReview     []*types.Milestone `json:"needReview"`
	Challengeable  []*types.Milestone `json:"challengeable"`
}

func (s *Service) MilestonesRequiringAction(ctx context.Context) (*MilestoneWorklists, error) {
	now := s.now().Unix()
	worklists := &MilestoneWorklists{}

	pending, err := s.dbClient.MilestonesByStatus(ctx, types.MilestonePending)
	if err != nil {
		return nil, err
	}
	for _, ms := range pending {
		if now <= ms.Deadline {
			worklists.NeedSubmission = append(worklists.NeedSubmission, ms)
		}
	}
	submitted, err := s.dbClient.MilestonesByStatus(ctx, types.MilestoneSubmitted)
	if err != nil {
		return nil, err
	}
	for _, ms := range submitted {
		if now > ms.ChallengeWindowEnd {
			worklists.NeedReview = append(worklists.NeedReview, ms)
		} else {
			worklists.Challengeable = append(worklists.Challengeable, ms)
		}
	}
	return worklists, nil
}
