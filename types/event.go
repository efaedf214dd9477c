// Package types
package types

const (
	EntityProposal  = "PROPOSAL"
	EntityForward   = "FORWARD"
	EntityMilestone = "MILESTONE"
)

const (
	EventProposalCreated       = "PROPOSAL_CREATED"
	EventProposalPublished     = "PROPOSAL_PUBLISHED"
	EventSponsorshipSubmitted  = "SPONSORSHIP_SUBMITTED"
	EventSponsorshipMet        = "SPONSORSHIP_THRESHOLD_MET"
	EventDepositPaid           = "ANTISPAM_DEPOSIT_PAID"
	EventDepositRefunded       = "ANTISPAM_DEPOSIT_REFUNDED"
	EventVotingStarted         = "VOTING_STARTED"
	EventVoteCast              = "VOTE_CAST"
	EventVoteChanged           = "VOTE_CHANGED"
	EventVotingEnded           = "VOTING_ENDED"
	EventProposalQueued        = "PROPOSAL_QUEUED"
	EventProposalExecuted      = "PROPOSAL_EXECUTED"
	EventExecutionFailed       = "EXECUTION_FAILED"
	EventProposalExpired       = "PROPOSAL_EXPIRED"
	EventProposalCancelled     = "PROPOSAL_CANCELLED"
	EventForwardCreated        = "FORWARD_CREATED"
	EventForwardCompleted      = "FORWARD_COMPLETED"
	EventMilestoneSubmitted    = "MILESTONE_EVIDENCE_SUBMITTED"
	EventMilestoneChallenged   = "MILESTONE_CHALLENGED"
	EventMilestoneAccepted     = "MILESTONE_ACCEPTED"
	EventChallengeResolved     = "CHALLENGE_RESOLVED"
)

// Event is an append-only audit record. Rows are written once and never
// mutated.
type Event struct {
	ID         string                 `json:"id" bson:"_id,omitempty"`
	EntityType string                 `json:"entityType" bson:"entityType"`
	EntityID   string                 `json:"entityId" bson:"entityId"`
	Type       string                 `json:"type" bson:"type"`
	Payload    map[string]interface{} `json:"payload" bson:"payload"`
	CreatedAt  int64                  `json:"createdAt" bson:"createdAt"`
}
