// Package types
package types

type ForwardStatus string

const (
	ForwardDraft     ForwardStatus = "DRAFT"
	ForwardCompleted ForwardStatus = "COMPLETED"
)

type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "PENDING"
	MilestoneSubmitted  MilestoneStatus = "SUBMITTED"
	MilestoneChallenged MilestoneStatus = "CHALLENGED"
	MilestoneAccepted   MilestoneStatus = "ACCEPTED"
)

type ChallengeStatus string

const (
	ChallengePending   ChallengeStatus = "PENDING"
	ChallengeDismissed ChallengeStatus = "RESOLVED_DISMISSED"
	ChallengeUpheld    ChallengeStatus = "RESOLVED_UPHELD"
)

// LiftForward is a funding commitment released against milestone completion.
type LiftForward struct {
	ID                 string        `json:"id" bson:"_id,omitempty"`
	ProposalID         string        `json:"proposalId" bson:"proposalId"`
	Funder             string        `json:"funder" bson:"funder"`
	ProjectRef         string        `json:"projectRef" bson:"projectRef"`
	TotalAmount        string        `json:"totalAmount" bson:"totalAmount"`
	Currency           string        `json:"currency" bson:"currency"`
	Status             ForwardStatus `json:"status" bson:"status"`
	ChallengeWindowDay int           `json:"challengeWindowDays" bson:"challengeWindowDays"`
	CreatedAt          int64         `json:"createdAt" bson:"createdAt"`
	CompletedAt        int64         `json:"completedAt" bson:"completedAt"`
}

type Milestone struct {
	ID                 string          `json:"id" bson:"_id,omitempty"`
	ForwardID          string          `json:"forwardId" bson:"forwardId"`
	Sequence           int             `json:"sequence" bson:"sequence"`
	Name               string          `json:"name" bson:"name"`
	Amount             string          `json:"amount" bson:"amount"`
	RequiredEvidence   []string        `json:"requiredEvidence" bson:"requiredEvidence"`
	Deadline           int64           `json:"deadline" bson:"deadline"`
	Status             MilestoneStatus `json:"status" bson:"status"`
	EvidenceBundleRef  string          `json:"evidenceBundleRef" bson:"evidenceBundleRef"`
	SubmittedBy        string          `json:"submittedBy" bson:"submittedBy"`
	SubmittedAt        int64           `json:"submittedAt" bson:"submittedAt"`
	ChallengeWindowEnd int64           `json:"challengeWindowEnd" bson:"challengeWindowEnd"`
	Verifier           string          `json:"verifier" bson:"verifier"`
	VerifierNotes      string          `json:"verifierNotes" bson:"verifierNotes"`
	AcceptedAt         int64           `json:"acceptedAt" bson:"acceptedAt"`
}

// MilestonePatch carries optional field updates alongside a milestone status
// transition.
type MilestonePatch struct {
	EvidenceBundleRef  *string
	SubmittedBy        *string
	SubmittedAt        *int64
	ChallengeWindowEnd *int64
	Verifier           *string
	VerifierNotes      *string
	AcceptedAt         *int64
}

type Challenge struct {
	ID          string          `json:"id" bson:"_id,omitempty"`
	MilestoneID string          `json:"milestoneId" bson:"milestoneId"`
	Challenger  string          `json:"challenger" bson:"challenger"`
	Reason      string          `json:"reason" bson:"reason"`
	EvidenceRef string          `json:"evidenceRef" bson:"evidenceRef"`
	BondAmount  string          `json:"bondAmount" bson:"bondAmount"`
	Status      ChallengeStatus `json:"status" bson:"status"`
	Resolver    string          `json:"resolver" bson:"resolver"`
	Notes       string          `json:"notes" bson:"notes"`
	CreatedAt   int64           `json:"createdAt" bson:"createdAt"`
	ResolvedAt  int64           `json:"resolvedAt" bson:"resolvedAt"`
}

// MilestoneSpec is one tranche definition supplied at forward creation.
type MilestoneSpec struct {
	Name             string   `json:"name"`
	Amount           string   `json:"amount"`
	RequiredEvidence []string `json:"requiredEvidence"`
}

// EvidenceItem is one submitted artifact for a milestone.
type EvidenceItem struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	ContentID   string `json:"contentId"`
	Description string `json:"description"`
}
