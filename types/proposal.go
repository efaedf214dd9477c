// Package types
package types

type ProposalCategory string

const (
	CategoryStandard           ProposalCategory = "STANDARD"
	CategoryEcosystemParameter ProposalCategory = "ECOSYSTEM_PARAMETER"
	CategoryMethodRegistry     ProposalCategory = "METHOD_REGISTRY"
	CategoryProtocolUpgrade    ProposalCategory = "PROTOCOL_UPGRADE"
	CategoryTreasuryAllocation ProposalCategory = "TREASURY_ALLOCATION"
	CategoryLiftTokenGov       ProposalCategory = "LIFT_TOKEN_GOVERNANCE"
	CategoryFinancePlatform    ProposalCategory = "FINANCE_PLATFORM"
	CategoryFeeAdjustment      ProposalCategory = "FEE_ADJUSTMENT"
	CategoryEmergency          ProposalCategory = "EMERGENCY"
)

type ProposalStatus string

const (
	StatusDraft              ProposalStatus = "DRAFT"
	StatusPendingSponsorship ProposalStatus = "PENDING_SPONSORSHIP"
	StatusPending            ProposalStatus = "PENDING"
	StatusActive             ProposalStatus = "ACTIVE"
	StatusSucceeded          ProposalStatus = "SUCCEEDED"
	StatusDefeated           ProposalStatus = "DEFEATED"
	StatusQueued             ProposalStatus = "QUEUED"
	StatusExecuted           ProposalStatus = "EXECUTED"
	StatusExpired            ProposalStatus = "EXPIRED"
	StatusCanceled           ProposalStatus = "CANCELED"
)

// proposalTransitions is the single source of truth for lifecycle legality.
// Every status write must pass through CanTransitionTo before hitting storage.
var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	StatusDraft:              {StatusPendingSponsorship},
	StatusPendingSponsorship: {StatusPending},
	StatusPending:            {StatusActive},
	StatusActive:             {StatusSucceeded, StatusDefeated},
	StatusSucceeded:          {StatusQueued},
	StatusQueued:             {StatusExecuted, StatusExpired, StatusCanceled},
}

func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	for _, allowed := range proposalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ProposalStatus) IsTerminal() bool {
	switch s {
	case StatusExecuted, StatusDefeated, StatusExpired, StatusCanceled:
		return true
	}
	return false
}

type Proposal struct {
	ID              string           `json:"id" bson:"_id,omitempty"`
	OnChainID       string           `json:"onChainId" bson:"onChainId"`
	ChainID         uint64           `json:"chainId" bson:"chainId"`
	Title           string           `json:"title" bson:"title"`
	Description     string           `json:"description" bson:"description"`
	Category        ProposalCategory `json:"category" bson:"category"`
	Status          ProposalStatus   `json:"status" bson:"status"`
	Proposer        string           `json:"proposer" bson:"proposer"`
	ProposerUserID  string           `json:"proposerUserId" bson:"proposerUserId"`

	// Call batch executed on success. The three slices are index-aligned.
	Targets   []string `json:"targets" bson:"targets"`
	Values    []string `json:"values" bson:"values"`
	Calldatas []string `json:"calldatas" bson:"calldatas"`

	// Running totals, decimal strings. Always recomputed from the ballot
	// collection, never incremented in place.
	ForVotes     string `json:"forVotes" bson:"forVotes"`
	AgainstVotes string `json:"againstVotes" bson:"againstVotes"`
	AbstainVotes string `json:"abstainVotes" bson:"abstainVotes"`

	DepositAmount   string `json:"depositAmount" bson:"depositAmount"`
	DepositTxRef    string `json:"depositTxRef" bson:"depositTxRef"`
	DepositPaid     bool   `json:"depositPaid" bson:"depositPaid"`
	DepositRefunded bool   `json:"depositRefunded" bson:"depositRefunded"`

	SnapshotBlock uint64 `json:"snapshotBlock" bson:"snapshotBlock"`
	StartBlock    uint64 `json:"startBlock" bson:"startBlock"`
	EndBlock      uint64 `json:"endBlock" bson:"endBlock"`

	TimelockEta   int64 `json:"timelockEta" bson:"timelockEta"`
	TimelockDelay int64 `json:"timelockDelay" bson:"timelockDelay"`

	ExecutedTxRef string `json:"executedTxRef" bson:"executedTxRef"`
	CancelReason  string `json:"cancelReason" bson:"cancelReason"`

	MetadataRef string `json:"metadataRef" bson:"metadataRef"`

	CreatedAt  int64 `json:"createdAt" bson:"createdAt"`
	UpdateTime int64 `json:"updateTime" bson:"updateTime"`
}

// ProposalPatch carries the optional field updates that ride along with a
// status transition. nil pointers are left untouched in storage.
type ProposalPatch struct {
	SnapshotBlock   *uint64
	StartBlock      *uint64
	EndBlock        *uint64
	TimelockEta     *int64
	TimelockDelay   *int64
	ExecutedTxRef   *string
	CancelReason    *string
	DepositRefunded *bool
}

// OnChainSnapshot is the best-effort live view merged into proposal reads.
type OnChainSnapshot struct {
	State         string `json:"state"`
	ForVotes      string `json:"forVotes"`
	AgainstVotes  string `json:"againstVotes"`
	AbstainVotes  string `json:"abstainVotes"`
	Deadline      uint64 `json:"deadline"`
	SnapshotBlock uint64 `json:"snapshotBlock"`
}

type ProposalDetail struct {
	*Proposal
	OnChain *OnChainSnapshot `json:"onChain,omitempty"`
}
