// Package types
package types

type VoteChoice string

const (
	VoteFor     VoteChoice = "FOR"
	VoteAgainst VoteChoice = "AGAINST"
	VoteAbstain VoteChoice = "ABSTAIN"
)

func (c VoteChoice) Valid() bool {
	switch c {
	case VoteFor, VoteAgainst, VoteAbstain:
		return true
	}
	return false
}

// Sponsorship is one endorsement of a proposal awaiting its sponsorship gate.
// (proposalId, sponsor) is unique.
type Sponsorship struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	ProposalID  string `json:"proposalId" bson:"proposalId"`
	Sponsor     string `json:"sponsor" bson:"sponsor"`
	VotingPower string `json:"votingPower" bson:"votingPower"`
	CreatedAt   int64  `json:"createdAt" bson:"createdAt"`
}

// Ballot is a voter's current position. A repeat vote replaces the previous
// row under the (proposalId, voter) unique key, it never appends.
type Ballot struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	ProposalID  string     `json:"proposalId" bson:"proposalId"`
	Voter       string     `json:"voter" bson:"voter"`
	Choice      VoteChoice `json:"choice" bson:"choice"`
	VotingPower string     `json:"votingPower" bson:"votingPower"`
	Reason      string     `json:"reason" bson:"reason"`
	TxRef       string     `json:"txRef" bson:"txRef"`
	BlockNumber uint64     `json:"blockNumber" bson:"blockNumber"`
	CreatedAt   int64      `json:"createdAt" bson:"createdAt"`
}
