// Package gov
package gov

import (
	"github.com/liftchain/governance-backend/types"
)

// Requirement is the per-category threshold set. Quorum and approval are
// basis points out of 10000.
type Requirement struct {
	MinSponsors   int64
	QuorumBps     int64
	ApprovalBps   int64
	TimelockHours int64

	// SponsorshipFirst categories skip DRAFT and open directly for
	// sponsorship.
	SponsorshipFirst bool
}

// RequirementTable maps categories to thresholds. It is built once at wiring
// time and never mutated, so deployments can swap thresholds without touching
// the state machine.
type RequirementTable map[types.ProposalCategory]Requirement

func (t RequirementTable) For(category types.ProposalCategory) (Requirement, error) {
	req, ok := t[category]
	if !ok {
		return Requirement{}, types.ErrUnsupportedCategory
	}
	return req, nil
}

func DefaultRequirements() RequirementTable {
	return RequirementTable{
		types.CategoryStandard:           {MinSponsors: 5, QuorumBps: 800, ApprovalBps: 5001, TimelockHours: 48},
		types.CategoryEcosystemParameter: {MinSponsors: 3, QuorumBps: 600, ApprovalBps: 5001, TimelockHours: 24},
		types.CategoryMethodRegistry:     {MinSponsors: 3, QuorumBps: 600, ApprovalBps: 5001, TimelockHours: 24},
		types.CategoryProtocolUpgrade:    {MinSponsors: 10, QuorumBps: 1500, ApprovalBps: 6667, TimelockHours: 96, SponsorshipFirst: true},
		types.CategoryTreasuryAllocation: {MinSponsors: 7, QuorumBps: 1000, ApprovalBps: 6000, TimelockHours: 72, SponsorshipFirst: true},
		types.CategoryLiftTokenGov:       {MinSponsors: 5, QuorumBps: 800, ApprovalBps: 5001, TimelockHours: 48},
		types.CategoryFinancePlatform:    {MinSponsors: 5, QuorumBps: 800, ApprovalBps: 5001, TimelockHours: 48},
		types.CategoryFeeAdjustment:      {MinSponsors: 3, QuorumBps: 600, ApprovalBps: 5001, TimelockHours: 24},
		types.CategoryEmergency:          {MinSponsors: 10, QuorumBps: 1500, ApprovalBps: 6667, TimelockHours: 6, SponsorshipFirst: true},
	}
}
