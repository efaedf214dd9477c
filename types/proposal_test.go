// Package types
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProposalTransitions(t *testing.T) {
	legal := []struct {
		from ProposalStatus
		to   ProposalStatus
	}{
		{StatusDraft, StatusPendingSponsorship},
		{StatusPendingSponsorship, StatusPending},
		{StatusPending, StatusActive},
		{StatusActive, StatusSucceeded},
		{StatusActive, StatusDefeated},
		{StatusSucceeded, StatusQueued},
		{StatusQueued, StatusExecuted},
		{StatusQueued, StatusExpired},
		{StatusQueued, StatusCanceled},
	}
	for _, tc := range legal {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	illegal := []struct {
		from ProposalStatus
		to   ProposalStatus
	}{
		{StatusDraft, StatusActive},
		{StatusDraft, StatusPending},
		{StatusPendingSponsorship, StatusActive},
		{StatusPending, StatusSucceeded},
		{StatusActive, StatusQueued},
		{StatusActive, StatusExecuted},
		{StatusSucceeded, StatusExecuted},
		{StatusDefeated, StatusQueued},
		{StatusExecuted, StatusQueued},
		{StatusExpired, StatusQueued},
		{StatusCanceled, StatusQueued},
		{StatusQueued, StatusActive},
	}
	for _, tc := range illegal {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, status := range []ProposalStatus{StatusExecuted, StatusDefeated, StatusExpired, StatusCanceled} {
		assert.True(t, status.IsTerminal(), string(status))
		assert.Empty(t, proposalTransitions[status])
	}
	for _, status := range []ProposalStatus{StatusDraft, StatusPendingSponsorship, StatusPending, StatusActive, StatusSucceeded, StatusQueued} {
		assert.False(t, status.IsTerminal(), string(status))
	}
}

func TestVoteChoiceValid(t *testing.T) {
	assert.True(t, VoteFor.Valid())
	assert.True(t, VoteAgainst.Valid())
	assert.True(t, VoteAbstain.Valid())
	assert.False(t, VoteChoice("MAYBE").Valid())
	assert.False(t, VoteChoice("").Valid())
}
