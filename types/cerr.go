// Package types
package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrForwardNotFound   = errors.New("lift forward not found")
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrUserNotFound      = errors.New("user not found")

	ErrAlreadySponsored = errors.New("proposal already sponsored by this address")
	ErrAlreadyExists    = errors.New("record already exists")

	ErrVotingEnded   = errors.New("voting period has ended")
	ErrNoVotingPower = errors.New("voting power must be positive")

	ErrTimelockExpired = errors.New("grace period elapsed, proposal expired")

	ErrUnsupportedChain    = errors.New("no governance contract configured for chain")
	ErrUnsupportedCategory = errors.New("unknown proposal category")

	ErrNotProposer = errors.New("only the proposer may cancel")
)

// InvalidStateError reports an operation attempted outside its legal
// state-machine transition.
type InvalidStateError struct {
	Entity   string
	Current  string
	Expected string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s is %s, operation requires %s", e.Entity, e.Current, e.Expected)
}

// PreconditionError names the unmet conditions that blocked an operation.
type PreconditionError struct {
	Unmet []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("preconditions not met: %s", strings.Join(e.Unmet, ", "))
}

// MissingEvidenceError lists required evidence types absent from a milestone
// submission.
type MissingEvidenceError struct {
	Missing []string
}

func (e *MissingEvidenceError) Error() string {
	return fmt.Sprintf("missing required evidence types: %s", strings.Join(e.Missing, ", "))
}

// TimelockNotReadyError reports how long until a queued proposal becomes
// executable.
type TimelockNotReadyError struct {
	RemainingSeconds int64
}

func (e *TimelockNotReadyError) Error() string {
	return fmt.Sprintf("timelock not ready, %d seconds remaining", e.RemainingSeconds)
}
