// Package chain
package chain

import (
	"context"
	"math/big"

	"github.com/liftchain/governance-backend/types"
)

// ClientInterface is the read-mostly chain collaborator. Reads are
// best-effort: callers decide whether a failure degrades or aborts.
type ClientInterface interface {
	LatestBlockNumber(ctx context.Context, chainID uint64) (uint64, error)
	ProposalOnChainState(ctx context.Context, chainID uint64, onChainID string) (*types.OnChainSnapshot, error)
	TotalSupply(ctx context.Context, chainID uint64) (*big.Int, error)

	// SubmitBatch hands the call batch to the execution relay and returns the
	// resulting transaction reference. The chain write itself happens
	// out-of-band; this layer only records its result.
	SubmitBatch(ctx context.Context, chainID uint64, targets, values, calldatas []string) (string, error)

	// GovernanceAddress returns the governance contract configured for the
	// chain, or types.ErrUnsupportedChain.
	GovernanceAddress(chainID uint64) (string, error)
}
