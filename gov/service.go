// Package gov implements the proposal lifecycle engine and the lift forward
// milestone workflow.
package gov

import (
	"errors"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/chain"
	"github.com/liftchain/governance-backend/db"
	"github.com/liftchain/governance-backend/docstore"
)

const (
	votingPeriod    = 7 * 24 * time.Hour
	secondsPerBlock = 12

	// Window past the timelock ETA during which execution stays permitted.
	executionGrace = 24 * time.Hour

	milestoneDeadlinePeriod = 90 * 24 * time.Hour
	challengeWindowDays     = 14
)

type Config struct {
	DB       db.Client
	Chain    chain.ClientInterface
	DocStore docstore.Store

	Requirements RequirementTable

	// Fallback when the on-chain total supply read fails, decimal string.
	DefaultTotalSupply string

	Logger *zap.Logger
}

type Service struct {
	dbClient     db.Client
	chainClient  chain.ClientInterface
	docStore     docstore.Store
	requirements RequirementTable

	defaultSupply *big.Int

	logger *zap.Logger
	now    func() time.Time
}

func New(cfg Config) (*Service, error) {
	if cfg.DB == nil || cfg.Chain == nil || cfg.DocStore == nil {
		return nil, errors.New("invalid gov service config")
	}
	requirements := cfg.Requirements
	if requirements == nil {
		requirements = DefaultRequirements()
	}
	defaultSupply := new(big.Int)
	if cfg.DefaultTotalSupply != "" {
		supply, ok := new(big.Int).SetString(cfg.DefaultTotalSupply, 10)
		if !ok {
			return nil, errors.New("malformed default total supply")
		}
		defaultSupply = supply
	}
	return &Service{
		dbClient:      cfg.DB,
		chainClient:   cfg.Chain,
		docStore:      cfg.DocStore,
		requirements:  requirements,
		defaultSupply: defaultSupply,
		logger:        cfg.Logger,
		now:           time.Now,
	}, nil
}
