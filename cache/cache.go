// Package cache
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/types"
)

type Adapter string

const (
	RedisAdapter Adapter = "redis"
)

type Config struct {
	Adapter Adapter
	URL     string
	DB      int

	IsFlush            bool
	DefaultExpiredTime time.Duration

	Logger *zap.Logger
}

type Client interface {
	ProposalDetail(ctx context.Context, id string) (*types.ProposalDetail, error)
	UpdateProposalDetail(ctx context.Context, detail *types.ProposalDetail) error
	InvalidateProposal(ctx context.Context, id string) error

	ExecutableList(ctx context.Context) ([]*types.Proposal, error)
	UpdateExecutableList(ctx context.Context, proposals []*types.Proposal) error
}

func New(cfg Config) (Client, error) {
	switch cfg.Adapter {
	case RedisAdapter:
		return newRedis(cfg)
	}
	return nil, errors.New("invalid cache config")
}

func newRedis(cfg Config) (Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.URL,
		DB:   cfg.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	if cfg.IsFlush {
		msg, err := redisClient.FlushAll(context.Background()).Result()
		if err != nil || msg != "OK" {
			return nil, err
		}
	}
	expiration := cfg.DefaultExpiredTime
	if expiration == 0 {
		expiration = 60 * time.Second
	}
	return &Redis{
		client:     redisClient,
		expiration: expiration,
		logger:     cfg.Logger,
	}, nil
}
