// Package cache
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/types"
)

const (
	keyProposalDetail = "#proposal#%s"
	keyExecutableList = "#proposals#executable"
)

type Redis struct {
	client     *redis.Client
	expiration time.Duration
	logger     *zap.Logger
}

func (c *Redis) ProposalDetail(ctx context.Context, id string) (*types.ProposalDetail, error) {
	raw, err := c.client.Get(ctx, fmt.Sprintf(keyProposalDetail, id)).Result()
	if err != nil {
		return nil, err
	}
	var detail *types.ProposalDetail
	if err := json.Unmarshal([]byte(raw), &detail); err != nil {
		return nil, err
	}
	return detail, nil
}

func (c *Redis) UpdateProposalDetail(ctx context.Context, detail *types.ProposalDetail) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, fmt.Sprintf(keyProposalDetail, detail.ID), string(data), c.expiration).Err(); err != nil {
		c.logger.Warn("cannot cache proposal detail", zap.String("id", detail.ID), zap.Error(err))
		return err
	}
	return nil
}

func (c *Redis) InvalidateProposal(ctx context.Context, id string) error {
	return c.client.Del(ctx, fmt.Sprintf(keyProposalDetail, id), keyExecutableList).Err()
}

func (c *Redis) ExecutableList(ctx context.Context) ([]*types.Proposal, error) {
	raw, err := c.client.Get(ctx, keyExecutableList).Result()
	if err != nil {
		return nil, err
	}
	var proposals []*types.Proposal
	if err := json.Unmarshal([]byte(raw), &proposals); err != nil {
		return nil, err
	}
	return proposals, nil
}

func (c *Redis) UpdateExecutableList(ctx context.Context, proposals []*types.Proposal) error {
	data, err := json.Marshal(proposals)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyExecutableList, string(data), c.expiration).Err()
}
