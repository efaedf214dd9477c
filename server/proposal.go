// Package server
package server

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo"
	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/api"
	"github.com/liftchain/governance-backend/gov"
	"github.com/liftchain/governance-backend/types"
)

const defaultTimeout = 5 * time.Second

func (s *Server) CreateProposal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	var req gov.CreateProposalRequest
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	proposal, err := s.gov.CreateProposal(ctx, &req)
	if err != nil {
		return api.Err(err, c)
	}
	return api.Success(proposal, c)
}

func (s *Server) Proposal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	id := c.Param("id")

	detail, err := s.cacheClient.ProposalDetail(ctx, id)
	if err == nil {
		return api.Success(detail, c)
	}
	detail, err = s.gov.GetProposal(ctx, id)
	if err != nil {
		return api.Err(err, c)
	}
	if err := s.cacheClient.UpdateProposalDetail(ctx, detail); err != nil {
		s.Logger.Debug("cannot cache proposal detail", zap.String("id", id), zap.Error(err))
	}
	return api.Success(detail, c)
}

func (s *Server) Proposals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	pagination, page, limit := getPagingOption(c)

	filter := &types.ProposalsFilter{
		Status:     types.ProposalStatus(c.QueryParam("status")),
		Category:   types.ProposalCategory(c.QueryParam("category")),
		Proposer:   c.QueryParam("proposer"),
		Pagination: pagination,
	}
	if chainIDParam := c.QueryParam("chainId"); chainIDParam != "" {
		chainID, err := strconv.ParseUint(chainIDParam, 10, 64)
		if err != nil {
			return api.Invalid.Build(c)
		}
		filter.ChainID = chainID
	}
	proposals, total, err := s.gov.ListProposals(ctx, filter)
	if err != nil {
		return api.Err(err, c)
	}
	return api.Pagination(page, limit, total, proposals, c)
}

func (s *Server) ProposalEvents(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	events, err := s.gov.ProposalEvents(ctx, c.Param("id"))
	if err != nil {
		return api.Err(err, c)
	}
	return api.Success(events, c)
}

func (s *Server) PublishProposal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	id := c.Param("id")
	proposal, err := s.gov.PublishProposal(ctx, id)
	if err != nil {
		return api.Err(err, c)
	}
	s.invalidateProposal(ctx, id)
	return api.Success(proposal, c)
}

func (s *Server) SubmitSponsorship(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	id := c.Param("id")
	var req struct {
		Sponsor     string `json:"sponsor"`
		VotingPower string `json:"votingPower"`
	}
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	result, err := s.gov.SubmitSponsorship(ctx, id, req.Sponsor, req.VotingPower)
	if err != nil {
		return api.Err(err, c)
	}
	s.invalidateProposal(ctx, id)
	return api.Success(result, c)
}

func (s *Server) SponsorshipStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	status, err := s.gov.GetSponsorshipStatus(ctx, c.Param("id"))
	if err != nil {
		return api.Err(err, c)
	}
	return api.Success(status, c)
}

func (s *Server) RecordDeposit(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	id := c.Param("id")
	var req struct {
		TxRef  string `json:"txRef"`
		Amount string `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	result, err := s.gov.RecordDeposit(ctx, id, req.TxRef, req.Amount)
	if err != nil {
		return api.Err(err, c)
	}
	s.invalidateProposal(ctx, id)
	return api.Success(result, c)
}

func (s *Server) invalidateProposal(ctx context.Context, id string) {
	if err := s.cacheClient.InvalidateProposal(ctx, id); err != nil {
		s.Logger.Debug("cannot invalidate proposal cache", zap.String("id", id), zap.Error(err))
	}
}
