// Package server
package server

import (
	"context"

	"github.com/labstack/echo"
	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/api"
	"github.com/liftchain/governance-backend/gov"
)

func (s *Server) StartVoting(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	id := c.Param("id")
	proposal, err := s.gov.StartVotingPeriod(ctx, id)
	if err != nil {
		return api.Err(err, c)
	}
	s.invalidateProposal(ctx, id)
	return api.Success(proposal, c)
}

func (s *Server) CastVote(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	var req gov.VoteRequest
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	req.ProposalID = c.Param("id")
	result, err := s.gov.RecordVote(ctx, &req)
	if err != nil {
		return api.Err(err, c)
	}
	s.invalidateProposal(ctx, req.ProposalID)
	return api.Success(result, c)
}

func (s *Server) Quorum(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	result, err := s.gov.CheckQuorum(ctx, c.Param("id"))
	if err != nil {
		return api.Err(err, c)
	}
	return api.Success(result, c)
}

func (s *Server) FinalizeVoting(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	id := c.Param("id")
	result, err := s.gov.FinalizeVotingIfEnded(ctx, id)
	if err != nil {
		return api.Err(err, c)
	}
	s.invalidateProposal(ctx, id)
	return api.Success(result, c)
}

func (s *Server) ExecuteProposal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	id := c.Param("id")
	var req struct {
		Executor string `json:"executor"`
	}
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	result, err := s.gov.Execute(ctx, id, req.Executor)
	if err != nil {
		return api.Err(err, c)
	}
	s.invalidateProposal(ctx, id)
	return api.Success(result, c)
}

func (s *Server) CancelProposal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	id := c.Param("id")
	var req struct {
		Canceller string `json:"canceller"`
		Reason    string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	proposal, err := s.gov.Cancel(ctx, id, req.Canceller, req.Reason)
	if err != nil {
		return api.Err(err, c)
	}
	s.invalidateProposal(ctx, id)
	return api.Success(proposal, c)
}

func (s *Server) ExecutableProposals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	proposals, err := s.cacheClient.ExecutableList(ctx)
	if err == nil && proposals != nil {
		return api.Success(proposals, c)
	}
	proposals, err = s.gov.ListExecutable(ctx)
	if err != nil {
		return api.Err(err, c)
	}
	if err := s.cacheClient.UpdateExecutableList(ctx, proposals); err != nil {
		s.Logger.Debug("cannot cache executable list", zap.Error(err))
	}
	return api.Success(proposals, c)
}
