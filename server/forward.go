// Package server
package server

import (
	"context"

	"github.com/labstack/echo"

	"github.com/liftchain/governance-backend/api"
	"github.com/liftchain/governance-backend/gov"
	"github.com/liftchain/governance-backend/types"
)

func (s *Server) CreateForward(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	var req gov.CreateForwardRequest
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	detail, err := s.gov.CreateForward(ctx, &req)
	if err != nil {
		return api.Err(err, c)
	}
	return api.Success(detail, c)
}

func (s *Server) Forward(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	detail, err := s.gov.GetForward(ctx, c.Param("id"))
	if err != nil {
		return api.Err(err, c)
	}
	return api.Success(detail, c)
}

func (s *Server) ProposalForwards(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	forwards, err := s.gov.ListForwards(ctx, c.Param("id"))
	if err != nil {
		return api.Err(err, c)
	}
	return api.Success(forwards, c)
}

func (s *Server) SubmitEvidence(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	var req struct {
		Submitter string               `json:"submitter"`
		Evidence  []types.EvidenceItem `json:"evidence"`
	}
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	result, err := s.gov.SubmitMilestoneEvidence(ctx, c.Param("id"), req.Submitter, req.Evidence)
	if err != nil {
		return api.Err(err, c)
	}
	return api.Success(result, c)
}

func (s *Server) ChallengeMilestone(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	var req struct {
		Challenger string `json:"challenger"`
		gov.ChallengeRequest
	}
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	challenge, err := s.gov.ChallengeMilestone(ctx, c.Param("id"), req.Challenger, &req.ChallengeRequest)
	if err != nil {
		return api.Err(err, c)
	}
	return api.Success(challenge, c)
}

func (s *Server) ResolveChallenge(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	var req struct {
		Resolver  string `json:"resolver"`
		Dismissed bool   `json:"dismissed"`
		Notes     string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	challenge, err := s.gov.ResolveChallenge(ctx, c.Param("id"), req.Resolver, req.Dismissed, req.Notes)
	if err != nil {
		return api.Err(err, c)
	}
	return api.Success(challenge, c)
}

func (s *Server) AcceptMilestone(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	var req struct {
		Verifier string `json:"verifier"`
		Notes    string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	result, err := s.gov.AcceptMilestone(ctx, c.Param("id"), req.Verifier, req.Notes)
	if err != nil {
		return api.Err(err, c)
	}
	return api.Success(result, c)
}

func (s *Server) MilestoneWorklists(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	worklists, err := s.gov.MilestonesRequiringAction(ctx)
	if err != nil {
		return api.Err(err, c)
	}
	return api.Success(worklists, c)
}
