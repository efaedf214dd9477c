package server

import (
	"github.com/labstack/echo"

	"github.com/liftchain/governance-backend/api"
)

func (s *Server) Register(gr *echo.Group) {
	gr.GET("/ping", func(c echo.Context) error {
		return api.OK.Build(c)
	})

	s.registerProposalService(gr)
	s.registerVotingService(gr)
	s.registerForwardService(gr)
	s.registerInternalService(gr)
}

func (s *Server) registerProposalService(gr *echo.Group) {
	proposalGr := gr.Group("/proposals")
	proposalGr.POST("", s.CreateProposal)
	proposalGr.GET("", s.Proposals)
	proposalGr.GET("/executable", s.ExecutableProposals)
	proposalGr.GET("/:id", s.Proposal)
	proposalGr.GET("/:id/events", s.ProposalEvents)
	proposalGr.POST("/:id/publish", s.PublishProposal)
	proposalGr.POST("/:id/sponsorships", s.SubmitSponsorship)
	proposalGr.GET("/:id/sponsorships", s.SponsorshipStatus)
	proposalGr.POST("/:id/deposit", s.RecordDeposit)
	proposalGr.GET("/:id/forwards", s.ProposalForwards)
}

func (s *Server) registerVotingService(gr *echo.Group) {
	proposalGr := gr.Group("/proposals")
	proposalGr.POST("/:id/voting/start", s.StartVoting)
	proposalGr.POST("/:id/votes", s.CastVote)
	proposalGr.GET("/:id/quorum", s.Quorum)
	proposalGr.POST("/:id/finalize", s.FinalizeVoting)
	proposalGr.POST("/:id/execute", s.ExecuteProposal)
	proposalGr.POST("/:id/cancel", s.CancelProposal)
}

func (s *Server) registerForwardService(gr *echo.Group) {
	forwardGr := gr.Group("/forwards")
	forwardGr.POST("", s.CreateForward)
	forwardGr.GET("/:id", s.Forward)

	milestoneGr := gr.Group("/milestones")
	milestoneGr.GET("/worklists", s.MilestoneWorklists)
	milestoneGr.POST("/:id/evidence", s.SubmitEvidence)
	milestoneGr.POST("/:id/challenges", s.ChallengeMilestone)
	milestoneGr.POST("/:id/accept", s.AcceptMilestone)

	challengeGr := gr.Group("/challenges")
	challengeGr.POST("/:id/resolve", s.ResolveChallenge)
}

func (s *Server) registerInternalService(gr *echo.Group) {
	internalGr := gr.Group("/internal")
	internalGr.POST("/users", s.UpsertUser)
}
