// Package api
package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo"
	"github.com/stretchr/testify/assert"

	"github.com/liftchain/governance-backend/types"
)

func respond(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	assert.NoError(t, Err(err, c))
	return rec
}

func TestErrStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{types.ErrProposalNotFound, http.StatusNotFound},
		{types.ErrMilestoneNotFound, http.StatusNotFound},
		{types.ErrAlreadySponsored, http.StatusConflict},
		{types.ErrAlreadyExists, http.StatusConflict},
		{&types.InvalidStateError{Entity: "proposal", Current: "DRAFT", Expected: "QUEUED"}, http.StatusConflict},
		{&types.PreconditionError{Unmet: []string{"deposit not paid"}}, http.StatusPreconditionFailed},
		{&types.MissingEvidenceError{Missing: []string{"invoice"}}, http.StatusPreconditionFailed},
		{&types.TimelockNotReadyError{RemainingSeconds: 60}, http.StatusTooEarly},
		{types.ErrTimelockExpired, http.StatusGone},
		{types.ErrNotProposer, http.StatusForbidden},
		{types.ErrVotingEnded, http.StatusBadRequest},
		{types.ErrNoVotingPower, http.StatusBadRequest},
		{types.ErrUnsupportedChain, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := respond(t, tc.err)
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}
}

func TestErrUnknownIsInternal(t *testing.T) {
	rec := respond(t, assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
