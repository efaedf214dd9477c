// Package api
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo"

	"github.com/liftchain/governance-backend/types"
)

var (
	OK             = EchoResponse{StatusCode: http.StatusOK, Code: 1000, Msg: "Success"}
	InternalServer = EchoResponse{StatusCode: http.StatusInternalServerError, Code: 1100, Msg: "Server busy..."}
	Invalid        = EchoResponse{StatusCode: http.StatusBadRequest, Code: 1101, Msg: "Bad request"}
	Unauthorized   = EchoResponse{StatusCode: http.StatusUnauthorized, Code: 401, Msg: "Unauthorized"}
)

type EchoResponse struct {
	StatusCode int         `json:"-"`
	Code       int         `json:"code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data,omitempty"`
}

func (r EchoResponse) SetData(data interface{}) EchoResponse {
	r.Data = data
	return r
}

func (r EchoResponse) Build(c echo.Context) error {
	return c.JSON(r.StatusCode, r)
}

type Paging struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Total uint64 `json:"total"`
}

func Success(data interface{}, c echo.Context) error {
	return OK.SetData(data).Build(c)
}

func Pagination(page, limit int, total uint64, data interface{}, c echo.Context) error {
	return OK.SetData(struct {
		Page  int         `json:"page"`
		Limit int         `json:"limit"`
		Total uint64      `json:"total"`
		Data  interface{} `json:"data"`
	}{
		Page:  page,
		Limit: limit,
		Total: total,
		Data:  data,
	}).Build(c)
}

// Err maps domain errors onto HTTP responses so handlers stay one-liners.
func Err(err error, c echo.Context) error {
	var (
		invalidState    *types.InvalidStateError
		precondition    *types.PreconditionError
		missingEvidence *types.MissingEvidenceError
		timelock        *types.TimelockNotReadyError
	)
	switch {
	case errors.Is(err, types.ErrProposalNotFound),
		errors.Is(err, types.ErrForwardNotFound),
		errors.Is(err, types.ErrMilestoneNotFound),
		errors.Is(err, types.ErrChallengeNotFound),
		errors.Is(err, types.ErrUserNotFound):
		return build(http.StatusNotFound, 1404, err.Error(), nil, c)
	case errors.Is(err, types.ErrAlreadySponsored),
		errors.Is(err, types.ErrAlreadyExists):
		return build(http.StatusConflict, 1409, err.Error(), nil, c)
	case errors.As(err, &invalidState):
		return build(http.StatusConflict, 1409, err.Error(), nil, c)
	case errors.As(err, &precondition):
		return build(http.StatusPreconditionFailed, 1412, err.Error(), precondition.Unmet, c)
	case errors.As(err, &missingEvidence):
		return build(http.StatusPreconditionFailed, 1412, err.Error(), missingEvidence.Missing, c)
	case errors.As(err, &timelock):
		return build(http.StatusTooEarly, 1425, err.Error(), nil, c)
	case errors.Is(err, types.ErrTimelockExpired):
		return build(http.StatusGone, 1410, err.Error(), nil, c)
	case errors.Is(err, types.ErrNotProposer):
		return build(http.StatusForbidden, 1403, err.Error(), nil, c)
	case errors.Is(err, types.ErrVotingEnded),
		errors.Is(err, types.ErrNoVotingPower),
		errors.Is(err, types.ErrUnsupportedChain),
		errors.Is(err, types.ErrUnsupportedCategory):
		return build(http.StatusBadRequest, 1101, err.Error(), nil, c)
	}
	return InternalServer.Build(c)
}

func build(statusCode, code int, msg string, data interface{}, c echo.Context) error {
	return EchoResponse{StatusCode: statusCode, Code: code, Msg: msg, Data: data}.Build(c)
}
