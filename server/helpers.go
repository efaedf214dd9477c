// Package server
package server

import (
	"strconv"

	"github.com/labstack/echo"

	"github.com/liftchain/governance-backend/types"
)

func getPagingOption(c echo.Context) (*types.Pagination, int, int) {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil {
		limit = 25
	}
	pagination := &types.Pagination{
		Skip:  (page - 1) * limit,
		Limit: limit,
	}
	pagination.Sanitize()
	return pagination, page, pagination.Limit
}
