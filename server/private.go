// Package server
package server

import (
	"context"
	"time"

	"github.com/labstack/echo"

	"github.com/liftchain/governance-backend/api"
	"github.com/liftchain/governance-backend/types"
)

// UpsertUser registers a governance identity. Internal route, guarded by the
// shared request secret.
func (s *Server) UpsertUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if c.Request().Header.Get("Authorization") != s.HttpRequestSecret {
		return api.Unauthorized.Build(c)
	}
	var req struct {
		Address string `json:"address"`
		Name    string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	if req.Address == "" {
		return api.Invalid.Build(c)
	}
	user := &types.User{
		Address:   req.Address,
		Name:      req.Name,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.dbClient.UpsertUser(ctx, user); err != nil {
		return api.Err(err, c)
	}
	return api.OK.Build(c)
}
