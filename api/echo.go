package api

import (
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"

	"github.com/liftchain/governance-backend/cfg"
)

// EchoServer define all API expose
type EchoServer interface {
	Register(gr *echo.Group)
}

func Start(srv EchoServer, cfg cfg.GovernanceConfig) {
	e := echo.New()

	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Gzip())

	v1Gr := e.Group("/api/v1")

	srv.Register(v1Gr)
	if err := e.Start(cfg.Port); err != nil {
		panic("cannot start echo server")
	}
}
