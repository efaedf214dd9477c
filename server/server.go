// Package server exposes the governance engine over HTTP. It is a thin
// routing layer; all lifecycle rules live in gov.
package server

import (
	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/cache"
	"github.com/liftchain/governance-backend/cfg"
	"github.com/liftchain/governance-backend/chain"
	"github.com/liftchain/governance-backend/db"
	"github.com/liftchain/governance-backend/docstore"
	"github.com/liftchain/governance-backend/gov"
)

type Config struct {
	Cfg cfg.GovernanceConfig

	Logger *zap.Logger
}

// Server instance kind of a router, which receive request from client
// and control how we react those request
type Server struct {
	Logger            *zap.Logger
	HttpRequestSecret string

	gov         *gov.Service
	dbClient    db.Client
	cacheClient cache.Client
	chainClient chain.ClientInterface
}

func New(srvCfg Config) (*Server, error) {
	c := srvCfg.Cfg
	dbClient, err := db.NewClient(db.Config{
		DbAdapter: db.Adapter(c.StorageDriver),
		DbName:    c.StorageDB,
		URL:       c.StorageURI,
		MinConn:   c.StorageMinConn,
		MaxConn:   c.StorageMaxConn,
		FlushDB:   c.StorageIsFlush,
		Logger:    srvCfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	endpoints := make([]chain.Endpoint, 0, len(c.Chains))
	for chainID, chainCfg := range c.Chains {
		endpoints = append(endpoints, chain.Endpoint{
			ChainID:       chainID,
			URL:           chainCfg.URL,
			GovernanceSMC: chainCfg.GovernanceSMC,
		})
	}
	chainClient, err := chain.NewClient(chain.Config{
		Endpoints: endpoints,
		Logger:    srvCfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	cacheClient, err := cache.New(cache.Config{
		Adapter:            cache.Adapter(c.CacheEngine),
		URL:                c.CacheURL,
		DB:                 c.CacheDB,
		IsFlush:            c.CacheIsFlush,
		DefaultExpiredTime: c.CacheExpiredTime,
		Logger:             srvCfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	docStore, err := docstore.NewS3(docstore.S3Config{
		Bucket: c.DocStoreBucket,
		Region: c.DocStoreRegion,
		Logger: srvCfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	govService, err := gov.New(gov.Config{
		DB:                 dbClient,
		Chain:              chainClient,
		DocStore:           docStore,
		DefaultTotalSupply: c.DefaultTotalSupply,
		Logger:             srvCfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Server{
		Logger:            srvCfg.Logger,
		HttpRequestSecret: c.HttpRequestSecret,
		gov:               govService,
		dbClient:          dbClient,
		cacheClient:       cacheClient,
		chainClient:       chainClient,
	}, nil
}
