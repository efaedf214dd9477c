package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/cfg"
	"github.com/liftchain/governance-backend/chain"
	"github.com/liftchain/governance-backend/db"
	"github.com/liftchain/governance-backend/docstore"
	"github.com/liftchain/governance-backend/gov"
)

// The poller drives the time-based edges of the lifecycle: it executes queued
// proposals inside their grace window and surfaces milestone worklists.
func main() {
	if err := godotenv.Load(); err != nil {
		panic(err.Error())
	}

	serviceCfg, err := cfg.New()
	if err != nil {
		panic(err.Error())
	}

	logger, err := newLogger(serviceCfg)
	if err != nil {
		panic("cannot init logger")
	}
	logger.Info("Start governance poller...")

	defer func() {
		if err := recover(); err != nil {
			logger.Error("cannot recover")
		}
		if err := logger.Sync(); err != nil {
			logger.Error("cannot sync log")
		}
	}()

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         serviceCfg.SentryDSN,
		Environment: serviceCfg.ServerMode,
	}); err != nil {
		panic(err)
	}
	defer sentry.Flush(2 * time.Second)

	govService, err := newGovService(serviceCfg, logger)
	if err != nil {
		panic(err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	ticker := time.NewTicker(serviceCfg.PollerInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stop governance poller")
			return
		case <-ticker.C:
			runExecutable(ctx, govService, serviceCfg.ExecutorAddress, logger)
			runWorklists(ctx, govService, logger)
		}
	}
}

func newGovService(serviceCfg cfg.GovernanceConfig, logger *zap.Logger) (*gov.Service, error) {
	dbClient, err := db.NewClient(db.Config{
		DbAdapter: db.Adapter(serviceCfg.StorageDriver),
		DbName:    serviceCfg.StorageDB,
		URL:       serviceCfg.StorageURI,
		MinConn:   serviceCfg.StorageMinConn,
		MaxConn:   serviceCfg.StorageMaxConn,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	endpoints := make([]chain.Endpoint, 0, len(serviceCfg.Chains))
	for chainID, chainCfg := range serviceCfg.Chains {
		endpoints = append(endpoints, chain.Endpoint{
			ChainID:       chainID,
			URL:           chainCfg.URL,
			GovernanceSMC: chainCfg.GovernanceSMC,
		})
	}
	chainClient, err := chain.NewClient(chain.Config{
		Endpoints: endpoints,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	docStore, err := docstore.NewS3(docstore.S3Config{
		Bucket: serviceCfg.DocStoreBucket,
		Region: serviceCfg.DocStoreRegion,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	return gov.New(gov.Config{
		DB:                 dbClient,
		Chain:              chainClient,
		DocStore:           docStore,
		DefaultTotalSupply: serviceCfg.DefaultTotalSupply,
		Logger:             logger,
	})
}

func runExecutable(ctx context.Context, govService *gov.Service, executor string, logger *zap.Logger) {
	executable, err := govService.ListExecutable(ctx)
	if err != nil {
		logger.Warn("cannot list executable proposals", zap.Error(err))
		return
	}
	for _, proposal := range executable {
		result, err := govService.Execute(ctx, proposal.ID, executor)
		if err != nil {
			logger.Warn("cannot execute proposal", zap.String("id", proposal.ID), zap.Error(err))
			continue
		}
		if !result.Executed {
			logger.Warn("proposal execution failed, will retry",
				zap.String("id", proposal.ID),
				zap.String("reason", result.FailureReason))
			continue
		}
		logger.Info("Proposal executed", zap.String("id", proposal.ID), zap.String("txRef", result.TxRef))
	}
}

func runWorklists(ctx context.Context, govService *gov.Service, logger *zap.Logger) {
	worklists, err := govService.MilestonesRequiringAction(ctx)
	if err != nil {
		logger.Warn("cannot build milestone worklists", zap.Error(err))
		return
	}
	logger.Info("Milestone worklists",
		zap.Int("needSubmission", len(worklists.NeedSubmission)),
		zap.Int("needReview", len(worklists.NeedReview)),
		zap.Int("challengeable", len(worklists.Challengeable)))
}
