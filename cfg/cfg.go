// Package cfg
package cfg

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ModeDev        = "dev"
	ModeProduction = "prod"
)

type ChainConfig struct {
	URL             string
	GovernanceSMC   string
	TreasuryAddress string
}

type GovernanceConfig struct {
	ServerMode        string
	Port              string
	HttpRequestSecret string

	LogLevel  string
	SentryDSN string

	StorageDriver  string
	StorageURI     string
	StorageDB      string
	StorageMinConn int
	StorageMaxConn int
	StorageIsFlush bool

	CacheEngine      string
	CacheURL         string
	CacheDB          int
	CacheIsFlush     bool
	CacheExpiredTime time.Duration

	// Chains is keyed by chain id. Entries come from CHAIN_RPC_URLS and
	// GOVERNANCE_CONTRACTS, both comma-separated "chainId=value" lists.
	Chains map[uint64]*ChainConfig

	// Fallback when the chain total supply read fails, decimal string.
	DefaultTotalSupply string

	DocStoreBucket string
	DocStoreRegion string

	PollerInterval  time.Duration
	ExecutorAddress string
}

func New() (GovernanceConfig, error) {
	storageMinConnStr := os.Getenv("STORAGE_MIN_CONN")
	storageMinConn, err := strconv.Atoi(storageMinConnStr)
	if err != nil {
		storageMinConn = 8
	}
	storageMaxConnStr := os.Getenv("STORAGE_MAX_CONN")
	storageMaxConn, err := strconv.Atoi(storageMaxConnStr)
	if err != nil {
		storageMaxConn = 32
	}
	storageIsFlushStr := os.Getenv("STORAGE_IS_FLUSH")
	storageIsFlush, err := strconv.ParseBool(storageIsFlushStr)
	if err != nil {
		storageIsFlush = false
	}

	cacheDBStr := os.Getenv("CACHE_DB")
	cacheDB, err := strconv.Atoi(cacheDBStr)
	if err != nil {
		cacheDB = 0
	}
	cacheIsFlushStr := os.Getenv("CACHE_IS_FLUSH")
	cacheIsFlush, err := strconv.ParseBool(cacheIsFlushStr)
	if err != nil {
		cacheIsFlush = false
	}
	cacheExpiredTimeStr := os.Getenv("CACHE_EXPIRED_TIME")
	cacheExpiredTime, err := strconv.Atoi(cacheExpiredTimeStr)
	if err != nil {
		cacheExpiredTime = 60
	}

	pollerIntervalStr := os.Getenv("POLLER_INTERVAL")
	pollerInterval, err := time.ParseDuration(pollerIntervalStr)
	if err != nil {
		pollerInterval = 30 * time.Second
	}

	chains := make(map[uint64]*ChainConfig)
	for _, entry := range splitPairs(os.Getenv("CHAIN_RPC_URLS")) {
		chains[entry.chainID] = &ChainConfig{URL: entry.value}
	}
	for _, entry := range splitPairs(os.Getenv("GOVERNANCE_CONTRACTS")) {
		c, ok := chains[entry.chainID]
		if !ok {
			c = &ChainConfig{}
			chains[entry.chainID] = c
		}
		c.GovernanceSMC = entry.value
	}

	defaultSupply := os.Getenv("DEFAULT_TOTAL_SUPPLY")
	if defaultSupply == "" {
		defaultSupply = "5000000000000000000000000000"
	}

	cfg := GovernanceConfig{
		ServerMode:        os.Getenv("SERVER_MODE"),
		Port:              os.Getenv("PORT"),
		HttpRequestSecret: os.Getenv("HTTP_REQUEST_SECRET"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		SentryDSN:         os.Getenv("SENTRY_DSN"),

		StorageDriver:  os.Getenv("STORAGE_DRIVER"),
		StorageURI:     os.Getenv("STORAGE_URI"),
		StorageDB:      os.Getenv("STORAGE_DB"),
		StorageMinConn: storageMinConn,
		StorageMaxConn: storageMaxConn,
		StorageIsFlush: storageIsFlush,

		CacheEngine:      os.Getenv("CACHE_ENGINE"),
		CacheURL:         os.Getenv("CACHE_URL"),
		CacheDB:          cacheDB,
		CacheIsFlush:     cacheIsFlush,
		CacheExpiredTime: time.Duration(cacheExpiredTime) * time.Second,

		Chains:             chains,
		DefaultTotalSupply: defaultSupply,

		DocStoreBucket: os.Getenv("DOC_STORE_BUCKET"),
		DocStoreRegion: os.Getenv("DOC_STORE_REGION"),

		PollerInterval:  pollerInterval,
		ExecutorAddress: os.Getenv("EXECUTOR_ADDRESS"),
	}
	if cfg.Port == "" {
		cfg.Port = ":3000"
	}
	return cfg, nil
}

type chainPair struct {
	chainID uint64
	value   string
}

func splitPairs(raw string) []chainPair {
	if raw == "" {
		return nil
	}
	var pairs []chainPair
	for _, part := range strings.Split(raw, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		id, err := strconv.ParseUint(kv[0], 10, 64)
		if err != nil {
			continue
		}
		pairs = append(pairs, chainPair{chainID: id, value: kv[1]})
	}
	return pairs
}
