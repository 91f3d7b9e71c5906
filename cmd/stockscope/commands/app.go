package commands

import (
	"fmt"

	"github.com/kyh-dev/stockscope/internal/commentary"
	"github.com/kyh-dev/stockscope/internal/contracts"
	"github.com/kyh-dev/stockscope/internal/external/kis"
	"github.com/kyh-dev/stockscope/internal/external/krx"
	"github.com/kyh-dev/stockscope/internal/external/naver"
	"github.com/kyh-dev/stockscope/internal/external/yahoo"
	"github.com/kyh-dev/stockscope/internal/master"
	"github.com/kyh-dev/stockscope/internal/provider"
	"github.com/kyh-dev/stockscope/internal/store"
	"github.com/kyh-dev/stockscope/internal/valuation"
	"github.com/kyh-dev/stockscope/pkg/config"
	"github.com/kyh-dev/stockscope/pkg/database"
	"github.com/kyh-dev/stockscope/pkg/httputil"
	"github.com/kyh-dev/stockscope/pkg/logger"
	"github.com/kyh-dev/stockscope/pkg/redis"
)

// app holds everything a command needs after bootstrap.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	db        *database.DB
	redis     *redis.Client
	master    *master.Service
	store     *store.AnalysisStore
	valuation *valuation.Service
}

// newApp wires the full dependency graph from config.
// ⭐ SSOT: 의존성 조립은 이 함수에서만
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	if verbose {
		cfg.LogLevel = "debug"
		log = logger.New(cfg)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "stockscope")

	httpClient := httputil.New(log)

	kisClient := kis.NewClient(cfg.KIS, httpClient, log)
	naverClient := naver.NewClient(httpClient, log)
	// Yahoo는 전용 클라이언트 — 브라우저 User-Agent가 다른 호출에 섞이지 않게
	yahooClient := yahoo.NewClient(cfg.Yahoo, httputil.New(log), log)
	krxClient := krx.NewClient(httpClient, log)

	masterService := master.NewService(cfg.Master, httpClient, krxClient, log)
	analysisStore := store.NewAnalysisStore(db.Pool)

	router := provider.NewRouter(
		provider.NewKIS(kisClient, naverClient),
		provider.NewYahoo(yahooClient),
		cache,
		log,
	)

	var commentator contracts.Commentator
	if cfg.Anthropic.Enabled && cfg.Anthropic.APIKey != "" {
		commentator = commentary.New(cfg.Anthropic, log)
	}

	valuationService := valuation.NewService(router, masterService, yahooClient, analysisStore, commentator, log)

	return &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		redis:     redisClient,
		master:    masterService,
		store:     analysisStore,
		valuation: valuationService,
	}, nil
}

// close releases the app's connections.
func (a *app) close() {
	a.redis.Close()
	a.db.Close()
}
