package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/crowdvault/backend/api/handler"
	"github.com/crowdvault/backend/internal/config"
	"github.com/crowdvault/backend/internal/infrastructure/journal"
	"github.com/crowdvault/backend/internal/infrastructure/monitor"
	pgInfra "github.com/crowdvault/backend/internal/infrastructure/postgres"
	redisInfra "github.com/crowdvault/backend/internal/infrastructure/redis"
	"github.com/crowdvault/backend/internal/infrastructure/stream"
	"github.com/crowdvault/backend/internal/middleware"
	"github.com/crowdvault/backend/internal/router"
	"github.com/crowdvault/backend/internal/services"
	"github.com/crowdvault/backend/internal/services/lifecycle"
	"github.com/crowdvault/backend/pkg/httpcontext"
	"github.com/crowdvault/backend/pkg/logger"
	"github.com/crowdvault/backend/repository/postgres"
	redisRepo "github.com/crowdvault/backend/repository/redis"
	"github.com/crowdvault/backend/usecase"
	daoUC "github.com/crowdvault/backend/usecase/dao"
	escrowUC "github.com/crowdvault/backend/usecase/escrow"
	fundingUC "github.com/crowdvault/backend/usecase/funding"
	governanceUC "github.com/crowdvault/backend/usecase/governance"
	redemptionUC "github.com/crowdvault/backend/usecase/redemption"
	upkeepUC "github.com/crowdvault/backend/usecase/upkeep"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.SignalContext(context.Background())
	defer cancel()

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	journalStore, err := journal.Open(cfg.Journal.Path, cfg.Journal.Bucket)
	if err != nil {
		zapLogger.Fatal("failed to open journal", zap.Error(err))
	}
	manager.Register("journal", func(ctx context.Context) error {
		return journalStore.Close()
	})

	var events usecase.EventPublisher
	if len(cfg.Stream.Brokers) > 0 {
		publisher := stream.NewPublisher(cfg.Stream.Brokers, cfg.Stream.Topic)
		manager.Register("stream", func(ctx context.Context) error {
			return publisher.Close()
		})
		events = publisher
	}

	mon := monitor.New(pool, redisClient, journalStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	repos := postgres.NewSet(pool)
	uow := postgres.NewUnitOfWork(pool)
	gate := &usecase.WriteGate{}
	cache := redisRepo.NewSummaryRepository(redisClient, cfg.Redis.SummaryTTL)
	audit := services.NewAuditRecorder(journalStore)
	emitter := usecase.NewEmitter(audit, events, cache, zapLogger)

	funding := fundingUC.New(repos, uow, gate, emitter, zapLogger)
	redemption := redemptionUC.New(repos, uow, gate, emitter, zapLogger)
	dao := daoUC.New(repos, uow, gate, emitter, daoUC.Config{
		MinLiveDuration: cfg.Engine.MinLiveDuration,
		ExchangeWindow:  cfg.Engine.ExchangeWindow,
		GracePeriod:     cfg.Engine.GracePeriod,
	}, zapLogger)
	governance := governanceUC.New(repos, uow, gate, emitter, zapLogger)
	escrow := escrowUC.New(repos, uow, gate, emitter, zapLogger)

	dispatcher := usecase.NewActionDispatcher()
	dispatcher.Register(usecase.ActionFinalizeRound, func(ctx context.Context, campaignID string) error {
		_, err := funding.FinalizeRound(ctx, campaignID, cfg.Engine.EscrowReleaseDelay)
		return err
	})
	dispatcher.Register(usecase.ActionCompleteExchange, dao.CompleteExchange)
	dispatcher.Register(usecase.ActionEnableEmergency, dao.EnableEmergency)

	upkeep := upkeepUC.New(repos, dispatcher, cfg.Engine.GracePeriod, zapLogger)

	runner := services.NewUpkeepRunner(upkeep, mon, cfg.Upkeep.Spec, zapLogger)
	runner.Start()
	manager.Register("upkeep_runner", func(ctx context.Context) error {
		runner.Stop(ctx)
		return nil
	})

	retention := services.NewRetentionSweeper(journalStore, cfg.Journal.RetentionDays, zapLogger)
	retention.Start()
	manager.Register("retention_sweeper", func(ctx context.Context) error {
		retention.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Campaign:   apiHandler.NewCampaignHandler(ctxAdapter, funding, journalStore, cfg.Engine.DefaultCommissionPercent, zapLogger),
		Funding:    apiHandler.NewFundingHandler(ctxAdapter, funding, zapLogger),
		Redemption: apiHandler.NewRedemptionHandler(ctxAdapter, redemption, zapLogger),
		DAO:        apiHandler.NewDAOHandler(ctxAdapter, dao, zapLogger),
		Governance: apiHandler.NewGovernanceHandler(ctxAdapter, governance, zapLogger),
		Escrow:     apiHandler.NewEscrowHandler(ctxAdapter, escrow, zapLogger),
		Upkeep:     apiHandler.NewUpkeepHandler(ctxAdapter, upkeep, zapLogger),
		Health:     apiHandler.NewHealthHandler(ctxAdapter, mon, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
