// Package dependency provides dependency injection for the application.
package dependency

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/bill-tracker/backend/config"
	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/application/usecase/autopay"
	"github.com/bill-tracker/backend/internal/application/usecase/bill"
	"github.com/bill-tracker/backend/internal/application/usecase/forecast"
	"github.com/bill-tracker/backend/internal/application/usecase/transaction"
	"github.com/bill-tracker/backend/internal/domain/billing"
	"github.com/bill-tracker/backend/internal/infra/scheduler"
	"github.com/bill-tracker/backend/internal/infra/server/router"
	"github.com/bill-tracker/backend/internal/integration/cache"
	"github.com/bill-tracker/backend/internal/integration/entrypoint/controller"
	"github.com/bill-tracker/backend/internal/integration/entrypoint/middleware"
	"github.com/bill-tracker/backend/internal/integration/persistence"
)

const rateLimiterCleanupSpec = "0 */10 * * * *"

// Injector holds all application dependencies.
type Injector struct {
	Config     *config.Config
	DB         *gorm.DB
	Router     *router.Router
	Processor  *billing.Processor
	Reconciler *autopay.StartupReconciler

	runAutoPay   *autopay.RunAutoPayUseCase
	sweepOverdue *autopay.SweepOverdueUseCase
	rateLimiter  *middleware.RateLimiter
}

// NewInjector creates a new dependency injector with all dependencies wired.
// A nil redisClient disables the forecast cache. A nil clock uses the wall clock.
func NewInjector(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, clock billing.Clock) *Injector {
	location := cfg.Billing.Location()
	processor := billing.NewProcessor(clock, location)

	// Create repositories
	billRepo := persistence.NewBillRepository(db)
	transactionRepo := persistence.NewTransactionRepository(db)

	var forecastCache adapter.ForecastCache
	var cacheHealthChecker controller.HealthChecker
	if redisClient != nil {
		forecastCache = cache.NewRedisForecastCache(redisClient, "")
		cacheHealthChecker = func() bool {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err() == nil
		}
	} else {
		forecastCache = cache.NewNoopForecastCache()
	}

	// Create bill use cases
	createBillUseCase := bill.NewCreateBillUseCase(billRepo, processor, forecastCache)
	listBillsUseCase := bill.NewListBillsUseCase(billRepo)
	getBillUseCase := bill.NewGetBillUseCase(billRepo, transactionRepo)
	updateBillUseCase := bill.NewUpdateBillUseCase(billRepo, transactionRepo, processor, forecastCache)
	archiveBillUseCase := bill.NewArchiveBillUseCase(billRepo, forecastCache)
	payBillUseCase := bill.NewPayBillUseCase(billRepo, transactionRepo, processor, forecastCache)

	// Create payment history use cases
	listTransactionsUseCase := transaction.NewListTransactionsUseCase(billRepo, transactionRepo)
	updateTransactionUseCase := transaction.NewUpdateTransactionUseCase(billRepo, transactionRepo, processor, forecastCache)
	deleteTransactionUseCase := transaction.NewDeleteTransactionUseCase(billRepo, transactionRepo, processor, forecastCache)

	// Create batch use cases
	runAutoPayUseCase := autopay.NewRunAutoPayUseCase(billRepo, transactionRepo, processor, forecastCache, cfg.Scheduler.MaxCatchUp)
	sweepOverdueUseCase := autopay.NewSweepOverdueUseCase(billRepo, processor, forecastCache)
	reconciler := autopay.NewStartupReconciler(sweepOverdueUseCase, runAutoPayUseCase)

	// Create forecast use cases
	projector := forecast.NewProjector(forecast.NewDefaultEstimationService(transactionRepo))
	monthForecastUseCase := forecast.NewGetMonthForecastUseCase(billRepo, projector, forecastCache, cfg.Redis.CacheTTL)
	projectRangeUseCase := forecast.NewProjectRangeUseCase(billRepo, projector)

	// Create controllers
	healthController := controller.NewHealthController(func() bool {
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, cacheHealthChecker)

	billController := controller.NewBillController(
		createBillUseCase,
		listBillsUseCase,
		getBillUseCase,
		updateBillUseCase,
		archiveBillUseCase,
		payBillUseCase,
		location,
	)

	paymentController := controller.NewPaymentController(
		listTransactionsUseCase,
		updateTransactionUseCase,
		deleteTransactionUseCase,
		location,
	)

	forecastController := controller.NewForecastController(
		monthForecastUseCase,
		projectRangeUseCase,
		processor.Today,
	)

	autoPayController := controller.NewAutoPayController(runAutoPayUseCase, sweepOverdueUseCase)

	// Create middleware
	// Use higher rate limits for E2E/test environments to prevent flaky tests
	var batchRateLimiter *middleware.RateLimiter
	if cfg.Server.Environment == "e2e" || cfg.Server.Environment == "test" {
		batchRateLimiter = middleware.NewRateLimiterWithConfig(1000, 1*time.Minute)
	} else {
		batchRateLimiter = middleware.NewRateLimiter()
	}

	// Create router
	r := router.NewRouter(
		healthController,
		billController,
		paymentController,
		forecastController,
		autoPayController,
		batchRateLimiter,
	)

	return &Injector{
		Config:       cfg,
		DB:           db,
		Router:       r,
		Processor:    processor,
		Reconciler:   reconciler,
		runAutoPay:   runAutoPayUseCase,
		sweepOverdue: sweepOverdueUseCase,
		rateLimiter:  batchRateLimiter,
	}
}

// RegisterJobs adds the daily overdue sweep, the auto-pay batch and the
// rate limiter cleanup to s.
func (i *Injector) RegisterJobs(s *scheduler.Scheduler) error {
	if err := s.Add("overdue-sweep", i.Config.Scheduler.OverdueSweepCron, func(ctx context.Context) error {
		_, err := i.sweepOverdue.Execute(ctx)
		return err
	}); err != nil {
		return err
	}

	if err := s.Add("autopay", i.Config.Scheduler.AutoPayCron, func(ctx context.Context) error {
		_, err := i.runAutoPay.Execute(ctx)
		return err
	}); err != nil {
		return err
	}

	return s.Add("rate-limiter-cleanup", rateLimiterCleanupSpec, func(context.Context) error {
		i.rateLimiter.Cleanup()
		return nil
	})
}
