// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/bill-tracker/backend/internal/integration/entrypoint/controller"
	"github.com/bill-tracker/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine             *gin.Engine
	healthController   *controller.HealthController
	billController     *controller.BillController
	paymentController  *controller.PaymentController
	forecastController *controller.ForecastController
	autoPayController  *controller.AutoPayController
	batchRateLimiter   *middleware.RateLimiter
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	billController *controller.BillController,
	paymentController *controller.PaymentController,
	forecastController *controller.ForecastController,
	autoPayController *controller.AutoPayController,
	batchRateLimiter *middleware.RateLimiter,
) *Router {
	return &Router{
		healthController:   healthController,
		billController:     billController,
		paymentController:  paymentController,
		forecastController: forecastController,
		autoPayController:  autoPayController,
		batchRateLimiter:   batchRateLimiter,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
// Route groups are skipped when their controller is nil (no database).
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	v1.GET("/health", r.healthController.Check)

	if r.billController != nil {
		bills := v1.Group("/bills")
		{
			bills.GET("", r.billController.List)
			bills.POST("", r.billController.Create)
			bills.GET("/:id", r.billController.Get)
			bills.PATCH("/:id", r.billController.Update)
			bills.DELETE("/:id", r.billController.Archive)
			bills.POST("/:id/payments", r.billController.Pay)
			if r.paymentController != nil {
				bills.GET("/:id/payments", r.paymentController.List)
			}
		}
	}

	if r.paymentController != nil {
		payments := v1.Group("/payments")
		{
			payments.PATCH("/:id", r.paymentController.Update)
			payments.DELETE("/:id", r.paymentController.Delete)
		}
	}

	if r.forecastController != nil {
		forecast := v1.Group("/forecast")
		{
			forecast.GET("", r.forecastController.Month)
			forecast.GET("/range", r.forecastController.Range)
		}
	}

	if r.autoPayController != nil {
		autoPay := v1.Group("/autopay")
		if r.batchRateLimiter != nil {
			autoPay.Use(r.batchRateLimiter.Middleware())
		}
		{
			autoPay.POST("/run", r.autoPayController.Run)
			autoPay.POST("/sweep", r.autoPayController.Sweep)
		}
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
