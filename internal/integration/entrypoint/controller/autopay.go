// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bill-tracker/backend/internal/application/usecase/autopay"
	"github.com/bill-tracker/backend/internal/integration/entrypoint/dto"
)

// AutoPayController exposes manual triggers for the daily batch jobs.
type AutoPayController struct {
	runUseCase   *autopay.RunAutoPayUseCase
	sweepUseCase *autopay.SweepOverdueUseCase
}

// NewAutoPayController creates a new auto-pay controller instance.
func NewAutoPayController(
	runUseCase *autopay.RunAutoPayUseCase,
	sweepUseCase *autopay.SweepOverdueUseCase,
) *AutoPayController {
	return &AutoPayController{
		runUseCase:   runUseCase,
		sweepUseCase: sweepUseCase,
	}
}

// Run handles POST /autopay/run requests.
// Per-bill failures are reported in the body; the request itself succeeds.
func (c *AutoPayController) Run(ctx *gin.Context) {
	output, err := c.runUseCase.Execute(ctx.Request.Context())
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToAutoPayRunResponse(output))
}

// Sweep handles POST /autopay/sweep requests.
func (c *AutoPayController) Sweep(ctx *gin.Context) {
	output, err := c.sweepUseCase.Execute(ctx.Request.Context())
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToOverdueSweepResponse(output))
}
