// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bill-tracker/backend/internal/application/usecase/bill"
	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
	"github.com/bill-tracker/backend/internal/integration/entrypoint/dto"
)

// BillController handles bill endpoints.
type BillController struct {
	createUseCase  *bill.CreateBillUseCase
	listUseCase    *bill.ListBillsUseCase
	getUseCase     *bill.GetBillUseCase
	updateUseCase  *bill.UpdateBillUseCase
	archiveUseCase *bill.ArchiveBillUseCase
	payUseCase     *bill.PayBillUseCase
	location       *time.Location
}

// NewBillController creates a new bill controller instance.
// Request dates are read as calendar dates in location.
func NewBillController(
	createUseCase *bill.CreateBillUseCase,
	listUseCase *bill.ListBillsUseCase,
	getUseCase *bill.GetBillUseCase,
	updateUseCase *bill.UpdateBillUseCase,
	archiveUseCase *bill.ArchiveBillUseCase,
	payUseCase *bill.PayBillUseCase,
	location *time.Location,
) *BillController {
	return &BillController{
		createUseCase:  createUseCase,
		listUseCase:    listUseCase,
		getUseCase:     getUseCase,
		updateUseCase:  updateUseCase,
		archiveUseCase: archiveUseCase,
		payUseCase:     payUseCase,
		location:       location,
	}
}

// Create handles POST /bills requests.
func (c *BillController) Create(ctx *gin.Context) {
	var req dto.CreateBillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body: "+err.Error(), string(domainerror.ErrCodeMissingBillFields))
		return
	}

	dueDate, err := dto.ParseDate(req.DueDate, c.location)
	if err != nil {
		badRequest(ctx, "Invalid due date format, expected YYYY-MM-DD", string(domainerror.ErrCodeInvalidDueDate))
		return
	}

	endDate, err := dto.ParseOptionalDate(req.EndDate, c.location)
	if err != nil {
		badRequest(ctx, "Invalid end date format, expected YYYY-MM-DD", string(domainerror.ErrCodeInvalidEndDate))
		return
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), bill.CreateBillInput{
		Name:       req.Name,
		BaseAmount: req.AmountCents,
		DueDate:    dueDate,
		EndDate:    endDate,
		Frequency:  entity.Frequency(req.Frequency),
		IsAutoPay:  req.IsAutoPay,
		IsVariable: req.IsVariable,
		Tags:       req.Tags,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToBillResponse(output.Bill))
}

// List handles GET /bills requests.
// Query parameters: status, tag, include_archived.
func (c *BillController) List(ctx *gin.Context) {
	input := bill.ListBillsInput{
		Tag: ctx.Query("tag"),
	}

	if statusStr := ctx.Query("status"); statusStr != "" {
		status := entity.BillStatus(statusStr)
		input.Status = &status
	}

	if archivedStr := ctx.Query("include_archived"); archivedStr != "" {
		includeArchived, err := strconv.ParseBool(archivedStr)
		if err != nil {
			badRequest(ctx, "include_archived must be a boolean", string(domainerror.ErrCodeMissingBillFields))
			return
		}
		input.IncludeArchived = includeArchived
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBillListResponse(output.Bills))
}

// Get handles GET /bills/:id requests.
func (c *BillController) Get(ctx *gin.Context) {
	billID, ok := parseIDParam(ctx, "id", "bill")
	if !ok {
		return
	}

	output, err := c.getUseCase.Execute(ctx.Request.Context(), bill.GetBillInput{BillID: billID})
	if err != nil {
		handleError(ctx, err)
		return
	}

	response := dto.ToBillResponse(output.Bill)
	if output.Totals != nil {
		totals := dto.ToPaymentTotalsResponse(*output.Totals)
		response.Payments = &totals
	}
	ctx.JSON(http.StatusOK, response)
}

// Update handles PATCH /bills/:id requests.
func (c *BillController) Update(ctx *gin.Context) {
	billID, ok := parseIDParam(ctx, "id", "bill")
	if !ok {
		return
	}

	var req dto.UpdateBillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body: "+err.Error(), string(domainerror.ErrCodeMissingBillFields))
		return
	}

	endDate, err := dto.ParseOptionalDate(req.EndDate, c.location)
	if err != nil {
		badRequest(ctx, "Invalid end date format, expected YYYY-MM-DD", string(domainerror.ErrCodeInvalidEndDate))
		return
	}

	output, err := c.updateUseCase.Execute(ctx.Request.Context(), bill.UpdateBillInput{
		BillID:       billID,
		Name:         req.Name,
		BaseAmount:   req.AmountCents,
		EndDate:      endDate,
		ClearEndDate: req.ClearEndDate,
		IsAutoPay:    req.IsAutoPay,
		IsVariable:   req.IsVariable,
		Tags:         req.Tags,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBillResponse(output.Bill))
}

// Archive handles DELETE /bills/:id requests.
// Bills are archived, never removed, so their payment history survives.
func (c *BillController) Archive(ctx *gin.Context) {
	billID, ok := parseIDParam(ctx, "id", "bill")
	if !ok {
		return
	}

	if err := c.archiveUseCase.Execute(ctx.Request.Context(), bill.ArchiveBillInput{BillID: billID}); err != nil {
		handleError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// Pay handles POST /bills/:id/payments requests.
func (c *BillController) Pay(ctx *gin.Context) {
	billID, ok := parseIDParam(ctx, "id", "bill")
	if !ok {
		return
	}

	var req dto.PayBillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body: "+err.Error(), string(domainerror.ErrCodeMissingTransactionFields))
		return
	}

	paidAt, err := dto.ParseDate(req.PaidAt, c.location)
	if err != nil {
		badRequest(ctx, "Invalid paid_at format, expected YYYY-MM-DD", string(domainerror.ErrCodeInvalidPaymentDate))
		return
	}

	advanceCycle := true
	if req.AdvanceCycle != nil {
		advanceCycle = *req.AdvanceCycle
	}

	output, err := c.payUseCase.Execute(ctx.Request.Context(), bill.PayBillInput{
		BillID:       billID,
		Amount:       req.AmountCents,
		PaidAt:       paidAt,
		Notes:        req.Notes,
		AdvanceCycle: advanceCycle,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.PayBillResponse{
		Payment:      dto.ToPaymentResponse(output.Transaction),
		Bill:         dto.ToBillResponse(output.Bill),
		IsHistorical: output.IsHistorical,
		Advanced:     output.Advanced,
		BillEnded:    output.BillEnded,
	})
}
