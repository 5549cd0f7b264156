// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bill-tracker/backend/internal/application/usecase/transaction"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
	"github.com/bill-tracker/backend/internal/integration/entrypoint/dto"
)

// PaymentController handles payment history endpoints.
type PaymentController struct {
	listUseCase   *transaction.ListTransactionsUseCase
	updateUseCase *transaction.UpdateTransactionUseCase
	deleteUseCase *transaction.DeleteTransactionUseCase
	location      *time.Location
}

// NewPaymentController creates a new payment controller instance.
func NewPaymentController(
	listUseCase *transaction.ListTransactionsUseCase,
	updateUseCase *transaction.UpdateTransactionUseCase,
	deleteUseCase *transaction.DeleteTransactionUseCase,
	location *time.Location,
) *PaymentController {
	return &PaymentController{
		listUseCase:   listUseCase,
		updateUseCase: updateUseCase,
		deleteUseCase: deleteUseCase,
		location:      location,
	}
}

// List handles GET /bills/:id/payments requests.
func (c *PaymentController) List(ctx *gin.Context) {
	billID, ok := parseIDParam(ctx, "id", "bill")
	if !ok {
		return
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), transaction.ListTransactionsInput{BillID: billID})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToPaymentListResponse(output.Transactions, output.Totals))
}

// Update handles PATCH /payments/:id requests.
func (c *PaymentController) Update(ctx *gin.Context) {
	transactionID, ok := parseIDParam(ctx, "id", "payment")
	if !ok {
		return
	}

	var req dto.UpdatePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body: "+err.Error(), string(domainerror.ErrCodeMissingTransactionFields))
		return
	}

	paidAt, err := dto.ParseOptionalDate(req.PaidAt, c.location)
	if err != nil {
		badRequest(ctx, "Invalid paid_at format, expected YYYY-MM-DD", string(domainerror.ErrCodeInvalidPaymentDate))
		return
	}

	output, err := c.updateUseCase.Execute(ctx.Request.Context(), transaction.UpdateTransactionInput{
		TransactionID: transactionID,
		Amount:        req.AmountCents,
		PaidAt:        paidAt,
		Notes:         req.Notes,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	payment := dto.ToPaymentResponse(output.Transaction)
	ctx.JSON(http.StatusOK, dto.PaymentChangeResponse{
		Payment:    &payment,
		Bill:       dto.ToBillResponse(output.Bill),
		Recomputed: output.Recomputed,
	})
}

// Delete handles DELETE /payments/:id requests.
func (c *PaymentController) Delete(ctx *gin.Context) {
	transactionID, ok := parseIDParam(ctx, "id", "payment")
	if !ok {
		return
	}

	output, err := c.deleteUseCase.Execute(ctx.Request.Context(), transaction.DeleteTransactionInput{
		TransactionID: transactionID,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.PaymentChangeResponse{
		Bill:       dto.ToBillResponse(output.Bill),
		Recomputed: output.Recomputed,
		Reverted:   output.Reverted,
	})
}
