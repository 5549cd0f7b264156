// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerror "github.com/bill-tracker/backend/internal/domain/error"
	"github.com/bill-tracker/backend/internal/integration/entrypoint/dto"
)

// handleError maps coded domain errors to HTTP responses.
func handleError(ctx *gin.Context, err error) {
	var billErr *domainerror.BillError
	if errors.As(err, &billErr) {
		ctx.JSON(statusCodeForBillError(billErr.Code), dto.ErrorResponse{
			Error: billErr.Message,
			Code:  string(billErr.Code),
		})
		return
	}

	var txnErr *domainerror.TransactionError
	if errors.As(err, &txnErr) {
		ctx.JSON(statusCodeForTransactionError(txnErr.Code), dto.ErrorResponse{
			Error: txnErr.Message,
			Code:  string(txnErr.Code),
		})
		return
	}

	var payErr *domainerror.PaymentError
	if errors.As(err, &payErr) {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: payErr.Message,
			Code:  string(payErr.Code),
		})
		return
	}

	slog.Error("Request failed", "path", ctx.FullPath(), "error", err)
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}

// statusCodeForBillError maps bill error codes to HTTP status codes.
func statusCodeForBillError(code domainerror.BillErrorCode) int {
	switch code {
	case domainerror.ErrCodeBillNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeBillArchived, domainerror.ErrCodeBillStateChanged:
		return http.StatusConflict
	case domainerror.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}

// statusCodeForTransactionError maps transaction error codes to HTTP status codes.
func statusCodeForTransactionError(code domainerror.TransactionErrorCode) int {
	if code == domainerror.ErrCodeTransactionNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// parseIDParam reads a UUID path parameter, writing a 400 response when it is malformed.
func parseIDParam(ctx *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid " + label + " ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}

func badRequest(ctx *gin.Context, message string, code string) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
