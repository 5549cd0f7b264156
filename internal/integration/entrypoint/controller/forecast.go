// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bill-tracker/backend/internal/application/usecase/forecast"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
	"github.com/bill-tracker/backend/internal/integration/entrypoint/dto"
)

const defaultRangeMonths = 12

// ForecastController handles forecast endpoints.
type ForecastController struct {
	monthUseCase *forecast.GetMonthForecastUseCase
	rangeUseCase *forecast.ProjectRangeUseCase
	today        func() time.Time
}

// NewForecastController creates a new forecast controller instance.
// today supplies the default month when none is requested.
func NewForecastController(
	monthUseCase *forecast.GetMonthForecastUseCase,
	rangeUseCase *forecast.ProjectRangeUseCase,
	today func() time.Time,
) *ForecastController {
	return &ForecastController{
		monthUseCase: monthUseCase,
		rangeUseCase: rangeUseCase,
		today:        today,
	}
}

// Month handles GET /forecast requests.
// Query parameters: month (YYYY-MM, defaults to the current month), tag.
func (c *ForecastController) Month(ctx *gin.Context) {
	month, ok := c.monthParam(ctx, "month")
	if !ok {
		return
	}

	output, err := c.monthUseCase.Execute(ctx.Request.Context(), forecast.GetMonthForecastInput{
		Month: month,
		Tag:   ctx.Query("tag"),
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToMonthForecastResponse(output))
}

// Range handles GET /forecast/range requests.
// Query parameters: start (YYYY-MM) and count, or year for a January-December view; tag.
func (c *ForecastController) Range(ctx *gin.Context) {
	input := forecast.ProjectRangeInput{
		Count: defaultRangeMonths,
		Tag:   ctx.Query("tag"),
	}

	if yearStr := ctx.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil || year < 1 {
			badRequest(ctx, "year must be a positive number", string(domainerror.ErrCodeInvalidForecastRange))
			return
		}
		input.Start = forecast.Month{Year: year, Month: time.January}
	} else {
		start, ok := c.monthParam(ctx, "start")
		if !ok {
			return
		}
		input.Start = start

		if countStr := ctx.Query("count"); countStr != "" {
			count, err := strconv.Atoi(countStr)
			if err != nil {
				badRequest(ctx, "count must be a number", string(domainerror.ErrCodeInvalidForecastRange))
				return
			}
			input.Count = count
		}
	}

	output, err := c.rangeUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToForecastRangeResponse(output))
}

func (c *ForecastController) monthParam(ctx *gin.Context, name string) (forecast.Month, bool) {
	value := ctx.Query(name)
	if value == "" {
		return forecast.MonthOf(c.today()), true
	}

	month, err := forecast.ParseMonth(value)
	if err != nil {
		handleError(ctx, err)
		return forecast.Month{}, false
	}
	return month, true
}
