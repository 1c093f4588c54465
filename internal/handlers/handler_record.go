package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finstream/records_backend/internal/apperrors"
	"github.com/finstream/records_backend/internal/core/domain"
	portssvc "github.com/finstream/records_backend/internal/core/ports/services"
	"github.com/finstream/records_backend/internal/dto"
	"github.com/finstream/records_backend/internal/middleware"
	"github.com/finstream/records_backend/internal/utils/money"
)

// recordHandler handles HTTP requests for record ingestion and aggregation.
type recordHandler struct {
	recordService      portssvc.RecordSvcFacade
	aggregationService portssvc.AggregationSvcFacade
}

// newRecordHandler creates a new recordHandler.
func newRecordHandler(recordService portssvc.RecordSvcFacade, aggregationService portssvc.AggregationSvcFacade) *recordHandler {
	return &recordHandler{
		recordService:      recordService,
		aggregationService: aggregationService,
	}
}

// createRecord handles POST /records. Responds 201 for a newly created
// record, 200 for a duplicate (idempotent or race-handled), 422 with a
// field-keyed error map for invalid input, and 500 for persistence failures.
func (h *recordHandler) createRecord(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fieldErrors, ok := translateBindingError(err)
		if !ok {
			logger.Warn("Failed to bind JSON for createRecord", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request format", Errors: map[string][]string{}})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Message: "The given data was invalid.", Errors: fieldErrors})
		return
	}

	fieldErrors := map[string][]string{}

	parsedTime, err := time.Parse(dto.RecordTimeLayout, req.Time)
	if err != nil {
		fieldErrors["time"] = []string{"The time must be in format Y-m-d H:i:s."}
	}

	value, err := money.Parse(req.Value.String())
	if err != nil {
		fieldErrors["value"] = []string{valueErrorMessage(err)}
	}

	if len(fieldErrors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Message: "The given data was invalid.", Errors: fieldErrors})
		return
	}

	record := domain.Record{
		RecordID:      req.RecordID,
		Time:          parsedTime,
		SourceID:      req.SourceID,
		DestinationID: req.DestinationID,
		Type:          domain.RecordType(req.Type),
		Value:         value,
		Unit:          req.Unit,
		Reference:     req.Reference,
	}

	outcome, err := h.recordService.ProcessRecord(c.Request.Context(), record)
	if err != nil {
		logger.Error("Failed to process record", slog.String("record_id", req.RecordID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Message: "Error processing record: " + err.Error(),
			Errors:  map[string][]string{},
		})
		return
	}

	status := http.StatusCreated
	if outcome.IsDuplicate {
		status = http.StatusOK
	}
	c.JSON(status, dto.ToStoreRecordResponse(*outcome))
}

// aggregateRecords handles GET /records/aggregate. All query parameters are
// optional; type must be positive or negative when present.
func (h *recordHandler) aggregateRecords(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	filter := domain.RecordFilter{}
	fieldErrors := map[string][]string{}

	if startTime := c.Query("startTime"); startTime != "" {
		t, err := parseQueryTime(startTime)
		if err != nil {
			fieldErrors["startTime"] = []string{"The startTime is not a valid date."}
		} else {
			filter.StartTime = &t
		}
	}
	if endTime := c.Query("endTime"); endTime != "" {
		t, err := parseQueryTime(endTime)
		if err != nil {
			fieldErrors["endTime"] = []string{"The endTime is not a valid date."}
		} else {
			filter.EndTime = &t
		}
	}
	if typeParam := c.Query("type"); typeParam != "" {
		recordType := domain.RecordType(typeParam)
		if !recordType.IsValid() {
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
				Message: `Invalid type. Must be "positive" or "negative".`,
				Errors:  map[string][]string{"type": {"Invalid type value"}},
			})
			return
		}
		filter.Type = &recordType
	}

	if len(fieldErrors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Message: "The given data was invalid.", Errors: fieldErrors})
		return
	}

	result, err := h.aggregationService.Aggregate(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
				Message: `Invalid type. Must be "positive" or "negative".`,
				Errors:  map[string][]string{"type": {"Invalid type value"}},
			})
			return
		}
		logger.Error("Failed to aggregate records", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to aggregate records", Errors: map[string][]string{}})
		return
	}

	c.JSON(http.StatusOK, dto.ToAggregateResponse(*result))
}

// parseQueryTime accepts the wire layout used on ingestion plus RFC 3339.
func parseQueryTime(s string) (time.Time, error) {
	if t, err := time.Parse(dto.RecordTimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// valueErrorMessage maps a money parsing failure to its client-facing message.
func valueErrorMessage(err error) string {
	switch {
	case errors.Is(err, money.ErrTooPrecise):
		return "The value must have at most 2 decimal places."
	case errors.Is(err, money.ErrOutOfRange):
		return "The value is out of range."
	default:
		return "The value must be a valid number."
	}
}
