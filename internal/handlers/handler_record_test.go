package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finstream/records_backend/internal/apperrors"
	"github.com/finstream/records_backend/internal/core/domain"
	portssvc "github.com/finstream/records_backend/internal/core/ports/services"
	"github.com/finstream/records_backend/internal/dto"
	"github.com/finstream/records_backend/internal/handlers"
	"github.com/finstream/records_backend/internal/platform/config"
)

// MockRecordService is a mock type for the RecordSvcFacade interface
type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) ProcessRecord(ctx context.Context, input domain.Record) (*domain.ProcessOutcome, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessOutcome), args.Error(1)
}

// MockAggregationService is a mock type for the AggregationSvcFacade interface
type MockAggregationService struct {
	mock.Mock
}

func (m *MockAggregationService) Aggregate(ctx context.Context, filter domain.RecordFilter) (*domain.AggregationResult, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AggregationResult), args.Error(1)
}

// --- Test Suite Setup ---

type RecordHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockRecordSvc   *MockRecordService
	mockAggregation *MockAggregationService
}

func (suite *RecordHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockRecordSvc = new(MockRecordService)
	suite.mockAggregation = new(MockAggregationService)

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, &config.Config{}, &portssvc.ServiceContainer{
		Record:      suite.mockRecordSvc,
		Aggregation: suite.mockAggregation,
	})
}

func (suite *RecordHandlerTestSuite) postRecord(body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, "/api/records", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *RecordHandlerTestSuite) get(path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func validBody() string {
	return `{
		"recordId": "rec-001",
		"time": "2025-01-01 10:00:00",
		"sourceId": "source-1",
		"destinationId": "dest-1",
		"type": "positive",
		"value": 100.50,
		"unit": "EUR",
		"reference": "ref-001"
	}`
}

func outcomeFor(recordID, message string, created, duplicate bool) *domain.ProcessOutcome {
	return &domain.ProcessOutcome{
		Record: domain.Record{
			ID:            1,
			RecordID:      recordID,
			Time:          time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
			SourceID:      "source-1",
			DestinationID: "dest-1",
			Type:          domain.RecordTypePositive,
			Value:         decimal.RequireFromString("100.50"),
			Unit:          "EUR",
			Reference:     "ref-001",
		},
		Created:     created,
		IsDuplicate: duplicate,
		Message:     message,
	}
}

// --- createRecord ---

func (suite *RecordHandlerTestSuite) TestCreateRecord_Created() {
	suite.mockRecordSvc.On("ProcessRecord", mock.Anything, mock.MatchedBy(func(r domain.Record) bool {
		return r.RecordID == "rec-001" &&
			r.Type == domain.RecordTypePositive &&
			r.Value.Equal(decimal.RequireFromString("100.50")) &&
			r.Time.Equal(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	})).Return(outcomeFor("rec-001", "Record processed successfully", true, false), nil).Once()

	w := suite.postRecord(validBody())

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.StoreRecordResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Record processed successfully", resp.Message)
	suite.Equal("rec-001", resp.Data.RecordID)
	suite.Equal("100.50", resp.Data.Value)
	suite.Equal("2025-01-01 10:00:00", resp.Data.Time)
	suite.False(resp.Data.IsDuplicate)
	suite.mockRecordSvc.AssertExpectations(suite.T())
}

func (suite *RecordHandlerTestSuite) TestCreateRecord_ValueAsQuotedString() {
	suite.mockRecordSvc.On("ProcessRecord", mock.Anything, mock.MatchedBy(func(r domain.Record) bool {
		return r.Value.Equal(decimal.RequireFromString("100.50"))
	})).Return(outcomeFor("rec-001", "Record processed successfully", true, false), nil).Once()

	body := `{
		"recordId": "rec-001",
		"time": "2025-01-01 10:00:00",
		"sourceId": "source-1",
		"destinationId": "dest-1",
		"type": "positive",
		"value": "100.50",
		"unit": "EUR",
		"reference": "ref-001"
	}`
	w := suite.postRecord(body)

	suite.Equal(http.StatusCreated, w.Code)
	suite.mockRecordSvc.AssertExpectations(suite.T())
}

func (suite *RecordHandlerTestSuite) TestCreateRecord_Duplicate() {
	suite.mockRecordSvc.On("ProcessRecord", mock.Anything, mock.Anything).
		Return(outcomeFor("rec-001", "Record already processed (idempotent response)", false, true), nil).Once()

	w := suite.postRecord(validBody())

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.StoreRecordResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Record already processed (idempotent response)", resp.Message)
	suite.True(resp.Data.IsDuplicate)
}

func (suite *RecordHandlerTestSuite) TestCreateRecord_ServiceFailure() {
	suite.mockRecordSvc.On("ProcessRecord", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("connection reset")).Once()

	w := suite.postRecord(validBody())

	suite.Equal(http.StatusInternalServerError, w.Code)

	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Contains(resp.Message, "Error processing record:")
	suite.Contains(resp.Message, "connection reset")
}

func (suite *RecordHandlerTestSuite) TestCreateRecord_MissingFields() {
	w := suite.postRecord(`{}`)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("The given data was invalid.", resp.Message)
	for _, field := range []string{"recordId", "time", "sourceId", "destinationId", "type", "value", "unit", "reference"} {
		suite.Contains(resp.Errors, field)
	}
	suite.Contains(resp.Errors["recordId"], "The recordId is required.")
	suite.mockRecordSvc.AssertNotCalled(suite.T(), "ProcessRecord", mock.Anything, mock.Anything)
}

func (suite *RecordHandlerTestSuite) TestCreateRecord_InvalidType() {
	body := `{
		"recordId": "rec-001",
		"time": "2025-01-01 10:00:00",
		"sourceId": "source-1",
		"destinationId": "dest-1",
		"type": "neutral",
		"value": 100.50,
		"unit": "EUR",
		"reference": "ref-001"
	}`
	w := suite.postRecord(body)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Contains(resp.Errors["type"], `The type must be either "positive" or "negative".`)
	suite.mockRecordSvc.AssertNotCalled(suite.T(), "ProcessRecord", mock.Anything, mock.Anything)
}

func (suite *RecordHandlerTestSuite) TestCreateRecord_InvalidTimeFormat() {
	body := `{
		"recordId": "rec-001",
		"time": "01/01/2025 10:00",
		"sourceId": "source-1",
		"destinationId": "dest-1",
		"type": "positive",
		"value": 100.50,
		"unit": "EUR",
		"reference": "ref-001"
	}`
	w := suite.postRecord(body)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Contains(resp.Errors["time"], "The time must be in format Y-m-d H:i:s.")
	suite.mockRecordSvc.AssertNotCalled(suite.T(), "ProcessRecord", mock.Anything, mock.Anything)
}

func (suite *RecordHandlerTestSuite) TestCreateRecord_TooManyDecimalPlaces() {
	body := `{
		"recordId": "rec-001",
		"time": "2025-01-01 10:00:00",
		"sourceId": "source-1",
		"destinationId": "dest-1",
		"type": "positive",
		"value": 10.123,
		"unit": "EUR",
		"reference": "ref-001"
	}`
	w := suite.postRecord(body)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Contains(resp.Errors["value"], "The value must have at most 2 decimal places.")
	suite.mockRecordSvc.AssertNotCalled(suite.T(), "ProcessRecord", mock.Anything, mock.Anything)
}

func (suite *RecordHandlerTestSuite) TestCreateRecord_NonNumericValue() {
	body := `{
		"recordId": "rec-001",
		"time": "2025-01-01 10:00:00",
		"sourceId": "source-1",
		"destinationId": "dest-1",
		"type": "positive",
		"value": "abc",
		"unit": "EUR",
		"reference": "ref-001"
	}`
	w := suite.postRecord(body)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Contains(resp.Errors["value"], "The value must be a valid number.")
}

func (suite *RecordHandlerTestSuite) TestCreateRecord_MalformedJSON() {
	w := suite.postRecord(`{not json`)

	suite.Equal(http.StatusBadRequest, w.Code)

	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Invalid request format", resp.Message)
}

// --- aggregateRecords ---

func aggregationResult() *domain.AggregationResult {
	return &domain.AggregationResult{
		Records: []domain.Record{
			{ID: 1, RecordID: "rec-1", Time: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), SourceID: "source-1", DestinationID: "dest-1", Type: domain.RecordTypePositive, Value: decimal.RequireFromString("100.00"), Unit: "EUR", Reference: "ref-001"},
			{ID: 2, RecordID: "rec-2", Time: time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC), SourceID: "source-1", DestinationID: "dest-1", Type: domain.RecordTypePositive, Value: decimal.RequireFromString("50.00"), Unit: "EUR", Reference: "ref-001"},
			{ID: 3, RecordID: "rec-3", Time: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), SourceID: "source-1", DestinationID: "dest-2", Type: domain.RecordTypeNegative, Value: decimal.RequireFromString("-25.00"), Unit: "EUR", Reference: "ref-001"},
		},
		Groups: []domain.AggregationGroup{
			{DestinationID: "dest-1", Count: 2, TotalValue: decimal.RequireFromString("150.00")},
			{DestinationID: "dest-2", Count: 1, TotalValue: decimal.RequireFromString("-25.00")},
		},
	}
}

func (suite *RecordHandlerTestSuite) TestAggregateRecords_Success() {
	suite.mockAggregation.On("Aggregate", mock.Anything, domain.RecordFilter{}).
		Return(aggregationResult(), nil).Once()

	w := suite.get("/api/records/aggregate")

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.AggregateResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Records aggregated successfully", resp.Message)
	suite.Equal(3, resp.Data.Count)
	suite.Require().Len(resp.Data.Groups, 2)
	suite.Equal("dest-1", resp.Data.Groups[0].DestinationID)
	suite.Equal(2, resp.Data.Groups[0].RecordCount)
	suite.Equal("150", resp.Data.Groups[0].TotalValue)
	suite.Equal("-25", resp.Data.Groups[1].TotalValue)
	suite.Equal("100.00", resp.Data.Records[0].Value)
}

func (suite *RecordHandlerTestSuite) TestAggregateRecords_FiltersPassedThrough() {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	suite.mockAggregation.On("Aggregate", mock.Anything, mock.MatchedBy(func(f domain.RecordFilter) bool {
		return f.StartTime != nil && f.StartTime.Equal(start) &&
			f.EndTime != nil && f.EndTime.Equal(end) &&
			f.Type != nil && *f.Type == domain.RecordTypePositive
	})).Return(&domain.AggregationResult{Records: []domain.Record{}, Groups: []domain.AggregationGroup{}}, nil).Once()

	w := suite.get("/api/records/aggregate?startTime=2025-01-01%2010:00:00&endTime=2025-01-02%2010:00:00&type=positive")

	suite.Equal(http.StatusOK, w.Code)
	suite.mockAggregation.AssertExpectations(suite.T())
}

func (suite *RecordHandlerTestSuite) TestAggregateRecords_InvalidType() {
	w := suite.get("/api/records/aggregate?type=invalid")

	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(`Invalid type. Must be "positive" or "negative".`, resp.Message)
	suite.Equal([]string{"Invalid type value"}, resp.Errors["type"])
	suite.mockAggregation.AssertNotCalled(suite.T(), "Aggregate", mock.Anything, mock.Anything)
}

func (suite *RecordHandlerTestSuite) TestAggregateRecords_InvalidStartTime() {
	w := suite.get("/api/records/aggregate?startTime=not-a-date")

	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Contains(resp.Errors["startTime"], "The startTime is not a valid date.")
	suite.mockAggregation.AssertNotCalled(suite.T(), "Aggregate", mock.Anything, mock.Anything)
}

func (suite *RecordHandlerTestSuite) TestAggregateRecords_ServiceValidationError() {
	suite.mockAggregation.On("Aggregate", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: type must be either \"positive\" or \"negative\"", apperrors.ErrValidation)).Once()

	w := suite.get("/api/records/aggregate")

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *RecordHandlerTestSuite) TestAggregateRecords_ServiceFailure() {
	suite.mockAggregation.On("Aggregate", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("connection reset")).Once()

	w := suite.get("/api/records/aggregate")

	suite.Equal(http.StatusInternalServerError, w.Code)

	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Failed to aggregate records", resp.Message)
}

func (suite *RecordHandlerTestSuite) TestHealthCheck() {
	w := suite.get("/health")

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func TestRecordHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(RecordHandlerTestSuite))
}
