//go:build integration

// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bill-tracker/backend/config"
	"github.com/bill-tracker/backend/internal/application/usecase/autopay"
	"github.com/bill-tracker/backend/internal/infra/dependency"
	"github.com/bill-tracker/backend/test/integration/mock"
)

type response struct {
	status int
	body   any
}

// testContext holds the state of one scenario. The API is wired exactly as
// in production, over the shared sqlite database, a miniredis cache and a
// controllable clock.
type testContext struct {
	server   *httptest.Server
	client   *http.Client
	headers  map[string]string
	response *response

	db       *mock.Db
	redis    *redis.Client
	timeMock *mock.Time
	injector *dependency.Injector

	bills         map[string]uuid.UUID
	lastPaymentID uuid.UUID
	reconcile     autopay.ReconcileOutput
}

func newTestContext(db *mock.Db, redisClient *redis.Client) *testContext {
	return &testContext{
		client:   &http.Client{Timeout: 10 * time.Second},
		db:       db,
		redis:    redisClient,
		timeMock: mock.NewTime(),
	}
}

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Server.Environment = "test"
	cfg.Billing.Timezone = "UTC"
	cfg.Redis.CacheTTL = time.Minute
	cfg.Scheduler.MaxCatchUp = 24
	return cfg
}

// before resets storage and starts a fresh server for the scenario.
func (t *testContext) before() error {
	t.headers = make(map[string]string)
	t.response = nil
	t.bills = make(map[string]uuid.UUID)
	t.lastPaymentID = uuid.Nil
	t.reconcile = autopay.ReconcileOutput{}
	t.timeMock.SetCurrentTime(time.Now())

	if err := t.db.ClearDB(); err != nil {
		return err
	}
	if err := mock.ClearRedis(t.redis); err != nil {
		return err
	}

	t.injector = dependency.NewInjector(testConfig(), t.db.DbConn, t.redis, t.timeMock)
	t.server = httptest.NewServer(t.injector.Router.Setup("test"))
	return nil
}

func (t *testContext) after() {
	if t.server != nil {
		t.server.Close()
		t.server = nil
	}
}

// replacePlaceholders swaps {bill:Name} and {payment:last} for real IDs.
func (t *testContext) replacePlaceholders(content string) string {
	for name, id := range t.bills {
		content = strings.ReplaceAll(content, "{bill:"+name+"}", id.String())
	}
	if t.lastPaymentID != uuid.Nil {
		content = strings.ReplaceAll(content, "{payment:last}", t.lastPaymentID.String())
	}
	return content
}

func (t *testContext) executeRequest(method, path string, payload []byte) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, t.server.URL+t.replacePlaceholders(path), body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	t.response = &response{
		status: resp.StatusCode,
	}

	var responseBody map[string]any
	if err := json.Unmarshal(bodyBytes, &responseBody); err != nil {
		t.response.body = string(bodyBytes)
		return nil
	}
	t.response.body = responseBody

	// Capture the payment ID of a logged payment
	if payment, ok := responseBody["payment"].(map[string]any); ok {
		if idStr, ok := payment["id"].(string); ok {
			if id, err := uuid.Parse(idStr); err == nil {
				t.lastPaymentID = id
			}
		}
	}

	return nil
}

func (t *testContext) theResponseStatusShouldBe(expectedStatus int) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if t.response.status != expectedStatus {
		return fmt.Errorf("expected status %d, got %d (body: %v)", expectedStatus, t.response.status, t.response.body)
	}
	return nil
}

func (t *testContext) theResponseShouldBeJSON() error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if _, ok := t.response.body.(map[string]any); !ok {
		return fmt.Errorf("response is not JSON: %v", t.response.body)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBe(field, expectedValue string) error {
	value, err := t.responseField(field)
	if err != nil {
		return err
	}

	actualValue := fmt.Sprintf("%v", value)
	if actualValue != expectedValue {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expectedValue, actualValue)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldExist(field string) error {
	_, err := t.responseField(field)
	return err
}

func (t *testContext) theResponseFieldShouldHaveItems(field string, quantity int) error {
	value, err := t.responseField(field)
	if err != nil {
		return err
	}

	items, ok := value.([]any)
	if !ok {
		return fmt.Errorf("field '%s' is not a list: %v", field, value)
	}
	if len(items) != quantity {
		return fmt.Errorf("field '%s' expected %d items, got %d", field, quantity, len(items))
	}
	return nil
}

func (t *testContext) responseField(field string) (any, error) {
	if t.response == nil {
		return nil, errors.New("no response received")
	}

	body, ok := t.response.body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response is not a JSON object: %v", t.response.body)
	}

	value := getFieldValue(body, field)
	if value == nil {
		return nil, fmt.Errorf("field '%s' not found in response: %v", field, body)
	}
	return value, nil
}

func (t *testContext) theDbShouldContainObjectsInTheTable(quantity int, table string) error {
	count, err := t.db.Count(table)
	if err != nil {
		return err
	}
	if count != int64(quantity) {
		return fmt.Errorf("expected %d objects in '%s', got %d", quantity, table, count)
	}
	return nil
}

// getFieldValue walks a dot-separated path; numeric segments index into lists.
func getFieldValue(object map[string]any, dotSeparatedField string) any {
	var field any = object

	for _, currentField := range strings.Split(dotSeparatedField, ".") {
		if field == nil {
			return nil
		}

		if i, err := strconv.Atoi(currentField); err == nil {
			if arr, ok := field.([]any); ok && i < len(arr) {
				field = arr[i]
			} else {
				return nil
			}
		} else {
			if m, ok := field.(map[string]any); ok {
				field = m[currentField]
			} else {
				return nil
			}
		}
	}

	return field
}
