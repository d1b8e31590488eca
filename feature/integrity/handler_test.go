package integrity

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"forecast-recon/core/storage/mocks"
	"forecast-recon/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupApp(t *testing.T, svc *Service) *fiber.App {
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)
	return app
}

func TestHandler_PeriodCheck(t *testing.T) {
	st := setupStore(t)
	orders, entries := seed(t, st)
	link(t, st, orders[0].ID, entries[0].ID)
	app := setupApp(t, NewService(st, nil, "", zap.NewNop()))

	t.Run("Healthy", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/integrity/period/2026-01", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var report PeriodReport
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.True(t, report.Healthy)
		assert.Equal(t, "2026-01", report.Period)
	})

	t.Run("Malformed Period", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/integrity/period/2026-1", nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})
}

func TestHandler_SchemaCheck(t *testing.T) {
	app := setupApp(t, NewService(setupStore(t), nil, "", zap.NewNop()))

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/schema", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var report checks.SchemaReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.True(t, report.Matched)
}

func TestHandler_ArchiveCheck(t *testing.T) {
	st := setupStore(t)

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(nil)
		app := setupApp(t, NewService(st, mockClient, "test-bucket", zap.NewNop()))

		resp, err := app.Test(httptest.NewRequest("GET", "/integrity/archive/2026-01", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("Bucket Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, nil)
		app := setupApp(t, NewService(st, mockClient, "test-bucket", zap.NewNop()))

		resp, err := app.Test(httptest.NewRequest("GET", "/integrity/archive/2026-01", nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
	})

	t.Run("Malformed Period", func(t *testing.T) {
		mockClient := new(mocks.Client)
		app := setupApp(t, NewService(st, mockClient, "test-bucket", zap.NewNop()))

		resp, err := app.Test(httptest.NewRequest("GET", "/integrity/archive/2026-13", nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "period must be YYYY-MM", body["error"])
		mockClient.AssertNotCalled(t, "BucketExists", mock.Anything, mock.Anything)
	})
}
