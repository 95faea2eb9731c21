package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdempotentApp(t *testing.T) (*fiber.App, *int, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	calls := 0
	app := fiber.New()
	app.Use(IdempotencyMiddleware(client, time.Hour))
	app.Post("/import", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": calls})
	})
	app.Post("/fail", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad"})
	})
	return app, &calls, mr
}

func post(t *testing.T, app *fiber.App, path, correlationID string) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, nil)
	if correlationID != "" {
		req.Header.Set(CorrelationIDHeader, correlationID)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body), resp.Header.Get(IdempotentReplayHeader)
}

func TestIdempotency_ReplaysSuccess(t *testing.T) {
	app, calls, _ := newIdempotentApp(t)

	status, body, replay := post(t, app, "/import", "abc")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"call":1}`, body)
	assert.Empty(t, replay)

	status, body, replay = post(t, app, "/import", "abc")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"call":1}`, body)
	assert.Equal(t, "true", replay)
	assert.Equal(t, 1, *calls)

	_, body, _ = post(t, app, "/import", "other")
	assert.JSONEq(t, `{"call":2}`, body)
}

func TestIdempotency_WithoutHeaderAlwaysRuns(t *testing.T) {
	app, calls, _ := newIdempotentApp(t)

	post(t, app, "/import", "")
	post(t, app, "/import", "")
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_ErrorsAreNotStored(t *testing.T) {
	app, calls, mr := newIdempotentApp(t)

	status, _, _ := post(t, app, "/fail", "abc")
	assert.Equal(t, fiber.StatusBadRequest, status)
	post(t, app, "/fail", "abc")

	assert.Equal(t, 2, *calls)
	assert.Empty(t, mr.Keys())
}
