package client

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listkeep/internal/config"
	"listkeep/internal/database"
	"listkeep/internal/model"
	"listkeep/internal/server"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		JWTSecret:  "client-test-secret",
		TokenTTL:   time.Hour,
		RateLimit:  1000,
		RateWindow: time.Minute,
		TestRoutes: true,
	}
	srv := server.New(db, cfg, slog.Default())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestRegisterLoginCycle(t *testing.T) {
	ts := newBackend(t)
	c := New(ts.URL)
	ctx := t.Context()

	session, err := c.Register(ctx, "client@example.com", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	require.NoError(t, c.CheckAuth(ctx, session))

	loginSession, snap, err := c.Login(ctx, "client@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, loginSession.Token)
	assert.NotEmpty(t, snap.Products, "fresh account comes pre-seeded")
	assert.NotEmpty(t, snap.Categories)
}

func TestRegisterDuplicateSurfacesAPIError(t *testing.T) {
	ts := newBackend(t)
	c := New(ts.URL)
	ctx := t.Context()

	_, err := c.Register(ctx, "dup@example.com", "x")
	require.NoError(t, err)

	_, err = c.Register(ctx, "dup@example.com", "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.NotEmpty(t, apiErr.Message)
}

func TestCheckAuthRejectsBadToken(t *testing.T) {
	ts := newBackend(t)
	c := New(ts.URL)

	err := c.CheckAuth(t.Context(), Session{Token: "garbage"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func toInputs(products []model.Product) []model.ProductInput {
	inputs := make([]model.ProductInput, 0, len(products))
	for _, p := range products {
		inputs = append(inputs, model.ProductInput{
			Name:     p.Name,
			Quantity: p.Quantity,
			Note:     p.Note,
			IsBought: p.IsBought,
			IsPaid:   p.IsPaid,
			Price:    p.Price,
			Category: p.Category,
		})
	}
	return inputs
}

func TestSyncAndPayFlow(t *testing.T) {
	ts := newBackend(t)
	c := New(ts.URL)
	ctx := t.Context()

	session, err := c.Register(ctx, "flow@example.com", "hunter2")
	require.NoError(t, err)

	products, err := c.Products(ctx, session)
	require.NoError(t, err)
	require.NotEmpty(t, products)

	inputs := toInputs(products)
	inputs[0].IsBought = true
	require.NoError(t, c.ReplaceProducts(ctx, session, inputs))

	after, err := c.Products(ctx, session)
	require.NoError(t, err)
	require.Len(t, after, len(products))
	assert.True(t, after[0].IsBought)

	before, err := c.Summary(ctx, session)
	require.NoError(t, err)
	require.Greater(t, before.Remaining, 1.0)

	require.NoError(t, c.Pay(ctx, session, 1.0, "card-9876"))

	summary, err := c.Summary(ctx, session)
	require.NoError(t, err)
	assert.InDelta(t, before.Remaining-1.0, summary.Remaining, 1e-9)

	payments, err := c.Payments(ctx, session)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 1.0, payments[0].Amount)
	assert.Equal(t, "card-9876", payments[0].CardID)
}

func TestPayErrorsPassThrough(t *testing.T) {
	ts := newBackend(t)
	c := New(ts.URL)
	ctx := t.Context()

	session, err := c.Register(ctx, "payerr@example.com", "hunter2")
	require.NoError(t, err)

	err = c.Pay(ctx, session, -1, "card-9876")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.NotEmpty(t, apiErr.Message)
}

// flakyProxy fails the first n requests with a 500, then forwards.
type flakyProxy struct {
	failures int32
	next     http.Handler
}

func (f *flakyProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if atomic.AddInt32(&f.failures, -1) >= 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": "temporarily unavailable"})
		return
	}
	f.next.ServeHTTP(w, r)
}

func TestReplaceProductsRetriesTransientFailures(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		JWTSecret:  "client-test-secret",
		TokenTTL:   time.Hour,
		RateLimit:  1000,
		RateWindow: time.Minute,
	}
	srv := server.New(db, cfg, slog.Default())

	// Register directly against the backend, then put the flaky proxy in
	// front for the replace call.
	direct := httptest.NewServer(srv.Router())
	t.Cleanup(direct.Close)
	session, err := New(direct.URL).Register(t.Context(), "retry@example.com", "hunter2")
	require.NoError(t, err)

	proxy := httptest.NewServer(&flakyProxy{failures: 2, next: srv.Router()})
	t.Cleanup(proxy.Close)

	c := New(proxy.URL, WithMaxRetries(5))
	inputs := []model.ProductInput{
		{Name: "Coffee", Quantity: 1, Price: 9.99, Category: "Pantry"},
	}
	require.NoError(t, c.ReplaceProducts(t.Context(), session, inputs))

	after, err := c.Products(t.Context(), session)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "Coffee", after[0].Name)
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "bad payload"})
	}))
	t.Cleanup(ts.Close)

	c := New(ts.URL, WithMaxRetries(5))
	err := c.ReplaceProducts(t.Context(), Session{Token: "x"}, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must not be retried")
}
