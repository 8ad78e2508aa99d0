package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/posync/internal/client/client"
	"github.com/dmitrijs2005/posync/internal/client/probe"
	"github.com/dmitrijs2005/posync/internal/logging"
	"github.com/dmitrijs2005/posync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The agent's REST client must understand every answer this server gives.
func TestAgentClientContract(t *testing.T) {
	s, _ := newTestServer(t, true)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	api := client.NewHTTPClient(ts.Client(), ts.URL)
	ctx := context.Background()

	products, err := api.FetchProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	ok, err := api.ProductExists(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	p := products[0]
	p.SyncStatus = models.SyncSynced
	require.NoError(t, api.CreateProduct(ctx, p))

	ok, err = api.ProductExists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, api.UpdateProduct(ctx, p))

	require.NoError(t, api.CreateBarcode(ctx, models.ProductBarcode{ProductID: 1, Barcode: "4006381333931", SyncStatus: models.SyncSynced}))
	ok, err = api.BarcodeExists(ctx, 1, "4006381333931")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := api.Count(ctx, models.ClassProducts, models.SyncSynced)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	res, err := api.Authenticate(ctx, "cashier", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)

	_, err = api.Authenticate(ctx, "cashier", "bad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrUnauthorized))
	assert.Equal(t, "Invalid username or password", err.Error())
}

func TestAgentClientContract_BarcodeKeysRoundTrip(t *testing.T) {
	s, _ := newTestServer(t, true)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	api := client.NewHTTPClient(ts.Client(), ts.URL)
	ctx := context.Background()

	products, err := api.FetchProducts(ctx)
	require.NoError(t, err)
	require.NoError(t, api.CreateProduct(ctx, products[0]))
	pid := products[0].ProductID

	for _, code := range []string{"AB/12", "X%Y", "A B", "a/b%2Fc"} {
		t.Run(code, func(t *testing.T) {
			b := models.ProductBarcode{ProductID: pid, Barcode: code, SyncStatus: models.SyncPending}
			require.NoError(t, api.CreateBarcode(ctx, b))

			ok, err := api.BarcodeExists(ctx, pid, code)
			require.NoError(t, err)
			assert.True(t, ok)

			b.SyncStatus = models.SyncSynced
			require.NoError(t, api.UpdateBarcode(ctx, b))

			got, err := s.local.Barcodes.Get(ctx, pid, code)
			require.NoError(t, err)
			assert.Equal(t, code, got.Barcode)
			assert.Equal(t, models.SyncSynced, got.SyncStatus)
		})
	}
}

func TestAgentClientContract_RemoteDisabled(t *testing.T) {
	s, _ := newTestServer(t, false)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	_, err := client.NewHTTPClient(ts.Client(), ts.URL).FetchBarcodes(context.Background())
	assert.ErrorIs(t, err, client.ErrUnavailable)
}

func TestServe_StopsOnCancel(t *testing.T) {
	s, _ := newTestServer(t, true)
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	url := "http://" + lis.Addr().String() + "/api/pos/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHealthServer(t *testing.T) {
	h := NewHealthServer("127.0.0.1:0", logging.Nop())
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Serve(ctx, lis) }()

	checker, err := probe.NewGRPCHealthChecker(lis.Addr().String(), "", time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = checker.Close() })

	ok, err := checker.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	h.SetServing(true)
	ok, err = checker.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("health server did not stop")
	}
}
