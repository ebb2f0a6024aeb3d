package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/wavesplatform/gomarket/pkg/proto"
)

type MockHttpRequest struct {
	Body       io.ReadCloser
	StatusCode int
}

func NewMockHttpRequestFromString(s string, statusCode int) *MockHttpRequest {
	return &MockHttpRequest{
		Body:       io.NopCloser(strings.NewReader(s)),
		StatusCode: statusCode,
	}
}

func (a *MockHttpRequest) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{
		Request:    req,
		StatusCode: a.StatusCode,
		Body:       a.Body,
	}, nil
}

var seller = proto.MustAddressFromData(proto.CustomScheme, []byte("seller"))

func TestClient_GetOptions(t *testing.T) {
	client, err := NewClient()
	require.Nil(t, err)
	assert.Equal(t, "http://127.0.0.1:6870", client.GetOptions().BaseUrl)

	client, err = NewClient(Options{BaseUrl: "URL"})
	require.Nil(t, err)
	assert.Equal(t, "URL", client.GetOptions().BaseUrl)

	_, err = NewClient(Options{}, Options{})
	assert.Error(t, err)
}

func TestJoinUrl(t *testing.T) {
	url, err := joinUrl("http://127.0.0.1:6870", "path")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:6870/path", url.String())

	url, err = joinUrl("http://market.local/node-0", "/market/events?from=5")
	require.NoError(t, err)
	assert.Equal(t, "http://market.local/node-0/market/events?from=5", url.String())

	_, err = joinUrl("http://market.local", "http://other.local/path")
	assert.Error(t, err)
}

func TestMarketProceeds(t *testing.T) {
	cl, err := NewClient(Options{
		BaseUrl: "http://market.local",
		Client:  NewMockHttpRequestFromString(`{"address":"`+seller.String()+`","proceeds":150}`, 200),
	})
	require.NoError(t, err)
	proceeds, resp, err := cl.Market.Proceeds(context.Background(), seller)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), proceeds)
	assert.Equal(t, "http://market.local/market/proceeds/"+seller.String(), resp.Request.URL.String())
}

func TestAuthRequired(t *testing.T) {
	cl, err := NewClient(Options{Client: NewMockHttpRequestFromString("", 200)})
	require.NoError(t, err)
	_, err = cl.Market.Withdraw(context.Background(), seller)
	assert.ErrorIs(t, err, NoApiKeyError)
}

func TestApiKeyHeader(t *testing.T) {
	cl, err := NewClient(Options{ApiKey: "secret", Client: NewMockHttpRequestFromString("null", 200)})
	require.NoError(t, err)
	key := proto.NewAssetKey(seller, 1)
	resp, err := cl.Market.List(context.Background(), seller, key, 100)
	require.NoError(t, err)
	assert.Equal(t, "secret", resp.Request.Header.Get(ApiKeyHeader))
	assert.Equal(t, http.MethodPost, resp.Request.Method)
}

func TestRetryTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Inc() < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"address":"` + seller.String() + `","balance":7}`))
	}))
	defer server.Close()

	cl, err := NewClient(Options{BaseUrl: server.URL, Client: server.Client(), RetryTimeout: 5 * time.Second})
	require.NoError(t, err)
	balance, _, err := cl.Bank.Balance(context.Background(), seller)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), balance)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNoRetryOnRejection(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Inc()
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":206,"message":"no proceeds"}`))
	}))
	defer server.Close()

	cl, err := NewClient(Options{BaseUrl: server.URL, Client: server.Client(), ApiKey: "key"})
	require.NoError(t, err)
	_, err = cl.Market.Withdraw(context.Background(), seller)
	var re *RequestError
	require.True(t, errors.As(err, &re), "unexpected error %v", err)
	assert.Equal(t, http.StatusUnprocessableEntity, re.StatusCode)
	ae, ok := re.APIError()
	require.True(t, ok)
	assert.Equal(t, APIError{ID: 206, Message: "no proceeds"}, ae)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCanceledContext(t *testing.T) {
	cl, err := NewClient(Options{BaseUrl: "http://127.0.0.1:1", RetryTimeout: time.Minute})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = cl.Bank.Balance(ctx, seller)
	assert.Error(t, err)
}

func TestMutationNotReplayedAfterTimeout(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Inc() == 1 {
			time.Sleep(200 * time.Millisecond)
		}
		_, _ = w.Write([]byte(`{"address":"` + seller.String() + `","balance":7}`))
	}))
	defer server.Close()

	cl, err := NewClient(Options{
		BaseUrl:      server.URL,
		Client:       &http.Client{Timeout: 50 * time.Millisecond},
		ApiKey:       "key",
		RetryTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	_, _, err = cl.Bank.Deposit(context.Background(), seller, 7)
	var re *RequestError
	require.True(t, errors.As(err, &re), "unexpected error %v", err)
	assert.Zero(t, re.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryByMethod(t *testing.T) {
	for _, test := range []struct {
		name  string
		code  int
		post  bool
		calls int32
	}{
		{"GetBadGateway", http.StatusBadGateway, false, 2},
		{"GetGatewayTimeout", http.StatusGatewayTimeout, false, 2},
		{"PostBadGateway", http.StatusBadGateway, true, 1},
		{"PostGatewayTimeout", http.StatusGatewayTimeout, true, 1},
		{"PostBusy", http.StatusServiceUnavailable, true, 2},
		{"PostRateLimited", http.StatusTooManyRequests, true, 2},
	} {
		t.Run(test.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if calls.Inc() == 1 {
					w.WriteHeader(test.code)
					return
				}
				_, _ = w.Write([]byte(`{"address":"` + seller.String() + `","balance":7}`))
			}))
			defer server.Close()

			cl, err := NewClient(Options{BaseUrl: server.URL, Client: server.Client(), ApiKey: "key",
				RetryTimeout: 5 * time.Second})
			require.NoError(t, err)
			if test.post {
				_, _, err = cl.Bank.Deposit(context.Background(), seller, 7)
			} else {
				_, _, err = cl.Bank.Balance(context.Background(), seller)
			}
			if test.calls == 1 {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, test.calls, calls.Load())
		})
	}
}
