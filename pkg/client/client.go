// Package client is an HTTP client of the marketplace node API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

// ApiKeyHeader is an HTTP header name for API Key
const ApiKeyHeader = "X-API-Key" // #nosec: it's a header name

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	BaseUrl string
	Client  Doer
	ApiKey  string
	// RetryTimeout limits the time spent retrying transient failures, zero disables retries.
	RetryTimeout time.Duration
}

var defaultOptions = Options{
	BaseUrl:      "http://127.0.0.1:6870",
	Client:       &http.Client{Timeout: 3 * time.Second},
	RetryTimeout: 10 * time.Second,
}

type Client struct {
	options  Options
	Market   *Market
	Registry *Registry
	Bank     *Bank
}

type Response struct {
	*http.Response
}

// NewClient creates new client instance.
// If no options provided will use default.
func NewClient(options ...Options) (*Client, error) {
	if len(options) > 1 {
		return nil, errors.New("too many options provided. Expects no or just one item")
	}

	opts := defaultOptions

	if len(options) == 1 {
		option := options[0]
		if option.BaseUrl != "" {
			opts.BaseUrl = option.BaseUrl
		}
		if option.Client != nil {
			opts.Client = option.Client
		}
		if option.ApiKey != "" {
			opts.ApiKey = option.ApiKey
		}
		if option.RetryTimeout != 0 {
			opts.RetryTimeout = option.RetryTimeout
		}
	}

	return &Client{
		options:  opts,
		Market:   &Market{options: opts},
		Registry: &Registry{options: opts},
		Bank:     &Bank{options: opts},
	}, nil
}

func (a *Client) GetOptions() Options {
	return a.options
}

func newResponse(response *http.Response) *Response {
	return &Response{
		Response: response,
	}
}

// request describes one API call. The HTTP request is built anew for every attempt.
type request struct {
	method string
	path   string
	body   any
	auth   bool
}

// retryable reports whether the failed request can be sent again.
// 503 and 429 are returned before the ledger is touched, so any method is retried on them.
// Network errors, 502 and 504 may hide a committed mutation and are retried for GET only.
func retryable(method string, code int) bool {
	switch code {
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		return true
	case 0, http.StatusBadGateway, http.StatusGatewayTimeout:
		return method == http.MethodGet
	default:
		return false
	}
}

func doHTTP(ctx context.Context, options Options, r request, v any) (*Response, error) {
	if r.auth && options.ApiKey == "" {
		return nil, NoApiKeyError
	}
	u, err := joinUrl(options.BaseUrl, r.path)
	if err != nil {
		return nil, err
	}
	var payload []byte
	if r.body != nil {
		payload, err = json.Marshal(r.body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request")
		}
	}
	var response *Response
	attempt := func() error {
		var rd io.Reader
		if payload != nil {
			rd = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, r.method, u.String(), rd)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		if r.auth {
			req.Header.Set(ApiKeyHeader, options.ApiKey)
		}
		response, err = doOnce(options, req, v)
		if err == nil {
			return nil
		}
		var re *RequestError
		if errors.As(err, &re) && retryable(r.method, re.StatusCode) {
			return err
		}
		return backoff.Permanent(err)
	}
	if options.RetryTimeout <= 0 {
		err = attempt()
		var pe *backoff.PermanentError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		return response, err
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = options.RetryTimeout
	err = backoff.Retry(attempt, backoff.WithContext(bo, ctx))
	return response, err
}

func doOnce(options Options, req *http.Request, v any) (*Response, error) {
	resp, err := options.Client.Do(req)
	if err != nil {
		return nil, newRequestError(err, 0, "")
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close() // No error handling intentionally
	}(resp.Body)

	response := newResponse(resp)

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(response.Body)
		return response, newRequestError(
			errors.Errorf("Invalid status code: expect 200 got %d", response.StatusCode),
			response.StatusCode,
			string(body),
		)
	}

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return response, newParseError(err)
		}
	}
	return response, nil
}

func joinUrl(baseRaw string, pathRaw string) (*url.URL, error) {
	base, err := url.Parse(baseRaw)
	if err != nil {
		return nil, err
	}

	rel, err := url.Parse(pathRaw)
	if err != nil {
		return nil, err
	}
	if rel.IsAbs() {
		return nil, errors.New("path must be relative URL")
	}
	res := base.JoinPath(rel.EscapedPath())

	q := res.Query()
	for k, vals := range rel.Query() {
		for _, v := range vals {
			q.Add(k, v)
		}
	}
	res.RawQuery = q.Encode()

	return res, nil
}
