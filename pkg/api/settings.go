package api

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultRateLimiterStorageSize = 64 * 1024 // 64 KB

	defaultTimeout = 30 * time.Second
)

type RunOptions struct {
	RateLimiterOpts      *RateLimiterOptions
	LogHttpRequestOpts   bool
	CollectMetrics       bool
	UseRealIPMiddleware  bool
	RequestIDMiddleware  bool
	EnableHeartbeatRoute bool
	RouteNotFoundHandler func(w http.ResponseWriter, r *http.Request)
}

type RateLimiterOptions struct {
	MemoryCacheSize      int
	MaxRequestsPerSecond int
	MaxBurst             int
}

// NewRateLimiterOptionsFromString parses options given as URL query, e.g. "cache=1024&rps=10&burst=5".
func NewRateLimiterOptionsFromString(s string) (*RateLimiterOptions, error) {
	values, err := url.ParseQuery(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid rate limiter options")
	}
	opts := &RateLimiterOptions{
		MemoryCacheSize:      DefaultRateLimiterStorageSize,
		MaxRequestsPerSecond: 1,
		MaxBurst:             1,
	}
	fields := map[string]*int{
		"cache": &opts.MemoryCacheSize,
		"rps":   &opts.MaxRequestsPerSecond,
		"burst": &opts.MaxBurst,
	}
	for k := range values {
		p, ok := fields[k]
		if !ok {
			return nil, errors.Errorf("unknown rate limiter option %q", k)
		}
		v, err := strconv.Atoi(values.Get(k))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid value of rate limiter option %q", k)
		}
		if v < 0 {
			return nil, errors.Errorf("negative value of rate limiter option %q", k)
		}
		*p = v
	}
	return opts, nil
}

func DefaultRunOptions() *RunOptions {
	return &RunOptions{
		LogHttpRequestOpts:   false,
		EnableHeartbeatRoute: true,
		UseRealIPMiddleware:  true,
		RequestIDMiddleware:  true,
		CollectMetrics:       true,
		RouteNotFoundHandler: func(w http.ResponseWriter, r *http.Request) {
			zap.S().Debugf("MarketApi not found %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		},
	}
}
