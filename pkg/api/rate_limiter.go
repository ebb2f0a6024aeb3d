package api

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/throttled/throttled/v2"
	"github.com/throttled/throttled/v2/store/memstore"

	apiErrors "github.com/wavesplatform/gomarket/pkg/api/errors"
)

// newRateLimiter limits requests per client address and API key with GCRA.
// Denied requests get the JSON rate limit error.
func newRateLimiter(opts *RateLimiterOptions, handleError HandleErrorFunc) (*throttled.HTTPRateLimiter, error) {
	store, err := memstore.New(opts.MemoryCacheSize)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create rate limiter store of %d keys", opts.MemoryCacheSize)
	}
	limiter, err := throttled.NewGCRARateLimiter(store, throttled.RateQuota{
		MaxRate:  throttled.PerSec(opts.MaxRequestsPerSecond),
		MaxBurst: opts.MaxBurst,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCRA rate limiter")
	}
	return &throttled.HTTPRateLimiter{
		DeniedHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handleError(w, r, apiErrors.ErrRateLimited)
		}),
		Error:       handleError,
		RateLimiter: limiter,
		VaryBy: &throttled.VaryBy{
			RemoteAddr: true,
			Headers:    []string{apiKeyHeader},
		},
	}, nil
}
