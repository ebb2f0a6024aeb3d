package api

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type HandleErrorFunc func(w http.ResponseWriter, r *http.Request, err error)
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

func toHTTPHandlerFunc(handler HandlerFunc, errorHandler HandleErrorFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		err := handler(writer, request)
		if err != nil {
			errorHandler(writer, request, err)
		}
	}
}

func (a *MarketApi) routes(opts *RunOptions) (chi.Router, error) {
	r := chi.NewRouter()

	if opts.UseRealIPMiddleware {
		r.Use(middleware.RealIP)
	}
	errHandler := NewErrorHandler(zap.L())
	if opts.CollectMetrics {
		r.Use(collectMetrics)
	}
	if opts.RateLimiterOpts != nil {
		rateLimiter, err := newRateLimiter(opts.RateLimiterOpts, errHandler.Handle)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		r.Use(rateLimiter.RateLimit)
	}
	if opts.RequestIDMiddleware {
		r.Use(middleware.RequestID)
	}
	if opts.LogHttpRequestOpts {
		r.Use(requestLogger(zap.L()))
	}
	if opts.RouteNotFoundHandler != nil {
		r.NotFound(opts.RouteNotFoundHandler)
	}

	checkAuthMiddleware := requireAPIKey(a.app, errHandler.Handle)

	wrapper := func(handlerFunc HandlerFunc) http.HandlerFunc {
		return toHTTPHandlerFunc(handlerFunc, errHandler.Handle)
	}

	if opts.EnableHeartbeatRoute {
		r.Get("/go/node/healthz", func(w http.ResponseWriter, r *http.Request) {
			if _, err := w.Write([]byte("OK")); err != nil {
				zap.S().Errorf("Can't write 'OK' to ResponseWriter: %+v", err)
				w.WriteHeader(http.StatusInternalServerError)
			}
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(jsonResponses)

		r.Route("/market", func(r chi.Router) {
			r.Get("/items", wrapper(a.MarketItems))
			r.Get("/items/{collection}/{id:\\d+}", wrapper(a.MarketItem))
			r.Get("/proceeds/{address}", wrapper(a.Proceeds))
			r.Get("/events", wrapper(a.Events))

			rAuth := r.With(checkAuthMiddleware)

			rAuth.Post("/list", wrapper(a.ListItem))
			rAuth.Post("/update", wrapper(a.UpdateListing))
			rAuth.Post("/cancel", wrapper(a.CancelListing))
			rAuth.Post("/buy", wrapper(a.BuyItem))
			rAuth.Post("/withdraw", wrapper(a.WithdrawProceeds))
		})

		r.Route("/registry", func(r chi.Router) {
			r.Get("/collections/{collection}", wrapper(a.Collection))
			r.Get("/{collection}/{id:\\d+}", wrapper(a.Token))

			rAuth := r.With(checkAuthMiddleware)

			rAuth.Post("/collections", wrapper(a.CreateCollection))
			rAuth.Post("/mint", wrapper(a.Mint))
			rAuth.Post("/approve", wrapper(a.Approve))
		})

		r.Route("/bank", func(r chi.Router) {
			r.Get("/{address}", wrapper(a.Balance))

			rAuth := r.With(checkAuthMiddleware)

			rAuth.Post("/deposit", wrapper(a.Deposit))
		})
	})

	return r, nil
}
