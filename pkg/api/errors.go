package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	apiErrs "github.com/wavesplatform/gomarket/pkg/api/errors"
	"github.com/wavesplatform/gomarket/pkg/errs"
)

type ErrorHandler struct {
	logger *zap.Logger
}

func NewErrorHandler(logger *zap.Logger) ErrorHandler {
	return ErrorHandler{
		logger: logger,
	}
}

func (eh *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	// target errors
	var (
		unknownError = &apiErrs.UnknownError{}
		apiError     = apiErrs.ApiError(nil)
		// check that all targets implement the error interface
		_, _ = error(unknownError), error(apiError)
	)
	switch {
	case errors.As(err, &unknownError):
		eh.logError("UnknownError", r, err)
		eh.sendApiErrJSON(w, r, unknownError)
	case errors.As(err, &apiError):
		eh.sendApiErrJSON(w, r, apiError)
	default:
		if marketErr := apiErrs.FromMarketError(err); marketErr != nil {
			eh.sendApiErrJSON(w, r, marketErr)
			return
		}
		if errs.IsValidationError(err) {
			eh.sendApiErrJSON(w, r, apiErrs.NewCustomValidationError(err.Error()))
			return
		}
		eh.logError("InternalServerError", r, err)
		eh.sendApiErrJSON(w, r, apiErrs.NewUnknownError(err))
	}
}

func (eh *ErrorHandler) logError(msg string, r *http.Request, err error) {
	eh.logger.Error(msg,
		zap.String("method", r.Method),
		zap.String("route", routePattern(r)),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("remote_addr", r.RemoteAddr),
		zap.Error(err),
	)
}

// retryAfter is advised to clients of a busy ledger or a rate limited address.
const retryAfter = "1"

func (eh *ErrorHandler) sendApiErrJSON(w http.ResponseWriter, r *http.Request, apiErr apiErrs.ApiError) {
	code := apiErr.GetHttpCode()
	w.Header().Set("Content-Type", "application/json")
	if code == http.StatusServiceUnavailable || code == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", retryAfter)
	}
	w.WriteHeader(code)
	if encodeErr := json.NewEncoder(w).Encode(apiErr); encodeErr != nil {
		eh.logger.Error("Failed to marshal API Error to JSON",
			zap.String("proto", r.Proto),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(encodeErr),
			zap.String("api_error", apiErr.Error()),
		)
		// Types implementing ApiError MUST be serializable to JSON.
		panic(errors.Errorf("BUG, CREATE REPORT: %s", encodeErr.Error()))
	}
}
