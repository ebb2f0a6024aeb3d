package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dpotapov/slogpfx"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/wavesplatform/gomarket/pkg/proto"
)

const NamespaceKey = "namespace"

const (
	errorKey = "error"
	traceKey = "trace"
)

// DefaultHandler creates a new slog handler with the specified parameters.
func DefaultHandler(params Parameters) slog.Handler {
	return NewHandler(params.Type, params.Level)
}

// NewHandler creates a new slog handler based on the specified logger type and level.
func NewHandler(loggerType LoggerType, level slog.Level) slog.Handler {
	return newHandler(loggerType, level, os.Stdout)
}

func newHandler(loggerType LoggerType, level slog.Level, w io.Writer) slog.Handler {
	switch loggerType {
	case LoggerText:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case LoggerJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case LoggerPretty:
		type fd interface{ Fd() uintptr }
		colorize := false
		if f, ok := w.(fd); ok {
			colorize = isatty.IsTerminal(f.Fd())
		}
		return buildPrettyHandler(w, level, colorize)
	case LoggerPrettyNoColor:
		return buildPrettyHandler(w, level, false)
	default:
		panic(fmt.Sprintf("unsupported logger type %d", loggerType))
	}
}

func buildPrettyHandler(w io.Writer, level slog.Level, colorize bool) slog.Handler {
	tintHandler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !colorize,
	})
	formatter := slogpfx.DefaultPrefixFormatter
	if colorize {
		formatter = slogpfx.ColorizePrefix(formatter)
	}
	return slogpfx.NewHandler(tintHandler, &slogpfx.HandlerOptions{
		PrefixKeys:      []string{NamespaceKey},
		PrefixFormatter: formatter,
	})
}

// Namespace returns a child logger whose records are prefixed with the component name.
func Namespace(logger *slog.Logger, name string) *slog.Logger {
	return logger.With(slog.String(NamespaceKey, name))
}

type typenamePrinter struct{ v any }

func (t typenamePrinter) MarshalText() ([]byte, error) {
	return fmt.Appendf(nil, "%T", t.v), nil
}

// Type returns a slog.Attr that contains the type name of the value.
func Type(value any) slog.Attr {
	return slog.Any("type", typenamePrinter{v: value})
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Error returns an attribute with the error message. Nil error produces an empty attribute
// which is dropped by handlers.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(errorKey, err.Error())
}

// ErrorTrace returns an attribute with the stack trace of errors created by github.com/pkg/errors.
func ErrorTrace(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	if st, ok := err.(stackTracer); ok {
		return slog.String(traceKey, fmt.Sprintf("%+v", st.StackTrace()))
	}
	return slog.Attr{}
}

// Asset returns an attribute with the "<collection>/<token id>" form of the key.
func Asset(key proto.AssetKey) slog.Attr {
	return slog.String("asset", key.String())
}

func Address(name string, addr proto.Address) slog.Attr {
	return slog.String(name, addr.String())
}

// Amount renders units as a decimal amount.
func Amount(name string, units uint64) slog.Attr {
	return slog.String(name, proto.FormatAmount(units))
}
