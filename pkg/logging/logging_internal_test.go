package logging

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"flag"
	"fmt"
	"log/slog"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavesplatform/gomarket/pkg/proto"
)

func TestError(t *testing.T) {
	e1 := stderrors.New("standard error")
	e2 := fmt.Errorf("wrapped error: %w", e1)
	e3 := errors.New("pkg errors error")
	e4 := errors.Wrapf(e3, "wrapped pkg error")
	for i, test := range []struct {
		err      error
		message  string
		hasTrace bool
	}{
		{nil, "", false},
		{e1, "standard error", false},
		{e2, "wrapped error: standard error", false},
		{e3, "pkg errors error", true},
		{e4, "wrapped pkg error: pkg errors error", true},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			buf := new(bytes.Buffer)
			logger := slog.New(newHandler(LoggerJSON, slog.LevelDebug, buf))
			logger.Error("Test error", slog.String("test", "attribute"), Error(test.err), ErrorTrace(test.err))

			var rec map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
			assert.Equal(t, "Test error", rec["msg"])
			assert.Equal(t, "attribute", rec["test"])
			if test.err == nil {
				assert.NotContains(t, rec, errorKey)
			} else {
				assert.Equal(t, test.message, rec[errorKey])
			}
			_, ok := rec[traceKey]
			assert.Equal(t, test.hasTrace, ok)
			slogt.New(t).Info("Test error", Error(test.err))
		})
	}
}

func TestLoggerTypeText(t *testing.T) {
	for _, lt := range []LoggerType{LoggerText, LoggerJSON, LoggerPretty, LoggerPrettyNoColor} {
		b, err := lt.MarshalText()
		require.NoError(t, err)
		var r LoggerType
		require.NoError(t, r.UnmarshalText(b))
		assert.Equal(t, lt, r)
	}
	var r LoggerType
	require.NoError(t, r.UnmarshalText([]byte("pretty")))
	assert.Equal(t, LoggerPretty, r)
	assert.Error(t, r.UnmarshalText([]byte("xml")))
}

func TestNamespace(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := Namespace(slog.New(newHandler(LoggerJSON, slog.LevelInfo, buf)), "MARKET")
	logger.Info("hello")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "MARKET", rec[NamespaceKey])
}

func TestPrettyHandler(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := Namespace(slog.New(newHandler(LoggerPrettyNoColor, slog.LevelInfo, buf)), "EVENTS")
	logger.Info("hello")
	assert.Contains(t, buf.String(), "EVENTS")
	assert.Contains(t, buf.String(), "hello")
}

func TestParameters(t *testing.T) {
	p := Parameters{flagLogLevel: "debug", flagLoggerType: "json"}
	require.NoError(t, p.Parse())
	assert.Equal(t, slog.LevelDebug, p.Level)
	assert.Equal(t, LoggerJSON, p.Type)

	p = Parameters{flagLogLevel: "loud", flagLoggerType: "json"}
	assert.Error(t, p.Parse())
}

func TestParametersFlagSet(t *testing.T) {
	fs := flag.NewFlagSet("marketd", flag.ContinueOnError)
	var p Parameters
	p.InitializeFlagSet(fs)
	require.NoError(t, fs.Parse([]string{"-log-level", "warn", "-log-type", "text"}))
	require.NoError(t, p.Parse())
	assert.Equal(t, slog.LevelWarn, p.Level)
	assert.Equal(t, LoggerText, p.Type)
	assert.Nil(t, flag.CommandLine.Lookup("log-level"))
}

func TestMarketAttributes(t *testing.T) {
	collection := proto.MustAddressFromData(proto.CustomScheme, []byte("collection"))
	seller := proto.MustAddressFromData(proto.CustomScheme, []byte("seller"))
	key := proto.NewAssetKey(collection, 3)

	buf := new(bytes.Buffer)
	logger := slog.New(newHandler(LoggerJSON, slog.LevelDebug, buf))
	logger.Info("Item listed", Asset(key), Address("seller", seller), Amount("price", 150_000_000))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, key.String(), rec["asset"])
	assert.Equal(t, seller.String(), rec["seller"])
	assert.Equal(t, "1.5", rec["price"])
}
