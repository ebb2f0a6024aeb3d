// Useful routines used in several other packages.
package common

import (
	"math/bits"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	ErrUint64Overflow  = errors.New("64-bit unsigned integer overflow")
	ErrUint64Underflow = errors.New("64-bit unsigned integer underflow")
)

// Safe sum for uint64.
func AddUint64(a, b uint64) (uint64, error) {
	c, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrUint64Overflow
	}
	return c, nil
}

// Safe subtraction for uint64.
func SubUint64(a, b uint64) (uint64, error) {
	c, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrUint64Underflow
	}
	return c, nil
}

// GetStatePath returns the default directory of the marketplace state.
func GetStatePath() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(u.HomeDir, ".gomarket"), nil
}

// SetupLogger creates the zap logger used by the HTTP layer and makes it global.
func SetupLogger(level string) (*zap.Logger, *zap.SugaredLogger) {
	al := zap.NewAtomicLevel()
	switch strings.ToUpper(level) {
	case "DEBUG":
		al.SetLevel(zap.DebugLevel)
	case "WARN", "WARNING":
		al.SetLevel(zap.WarnLevel)
	case "ERROR":
		al.SetLevel(zap.ErrorLevel)
	default:
		al.SetLevel(zap.InfoLevel)
	}
	ec := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stdout), al)
	logger := zap.New(core)
	zap.ReplaceGlobals(logger)
	return logger, logger.Sugar()
}
