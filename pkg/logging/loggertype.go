package logging

import (
	"fmt"
	"strings"
)

// LoggerType is a type of logger output.
// Possible types:
//   - LoggerText: The standard slog.TextHandler.
//   - LoggerJSON: The standard slog.JSONHandler.
//   - LoggerPretty: The logger outputs pretty messages, colored on terminals.
//   - LoggerPrettyNoColor: The logger outputs pretty messages without colors.
type LoggerType int

const (
	LoggerText LoggerType = iota
	LoggerJSON
	LoggerPretty
	LoggerPrettyNoColor
)

var loggerTypeNames = [...]string{"Text", "JSON", "Pretty", "PrettyNoColor"}

func (t LoggerType) String() string {
	if t < 0 || int(t) >= len(loggerTypeNames) {
		return fmt.Sprintf("LoggerType(%d)", int(t))
	}
	return loggerTypeNames[t]
}

func (t LoggerType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts type names case-insensitively.
func (t *LoggerType) UnmarshalText(text []byte) error {
	for i, n := range loggerTypeNames {
		if strings.EqualFold(n, string(text)) {
			*t = LoggerType(i)
			return nil
		}
	}
	return fmt.Errorf("%q does not belong to LoggerType values", string(text))
}
