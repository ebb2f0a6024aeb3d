package logging

import (
	"flag"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

type Parameters struct {
	Level slog.Level
	Type  LoggerType

	flagLogLevel   string
	flagLoggerType string
}

// InitializeFlagSet adds logging command line parameters to the given flag set.
func (p *Parameters) InitializeFlagSet(fs *flag.FlagSet) {
	fs.StringVar(&p.flagLogLevel, "log-level", "info",
		"Set the logging level. Supported values: debug, info, warn, error. Default: info.")
	fs.StringVar(&p.flagLoggerType, "log-type", "pretty",
		"Set the logger output format. Supported types: text, json, pretty, prettynocolor. Default: pretty.")
}

// Parse parses the command line parameters for logging.
func (p *Parameters) Parse() error {
	var err error
	p.Level, err = p.parseLevel(p.flagLogLevel)
	if err != nil {
		return errors.Wrap(err, "failed to parse logger parameters")
	}
	p.Type, err = p.parseType(p.flagLoggerType)
	if err != nil {
		return errors.Wrap(err, "failed to parse logger parameters")
	}
	return nil
}

func (p *Parameters) String() string {
	return fmt.Sprintf("{Level: %s, Type: %s}", p.Level, p.Type)
}

func (p *Parameters) parseLevel(l string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(l))
	if err != nil {
		return slog.Level(0), errors.Wrap(err, "invalid log level")
	}
	return level, nil
}

func (p *Parameters) parseType(t string) (LoggerType, error) {
	var lt LoggerType
	err := lt.UnmarshalText([]byte(t))
	if err != nil {
		return LoggerText, errors.Wrap(err, "invalid logger type")
	}
	return lt, nil
}
