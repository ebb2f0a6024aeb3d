// Package settings holds the configuration of the marketplace node.
package settings

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/wavesplatform/gomarket/pkg/proto"
)

const (
	DefaultAPIAddress     = "127.0.0.1:6870"
	DefaultLockTimeout    = 5 * time.Second
	DefaultEventQueueSize = 1024
	DefaultMintFee        = 1000000
	DefaultSubjectPrefix  = "market.events"

	apiKeyEnv = "MARKET_API_KEY"
)

// Duration is a time.Duration written in JSON as a string like "1.5s".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "duration must be a string")
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", s)
	}
	*d = Duration(v)
	return nil
}

type MarketSettings struct {
	StatePath    string        `json:"statePath"`
	DisableBloom bool          `json:"disableBloom"`
	APIAddress   string        `json:"apiAddress"`
	APIKey       string        `json:"apiKey"`
	Operator     proto.Address `json:"operator"`
	// Scheme is the address scheme byte of collections created by the registry.
	Scheme         byte     `json:"scheme"`
	LockTimeout    Duration `json:"lockTimeout"`
	MintFee        uint64   `json:"mintFee"`
	EventQueueSize int      `json:"eventQueueSize"`
	NatsAddress    string   `json:"natsAddress"`
	NatsSubject    string   `json:"natsSubject"`
	Prometheus     string   `json:"prometheus"`
	RateLimiter    string   `json:"rateLimiter"`
}

func DefaultMarketSettings() *MarketSettings {
	s := &MarketSettings{}
	s.applyDefaults()
	return s
}

func (s *MarketSettings) applyDefaults() {
	if s.APIAddress == "" {
		s.APIAddress = DefaultAPIAddress
	}
	if s.Scheme == 0 {
		s.Scheme = proto.CustomScheme
	}
	if s.LockTimeout == 0 {
		s.LockTimeout = Duration(DefaultLockTimeout)
	}
	if s.MintFee == 0 {
		s.MintFee = DefaultMintFee
	}
	if s.EventQueueSize == 0 {
		s.EventQueueSize = DefaultEventQueueSize
	}
	if s.NatsSubject == "" {
		s.NatsSubject = DefaultSubjectPrefix
	}
}

func (s *MarketSettings) Validate() error {
	if s.Operator.IsZero() {
		return errors.New("empty marketplace operator address")
	}
	if ok, err := s.Operator.Validate(); !ok {
		return errors.Wrap(err, "invalid marketplace operator address")
	}
	if s.LockTimeout < 0 {
		return errors.Errorf("negative lock timeout %s", time.Duration(s.LockTimeout))
	}
	if s.EventQueueSize < 0 {
		return errors.Errorf("negative event queue size %d", s.EventQueueSize)
	}
	if strings.ContainsAny(s.NatsSubject, " *>") {
		return errors.Errorf("invalid NATS subject prefix %q", s.NatsSubject)
	}
	return nil
}

// ReadMarketSettings reads the JSON settings file from fs. Missing fields get default values.
func ReadMarketSettings(fs afero.Fs, path string) (*MarketSettings, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read settings file")
	}
	s := &MarketSettings{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errors.Wrapf(err, "failed to parse settings file %q", path)
	}
	s.applyDefaults()
	return s, nil
}

// WriteMarketSettings stores the settings as indented JSON, used to generate configuration files.
func WriteMarketSettings(fs afero.Fs, path string, s *MarketSettings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal settings")
	}
	return afero.WriteFile(fs, path, data, 0o600)
}

// FromEnviron takes the API key from the MARKET_API_KEY environment variable if it is set.
func FromEnviron(s *MarketSettings) {
	if key, ok := os.LookupEnv(apiKeyEnv); ok && key != "" {
		s.APIKey = key
	}
}

func ApplySettings(s *MarketSettings, f ...func(*MarketSettings)) {
	for _, fn := range f {
		fn(s)
	}
}
