package api

import (
	"github.com/pkg/errors"

	apiErrors "github.com/wavesplatform/gomarket/pkg/api/errors"
	"github.com/wavesplatform/gomarket/pkg/bank"
	"github.com/wavesplatform/gomarket/pkg/crypto"
	"github.com/wavesplatform/gomarket/pkg/events"
	"github.com/wavesplatform/gomarket/pkg/market"
	"github.com/wavesplatform/gomarket/pkg/registry"
)

// default app settings
const (
	defaultEventsPageLimit = 100
)

type appSettings struct {
	EventsPageLimit int
	MintFee         uint64
}

func defaultAppSettings() *appSettings {
	return &appSettings{
		EventsPageLimit: defaultEventsPageLimit,
	}
}

type AppOption func(*appSettings)

// WithMintFee sets the mint fee of collections created through the API.
func WithMintFee(fee uint64) AppOption {
	return func(s *appSettings) {
		s.MintFee = fee
	}
}

type App struct {
	hashedApiKey  crypto.Digest
	apiKeyEnabled bool
	ledger        *market.Ledger
	registry      *registry.Registry
	bank          *bank.Bank
	journal       *events.Journal
	settings      *appSettings
}

func NewApp(
	apiKey string,
	ledger *market.Ledger,
	reg *registry.Registry,
	b *bank.Bank,
	journal *events.Journal,
	opts ...AppOption,
) (*App, error) {
	settings := defaultAppSettings()
	for _, opt := range opts {
		opt(settings)
	}
	digest, err := crypto.SecureHash([]byte(apiKey))
	if err != nil {
		return nil, err
	}
	return &App{
		hashedApiKey:  digest,
		apiKeyEnabled: len(apiKey) > 0,
		ledger:        ledger,
		registry:      reg,
		bank:          b,
		journal:       journal,
		settings:      settings,
	}, nil
}

func (a *App) checkAuth(key string) error {
	if !a.apiKeyEnabled {
		return apiErrors.ErrAPIKeyDisabled
	}
	d, err := crypto.SecureHash([]byte(key))
	if err != nil {
		return errors.Wrap(err, "failed to calculate secure hash for API key")
	}
	if d != a.hashedApiKey {
		return apiErrors.ErrAPIKeyNotValid
	}
	return nil
}
