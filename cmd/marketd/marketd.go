package main

import (
	"context"
	stderrs "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/wavesplatform/gomarket/pkg/api"
	"github.com/wavesplatform/gomarket/pkg/bank"
	"github.com/wavesplatform/gomarket/pkg/crypto"
	"github.com/wavesplatform/gomarket/pkg/events"
	"github.com/wavesplatform/gomarket/pkg/keyvalue"
	"github.com/wavesplatform/gomarket/pkg/logging"
	"github.com/wavesplatform/gomarket/pkg/market"
	"github.com/wavesplatform/gomarket/pkg/metrics"
	"github.com/wavesplatform/gomarket/pkg/proto"
	"github.com/wavesplatform/gomarket/pkg/registry"
	"github.com/wavesplatform/gomarket/pkg/settings"
	"github.com/wavesplatform/gomarket/pkg/state"
	"github.com/wavesplatform/gomarket/pkg/util/common"
)

const (
	defaultTimeout  = 30 * time.Second
	shutdownTimeout = 5 * time.Second

	bloomFilterSize             = 2_000_000
	bloomFalsePositiveProbility = 0.01
)

const (
	marketNamespace   = "MARKET"
	eventsNamespace   = "EVENTS"
	registryNamespace = "REGISTRY"
	bankNamespace     = "BANK"
)

type config struct {
	lp           logging.Parameters
	cfgPath      string
	statePath    string
	apiAddr      string
	apiKey       string
	operator     string
	prometheus   string
	natsAddr     string
	natsEmbedded string
	rateLimiter  string
	disableBloom bool
	lockTimeout  time.Duration
	logHTTP      bool
	h            slog.Handler
}

func (c *config) String() string {
	return fmt.Sprintf("{Logger: %s, cfg-path: %s, state-path: %s, api-address: %s, api-key: %s, "+
		"operator: %s, prometheus: %s, nats-address: %s, nats-embedded: %s, rate-limiter-opts: %s, "+
		"disable-bloom: %t, lock-timeout: %s}",
		c.lp.String(), c.cfgPath, c.statePath, c.apiAddr, crypto.MustSecureHash([]byte(c.apiKey)).String(),
		c.operator, c.prometheus, c.natsAddr, c.natsEmbedded, c.rateLimiter,
		c.disableBloom, c.lockTimeout)
}

func (c *config) parse(fs *flag.FlagSet, args []string) error {
	c.lp.InitializeFlagSet(fs)
	fs.StringVar(&c.cfgPath, "cfg-path", "", "Path to configuration JSON file.")
	fs.StringVar(&c.statePath, "state-path", "", "Path to marketplace state directory, ~/.gomarket by default.")
	fs.StringVar(&c.apiAddr, "api-address", "", "Address for REST API.")
	fs.StringVar(&c.apiKey, "api-key", "", "Api key.")
	fs.StringVar(&c.operator, "operator", "", "Marketplace operator address.")
	fs.StringVar(&c.prometheus, "prometheus", "", "Provide collected metrics by prometheus client.")
	fs.StringVar(&c.natsAddr, "nats-address", "", "URL of NATS server to publish ledger events to.")
	fs.StringVar(&c.natsEmbedded, "nats-embedded", "",
		"Start embedded NATS server on the given host:port and publish ledger events to it.")
	fs.StringVar(&c.rateLimiter, "rate-limiter-opts", "",
		"Rate limiter options in form of URL query options, e.g. \"cache=1024&rps=10&burst=5\", keys 'cache' - "+
			"rate limiter cache size in bytes, 'rps' - requests per second, 'burst' - available burst")
	fs.BoolVar(&c.disableBloom, "disable-bloom", false,
		"Disable bloom filter. Less memory usage, but decrease performance.")
	fs.DurationVar(&c.lockTimeout, "lock-timeout", 0, "How long an operation waits for the ledger.")
	fs.BoolVar(&c.logHTTP, "log-http", false, "Log served HTTP requests.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.lp.Parse()
}

// marketSettings reads the settings file if any and applies command line flags over it.
func (c *config) marketSettings(fs afero.Fs) (*settings.MarketSettings, error) {
	s := settings.DefaultMarketSettings()
	if c.cfgPath != "" {
		var err error
		s, err = settings.ReadMarketSettings(fs, c.cfgPath)
		if err != nil {
			return nil, err
		}
	}
	settings.ApplySettings(s, settings.FromEnviron, c.applyFlags)
	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid settings")
	}
	return s, nil
}

func (c *config) applyFlags(s *settings.MarketSettings) {
	if c.statePath != "" {
		s.StatePath = c.statePath
	}
	if c.apiAddr != "" {
		s.APIAddress = c.apiAddr
	}
	if c.apiKey != "" {
		s.APIKey = c.apiKey
	}
	if c.operator != "" {
		if addr, err := proto.NewAddressFromString(c.operator); err == nil {
			s.Operator = addr
		} else {
			slog.Error("Invalid operator address", slog.String("operator", c.operator), logging.Error(err))
		}
	}
	if c.prometheus != "" {
		s.Prometheus = c.prometheus
	}
	if c.natsAddr != "" {
		s.NatsAddress = c.natsAddr
	}
	if c.rateLimiter != "" {
		s.RateLimiter = c.rateLimiter
	}
	if c.disableBloom {
		s.DisableBloom = true
	}
	if c.lockTimeout > 0 {
		s.LockTimeout = settings.Duration(c.lockTimeout)
	}
}

func main() {
	os.Exit(realMain()) // for more info see https://github.com/golang/go/issues/42078
}

func realMain() int {
	c := new(config)
	if err := c.parse(flag.CommandLine, os.Args[1:]); err != nil {
		slog.Error("Failed to parse application parameters", logging.Error(err))
		return 1
	}
	c.h = logging.DefaultHandler(c.lp)
	slog.SetDefault(slog.New(c.h))
	_, zs := common.SetupLogger(c.lp.Level.String())
	defer func() { _ = zs.Sync() }()
	if err := run(c); err != nil {
		slog.Error("Failed to run marketplace node", logging.Error(err), logging.ErrorTrace(err))
		return 1
	}
	return 0
}

func run(c *config) (retErr error) {
	eg, ctx := errgroup.WithContext(context.Background())
	defer func() {
		if wErr := eg.Wait(); wErr != nil && !errors.Is(wErr, context.Canceled) {
			retErr = stderrs.Join(retErr, wErr)
		}
	}()
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s, err := c.marketSettings(afero.NewOsFs())
	if err != nil {
		return err
	}
	slog.Debug("Starting with parameters", "parameters", c.String())

	metrics.Register(prometheus.DefaultRegisterer)
	if s.Prometheus != "" {
		eg.Go(func() error {
			<-runPrometheusMetricsServer(ctx, s.Prometheus)
			return nil
		})
	}

	closer, err := runMarket(ctx, eg, c, s)
	if err != nil {
		return errors.Wrap(err, "failed to run marketplace")
	}

	<-ctx.Done()
	slog.Info("User termination in progress...")
	// API and event goroutines must stop before the storage is closed.
	_ = eg.Wait()
	if clErr := closer.Close(); clErr != nil {
		return errors.Wrap(clErr, "failed to close marketplace")
	}
	return nil
}

type closers []io.Closer

// Close closes in reverse order of opening.
func (cs closers) Close() error {
	var err error
	for i := len(cs) - 1; i >= 0; i-- {
		err = stderrs.Join(err, cs[i].Close())
	}
	return err
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func statePath(s *settings.MarketSettings) (string, error) {
	if s.StatePath != "" {
		return s.StatePath, nil
	}
	path, err := common.GetStatePath()
	if err != nil {
		return "", errors.Wrap(err, "failed to get common state path")
	}
	return filepath.Join(path, "state"), nil
}

func runMarket(ctx context.Context, eg *errgroup.Group, c *config, s *settings.MarketSettings) (_ io.Closer, retErr error) {
	var cs closers
	defer func() {
		if retErr != nil {
			retErr = stderrs.Join(retErr, cs.Close())
		}
	}()
	logger := slog.New(c.h)

	path, err := statePath(s)
	if err != nil {
		return nil, err
	}
	kv, err := keyvalue.NewKeyVal(keyvalue.Options{
		Path:         path,
		DisableBloom: s.DisableBloom,
		Bloom: keyvalue.BloomFilterParams{
			N:                        bloomFilterSize,
			FalsePositiveProbability: bloomFalsePositiveProbility,
			Path:                     keyvalue.DefaultBloomPath(path),
			Fs:                       afero.NewOsFs(),
		},
	}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open state database")
	}
	cs = append(cs, kv)
	storage := state.NewStorage(kv, time.Duration(s.LockTimeout))

	journal, err := events.NewJournal(kv)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open events journal")
	}
	sinks, err := eventSinks(s, c.natsEmbedded, logger, &cs)
	if err != nil {
		return nil, err
	}
	bus := events.NewBus(journal, s.EventQueueSize, logging.Namespace(logger, eventsNamespace), sinks...)
	eg.Go(func() error {
		bus.Run(ctx)
		return nil
	})
	eg.Go(func() error {
		traceEvents(ctx, bus, logging.Namespace(logger, eventsNamespace))
		return nil
	})

	b := bank.New(storage, logging.Namespace(logger, bankNamespace))
	reg := registry.New(storage, b, s.Scheme, logging.Namespace(logger, registryNamespace))
	ledger, err := market.NewLedger(storage, reg, b, s.Operator,
		market.WithNotifier(bus),
		market.WithLockTimeout(time.Duration(s.LockTimeout)),
		market.WithLogger(logging.Namespace(logger, marketNamespace)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ledger")
	}

	app, err := api.NewApp(s.APIKey, ledger, reg, b, journal, api.WithMintFee(s.MintFee))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create API app")
	}
	opts := api.DefaultRunOptions()
	opts.LogHttpRequestOpts = c.logHTTP
	if s.RateLimiter != "" {
		rlo, rlErr := api.NewRateLimiterOptionsFromString(s.RateLimiter)
		if rlErr != nil {
			return nil, errors.Wrap(rlErr, "invalid rate limiter options")
		}
		opts.RateLimiterOpts = rlo
	}
	eg.Go(func() error {
		slog.Info("Starting marketplace API", "address", s.APIAddress, "operator", s.Operator.String())
		if apiErr := api.Run(ctx, s.APIAddress, api.NewMarketApi(app), opts); apiErr != nil {
			return errors.Wrap(apiErr, "failed to run API")
		}
		return nil
	})
	return cs, nil
}

func eventSinks(s *settings.MarketSettings, embedded string, logger *slog.Logger, cs *closers) ([]events.Sink, error) {
	natsURL := s.NatsAddress
	if natsURL == "" && embedded == "" {
		return nil, nil
	}
	if embedded != "" {
		host, portStr, err := net.SplitHostPort(embedded)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid embedded NATS address %q", embedded)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid embedded NATS port %q", portStr)
		}
		srv, err := events.StartEmbeddedServer(host, port)
		if err != nil {
			return nil, err
		}
		*cs = append(*cs, closerFunc(func() error {
			srv.Shutdown()
			return nil
		}))
		slog.Info("Embedded NATS server started", "url", srv.ClientURL())
		if natsURL == "" {
			natsURL = srv.ClientURL()
		}
	}
	publisher, err := events.NewNatsPublisher(natsURL, s.NatsSubject, logging.Namespace(logger, eventsNamespace))
	if err != nil {
		return nil, err
	}
	*cs = append(*cs, publisher)
	return []events.Sink{publisher}, nil
}

func traceEvents(ctx context.Context, bus *events.Bus, logger *slog.Logger) {
	ch, unsubscribe := bus.Subscribe(events.DefaultQueueSize)
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			logger.Debug("Ledger event", slog.String("event", e.String()))
		}
	}
}

func runPrometheusMetricsServer(ctx context.Context, prometheusAddr string) <-chan struct{} {
	h := http.NewServeMux()
	h.Handle("/metrics", promhttp.Handler())
	s := &http.Server{
		Addr:              prometheusAddr,
		Handler:           h,
		ReadHeaderTimeout: defaultTimeout,
		ReadTimeout:       defaultTimeout,
	}
	s.RegisterOnShutdown(func() {
		slog.Info("Prometheus metrics server is shutting down...")
	})
	go func() {
		slog.Info("Starting prometheus metrics server", "address", prometheusAddr)
		err := s.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start prometheus metrics server", logging.Error(err))
		}
	}()
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown prometheus", logging.Error(err))
		}
	}()
	return done
}
