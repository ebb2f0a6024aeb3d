package events

import (
	"log/slog"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/wavesplatform/gomarket/pkg/logging"
	"github.com/wavesplatform/gomarket/pkg/proto"
)

const (
	DefaultSubjectPrefix = "market.events"

	natsMaxPayloadSize   int32 = 1024 * 1024 // 1 MB
	natsConnectionsReady       = 5 * time.Second
)

// Subject returns the NATS subject of events of the given type.
func Subject(prefix string, t proto.EventType) string {
	return prefix + "." + t.String()
}

// EmbeddedServer is a NATS server running inside the node.
type EmbeddedServer struct {
	s *server.Server
}

// StartEmbeddedServer runs a NATS server on the address, port -1 picks a random port.
func StartEmbeddedServer(host string, port int) (*EmbeddedServer, error) {
	opts := &server.Options{
		MaxPayload: natsMaxPayloadSize,
		Host:       host,
		Port:       port,
		NoSigs:     true,
		NoLog:      true,
	}
	s, err := server.NewServer(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create NATS server")
	}
	go s.Start()
	if !s.ReadyForConnections(natsConnectionsReady) {
		s.Shutdown()
		return nil, errors.New("NATS server is not ready for connections")
	}
	return &EmbeddedServer{s: s}, nil
}

func (e *EmbeddedServer) ClientURL() string {
	return e.s.ClientURL()
}

func (e *EmbeddedServer) Shutdown() {
	e.s.Shutdown()
	e.s.WaitForShutdown()
}

// NatsPublisher is a Sink publishing CBOR encoded events.
type NatsPublisher struct {
	nc     *nats.Conn
	prefix string
	logger *slog.Logger
}

func NewNatsPublisher(url, subjectPrefix string, logger *slog.Logger) (*NatsPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	subjectPrefix = strings.TrimSuffix(subjectPrefix, ".")
	if subjectPrefix == "" {
		subjectPrefix = DefaultSubjectPrefix
	}
	nc, err := nats.Connect(url,
		nats.Name("gomarket"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS connection lost", logging.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to NATS server %q", url)
	}
	return &NatsPublisher{nc: nc, prefix: subjectPrefix, logger: logger}, nil
}

func (p *NatsPublisher) Publish(e proto.Event) error {
	data, err := cbor.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "failed to encode event")
	}
	if err := p.nc.Publish(Subject(p.prefix, e.Type), data); err != nil {
		return errors.Wrapf(err, "failed to publish event %s", e.ID)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NatsPublisher) Close() error {
	err := p.nc.Drain()
	for p.nc.IsDraining() {
		time.Sleep(10 * time.Millisecond)
	}
	return err
}

// DecodeEvent decodes the payload of a published event.
func DecodeEvent(data []byte) (proto.Event, error) {
	var e proto.Event
	if err := cbor.Unmarshal(data, &e); err != nil {
		return proto.Event{}, errors.Wrap(err, "failed to decode event")
	}
	return e, nil
}
