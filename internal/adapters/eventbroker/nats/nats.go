package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"tender-docs/internal/config"
	"tender-docs/internal/core/domain"
	"tender-docs/internal/core/port"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	defaultAckWait    = 30 * time.Second
	defaultMaxDeliver = 5
)

func connect(cfg config.NATSConfig, name string, logger *slog.Logger) (*nats.Conn, jetstream.JetStream, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to connect to JetStream: %w", err)
	}
	return conn, js, nil
}

// ensureStream creates or updates the stream carrying triggers and reports
func ensureStream(ctx context.Context, js jetstream.JetStream, cfg config.NATSConfig) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{cfg.TriggerSubject, cfg.ReportSubject},
	})
	if err != nil {
		return fmt.Errorf("failed to ensure stream %s: %w", cfg.StreamName, err)
	}
	return nil
}

// Consumer is a struct to receive reconciliation triggers from nats
type Consumer struct {
	logger *slog.Logger
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.NATSConfig
	iter   jetstream.MessagesContext
	wg     sync.WaitGroup
}

// NewNATSConsumer creates a new consumer
func NewNATSConsumer(cfg config.NATSConfig, logger *slog.Logger) (*Consumer, error) {
	conn, js, err := connect(cfg, cfg.ConsumerName, logger)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		conn:   conn,
		js:     js,
		config: cfg,
		logger: logger,
	}, nil
}

// Subscribe subscribes to the trigger subject and hands each message to handler.
// Messages are acked when handled and nacked for redelivery otherwise.
func (n *Consumer) Subscribe(ctx context.Context, handler port.MessageService) error {
	if err := ensureStream(ctx, n.js, n.config); err != nil {
		return err
	}

	ackWait := n.config.AckWait
	if ackWait <= 0 {
		ackWait = defaultAckWait
	}
	maxDeliver := n.config.MaxDeliver
	if maxDeliver <= 0 {
		maxDeliver = defaultMaxDeliver
	}

	consumerCfg := jetstream.ConsumerConfig{
		Durable:       n.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		FilterSubject: n.config.TriggerSubject,
		AckWait:       ackWait,
		MaxDeliver:    maxDeliver,
	}

	cons, err := n.js.CreateOrUpdateConsumer(ctx, n.config.StreamName, consumerCfg)
	if err != nil {
		return err
	}

	iter, err := cons.Messages()
	if err != nil {
		return err
	}
	n.iter = iter

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.logger.Info("NATS subscription started", "subject", n.config.TriggerSubject)
		for {
			select {
			case <-ctx.Done():
				n.logger.Info("NATS subscription stopped")
				return
			default:
				msg, err := iter.Next()
				if err != nil {
					if ctx.Err() != nil {
						n.logger.Info("NATS subscription stopped")
						return
					}
					n.logger.Warn("NATS subscription closed", "error", err)
					return
				}

				stop := n.keepAlive(msg, ackWait)
				handleErr := handler.HandleMessage(ctx, msg.Data())
				stop()

				if handleErr != nil {
					errNak := msg.Nak()
					if errNak != nil {
						n.logger.Error("failed to nak message", "error", errNak)
					}
					n.logger.Warn("failed to handle message", "error", handleErr)
					continue
				}
				ackErr := msg.Ack()
				if ackErr != nil {
					n.logger.Error("failed to ack message", "error", ackErr)
				}
			}
		}
	}()
	return nil
}

// keepAlive extends the ack deadline of msg until the returned func is called
func (n *Consumer) keepAlive(msg jetstream.Msg, ackWait time.Duration) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(max(ackWait/2, time.Second))
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := msg.InProgress(); err != nil {
					n.logger.Warn("failed to extend message ack deadline", "error", err)
				}
			}
		}
	}()
	return func() { close(done) }
}

// Close graceful shutdown
func (n *Consumer) Close() error {
	if n.iter != nil {
		n.iter.Stop()
	}

	n.wg.Wait()

	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}

// Publisher publishes reconciliation reports to nats
type Publisher struct {
	logger *slog.Logger
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.NATSConfig
}

// NewNATSPublisher creates a publisher and makes sure its stream exists
func NewNATSPublisher(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (*Publisher, error) {
	conn, js, err := connect(cfg, cfg.ConsumerName+"-publisher", logger)
	if err != nil {
		return nil, err
	}
	if err := ensureStream(ctx, js, cfg); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:   conn,
		js:     js,
		config: cfg,
		logger: logger,
	}, nil
}

// PublishReport implements port.ReportPublisher
func (p *Publisher) PublishReport(ctx context.Context, report domain.ReconcileReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("could not marshal reconcile report: %w", err)
	}

	ack, err := p.js.Publish(ctx, p.config.ReportSubject, data)
	if err != nil {
		return fmt.Errorf("failed to publish reconcile report: %w", err)
	}

	p.logger.Debug("reconcile report published", "subject", p.config.ReportSubject, "seq", ack.Sequence)
	return nil
}

// Close closes the connection
func (p *Publisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
