// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/shadowscan/internal/models"
)

// channelTopic is the single gochannel topic. gochannel has no wildcard
// subscriptions, so every event shares it.
const channelTopic = models.EventTopicPrefix + ".events"

// Transport owns the Watermill publisher and subscriber for one of the
// supported transports.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	kind   string
	conn   *natsgo.Conn
	server *EmbeddedServer
}

// Open builds the configured transport. For NATS it optionally starts the
// embedded server and provisions the stream before returning.
func Open(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (*Transport, error) {
	if logger == nil {
		logger = NewLogger()
	}
	switch cfg.Transport {
	case TransportNATS:
		return openNATS(ctx, cfg, logger)
	default:
		return NewChannelTransport(logger), nil
	}
}

// NewChannelTransport returns an in-process gochannel transport.
func NewChannelTransport(logger watermill.LoggerAdapter) *Transport {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	ps := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)
	return &Transport{Publisher: ps, Subscriber: ps, kind: TransportChannel}
}

func openNATS(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (t *Transport, err error) {
	t = &Transport{kind: TransportNATS}
	defer func() {
		if err != nil {
			_ = t.Close()
		}
	}()

	url := cfg.URL
	if cfg.Embedded {
		if t.server, err = StartEmbeddedServer(cfg); err != nil {
			return nil, err
		}
		url = t.server.ClientURL()
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("shadowscan"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	if t.conn, err = natsgo.Connect(url, natsOpts...); err != nil {
		return nil, fmt.Errorf("connect NATS: %w", err)
	}
	js, err := jetstream.New(t.conn)
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}
	if _, err = EnsureStream(ctx, js, cfg); err != nil {
		return nil, err
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	t.Publisher = pub

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     10 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.BindStream(cfg.Stream),
				natsgo.DeliverNew(),
				natsgo.AckExplicit(),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}
	t.Subscriber = sub
	return t, nil
}

// Topic returns the publish topic for e.
func (t *Transport) Topic(e *models.Event) string {
	if t.kind == TransportChannel {
		return channelTopic
	}
	return e.Topic()
}

// FeedTopic is the subscription topic that receives every event.
func (t *Transport) FeedTopic() string {
	if t.kind == TransportChannel {
		return channelTopic
	}
	return models.EventTopicPrefix + ".>"
}

// Healthy reports whether the transport can publish.
func (t *Transport) Healthy() bool {
	if t.kind == TransportChannel {
		return true
	}
	if t.server != nil && !t.server.Running() {
		return false
	}
	return t.conn != nil && t.conn.IsConnected()
}

// Close releases the publisher, subscriber, connection and embedded server.
func (t *Transport) Close() error {
	var errs []error
	if t.Publisher != nil {
		errs = append(errs, t.Publisher.Close())
	}
	if t.Subscriber != nil && t.kind != TransportChannel {
		errs = append(errs, t.Subscriber.Close())
	}
	if t.conn != nil {
		t.conn.Close()
	}
	if t.server != nil {
		t.server.Shutdown()
	}
	return errors.Join(errs...)
}
