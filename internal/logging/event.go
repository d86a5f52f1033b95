// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// EventLogger logs lifecycle event delivery: the outbox relay and the live
// feed bridge.
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger returns an EventLogger tagged component=events.
func NewEventLogger() *EventLogger {
	return &EventLogger{logger: WithComponent("events")}
}

// NewEventLoggerWithLogger is for tests.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEventLoggerWithLogger(logger zerolog.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

func (e *EventLogger) with(ctx context.Context) *zerolog.Logger {
	l := e.logger
	if id := CorrelationIDFromContext(ctx); id != "" {
		l = l.With().Str("correlation_id", id).Logger()
	}
	return &l
}

func (e *EventLogger) LogEventPublished(ctx context.Context, eventID, eventType, topic string) {
	e.with(ctx).Debug().
		Str("event_id", eventID).
		Str("event_type", eventType).
		Str("topic", topic).
		Msg("Event published")
}

func (e *EventLogger) LogEventFailed(ctx context.Context, eventID string, attempts int, err error) {
	e.with(ctx).Warn().
		Str("event_id", eventID).
		Int("attempts", attempts).
		Str("error", SanitizeError(err.Error())).
		Msg("Event publish failed")
}

func (e *EventLogger) LogRelayBatch(ctx context.Context, count int, elapsed time.Duration) {
	e.with(ctx).Debug().Int("count", count).Dur("elapsed", elapsed).Msg("Outbox batch relayed")
}

func (e *EventLogger) LogEventDecodeFailed(ctx context.Context, messageID string, err error) {
	e.with(ctx).Warn().Str("message_id", messageID).Err(err).Msg("Dropping undecodable event")
}

func (e *EventLogger) LogSubscriptionStarted(topic string) {
	e.logger.Info().Str("topic", topic).Msg("Event subscription started")
}

func (e *EventLogger) LogSubscriptionStopped(topic string) {
	e.logger.Info().Str("topic", topic).Msg("Event subscription stopped")
}
