// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package events

import (
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/shadowscan/internal/models"
)

// Metadata keys set on every message.
const (
	MetaEventType     = "event_type"
	MetaTenantID      = "tenant_id"
	MetaCorrelationID = "correlation_id"
	MetaSchema        = "schema_version"
)

// ToMessage encodes an event. The event id becomes the message UUID and the
// Nats-Msg-Id header.
func ToMessage(e *models.Event) (*message.Message, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", e.EventID, err)
	}
	msg := message.NewMessage(e.EventID, data)
	msg.Metadata.Set(natsgo.MsgIdHdr, e.EventID)
	msg.Metadata.Set(MetaEventType, e.EventType)
	msg.Metadata.Set(MetaTenantID, e.TenantID)
	msg.Metadata.Set(MetaCorrelationID, e.CorrelationID)
	msg.Metadata.Set(MetaSchema, strconv.Itoa(e.SchemaVersion))
	return msg, nil
}

// FromMessage decodes an event and rejects schemas newer than this build.
func FromMessage(msg *message.Message) (models.Event, error) {
	var e models.Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return e, fmt.Errorf("unmarshal event %s: %w", msg.UUID, err)
	}
	if e.SchemaVersion > models.EventSchemaVersion {
		return e, fmt.Errorf("event %s: unsupported schema version %d", e.EventID, e.SchemaVersion)
	}
	return e, e.Validate()
}
