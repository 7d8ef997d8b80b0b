package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/awantoch/visitorcount/config"
	"github.com/awantoch/visitorcount/constants"
	"github.com/awantoch/visitorcount/utils"
)

type EventBus interface {
	Publish(topic string, payload any) error
	Subscribe(ctx context.Context, topic string, handler func(payload any))
	Close() error
}

// VisitEvent is published on TopicVisitorCounted after every recorded visit.
type VisitEvent struct {
	PartitionKey string    `json:"partition_key"`
	RowKey       string    `json:"row_key"`
	Count        int64     `json:"count"`
	RequestID    string    `json:"request_id,omitempty"`
	At           time.Time `json:"at"`
}

// NewInProcEventBus returns a new in-memory event bus. Used when event config driver=="memory" or omitted.
func NewInProcEventBus() *WatermillEventBus {
	return NewWatermillInMemBus()
}

// NewEventBusFromConfig returns an EventBus based on config. Supported: memory (default), nats (with url).
// Unknown drivers fail cleanly.
func NewEventBusFromConfig(cfg *config.EventConfig) (EventBus, error) {
	if cfg == nil || cfg.Driver == "" || cfg.Driver == constants.EventDriverMemory {
		return NewWatermillInMemBus(), nil
	}
	switch cfg.Driver {
	case constants.EventDriverNATS:
		if cfg.URL == "" {
			return nil, fmt.Errorf("NATS driver requires url")
		}
		return NewWatermillNATSBUS(constants.NATSClusterID, constants.NATSClientID, cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported event bus driver: %s", cfg.Driver)
	}
}

// PublishVisit announces a new count on TopicVisitorCounted, tagged with the
// request ID carried by ctx.
func PublishVisit(ctx context.Context, bus EventBus, count int64) error {
	if bus == nil {
		return nil
	}
	reqID, _ := utils.RequestIDFromContext(ctx)
	return bus.Publish(constants.TopicVisitorCounted, VisitEvent{
		PartitionKey: constants.CounterPartitionKey,
		RowKey:       constants.CounterRowKey,
		Count:        count,
		RequestID:    reqID,
		At:           time.Now().UTC(),
	})
}

// DecodeVisit converts a payload delivered by Subscribe back into a VisitEvent.
func DecodeVisit(payload any) (VisitEvent, error) {
	var ev VisitEvent
	var data []byte
	switch v := payload.(type) {
	case VisitEvent:
		return v, nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case map[string]any:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return ev, err
		}
	default:
		return ev, fmt.Errorf("unexpected visit payload %T", payload)
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("decode visit event: %w", err)
	}
	return ev, nil
}
