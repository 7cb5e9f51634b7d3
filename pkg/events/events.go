// Package events provides the in-process wizard event stream. Controllers
// publish lifecycle events onto a topic; consumers (the WebSocket relay,
// tests) subscribe with optional filters
package events

import (
	"time"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/intake/pkg/api"
)

type (
	// Hub fans wizard events out to any number of consumers
	Hub struct {
		topic topic.Topic[*api.Event]
		prod  topic.Producer[*api.Event]
	}

	// Consumer receives events from the hub
	Consumer = topic.Consumer[*api.Event]

	// Filter reports whether an event should be delivered
	Filter func(*api.Event) bool
)

// NewHub creates a wizard event hub
func NewHub() *Hub {
	t := caravan.NewTopic[*api.Event]()
	return &Hub{
		topic: t,
		prod:  t.NewProducer(),
	}
}

// Publish stamps and sends an event to all consumers
func (h *Hub) Publish(
	typ api.EventType, wizardID api.WizardID, stepID api.StepID, data any,
) {
	message.Send(h.prod, &api.Event{
		Type:      typ,
		WizardID:  wizardID,
		StepID:    stepID,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// NewConsumer subscribes a new consumer to the hub
func (h *Hub) NewConsumer() Consumer {
	return h.topic.NewConsumer()
}

// Close shuts down the hub's producer
func (h *Hub) Close() {
	h.prod.Close()
}

// FilterWizard matches events for a single wizard instance
func FilterWizard(id api.WizardID) Filter {
	return func(ev *api.Event) bool {
		return ev.WizardID == id
	}
}

// FilterTypes matches events of any of the given types
func FilterTypes(types ...api.EventType) Filter {
	return func(ev *api.Event) bool {
		for _, t := range types {
			if ev.Type == t {
				return true
			}
		}
		return false
	}
}

// AndFilters matches events that satisfy all the given filters
func AndFilters(filters ...Filter) Filter {
	return func(ev *api.Event) bool {
		for _, f := range filters {
			if !f(ev) {
				return false
			}
		}
		return true
	}
}
