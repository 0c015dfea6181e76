package events

import (
	"time"

	"go.uber.org/zap"
)

const TypeCatalogUpdate = "catalog_update"

const (
	CategoryCreated = "category_created"
	CategoryUpdated = "category_updated"
	CategoryDeleted = "category_deleted"
	ProductCreated  = "product_created"
	ProductUpdated  = "product_updated"
	ProductDeleted  = "product_deleted"
)

// Actor identifies who caused an event.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Event describes a committed catalog change.
type Event struct {
	Type    string                 `json:"type"`
	Action  string                 `json:"action"`
	Entity  map[string]interface{} `json:"entity"`
	User    Actor                  `json:"user"`
	Message string                 `json:"message"`
	At      time.Time              `json:"at"`
}

// Publisher delivers events. Implementations must not block the caller for long
// and never fail the originating request.
type Publisher interface {
	Publish(evt Event)
}

// Fanout publishes to every publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(evt Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(evt)
		}
	}
}

type nop struct{}

func (nop) Publish(Event) {}

// Nop discards events.
func Nop() Publisher { return nop{} }

// JSONPublisher is a broker client able to publish a JSON document.
type JSONPublisher interface {
	PublishJSON(v interface{}) error
}

// Broker forwards events to a message broker, logging delivery failures.
type Broker struct {
	client JSONPublisher
	log    *zap.Logger
}

func NewBroker(client JSONPublisher, log *zap.Logger) *Broker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Broker{client: client, log: log}
}

func (b *Broker) Publish(evt Event) {
	if err := b.client.PublishJSON(evt); err != nil {
		b.log.Warn("failed to publish catalog event",
			zap.String("action", evt.Action),
			zap.Error(err),
		)
	}
}
