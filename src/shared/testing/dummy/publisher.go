package dummy

import (
	"sync"

	"github.com/2highsebas/openarms-backend/src/shared/lib/rabbitmq"
	"github.com/rabbitmq/amqp091-go"
)

var _ rabbitmq.Publisher = &Publisher{}

func NewDummyPublisher() *Publisher {
	return &Publisher{}
}

type Publisher struct {
	Unavailable bool
	Published   []amqp091.Publishing
	mutex       sync.Mutex
}

func (p *Publisher) Publish(msg amqp091.Publishing) error {
	if p.Unavailable {
		return NetworkFailure
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.Published = append(p.Published, msg)
	return nil
}
