package database

import "context"

// EventPublisher pushes serialized ledger events to an external feed
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
	Close() error
}

type nopPublisher struct{}

// NewNopPublisher drop every event
func NewNopPublisher() EventPublisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, []byte) error { return nil }

func (nopPublisher) Close() error { return nil }
