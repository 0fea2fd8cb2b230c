package queue

import "context"

// Client publishes batch lifecycle events to a queue backend.
type Client interface {
	Send(ctx context.Context, msg BatchCompleted) error
}
