package dispatch

import "context"

// Result is what an external executor reports back.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Message is the payload handed to a Sender.
type Message struct {
	ID      string
	To      string
	Subject string
	Body    string
}

// Post is the payload handed to a Publisher.
type Post struct {
	ID   string
	Text string
}

// Payment is the payload handed to a Payer.
type Payment struct {
	ID     string
	Amount float64
}

// Sender delivers an approved message.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// Publisher publishes an approved social post.
type Publisher interface {
	Publish(ctx context.Context, post Post) (Result, error)
}

// Payer carries out an approved payment.
type Payer interface {
	Pay(ctx context.Context, p Payment) (Result, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) (Result, error)

func (f SenderFunc) Send(ctx context.Context, msg Message) (Result, error) { return f(ctx, msg) }

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, post Post) (Result, error)

func (f PublisherFunc) Publish(ctx context.Context, post Post) (Result, error) { return f(ctx, post) }

// PayerFunc adapts a function to Payer.
type PayerFunc func(ctx context.Context, p Payment) (Result, error)

func (f PayerFunc) Pay(ctx context.Context, p Payment) (Result, error) { return f(ctx, p) }
