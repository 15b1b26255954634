package publish

import (
	"DrawSpectra/internal/config"
	"DrawSpectra/internal/status"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go"
	"google.golang.org/protobuf/proto"
)

const connectRetries = 3

// Publisher is responsible for publishing simulation reports to a NATS subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(cfg config.PublisherConfig) (*Publisher, error) {
	nc, err := connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Publish serializes a report to Protobuf and publishes it to the configured NATS subject.
func (p *Publisher) Publish(r status.Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}

// Marshal encodes a report in its protobuf wire form.
func Marshal(r status.Report) ([]byte, error) {
	pb, err := status.ToProto(r)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(pb)
}

func connect(url string) (*nats.Conn, error) {
	var nc *nats.Conn
	operation := func() error {
		var err error
		nc, err = nats.Connect(url, nats.Name("drawspectra"))
		return err
	}
	err := backoff.RetryNotify(operation, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), connectRetries), func(err error, d time.Duration) {
		log.Printf("Retrying NATS connection in %s: %v", d, err)
	})
	return nc, err
}
