package kafka

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

// Handler must return nil only when the message has been processed and
// its offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	workers int
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers}
}

// Start reads until ctx is cancelled, fanning messages out to a worker
// pool. Handler errors are logged and the message is not committed, so
// it will be redelivered.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < c.workers; i++ {
		g.Go(func() error {
			for m := range jobs {
				if err := h(gctx, m); err != nil {
					log.Printf("consumer handler: %v", err)
					time.Sleep(200 * time.Millisecond)
					continue
				}
				if err := c.r.CommitMessages(gctx, m); err != nil {
					log.Printf("commit offset: %v", err)
				}
			}
			return nil
		})
	}

	var readErr error
	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
			default:
				readErr = err
			}
			break
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	_ = g.Wait()
	return readErr
}
