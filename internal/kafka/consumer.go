package kafka

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler must return nil only when the message is done and its offset
// may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

const (
	DefaultRetries    = 5
	DefaultBackoff    = 200 * time.Millisecond
	maxBackoff        = 5 * time.Second
	partitionLaneSize = 256
)

// reader is the part of *kafka.Reader the consumer uses.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer runs a handler over a consumer-group topic. Each partition is
// served by one worker in offset order, so an offset is committed only after
// every earlier offset of its partition succeeded. A failing message is
// retried Retries times with doubling Backoff; if it still fails, Start
// returns the error without committing it and a restart replays it.
type Consumer struct {
	r       reader
	workers int
	Retries int
	Backoff time.Duration
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
	return &Consumer{r: r, workers: workers, Retries: DefaultRetries, Backoff: DefaultBackoff}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		failOnce sync.Once
		failErr  error
	)
	fail := func(err error) {
		failOnce.Do(func() {
			failErr = err
			cancel()
		})
	}

	workers := max(c.workers, 1)
	lanes := make([]chan kafka.Message, workers)
	var wg sync.WaitGroup
	for i := range lanes {
		lanes[i] = make(chan kafka.Message, partitionLaneSize)
		wg.Add(1)
		go func(lane <-chan kafka.Message) {
			defer wg.Done()
			for m := range lane {
				if ctx.Err() != nil {
					return
				}
				if err := c.handle(ctx, h, m); err != nil {
					if ctx.Err() == nil {
						fail(err)
					}
					return
				}
				if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
					// redelivered after a rebalance; handlers dedup
					log.Printf("kafka: commit %s/%d@%d: %v", m.Topic, m.Partition, m.Offset, err)
				}
			}
		}(lanes[i])
	}

	var fetchErr error
	for fetchErr == nil {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			fetchErr = err
			break
		}
		select {
		case lanes[m.Partition%workers] <- m:
		case <-ctx.Done():
			fetchErr = ctx.Err()
		}
	}

	for _, lane := range lanes {
		close(lane)
	}
	wg.Wait()

	switch {
	case failErr != nil:
		return failErr
	case errors.Is(fetchErr, context.Canceled), errors.Is(fetchErr, context.DeadlineExceeded):
		// quiet on shutdown
		return nil
	default:
		return fetchErr
	}
}

// handle runs h, retrying with backoff until it succeeds, the retries are
// used up or ctx ends.
func (c *Consumer) handle(ctx context.Context, h Handler, m kafka.Message) error {
	backoff := c.Backoff
	for attempt := 0; ; attempt++ {
		err := h(ctx, m)
		if err == nil {
			return nil
		}
		if attempt >= c.Retries {
			return err
		}
		log.Printf("kafka: %s/%d@%d attempt %d: %v", m.Topic, m.Partition, m.Offset, attempt+1, err)

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
