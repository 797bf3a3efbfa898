// Package fulfillment moves paid orders into processing.
package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-storefront-records.git/internal/envelope"
	kafkax "github.com/ariefcatur/go-storefront-records.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-records.git/internal/orders"
	"github.com/ariefcatur/go-storefront-records.git/internal/redisx"
)

const dedupScope = "fulfillment"

// Orders is the part of orders.Service the worker needs.
type Orders interface {
	GetByID(ctx context.Context, id int) envelope.Result[orders.Order]
	UpdateStatus(ctx context.Context, id int, status string) envelope.Result[orders.Order]
}

type Service struct {
	Orders Orders
	Redis  redis.Cmdable // nil disables dedup
}

// HandlePaymentEvent is installed as the consumer handler for
// orders.TopicPayment. A returned error leaves the offset uncommitted.
func (s *Service) HandlePaymentEvent(ctx context.Context, m kafkago.Message) error {
	if t := kafkax.HeaderValue(m, kafkax.HeaderEventType); t != "" && t != orders.EventPaymentAuthorized {
		return nil
	}

	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventType != orders.EventPaymentAuthorized {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, dedupScope, env.EventID)
	if s.Redis != nil && env.EventID != "" {
		seen, err := redisx.Exists(ctx, s.Redis, dkey)
		if err != nil {
			log.Printf("fulfillment: dedup check %s: %v", dkey, err)
		}
		if seen {
			return nil
		}
	}

	p, err := kafkax.UnwrapPayload[orders.PaymentAuthorizedPayload](env.Payload)
	if err != nil {
		return err
	}
	if err := s.advance(ctx, p.OrderID); err != nil {
		return err
	}

	if s.Redis != nil && env.EventID != "" {
		if _, err := redisx.MarkOnce(ctx, s.Redis, dkey, redisx.TTLDedup); err != nil {
			log.Printf("fulfillment: dedup mark %s: %v", dkey, err)
		}
	}
	return nil
}

func (s *Service) advance(ctx context.Context, orderID int) error {
	if orderID <= 0 {
		log.Printf("fulfillment: payment without order id, skipped")
		return nil
	}

	cur := s.Orders.GetByID(ctx, orderID)
	if !cur.Success {
		if cur.Error == orders.MsgOrderNotFound {
			log.Printf("fulfillment: order %d not found, skipped", orderID)
			return nil
		}
		return errors.New(cur.Error)
	}
	if !orders.CanTransition(cur.Data.Status, orders.StatusProcessing) {
		log.Printf("fulfillment: order %d is %s, not moved", orderID, cur.Data.Status)
		return nil
	}

	res := s.Orders.UpdateStatus(ctx, orderID, string(orders.StatusProcessing))
	if !res.Success {
		return fmt.Errorf("order %d: %s", orderID, res.Error)
	}
	log.Printf("fulfillment: order %d -> %s", orderID, orders.StatusProcessing)
	return nil
}
