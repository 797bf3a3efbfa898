package orders

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-storefront-records.git/internal/envelope"
	kafkax "github.com/ariefcatur/go-storefront-records.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-records.git/internal/records"
	"github.com/ariefcatur/go-storefront-records.git/internal/redisx"
)

// Locker serializes the read-append-write of UpdateStatus per order.
// Without one, concurrent updates of the same order may drop an event.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Publisher receives domain events. kafkax.Producer implements it.
type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

type PaymentGateway interface {
	Charge(ctx context.Context, in PaymentInput) envelope.Result[Payment]
}

type Service struct {
	Client records.Client
	Locker Locker
	Events Publisher

	// Payments charges ProcessPayment. Nil uses defaultPayments.
	Payments    PaymentGateway
	ServiceName string
	Now         func() time.Time
}

// defaultPayments is the simulated gateway shared by services built
// without one.
var defaultPayments PaymentGateway = NewSimulatedPayments(DefaultPaymentDelay, DefaultPaymentFailureRate)

func (s *Service) payments() PaymentGateway {
	if s.Payments != nil {
		return s.Payments
	}
	return defaultPayments
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC().Truncate(time.Millisecond)
	}
	return time.Now().UTC().Truncate(time.Millisecond)
}

// lastDigits returns the last n digits of the millisecond clock.
func lastDigits(t time.Time, n int) string {
	ms := strconv.FormatInt(t.UnixMilli(), 10)
	if len(ms) <= n {
		return ms
	}
	return ms[len(ms)-n:]
}

// Create stores a new confirmed order with an initial tracking event and
// returns it as stored.
func (s *Service) Create(ctx context.Context, in CreateInput) envelope.Result[Order] {
	if s.Client == nil {
		return envelope.FromError[Order](records.ErrClientNotInitialized, "Failed to create order")
	}

	now := s.now()
	millis := strconv.FormatInt(now.UnixMilli(), 10)

	name := in.OrderNumber
	if name == "" {
		name = "Order-" + millis
	}
	number := in.OrderNumber
	if number == "" {
		number = orderNumberPrefix + lastDigits(now, 6)
	}
	items := in.Items
	if items == nil {
		items = []Item{}
	}
	address := in.ShippingAddress
	if address == nil {
		address = Address{}
	}
	tracking := Tracking{
		Carrier:        DefaultCarrier,
		TrackingNumber: trackingNumberPrefix + lastDigits(now, 8),
		Events: []TrackingEvent{
			{Date: isoTime(now), Status: PlacedEventStatus, Location: PlacedEventLocation},
		},
	}

	itemsText, err := records.EncodeJSON(items)
	if err != nil {
		return envelope.FromError[Order](err, "Failed to create order")
	}
	addressText, err := records.EncodeJSON(address)
	if err != nil {
		return envelope.FromError[Order](err, "Failed to create order")
	}
	trackingText, err := records.EncodeJSON(tracking)
	if err != nil {
		return envelope.FromError[Order](err, "Failed to create order")
	}

	resp, err := s.Client.CreateRecord(ctx, Table, records.WriteParams{Records: []records.Record{{
		records.FieldName:    name,
		fieldOrderNumber:     number,
		fieldOrderDate:       isoTime(now),
		fieldStatus:          string(StatusConfirmed),
		fieldTotal:           in.TotalAmount,
		fieldItems:           itemsText,
		fieldShippingAddress: addressText,
		fieldTracking:        trackingText,
	}}})
	if err != nil {
		log.Printf("orders: create: %v", err)
		return envelope.FromError[Order](err, "Failed to create order")
	}
	if !resp.Success {
		log.Printf("orders: create failed: %s", resp.Message)
		return envelope.Fail[Order](resp.Message)
	}
	first, ok := resp.First()
	if !ok || first.Data == nil {
		return envelope.Fail[Order]("Failed to create order")
	}

	o := orderFromRecord(first.Data)
	s.emit(TopicOrderCreated, EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Total:       o.Total,
		ItemCount:   len(o.Items),
	})
	return envelope.OK(o)
}

func (s *Service) GetByID(ctx context.Context, id int) envelope.Result[Order] {
	if s.Client == nil {
		return envelope.FromError[Order](records.ErrClientNotInitialized, "Failed to fetch order")
	}

	row, err := s.getRow(ctx, id)
	if err != nil {
		return envelope.FromError[Order](err, "Failed to fetch order")
	}
	return envelope.OK(orderFromRecord(row))
}

// getRow returns the stored order row, errOrderNotFound when the store has
// none, or the transport error.
func (s *Service) getRow(ctx context.Context, id int) (records.Record, error) {
	resp, err := s.Client.GetRecordByID(ctx, Table, id, records.FetchParams{Fields: orderFields})
	if err != nil {
		log.Printf("orders: get %d: %v", id, err)
		return nil, err
	}
	if !resp.Success || resp.Data == nil {
		return nil, errOrderNotFound
	}
	return resp.Data, nil
}

// ListForUser returns the newest orders first, optionally narrowed by
// exact status and by text found in the order number or items.
func (s *Service) ListForUser(ctx context.Context, f Filters) envelope.Result[[]Order] {
	if s.Client == nil {
		return envelope.FromError[[]Order](records.ErrClientNotInitialized, "Failed to fetch orders")
	}

	p := records.FetchParams{
		Fields:     orderFields,
		OrderBy:    []records.OrderBy{{FieldName: fieldOrderDate, SortType: records.SortDesc}},
		PagingInfo: records.Limit(listLimit),
	}
	if f.Status != "" && f.Status != StatusAll {
		p.Where = append(p.Where, records.Eq(fieldStatus, f.Status))
	}
	if f.Search != "" {
		p.WhereGroups = []records.WhereGroup{records.AnyContains(f.Search, fieldOrderNumber, fieldItems)}
	}

	resp, err := s.Client.FetchRecords(ctx, Table, p)
	if err != nil {
		log.Printf("orders: list: %v", err)
		return envelope.FromError[[]Order](err, "Failed to fetch orders")
	}
	if !resp.Success {
		log.Printf("orders: list failed: %s", resp.Message)
		return envelope.Fail[[]Order](resp.Message)
	}

	out := make([]Order, 0, len(resp.Data))
	for _, r := range resp.Data {
		out = append(out, orderFromRecord(r))
	}
	return envelope.OK(out)
}

func (s *Service) GetTracking(ctx context.Context, id int) envelope.Result[Tracking] {
	o := s.GetByID(ctx, id)
	if !o.Success {
		return envelope.Fail[Tracking](MsgOrderNotFound)
	}
	return envelope.OK(o.Data.Tracking)
}

// UpdateStatus sets the order status and appends one tracking event.
func (s *Service) UpdateStatus(ctx context.Context, id int, status string) envelope.Result[Order] {
	if s.Client == nil {
		return envelope.FromError[Order](records.ErrClientNotInitialized, "Failed to update order status")
	}

	if s.Locker != nil {
		key := fmt.Sprintf(redisx.KeyOrderLock, id)
		release, err := s.Locker.Acquire(ctx, key)
		if err != nil {
			log.Printf("orders: lock %s: %v", key, err)
			return envelope.FromError[Order](err, "Failed to update order status")
		}
		defer release()
	}

	row, err := s.getRow(ctx, id)
	if err != nil {
		return envelope.Fail[Order](MsgOrderNotFound)
	}
	// unreadable tracking is never overwritten
	tracking, err := trackingFromRecord(row)
	if err != nil {
		log.Printf("orders: update status %d: %v", id, err)
		return envelope.Fail[Order](MsgTrackingUnreadable)
	}

	tracking.Events = append(tracking.Events, TrackingEvent{
		Date:     isoTime(s.now()),
		Status:   capitalize(status),
		Location: UpdateEventLocation,
	})
	trackingText, err := records.EncodeJSON(tracking)
	if err != nil {
		return envelope.FromError[Order](err, "Failed to update order status")
	}

	resp, err := s.Client.UpdateRecord(ctx, Table, records.WriteParams{Records: []records.Record{{
		records.FieldID: id,
		fieldStatus:     status,
		fieldTracking:   trackingText,
	}}})
	if err != nil {
		log.Printf("orders: update status %d: %v", id, err)
		return envelope.FromError[Order](err, "Failed to update order status")
	}
	if !resp.Success {
		log.Printf("orders: update status %d failed: %s", id, resp.Message)
		return envelope.Fail[Order](resp.Message)
	}

	s.emit(TopicOrderStatusChanged, EventOrderStatusChanged, id, OrderStatusChangedPayload{
		OrderID: id,
		From:    Status(row.String(fieldStatus)),
		To:      Status(status),
	})
	return s.GetByID(ctx, id)
}

// ProcessPayment charges through the configured gateway, the simulated
// one by default.
func (s *Service) ProcessPayment(ctx context.Context, in PaymentInput) envelope.Result[Payment] {
	res := s.payments().Charge(ctx, in)
	if res.Success {
		s.emit(TopicPayment, EventPaymentAuthorized, in.OrderID, PaymentAuthorizedPayload{
			OrderID:       in.OrderID,
			TransactionID: res.Data.TransactionID,
			Amount:        in.Amount,
		})
	} else {
		s.emit(TopicPayment, EventPaymentFailed, in.OrderID, PaymentFailedPayload{
			OrderID: in.OrderID,
			Reason:  res.Error,
		})
	}
	return res
}

func (s *Service) emit(topic, eventType string, orderID int, payload any) {
	if s.Events == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now(),
		Producer:      s.ServiceName,
		CorrelationID: strconv.Itoa(orderID),
		Payload:       kafkax.MustMarshal(payload),
	}
	s.Events.Publish(topic, PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkax.EventHeaders(eventType, ev.EventVersion)...)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
