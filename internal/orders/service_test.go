package orders

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkax "github.com/ariefcatur/go-storefront-records.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-records.git/internal/records"
	"github.com/ariefcatur/go-storefront-records.git/internal/records/recordstest"
)

type published struct {
	topic string
	key   string
	env   Envelope
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (f *fakePublisher) Publish(topic string, key, value []byte, _ ...kafkago.Header) {
	var env Envelope
	_ = json.Unmarshal(value, &env)
	f.mu.Lock()
	f.msgs = append(f.msgs, published{topic: topic, key: string(key), env: env})
	f.mu.Unlock()
}

var fixedNow = time.Date(2024, 3, 5, 10, 30, 0, 123_456_789, time.UTC)

func newService(c records.Client) (*Service, *fakePublisher) {
	pub := &fakePublisher{}
	return &Service{
		Client:      c,
		Events:      pub,
		ServiceName: "storefront-api",
		Now:         func() time.Time { return fixedNow },
	}, pub
}

func TestCreateDefaults(t *testing.T) {
	store := records.NewMemoryStore()
	svc, pub := newService(store)

	res := svc.Create(context.Background(), CreateInput{
		TotalAmount:     42.5,
		Items:           []Item{{"name": "Tee", "quantity": 2.0}},
		ShippingAddress: Address{"city": "Jakarta"},
	})
	require.True(t, res.Success, res.Error)

	o := res.Data
	millis := "1709634600123"
	assert.Equal(t, "VT"+millis[len(millis)-6:], o.OrderNumber)
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.Equal(t, 42.5, o.Total)
	assert.Equal(t, "Tee", o.Items[0]["name"])
	assert.Equal(t, "Jakarta", o.ShippingAddress["city"])
	assert.Equal(t, DefaultCarrier, o.Tracking.Carrier)
	assert.Equal(t, "TRK"+millis[len(millis)-8:], o.Tracking.TrackingNumber)
	require.Len(t, o.Tracking.Events, 1)
	assert.Equal(t, PlacedEventStatus, o.Tracking.Events[0].Status)
	assert.Equal(t, PlacedEventLocation, o.Tracking.Events[0].Location)
	assert.Equal(t, "2024-03-05T10:30:00.123Z", o.OrderDate)
	assert.Equal(t, "2024-03-05T10:30:00.123Z", o.Tracking.Events[0].Date)

	row := store.Rows(Table)[0]
	assert.Equal(t, "Order-"+millis, row.String(records.FieldName))
	assert.Equal(t, "2024-03-05T10:30:00.123Z", row.String(fieldOrderDate))

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, TopicOrderCreated, pub.msgs[0].topic)
	assert.Equal(t, EventOrderCreated, pub.msgs[0].env.EventType)
	assert.Equal(t, "storefront-api", pub.msgs[0].env.Producer)
	p, err := kafkax.UnwrapPayload[OrderCreatedPayload](pub.msgs[0].env.Payload)
	require.NoError(t, err)
	assert.Equal(t, o.ID, p.OrderID)
	assert.Equal(t, 1, p.ItemCount)
}

func TestCreateUsesGivenOrderNumber(t *testing.T) {
	store := records.NewMemoryStore()
	svc, _ := newService(store)

	res := svc.Create(context.Background(), CreateInput{OrderNumber: "ORD-1"})
	require.True(t, res.Success)
	assert.Equal(t, "ORD-1", res.Data.OrderNumber)
	assert.Empty(t, res.Data.Items)
	assert.NotNil(t, res.Data.Items)
	assert.Equal(t, "ORD-1", store.Rows(Table)[0].String(records.FieldName))
}

func TestUpdateStatusAppendsOneEvent(t *testing.T) {
	ctx := context.Background()
	svc, pub := newService(records.NewMemoryStore())
	created := svc.Create(ctx, CreateInput{TotalAmount: 10})
	require.True(t, created.Success)

	res := svc.UpdateStatus(ctx, created.Data.ID, "shipped")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, StatusShipped, res.Data.Status)

	events := res.Data.Tracking.Events
	require.Len(t, events, 2)
	assert.Equal(t, PlacedEventStatus, events[0].Status)
	assert.Equal(t, "Shipped", events[1].Status)
	assert.Equal(t, UpdateEventLocation, events[1].Location)
	assert.Equal(t, "2024-03-05T10:30:00.123Z", events[1].Date)

	require.Len(t, pub.msgs, 2)
	assert.Equal(t, TopicOrderStatusChanged, pub.msgs[1].topic)
	change, err := kafkax.UnwrapPayload[OrderStatusChangedPayload](pub.msgs[1].env.Payload)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, change.From)
	assert.Equal(t, StatusShipped, change.To)
}

func TestUpdateStatusMissingOrder(t *testing.T) {
	svc, pub := newService(records.NewMemoryStore())
	res := svc.UpdateStatus(context.Background(), 99, "shipped")
	assert.False(t, res.Success)
	assert.Equal(t, MsgOrderNotFound, res.Error)
	assert.Empty(t, pub.msgs)
}

func TestUpdateStatusWriteFailure(t *testing.T) {
	ctx := context.Background()
	rec := recordstest.NewRecorder(records.NewMemoryStore())
	svc, _ := newService(rec)
	created := svc.Create(ctx, CreateInput{})
	rec.FailUpdate = "read only"

	res := svc.UpdateStatus(ctx, created.Data.ID, "processing")
	assert.False(t, res.Success)
	assert.Equal(t, "read only", res.Error)
}

func TestListForUserFilters(t *testing.T) {
	ctx := context.Background()
	store := records.NewMemoryStore()
	store.Seed(Table,
		records.Record{fieldOrderNumber: "VT000001", fieldOrderDate: "2024-01-01T00:00:00.000Z", fieldStatus: "confirmed", fieldItems: `[{"name":"Red Tee"}]`},
		records.Record{fieldOrderNumber: "VT000002", fieldOrderDate: "2024-02-01T00:00:00.000Z", fieldStatus: "shipped", fieldItems: `[{"name":"Jeans"}]`},
		records.Record{fieldOrderNumber: "VT000003", fieldOrderDate: "2024-03-01T00:00:00.000Z", fieldStatus: "confirmed", fieldItems: `[]`},
	)
	svc, _ := newService(store)

	all := svc.ListForUser(ctx, Filters{Status: StatusAll})
	require.True(t, all.Success)
	require.Len(t, all.Data, 3)
	assert.Equal(t, "VT000003", all.Data[0].OrderNumber)

	confirmed := svc.ListForUser(ctx, Filters{Status: "confirmed"})
	assert.Len(t, confirmed.Data, 2)

	search := svc.ListForUser(ctx, Filters{Search: "tee"})
	require.Len(t, search.Data, 1)
	assert.Equal(t, "VT000001", search.Data[0].OrderNumber)

	byNumber := svc.ListForUser(ctx, Filters{Search: "000002"})
	require.Len(t, byNumber.Data, 1)
	assert.Equal(t, StatusShipped, byNumber.Data[0].Status)
}

func TestMalformedJSONDegrades(t *testing.T) {
	store := records.NewMemoryStore()
	store.Seed(Table, records.Record{
		fieldOrderNumber:     "VT1",
		fieldItems:           "{not json",
		fieldShippingAddress: "",
		fieldTracking:        "[",
	})
	svc, _ := newService(store)

	res := svc.GetByID(context.Background(), 1)
	require.True(t, res.Success)
	assert.Equal(t, []Item{}, res.Data.Items)
	assert.Equal(t, Address{}, res.Data.ShippingAddress)
	assert.Equal(t, []TrackingEvent{}, res.Data.Tracking.Events)
}

func TestGetTracking(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(records.NewMemoryStore())
	created := svc.Create(ctx, CreateInput{})

	tr := svc.GetTracking(ctx, created.Data.ID)
	require.True(t, tr.Success)
	assert.Equal(t, DefaultCarrier, tr.Data.Carrier)

	missing := svc.GetTracking(ctx, 404)
	assert.False(t, missing.Success)
	assert.Equal(t, MsgOrderNotFound, missing.Error)

	down := (&Service{Client: recordstest.Failing{Err: errors.New("timeout")}}).GetTracking(ctx, 1)
	assert.Equal(t, MsgOrderNotFound, down.Error)
}

func TestNilClient(t *testing.T) {
	res := (&Service{}).Create(context.Background(), CreateInput{})
	assert.False(t, res.Success)
	assert.Equal(t, records.ErrClientNotInitialized.Error(), res.Error)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusConfirmed, StatusProcessing))
	assert.True(t, CanTransition(StatusProcessing, StatusShipped))
	assert.False(t, CanTransition(StatusShipped, StatusProcessing))
	assert.False(t, CanTransition(StatusDelivered, StatusCancelled))
	assert.False(t, CanTransition("unknown", StatusProcessing))
}

func TestUpdateStatusKeepsStoredTracking(t *testing.T) {
	ctx := context.Background()
	stored := `{"carrier":"FedEx","trackingNumber":"TRK12345678","estimatedDelivery":"2024-01-20",` +
		`"events":[{"date":"2024-01-15T10:30:00","status":"Order placed","location":"Online","note":"gift wrap"}]}`
	store := records.NewMemoryStore()
	store.Seed(Table, records.Record{fieldStatus: "confirmed", fieldTracking: stored})
	svc, _ := newService(store)

	res := svc.UpdateStatus(ctx, 1, "shipped")
	require.True(t, res.Success, res.Error)

	assert.JSONEq(t, `{
		"carrier":"FedEx",
		"trackingNumber":"TRK12345678",
		"estimatedDelivery":"2024-01-20",
		"events":[
			{"date":"2024-01-15T10:30:00","status":"Order placed","location":"Online","note":"gift wrap"},
			{"date":"2024-03-05T10:30:00.123Z","status":"Shipped","location":"Warehouse"}
		]}`, store.Rows(Table)[0].String(fieldTracking))

	events := res.Data.Tracking.Events
	require.Len(t, events, 2)
	assert.Equal(t, "2024-01-15T10:30:00", events[0].Date)
	assert.Equal(t, "TRK12345678", res.Data.Tracking.TrackingNumber)
}

func TestUpdateStatusRefusesUnreadableTracking(t *testing.T) {
	ctx := context.Background()
	store := records.NewMemoryStore()
	store.Seed(Table, records.Record{fieldStatus: "confirmed", fieldTracking: `{"carrier":"FedEx","events":"lost`})
	rec := recordstest.NewRecorder(store)
	svc, pub := newService(rec)

	res := svc.UpdateStatus(ctx, 1, "shipped")
	assert.False(t, res.Success)
	assert.Equal(t, MsgTrackingUnreadable, res.Error)
	assert.Zero(t, rec.Count("update"))
	assert.Empty(t, pub.msgs)

	row := store.Rows(Table)[0]
	assert.Equal(t, "confirmed", row.String(fieldStatus))
	assert.Equal(t, `{"carrier":"FedEx","events":"lost`, row.String(fieldTracking))
}

func TestUpdateStatusWithoutTracking(t *testing.T) {
	store := records.NewMemoryStore()
	store.Seed(Table, records.Record{fieldStatus: "confirmed"})
	svc, _ := newService(store)

	res := svc.UpdateStatus(context.Background(), 1, "processing")
	require.True(t, res.Success, res.Error)
	require.Len(t, res.Data.Tracking.Events, 1)
	assert.Equal(t, "Processing", res.Data.Tracking.Events[0].Status)
}

func TestOrderDatePassesThrough(t *testing.T) {
	store := records.NewMemoryStore()
	store.Seed(Table,
		records.Record{fieldOrderDate: "2024-01-15"},
		records.Record{fieldOrderDate: "2024-01-15T10:30:00"},
	)
	svc, _ := newService(store)

	assert.Equal(t, "2024-01-15", svc.GetByID(context.Background(), 1).Data.OrderDate)
	assert.Equal(t, "2024-01-15T10:30:00", svc.GetByID(context.Background(), 2).Data.OrderDate)

	b, err := json.Marshal(svc.GetByID(context.Background(), 1).Data)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"orderDate":"2024-01-15"`)
}

func TestTrackingJSONRoundTrip(t *testing.T) {
	in := `{"carrier":"UPS","events":[{"date":"yesterday","status":"Picked up","location":"Depot","geo":{"lat":1}}],"signedBy":null,"trackingNumber":"1Z"}`

	var tr Tracking
	require.NoError(t, json.Unmarshal([]byte(in), &tr))
	assert.Equal(t, "UPS", tr.Carrier)
	require.Len(t, tr.Events, 1)
	assert.Equal(t, "yesterday", tr.Events[0].Date)

	out, err := json.Marshal(tr)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestTrackingKeepsNonStringKnownKeys(t *testing.T) {
	in := `{"trackingNumber":12345,"events":[{"date":1705314600,"status":"Placed","location":"Online"}]}`

	var tr Tracking
	require.NoError(t, json.Unmarshal([]byte(in), &tr))
	assert.Empty(t, tr.TrackingNumber)

	out, err := json.Marshal(tr)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}
