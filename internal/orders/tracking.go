package orders

import (
	"encoding/json"
	"fmt"

	"github.com/ariefcatur/go-storefront-records.git/internal/records"
)

// TrackingEvent is one entry of an order's tracking history. Date is kept
// as stored. Keys other than date, status and location are carried in Extra
// and written back unchanged.
type TrackingEvent struct {
	Date     string
	Status   string
	Location string
	Extra    map[string]json.RawMessage
}

// Tracking is the carrier, tracking number and event history of an order.
// Unknown keys round-trip through Extra.
type Tracking struct {
	Carrier        string
	TrackingNumber string
	Events         []TrackingEvent
	Extra          map[string]json.RawMessage
}

func (e *TrackingEvent) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = TrackingEvent{
		Date:     takeString(raw, "date"),
		Status:   takeString(raw, "status"),
		Location: takeString(raw, "location"),
	}
	if len(raw) > 0 {
		e.Extra = raw
	}
	return nil
}

func (e TrackingEvent) MarshalJSON() ([]byte, error) {
	out := withExtra(e.Extra)
	putString(out, "date", e.Date, false)
	putString(out, "status", e.Status, false)
	putString(out, "location", e.Location, false)
	return json.Marshal(out)
}

func (t *Tracking) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	next := Tracking{
		Carrier:        takeString(raw, "carrier"),
		TrackingNumber: takeString(raw, "trackingNumber"),
	}
	if v, ok := raw["events"]; ok {
		if err := json.Unmarshal(v, &next.Events); err != nil {
			return fmt.Errorf("events: %w", err)
		}
		delete(raw, "events")
	}
	if len(raw) > 0 {
		next.Extra = raw
	}
	*t = next
	return nil
}

func (t Tracking) MarshalJSON() ([]byte, error) {
	out := withExtra(t.Extra)
	putString(out, "carrier", t.Carrier, true)
	putString(out, "trackingNumber", t.TrackingNumber, true)
	events := t.Events
	if events == nil {
		events = []TrackingEvent{}
	}
	out["events"] = events
	return json.Marshal(out)
}

// takeString removes key from raw when it holds a JSON string. Values of
// any other type stay in raw.
func takeString(raw map[string]json.RawMessage, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	delete(raw, key)
	return s
}

func withExtra(extra map[string]json.RawMessage) map[string]any {
	out := make(map[string]any, len(extra)+3)
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// putString sets key unless v is empty and the key is either optional or
// already carried as a non-string value.
func putString(out map[string]any, key, v string, omitEmpty bool) {
	if v == "" {
		if _, kept := out[key]; kept || omitEmpty {
			return
		}
	}
	out[key] = v
}

// trackingFromRecord decodes the stored tracking text. An empty field yields
// an empty Tracking.
func trackingFromRecord(r records.Record) (Tracking, error) {
	var t Tracking
	if err := r.DecodeJSON(fieldTracking, &t); err != nil {
		return Tracking{}, err
	}
	return t, nil
}
