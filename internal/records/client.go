package records

import (
	"context"
	"errors"
)

// ErrClientNotInitialized is returned by adapters holding a nil Client.
var ErrClientNotInitialized = errors.New("record store client not initialized")

// Client is the record-store contract consumed by the storefront adapters.
// A returned error is a transport failure; a response with Success=false is
// a failure reported by the store itself.
type Client interface {
	FetchRecords(ctx context.Context, table string, p FetchParams) (*FetchResponse, error)
	GetRecordByID(ctx context.Context, table string, id int, p FetchParams) (*RecordResponse, error)
	CreateRecord(ctx context.Context, table string, p WriteParams) (*WriteResponse, error)
	UpdateRecord(ctx context.Context, table string, p WriteParams) (*WriteResponse, error)
	DeleteRecord(ctx context.Context, table string, p DeleteParams) (*WriteResponse, error)
}

type FetchResponse struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message,omitempty"`
	Data        []Record          `json:"data"`
	Total       int               `json:"total,omitempty"`
	Aggregators []AggregateResult `json:"aggregators,omitempty"`
}

// Aggregate returns the value of the aggregator with the given id.
func (r *FetchResponse) Aggregate(id string) (float64, bool) {
	for _, a := range r.Aggregators {
		if a.ID == id {
			return a.Value, true
		}
	}
	return 0, false
}

type RecordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    Record `json:"data"`
}

type WriteResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Results []WriteResult `json:"results,omitempty"`
}

// First returns the first per-record result, if any.
func (r *WriteResponse) First() (WriteResult, bool) {
	if len(r.Results) == 0 {
		return WriteResult{}, false
	}
	return r.Results[0], true
}

// Fail records a failed per-record result and marks the whole response
// failed, keeping the first message.
func (r *WriteResponse) Fail(msg string) {
	r.Success = false
	if r.Message == "" {
		r.Message = msg
	}
	r.Results = append(r.Results, WriteResult{Success: false, Message: msg})
}

type WriteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    Record `json:"data,omitempty"`
}

type AggregateResult struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}
