// Package recordstest holds record-store doubles for adapter tests.
package recordstest

import (
	"context"
	"sync"

	"github.com/ariefcatur/go-storefront-records.git/internal/records"
)

// Failing answers every call with Err when set, otherwise with an
// unsuccessful response carrying Message.
type Failing struct {
	Message string
	Err     error
}

func (f Failing) FetchRecords(context.Context, string, records.FetchParams) (*records.FetchResponse, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &records.FetchResponse{Message: f.Message}, nil
}

func (f Failing) GetRecordByID(context.Context, string, int, records.FetchParams) (*records.RecordResponse, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &records.RecordResponse{Message: f.Message}, nil
}

func (f Failing) CreateRecord(context.Context, string, records.WriteParams) (*records.WriteResponse, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &records.WriteResponse{Message: f.Message}, nil
}

func (f Failing) UpdateRecord(context.Context, string, records.WriteParams) (*records.WriteResponse, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &records.WriteResponse{Message: f.Message}, nil
}

func (f Failing) DeleteRecord(context.Context, string, records.DeleteParams) (*records.WriteResponse, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &records.WriteResponse{Message: f.Message}, nil
}

// Recorder wraps a client and counts calls per operation. Writes can be
// made to fail selectively.
type Recorder struct {
	records.Client

	mu          sync.Mutex
	Calls       map[string]int
	FailDelete  string
	FailCreate  string
	FailUpdate  string
	LastFetches []records.FetchParams
}

func NewRecorder(c records.Client) *Recorder {
	return &Recorder{Client: c, Calls: map[string]int{}}
}

func (r *Recorder) count(op string) {
	r.mu.Lock()
	r.Calls[op]++
	r.mu.Unlock()
}

// Count returns how many times op was called.
func (r *Recorder) Count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Calls[op]
}

func (r *Recorder) FetchRecords(ctx context.Context, table string, p records.FetchParams) (*records.FetchResponse, error) {
	r.count("fetch")
	r.mu.Lock()
	r.LastFetches = append(r.LastFetches, p)
	r.mu.Unlock()
	return r.Client.FetchRecords(ctx, table, p)
}

func (r *Recorder) GetRecordByID(ctx context.Context, table string, id int, p records.FetchParams) (*records.RecordResponse, error) {
	r.count("get")
	return r.Client.GetRecordByID(ctx, table, id, p)
}

func (r *Recorder) CreateRecord(ctx context.Context, table string, p records.WriteParams) (*records.WriteResponse, error) {
	r.count("create")
	if r.FailCreate != "" {
		return &records.WriteResponse{Message: r.FailCreate}, nil
	}
	return r.Client.CreateRecord(ctx, table, p)
}

func (r *Recorder) UpdateRecord(ctx context.Context, table string, p records.WriteParams) (*records.WriteResponse, error) {
	r.count("update")
	if r.FailUpdate != "" {
		return &records.WriteResponse{Message: r.FailUpdate}, nil
	}
	return r.Client.UpdateRecord(ctx, table, p)
}

func (r *Recorder) DeleteRecord(ctx context.Context, table string, p records.DeleteParams) (*records.WriteResponse, error) {
	r.count("delete")
	if r.FailDelete != "" {
		return &records.WriteResponse{Message: r.FailDelete}, nil
	}
	return r.Client.DeleteRecord(ctx, table, p)
}
