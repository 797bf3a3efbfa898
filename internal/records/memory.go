package records

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process record store implementing the full query
// contract. Ids are assigned per table starting at 1.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string]*memTable
}

type memTable struct {
	nextID int
	rows   []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: map[string]*memTable{}}
}

func (m *MemoryStore) table(name string) *memTable {
	t, ok := m.tables[name]
	if !ok {
		t = &memTable{nextID: 1}
		m.tables[name] = t
	}
	return t
}

func (t *memTable) index(id int) int {
	for i, r := range t.rows {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

// Seed inserts rows as-is, assigning ids to rows without one.
func (m *MemoryStore) Seed(table string, rows ...Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.table(table)
	for _, r := range rows {
		rec := r.Clone()
		if id := rec.ID(); id > 0 {
			if id >= t.nextID {
				t.nextID = id + 1
			}
		} else {
			rec[FieldID] = t.nextID
			t.nextID++
		}
		t.rows = append(t.rows, rec)
	}
}

// Rows returns a copy of every row in table.
func (m *MemoryStore) Rows(table string) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.table(table)
	out := make([]Record, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, r.Clone())
	}
	return out
}

func (m *MemoryStore) FetchRecords(ctx context.Context, table string, p FetchParams) (*FetchResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []Record
	for _, r := range m.table(table).rows {
		if Match(r, p) {
			rows = append(rows, r.Clone())
		}
	}
	return Shape(rows, p), nil
}

func (m *MemoryStore) GetRecordByID(ctx context.Context, table string, id int, p FetchParams) (*RecordResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(table)
	i := t.index(id)
	if i < 0 {
		return &RecordResponse{Success: false, Message: fmt.Sprintf("record %d not found", id)}, nil
	}
	return &RecordResponse{Success: true, Data: Project(t.rows[i], p.Fields)}, nil
}

func (m *MemoryStore) CreateRecord(ctx context.Context, table string, p WriteParams) (*WriteResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(table)
	resp := &WriteResponse{Success: true}
	for _, r := range p.Records {
		rec := r.Clone()
		rec[FieldID] = t.nextID
		t.nextID++
		t.rows = append(t.rows, rec)
		resp.Results = append(resp.Results, WriteResult{Success: true, Data: rec.Clone()})
	}
	return resp, nil
}

func (m *MemoryStore) UpdateRecord(ctx context.Context, table string, p WriteParams) (*WriteResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(table)
	resp := &WriteResponse{Success: true}
	for _, r := range p.Records {
		i := t.index(r.ID())
		if i < 0 {
			resp.Fail(fmt.Sprintf("record %d not found", r.ID()))
			continue
		}
		for k, v := range r {
			if k == FieldID {
				continue
			}
			t.rows[i][k] = v
		}
		resp.Results = append(resp.Results, WriteResult{Success: true, Data: t.rows[i].Clone()})
	}
	return resp, nil
}

func (m *MemoryStore) DeleteRecord(ctx context.Context, table string, p DeleteParams) (*WriteResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(table)
	resp := &WriteResponse{Success: true}
	for _, id := range p.RecordIDs {
		i := t.index(id)
		if i < 0 {
			resp.Fail(fmt.Sprintf("record %d not found", id))
			continue
		}
		t.rows = append(t.rows[:i], t.rows[i+1:]...)
		resp.Results = append(resp.Results, WriteResult{Success: true})
	}
	return resp, nil
}

var _ Client = (*MemoryStore)(nil)
