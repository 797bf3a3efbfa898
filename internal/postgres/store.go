package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-storefront-records.git/internal/records"
)

// Store keeps every logical table in one JSONB-backed records table.
// The Id system field is the row's bigserial id and is never stored in data.
type Store struct{ DB *pgxpool.Pool }

var _ records.Client = (*Store)(nil)

func (s *Store) FetchRecords(ctx context.Context, table string, p records.FetchParams) (*records.FetchResponse, error) {
	q, args, shapeLocally := buildFetchSQL(table, p)
	rows, err := s.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	defer rows.Close()

	var (
		out   []records.Record
		total int
	)
	for rows.Next() {
		var (
			id  int64
			raw []byte
			n   int64
		)
		if err := rows.Scan(&id, &raw, &n); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", table, err)
		}
		rec, err := decodeRow(id, raw)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", table, err)
		}
		out = append(out, rec)
		total = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}

	if shapeLocally {
		return records.Shape(out, p), nil
	}
	resp := &records.FetchResponse{Success: true, Total: total, Data: make([]records.Record, 0, len(out))}
	for _, r := range out {
		resp.Data = append(resp.Data, records.Project(r, p.Fields))
	}
	return resp, nil
}

func (s *Store) GetRecordByID(ctx context.Context, table string, id int, p records.FetchParams) (*records.RecordResponse, error) {
	var raw []byte
	err := s.DB.QueryRow(ctx, `SELECT data FROM records WHERE table_name=$1 AND id=$2`, table, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return &records.RecordResponse{Success: false, Message: fmt.Sprintf("record %d not found", id)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%d: %w", table, id, err)
	}
	rec, err := decodeRow(int64(id), raw)
	if err != nil {
		return nil, fmt.Errorf("get %s/%d: %w", table, id, err)
	}
	return &records.RecordResponse{Success: true, Data: records.Project(rec, p.Fields)}, nil
}

func (s *Store) CreateRecord(ctx context.Context, table string, p records.WriteParams) (*records.WriteResponse, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	resp := &records.WriteResponse{Success: true}
	for _, r := range p.Records {
		body, err := encodeData(r)
		if err != nil {
			return nil, err
		}
		var (
			id  int64
			raw []byte
		)
		err = tx.QueryRow(ctx, `
			INSERT INTO records(table_name, data)
			VALUES ($1, $2::jsonb)
			RETURNING id, data`, table, body).Scan(&id, &raw)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", table, err)
		}
		rec, err := decodeRow(id, raw)
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, records.WriteResult{Success: true, Data: rec})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateRecord merges each record's fields into the stored row.
func (s *Store) UpdateRecord(ctx context.Context, table string, p records.WriteParams) (*records.WriteResponse, error) {
	resp := &records.WriteResponse{Success: true}
	for _, r := range p.Records {
		body, err := encodeData(r)
		if err != nil {
			return nil, err
		}
		var raw []byte
		err = s.DB.QueryRow(ctx, `
			UPDATE records SET data = data || $3::jsonb, updated_at = now()
			WHERE table_name=$1 AND id=$2
			RETURNING data`, table, r.ID(), body).Scan(&raw)
		if errors.Is(err, pgx.ErrNoRows) {
			resp.Fail(fmt.Sprintf("record %d not found", r.ID()))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update %s/%d: %w", table, r.ID(), err)
		}
		rec, err := decodeRow(int64(r.ID()), raw)
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, records.WriteResult{Success: true, Data: rec})
	}
	return resp, nil
}

func (s *Store) DeleteRecord(ctx context.Context, table string, p records.DeleteParams) (*records.WriteResponse, error) {
	resp := &records.WriteResponse{Success: true}
	for _, id := range p.RecordIDs {
		tag, err := s.DB.Exec(ctx, `DELETE FROM records WHERE table_name=$1 AND id=$2`, table, id)
		if err != nil {
			return nil, fmt.Errorf("delete %s/%d: %w", table, id, err)
		}
		if tag.RowsAffected() == 0 {
			resp.Fail(fmt.Sprintf("record %d not found", id))
			continue
		}
		resp.Results = append(resp.Results, records.WriteResult{Success: true})
	}
	return resp, nil
}

func encodeData(r records.Record) (string, error) {
	data := r.Clone()
	delete(data, records.FieldID)
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return string(b), nil
}

func decodeRow(id int64, raw []byte) (records.Record, error) {
	rec := records.Record{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", id, err)
		}
	}
	rec[records.FieldID] = int(id)
	return rec, nil
}

// buildFetchSQL renders p as one query over the records table. Each row
// carries the total match count. Grouping and aggregation are left to
// records.Shape, in which case paging is not applied in SQL and the third
// result is true.
func buildFetchSQL(table string, p records.FetchParams) (string, []any, bool) {
	b := &sqlBuilder{}
	where := []string{"table_name = " + b.arg(table)}
	for _, c := range p.Where {
		where = append(where, b.condition(c.FieldName, c.Operator, c.Values))
	}
	for _, g := range p.WhereGroups {
		if expr := b.group(g); expr != "" {
			where = append(where, expr)
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT id, data, count(*) OVER() FROM records WHERE ")
	sb.WriteString(strings.Join(where, " AND "))

	order := make([]string, 0, len(p.OrderBy)+1)
	for _, o := range p.OrderBy {
		dir := "ASC"
		if strings.EqualFold(o.SortType, records.SortDesc) {
			dir = "DESC"
		}
		if o.FieldName == records.FieldID {
			order = append(order, "id "+dir)
			continue
		}
		order = append(order, fmt.Sprintf("data->(%s::text) %s", b.arg(o.FieldName), dir))
	}
	order = append(order, "id ASC")
	sb.WriteString(" ORDER BY ")
	sb.WriteString(strings.Join(order, ", "))

	shapeLocally := len(p.GroupBy) > 0 || len(p.Aggregators) > 0
	if !shapeLocally && p.PagingInfo != nil {
		if p.PagingInfo.Limit > 0 {
			sb.WriteString(" LIMIT " + b.arg(p.PagingInfo.Limit))
		}
		if p.PagingInfo.Offset > 0 {
			sb.WriteString(" OFFSET " + b.arg(p.PagingInfo.Offset))
		}
	}
	return sb.String(), b.args, shapeLocally
}

type sqlBuilder struct{ args []any }

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *sqlBuilder) condition(field string, op records.Operator, values []any) string {
	if field == records.FieldID {
		ids := make([]int64, 0, len(values))
		for _, v := range values {
			if n, ok := records.ParseInt(v); ok {
				ids = append(ids, int64(n))
			}
		}
		switch op {
		case records.OpEqualTo:
			return fmt.Sprintf("id = ANY(%s::bigint[])", b.arg(ids))
		case records.OpNotEqualTo:
			return fmt.Sprintf("NOT (id = ANY(%s::bigint[]))", b.arg(ids))
		}
	}

	col := "id::text"
	if field != records.FieldID {
		col = fmt.Sprintf("data->>(%s::text)", b.arg(field))
	}
	switch op {
	case records.OpEqualTo:
		return fmt.Sprintf("%s = ANY(%s::text[])", col, b.arg(texts(values)))
	case records.OpNotEqualTo:
		return fmt.Sprintf("(%s IS NULL OR NOT (%s = ANY(%s::text[])))", col, col, b.arg(texts(values)))
	case records.OpContains:
		patterns := make([]string, 0, len(values))
		for _, v := range values {
			patterns = append(patterns, "%"+escapeLike(records.Text(v))+"%")
		}
		return fmt.Sprintf("%s ILIKE ANY(%s::text[])", col, b.arg(patterns))
	default:
		return "FALSE"
	}
}

func (b *sqlBuilder) group(g records.WhereGroup) string {
	parts := make([]string, 0, len(g.SubGroups))
	for _, sg := range g.SubGroups {
		conds := make([]string, 0, len(sg.Conditions))
		for _, c := range sg.Conditions {
			conds = append(conds, b.condition(c.FieldName, c.Operator, c.Values))
		}
		if len(conds) > 0 {
			parts = append(parts, "("+strings.Join(conds, joiner(sg.Operator))+")")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, joiner(g.Operator)) + ")"
}

func joiner(op string) string {
	if strings.EqualFold(op, records.GroupOr) {
		return " OR "
	}
	return " AND "
}

func texts(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, records.Text(v))
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
