package records

import (
	"sort"
	"strings"
)

// Match reports whether rec satisfies every where condition and every
// where group of p.
func Match(rec Record, p FetchParams) bool {
	for _, c := range p.Where {
		if !matchCondition(rec, c.FieldName, c.Operator, c.Values) {
			return false
		}
	}
	for _, g := range p.WhereGroups {
		if !matchGroup(rec, g) {
			return false
		}
	}
	return true
}

func matchGroup(rec Record, g WhereGroup) bool {
	if len(g.SubGroups) == 0 {
		return true
	}
	or := strings.EqualFold(g.Operator, GroupOr)
	for _, sg := range g.SubGroups {
		ok := matchSubGroup(rec, sg)
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	return !or
}

func matchSubGroup(rec Record, sg SubGroup) bool {
	if len(sg.Conditions) == 0 {
		return true
	}
	or := strings.EqualFold(sg.Operator, GroupOr)
	for _, c := range sg.Conditions {
		ok := matchCondition(rec, c.FieldName, c.Operator, c.Values)
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	return !or
}

func matchCondition(rec Record, field string, op Operator, values []any) bool {
	v := rec[field]
	switch op {
	case OpEqualTo:
		for _, want := range values {
			if Equal(v, want) {
				return true
			}
		}
		return false
	case OpNotEqualTo:
		for _, want := range values {
			if Equal(v, want) {
				return false
			}
		}
		return true
	case OpContains:
		hay := strings.ToLower(Text(v))
		for _, want := range values {
			if strings.Contains(hay, strings.ToLower(Text(want))) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Equal compares two field values: numbers numerically, booleans as
// booleans, anything else by its text form.
func Equal(a, b any) bool {
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return fa == fb
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return ba == bb
		}
	}
	return Text(a) == Text(b)
}

func number(v any) (float64, bool) {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return ParseFloat(v)
	}
	return 0, false
}

func compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(Text(a), Text(b))
}

// Sort orders rows in place by the given keys.
func Sort(rows []Record, keys []OrderBy) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			c := compare(rows[i][k.FieldName], rows[j][k.FieldName])
			if c == 0 {
				continue
			}
			if strings.EqualFold(k.SortType, SortDesc) {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// Page applies offset and limit. A zero limit means no cap.
func Page(rows []Record, p *PagingInfo) []Record {
	if p == nil {
		return rows
	}
	if p.Offset > 0 {
		if p.Offset >= len(rows) {
			return []Record{}
		}
		rows = rows[p.Offset:]
	}
	if p.Limit > 0 && p.Limit < len(rows) {
		rows = rows[:p.Limit]
	}
	return rows
}

// Project keeps the requested fields plus the Id system field.
func Project(rec Record, fields []Field) Record {
	if len(fields) == 0 {
		return rec.Clone()
	}
	out := Record{}
	if v, ok := rec[FieldID]; ok {
		out[FieldID] = v
	}
	for _, f := range fields {
		if v, ok := rec[f.Field.Name]; ok {
			out[f.Field.Name] = v
		}
	}
	return out
}

// Group collapses rows into one row per distinct combination of fields,
// in first-seen order.
func Group(rows []Record, fields []string) []Record {
	seen := map[string]bool{}
	out := []Record{}
	for _, r := range rows {
		parts := make([]string, 0, len(fields))
		g := Record{}
		for _, f := range fields {
			parts = append(parts, Text(r[f]))
			g[f] = r[f]
		}
		key := strings.Join(parts, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, g)
	}
	return out
}

// Aggregate evaluates each aggregator over rows using its first field.
func Aggregate(rows []Record, aggs []Aggregator) []AggregateResult {
	out := make([]AggregateResult, 0, len(aggs))
	for _, a := range aggs {
		res := AggregateResult{ID: a.ID}
		if len(a.Fields) > 0 {
			f := a.Fields[0]
			for _, r := range rows {
				v, ok := r[f.Field.Name]
				if !ok || v == nil {
					continue
				}
				switch f.Function {
				case FuncSum:
					n, _ := ParseFloat(v)
					res.Value += n
				default:
					res.Value++
				}
			}
		}
		out = append(out, res)
	}
	return out
}

// Shape applies ordering, grouping, paging and projection to rows that
// already passed Match, and fills a successful FetchResponse.
func Shape(rows []Record, p FetchParams) *FetchResponse {
	resp := &FetchResponse{Success: true, Aggregators: Aggregate(rows, p.Aggregators)}
	Sort(rows, p.OrderBy)
	if len(p.GroupBy) > 0 {
		rows = Group(rows, p.GroupBy)
	}
	resp.Total = len(rows)
	rows = Page(rows, p.PagingInfo)
	resp.Data = make([]Record, 0, len(rows))
	for _, r := range rows {
		if len(p.GroupBy) > 0 {
			resp.Data = append(resp.Data, r)
			continue
		}
		resp.Data = append(resp.Data, Project(r, p.Fields))
	}
	return resp
}
