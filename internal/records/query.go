package records

// Field names shared by every table.
const (
	FieldID   = "Id"
	FieldName = "Name"
)

type Operator string

const (
	OpEqualTo    Operator = "EqualTo"
	OpNotEqualTo Operator = "NotEqualTo"
	OpContains   Operator = "Contains"
)

const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// Group operators.
const (
	GroupOr  = "OR"
	GroupAnd = "AND"
)

// Aggregate functions.
const (
	FuncCount = "Count"
	FuncSum   = "Sum"
)

type FieldRef struct {
	Name string `json:"Name"`
}

type Field struct {
	Field    FieldRef `json:"field"`
	Function string   `json:"Function,omitempty"`
}

// Fields builds a field list from plain names.
func Fields(names ...string) []Field {
	out := make([]Field, 0, len(names))
	for _, n := range names {
		out = append(out, Field{Field: FieldRef{Name: n}})
	}
	return out
}

type Condition struct {
	FieldName string   `json:"FieldName"`
	Operator  Operator `json:"Operator"`
	Values    []any    `json:"Values"`
}

func Eq(field string, values ...any) Condition {
	return Condition{FieldName: field, Operator: OpEqualTo, Values: values}
}

func Ne(field string, values ...any) Condition {
	return Condition{FieldName: field, Operator: OpNotEqualTo, Values: values}
}

type GroupCondition struct {
	FieldName string   `json:"fieldName"`
	Operator  Operator `json:"operator"`
	Values    []any    `json:"values"`
}

type SubGroup struct {
	Conditions []GroupCondition `json:"conditions"`
	Operator   string           `json:"operator"`
}

type WhereGroup struct {
	Operator  string     `json:"operator"`
	SubGroups []SubGroup `json:"subGroups"`
}

// AnyContains matches records where at least one of fields contains text.
func AnyContains(text string, fields ...string) WhereGroup {
	conds := make([]GroupCondition, 0, len(fields))
	for _, f := range fields {
		conds = append(conds, GroupCondition{FieldName: f, Operator: OpContains, Values: []any{text}})
	}
	return WhereGroup{
		Operator:  GroupOr,
		SubGroups: []SubGroup{{Conditions: conds, Operator: GroupOr}},
	}
}

type OrderBy struct {
	FieldName string `json:"fieldName"`
	SortType  string `json:"sorttype"`
}

type PagingInfo struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Limit returns paging for the first n rows.
func Limit(n int) *PagingInfo { return &PagingInfo{Limit: n} }

type Aggregator struct {
	ID     string  `json:"id"`
	Fields []Field `json:"fields"`
}

type FetchParams struct {
	Fields      []Field      `json:"fields,omitempty"`
	Where       []Condition  `json:"where,omitempty"`
	WhereGroups []WhereGroup `json:"whereGroups,omitempty"`
	OrderBy     []OrderBy    `json:"orderBy,omitempty"`
	PagingInfo  *PagingInfo  `json:"pagingInfo,omitempty"`
	GroupBy     []string     `json:"groupBy,omitempty"`
	Aggregators []Aggregator `json:"aggregators,omitempty"`
}

type WriteParams struct {
	Records []Record `json:"records"`
}

type DeleteParams struct {
	RecordIDs []int `json:"RecordIds"`
}
