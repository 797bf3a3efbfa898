package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ariefcatur/go-storefront-records.git/internal/records"
)

func TestBuildFetchSQLWhereAndPaging(t *testing.T) {
	q, args, local := buildFetchSQL("product_c", records.FetchParams{
		Where: []records.Condition{
			records.Eq("category_c", "Tops"),
			records.Ne(records.FieldID, 3),
		},
		OrderBy:    []records.OrderBy{{FieldName: "price_c", SortType: records.SortDesc}},
		PagingInfo: &records.PagingInfo{Limit: 10, Offset: 20},
	})

	assert.False(t, local)
	assert.Equal(t,
		"SELECT id, data, count(*) OVER() FROM records WHERE table_name = $1"+
			" AND data->>($2::text) = ANY($3::text[])"+
			" AND NOT (id = ANY($4::bigint[]))"+
			" ORDER BY data->($5::text) DESC, id ASC"+
			" LIMIT $6 OFFSET $7",
		q)
	assert.Equal(t, []any{"product_c", "category_c", []string{"Tops"}, []int64{3}, "price_c", 10, 20}, args)
}

func TestBuildFetchSQLGroupsAndContains(t *testing.T) {
	q, args, _ := buildFetchSQL("order_c", records.FetchParams{
		WhereGroups: []records.WhereGroup{records.AnyContains("50%_off", "order_number_c", "items_c")},
	})

	assert.Contains(t, q, "((data->>($2::text) ILIKE ANY($3::text[]) OR data->>($4::text) ILIKE ANY($5::text[])))")
	assert.Equal(t, []string{`%50\%\_off%`}, args[2])
	assert.NotContains(t, q, "LIMIT")
}

func TestBuildFetchSQLNotEqualKeepsMissingFields(t *testing.T) {
	q, _, _ := buildFetchSQL("t", records.FetchParams{
		Where: []records.Condition{records.Ne("status_c", "cancelled")},
	})
	assert.Contains(t, q, "(data->>($2::text) IS NULL OR NOT (data->>($2::text) = ANY($3::text[])))")
}

func TestBuildFetchSQLShapesGroupingLocally(t *testing.T) {
	q, args, local := buildFetchSQL("product_c", records.FetchParams{
		GroupBy:    []string{"category_c"},
		PagingInfo: records.Limit(50),
	})
	assert.True(t, local)
	assert.NotContains(t, q, "LIMIT")
	assert.Equal(t, []any{"product_c"}, args)
}

func TestBuildFetchSQLValuesAsText(t *testing.T) {
	_, args, _ := buildFetchSQL("t", records.FetchParams{
		Where: []records.Condition{records.Eq("featured_c", true), records.Eq("price_c", 19.5, 20)},
	})
	assert.Equal(t, []string{"true"}, args[2])
	assert.Equal(t, []string{"19.5", "20"}, args[4])
}

func TestEncodeDataDropsID(t *testing.T) {
	body, err := encodeData(records.Record{records.FieldID: 4, "a": 1})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, body)

	rec, err := decodeRow(4, []byte(`{"a":1}`))
	assert.NoError(t, err)
	assert.Equal(t, 4, rec.ID())
	assert.Equal(t, 1, rec.Int("a"))
}
