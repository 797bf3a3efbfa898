package mongostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ariefcatur/go-storefront-records.git/internal/records"
)

func TestBuildFilterEmpty(t *testing.T) {
	assert.Equal(t, bson.M{}, buildFilter(records.FetchParams{}))
}

func TestBuildFilterWhere(t *testing.T) {
	f := buildFilter(records.FetchParams{Where: []records.Condition{
		records.Eq("category_c", "Tops"),
		records.Ne(records.FieldID, "3"),
	}})
	assert.Equal(t, bson.M{"$and": bson.A{
		bson.M{"category_c": bson.M{"$in": bson.A{"Tops"}}},
		bson.M{"_id": bson.M{"$nin": bson.A{int64(3)}}},
	}}, f)
}

func TestBuildFilterContainsGroup(t *testing.T) {
	f := buildFilter(records.FetchParams{
		WhereGroups: []records.WhereGroup{records.AnyContains("a.b", "name_c", "description_c")},
	})
	re := primitive.Regex{Pattern: `a\.b`, Options: "i"}
	assert.Equal(t, bson.M{"$and": bson.A{
		bson.M{"$or": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"name_c": bson.M{"$in": bson.A{re}}},
				bson.M{"description_c": bson.M{"$in": bson.A{re}}},
			}},
		}},
	}}, f)
}

func TestBuildSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "_id", Value: 1}}, buildSort(nil))
	assert.Equal(t,
		bson.D{{Key: "order_date_c", Value: -1}, {Key: "_id", Value: 1}},
		buildSort([]records.OrderBy{{FieldName: "order_date_c", SortType: records.SortDesc}}))
	assert.Equal(t,
		bson.D{{Key: "_id", Value: -1}},
		buildSort([]records.OrderBy{{FieldName: records.FieldID, SortType: "desc"}}))
}

func TestDocumentMapping(t *testing.T) {
	doc := toDocument(records.Record{records.FieldID: 9, "a": 1})
	assert.Equal(t, bson.M{"a": 1}, doc)

	rec := fromDocument(bson.M{"_id": int64(9), "a": int32(1)})
	assert.Equal(t, 9, rec.ID())
	assert.Equal(t, 1, rec.Int("a"))
	assert.NotContains(t, rec, "_id")
}
