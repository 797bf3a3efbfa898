// Package mongostore implements records.Client on MongoDB. Each logical
// table is a collection; the Id system field is the document _id, taken
// from a per-table counter.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ariefcatur/go-storefront-records.git/internal/records"
)

const countersCollection = "counters"

type Store struct {
	DB *mongo.Database
}

var _ records.Client = (*Store)(nil)

func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

func (s *Store) FetchRecords(ctx context.Context, table string, p records.FetchParams) (*records.FetchResponse, error) {
	filter := buildFilter(p)
	shapeLocally := len(p.GroupBy) > 0 || len(p.Aggregators) > 0

	opts := options.Find().SetSort(buildSort(p.OrderBy))
	if !shapeLocally && p.PagingInfo != nil {
		if p.PagingInfo.Offset > 0 {
			opts.SetSkip(int64(p.PagingInfo.Offset))
		}
		if p.PagingInfo.Limit > 0 {
			opts.SetLimit(int64(p.PagingInfo.Limit))
		}
	}

	coll := s.DB.Collection(table)
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	rows := make([]records.Record, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, fromDocument(d))
	}

	if shapeLocally {
		return records.Shape(rows, p), nil
	}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", table, err)
	}
	resp := &records.FetchResponse{Success: true, Total: int(total), Data: make([]records.Record, 0, len(rows))}
	for _, r := range rows {
		resp.Data = append(resp.Data, records.Project(r, p.Fields))
	}
	return resp, nil
}

func (s *Store) GetRecordByID(ctx context.Context, table string, id int, p records.FetchParams) (*records.RecordResponse, error) {
	rec, ok, err := s.find(ctx, table, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &records.RecordResponse{Success: false, Message: fmt.Sprintf("record %d not found", id)}, nil
	}
	return &records.RecordResponse{Success: true, Data: records.Project(rec, p.Fields)}, nil
}

func (s *Store) find(ctx context.Context, table string, id int) (records.Record, bool, error) {
	var doc bson.M
	err := s.DB.Collection(table).FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%d: %w", table, id, err)
	}
	return fromDocument(doc), true, nil
}

func (s *Store) CreateRecord(ctx context.Context, table string, p records.WriteParams) (*records.WriteResponse, error) {
	resp := &records.WriteResponse{Success: true}
	for _, r := range p.Records {
		id, err := s.nextID(ctx, table)
		if err != nil {
			return nil, err
		}
		doc := toDocument(r)
		doc["_id"] = id
		if _, err := s.DB.Collection(table).InsertOne(ctx, doc); err != nil {
			return nil, fmt.Errorf("create %s: %w", table, err)
		}
		rec := r.Clone()
		rec[records.FieldID] = int(id)
		resp.Results = append(resp.Results, records.WriteResult{Success: true, Data: rec})
	}
	return resp, nil
}

func (s *Store) nextID(ctx context.Context, table string) (int64, error) {
	var c struct {
		Seq int64 `bson:"seq"`
	}
	err := s.DB.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": table},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next id %s: %w", table, err)
	}
	return c.Seq, nil
}

// UpdateRecord sets each record's fields on the stored document.
func (s *Store) UpdateRecord(ctx context.Context, table string, p records.WriteParams) (*records.WriteResponse, error) {
	resp := &records.WriteResponse{Success: true}
	coll := s.DB.Collection(table)
	for _, r := range p.Records {
		id := r.ID()
		set := toDocument(r)
		if len(set) > 0 {
			res, err := coll.UpdateOne(ctx, bson.M{"_id": int64(id)}, bson.M{"$set": set})
			if err != nil {
				return nil, fmt.Errorf("update %s/%d: %w", table, id, err)
			}
			if res.MatchedCount == 0 {
				resp.Fail(fmt.Sprintf("record %d not found", id))
				continue
			}
		}
		rec, ok, err := s.find(ctx, table, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			resp.Fail(fmt.Sprintf("record %d not found", id))
			continue
		}
		resp.Results = append(resp.Results, records.WriteResult{Success: true, Data: rec})
	}
	return resp, nil
}

func (s *Store) DeleteRecord(ctx context.Context, table string, p records.DeleteParams) (*records.WriteResponse, error) {
	resp := &records.WriteResponse{Success: true}
	coll := s.DB.Collection(table)
	for _, id := range p.RecordIDs {
		res, err := coll.DeleteOne(ctx, bson.M{"_id": int64(id)})
		if err != nil {
			return nil, fmt.Errorf("delete %s/%d: %w", table, id, err)
		}
		if res.DeletedCount == 0 {
			resp.Fail(fmt.Sprintf("record %d not found", id))
			continue
		}
		resp.Results = append(resp.Results, records.WriteResult{Success: true})
	}
	return resp, nil
}

func toDocument(r records.Record) bson.M {
	doc := bson.M{}
	for k, v := range r {
		if k == records.FieldID {
			continue
		}
		doc[k] = v
	}
	return doc
}

func fromDocument(d bson.M) records.Record {
	rec := records.Record{}
	for k, v := range d {
		if k == "_id" {
			continue
		}
		rec[k] = v
	}
	if n, ok := records.ParseInt(d["_id"]); ok {
		rec[records.FieldID] = n
	}
	return rec
}

// buildFilter translates where conditions and groups into a query document.
// Every top-level clause is ANDed.
func buildFilter(p records.FetchParams) bson.M {
	var and bson.A
	for _, c := range p.Where {
		and = append(and, condition(c.FieldName, c.Operator, c.Values))
	}
	for _, g := range p.WhereGroups {
		if doc, ok := group(g); ok {
			and = append(and, doc)
		}
	}
	if len(and) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": and}
}

func condition(field string, op records.Operator, values []any) bson.M {
	key := field
	vals := bson.A{}
	if field == records.FieldID {
		key = "_id"
		for _, v := range values {
			if n, ok := records.ParseInt(v); ok {
				vals = append(vals, int64(n))
			}
		}
	} else {
		for _, v := range values {
			vals = append(vals, v)
		}
	}

	switch op {
	case records.OpEqualTo:
		return bson.M{key: bson.M{"$in": vals}}
	case records.OpNotEqualTo:
		return bson.M{key: bson.M{"$nin": vals}}
	case records.OpContains:
		patterns := bson.A{}
		for _, v := range values {
			patterns = append(patterns, primitive.Regex{Pattern: regexp.QuoteMeta(records.Text(v)), Options: "i"})
		}
		return bson.M{key: bson.M{"$in": patterns}}
	default:
		return bson.M{"_id": bson.M{"$exists": false}}
	}
}

func group(g records.WhereGroup) (bson.M, bool) {
	subs := bson.A{}
	for _, sg := range g.SubGroups {
		conds := bson.A{}
		for _, c := range sg.Conditions {
			conds = append(conds, condition(c.FieldName, c.Operator, c.Values))
		}
		if len(conds) > 0 {
			subs = append(subs, bson.M{logical(sg.Operator): conds})
		}
	}
	if len(subs) == 0 {
		return nil, false
	}
	return bson.M{logical(g.Operator): subs}, true
}

func logical(op string) string {
	if strings.EqualFold(op, records.GroupOr) {
		return "$or"
	}
	return "$and"
}

func buildSort(keys []records.OrderBy) bson.D {
	sort := bson.D{}
	for _, k := range keys {
		dir := 1
		if strings.EqualFold(k.SortType, records.SortDesc) {
			dir = -1
		}
		name := k.FieldName
		if name == records.FieldID {
			name = "_id"
		}
		sort = append(sort, bson.E{Key: name, Value: dir})
	}
	for _, e := range sort {
		if e.Key == "_id" {
			return sort
		}
	}
	return append(sort, bson.E{Key: "_id", Value: 1})
}
