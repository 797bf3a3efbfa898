package wishlist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-storefront-records.git/internal/records"
	"github.com/ariefcatur/go-storefront-records.git/internal/records/recordstest"
)

func TestAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := records.NewMemoryStore()
	svc := &Service{Client: store}

	added, err := svc.Add(ctx, 7)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.Add(ctx, 7)
	require.NoError(t, err)
	assert.False(t, added)

	rows := store.Rows(Table)
	require.Len(t, rows, 1)
	assert.Equal(t, "Wishlist Item 7", rows[0].String(records.FieldName))
	assert.Equal(t, []int{7}, svc.List(ctx))
}

func TestIsInWishlistAndCount(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Client: records.NewMemoryStore()}
	_, _ = svc.Add(ctx, 1)
	_, _ = svc.Add(ctx, 2)

	assert.True(t, svc.IsInWishlist(ctx, 2))
	assert.False(t, svc.IsInWishlist(ctx, 3))
	assert.Equal(t, 2, svc.Count(ctx))
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	store := records.NewMemoryStore()
	store.Seed(Table, records.Record{fieldProductID: 4}, records.Record{fieldProductID: 4}, records.Record{fieldProductID: 5})
	svc := &Service{Client: store}

	require.NoError(t, svc.Remove(ctx, 4))
	assert.Equal(t, []int{5}, svc.List(ctx))

	require.NoError(t, svc.Remove(ctx, 42))
}

func TestRemoveDeleteFailure(t *testing.T) {
	ctx := context.Background()
	rec := recordstest.NewRecorder(records.NewMemoryStore())
	svc := &Service{Client: rec}
	_, _ = svc.Add(ctx, 4)
	rec.FailDelete = "locked"

	assert.ErrorIs(t, svc.Remove(ctx, 4), ErrRemoveFailed)
}

func TestRemoveLookupFailureCountsAsDone(t *testing.T) {
	svc := &Service{Client: recordstest.Failing{Message: "unavailable"}}
	assert.NoError(t, svc.Remove(context.Background(), 4))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	rec := recordstest.NewRecorder(records.NewMemoryStore())
	svc := &Service{Client: rec}

	ok, err := svc.Clear(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, rec.Count("delete"))

	_, _ = svc.Add(ctx, 1)
	_, _ = svc.Add(ctx, 2)
	ok, err = svc.Clear(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, svc.List(ctx))

	_, _ = svc.Add(ctx, 3)
	rec.FailDelete = "nope"
	ok, err = svc.Clear(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrClearFailed)
}

func TestClearUnreadable(t *testing.T) {
	ok, err := (&Service{Client: recordstest.Failing{Message: "down"}}).Clear(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestReadsDegrade(t *testing.T) {
	ctx := context.Background()
	for _, svc := range []*Service{
		{},
		{Client: recordstest.Failing{Err: errors.New("dial tcp")}},
		{Client: recordstest.Failing{Message: "bad request"}},
	} {
		assert.Equal(t, []int{}, svc.List(ctx))
		assert.False(t, svc.IsInWishlist(ctx, 1))
		assert.Zero(t, svc.Count(ctx))
	}
}

func TestAddFailure(t *testing.T) {
	ctx := context.Background()

	_, err := (&Service{}).Add(ctx, 1)
	assert.ErrorIs(t, err, ErrAddFailed)

	rec := recordstest.NewRecorder(records.NewMemoryStore())
	rec.FailCreate = "quota"
	added, err := (&Service{Client: rec}).Add(ctx, 1)
	assert.False(t, added)
	assert.ErrorIs(t, err, ErrAddFailed)
}

func TestCountFallsBackToRows(t *testing.T) {
	ctx := context.Background()
	store := records.NewMemoryStore()
	store.Seed(Table, records.Record{fieldProductID: 1}, records.Record{fieldProductID: 2}, records.Record{fieldProductID: 3})

	rec := recordstest.NewRecorder(store)
	assert.Equal(t, 3, (&Service{Client: rec}).Count(ctx))
	require.Len(t, rec.LastFetches, 1)
	require.Len(t, rec.LastFetches[0].Aggregators, 1)
	assert.Equal(t, "wishlistCount", rec.LastFetches[0].Aggregators[0].ID)

	noAgg := &noAggregates{Client: store}
	assert.Equal(t, 3, (&Service{Client: noAgg}).Count(ctx))
}

// noAggregates strips aggregator results like stores without aggregation.
type noAggregates struct{ records.Client }

func (n *noAggregates) FetchRecords(ctx context.Context, table string, p records.FetchParams) (*records.FetchResponse, error) {
	resp, err := n.Client.FetchRecords(ctx, table, p)
	if resp != nil {
		resp.Aggregators = nil
	}
	return resp, err
}
