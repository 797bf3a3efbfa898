package cart

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-storefront-records.git/internal/envelope"
	"github.com/ariefcatur/go-storefront-records.git/internal/records"
	"github.com/ariefcatur/go-storefront-records.git/internal/redisx"
)

// Locker serializes the find-then-update sequence of Add across
// processes. Without one, two concurrent Adds of the same line may both
// create a row.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type Service struct {
	Client records.Client
	Locker Locker
}

func (s *Service) List(ctx context.Context) envelope.Result[[]Item] {
	if s.Client == nil {
		return envelope.FromError[[]Item](records.ErrClientNotInitialized, "Failed to fetch cart")
	}

	resp, err := s.Client.FetchRecords(ctx, Table, records.FetchParams{
		Fields:     itemFields,
		PagingInfo: records.Limit(listLimit),
	})
	if err != nil {
		log.Printf("cart: fetch: %v", err)
		return envelope.FromError[[]Item](err, "Failed to fetch cart")
	}
	if !resp.Success {
		log.Printf("cart: fetch failed: %s", resp.Message)
		return envelope.Fail[[]Item](resp.Message)
	}

	items := make([]Item, 0, len(resp.Data))
	for _, r := range resp.Data {
		items = append(items, itemFromRecord(r))
	}
	return envelope.OK(items)
}

// Add merges in into an existing line with the same product, size and
// color, or creates a new line, and returns the refreshed cart.
func (s *Service) Add(ctx context.Context, in AddInput) envelope.Result[[]Item] {
	if s.Client == nil {
		return envelope.FromError[[]Item](records.ErrClientNotInitialized, "Failed to add to cart")
	}

	if s.Locker != nil {
		key := fmt.Sprintf(redisx.KeyCartLineLock, in.ProductID, in.SelectedSize, in.SelectedColor)
		release, err := s.Locker.Acquire(ctx, key)
		if err != nil {
			log.Printf("cart: lock %s: %v", key, err)
			return envelope.FromError[[]Item](err, "Failed to add to cart")
		}
		defer release()
	}

	existing, err := s.Client.FetchRecords(ctx, Table, records.FetchParams{
		Fields: records.Fields(records.FieldID, fieldQuantity),
		Where: []records.Condition{
			records.Eq(fieldProductID, in.ProductID),
			records.Eq(fieldSelectedSize, in.SelectedSize),
			records.Eq(fieldSelectedColor, in.SelectedColor),
		},
	})
	if err != nil {
		log.Printf("cart: lookup line: %v", err)
		return envelope.FromError[[]Item](err, "Failed to add to cart")
	}

	if existing.Success && len(existing.Data) > 0 {
		row := existing.Data[0]
		resp, err := s.Client.UpdateRecord(ctx, Table, records.WriteParams{Records: []records.Record{{
			records.FieldID: row.ID(),
			fieldQuantity:   row.Int(fieldQuantity) + in.Quantity,
		}}})
		if err != nil {
			log.Printf("cart: update line: %v", err)
			return envelope.FromError[[]Item](err, "Failed to add to cart")
		}
		if !resp.Success {
			log.Printf("cart: update line failed: %s", resp.Message)
			return envelope.Fail[[]Item](resp.Message)
		}
	} else {
		resp, err := s.Client.CreateRecord(ctx, Table, records.WriteParams{Records: []records.Record{in.record()}})
		if err != nil {
			log.Printf("cart: create line: %v", err)
			return envelope.FromError[[]Item](err, "Failed to add to cart")
		}
		if !resp.Success {
			log.Printf("cart: create line failed: %s", resp.Message)
			return envelope.Fail[[]Item](resp.Message)
		}
	}

	return s.List(ctx)
}

// SetQuantity sets the quantity of a line; quantity <= 0 removes it.
func (s *Service) SetQuantity(ctx context.Context, id, quantity int) envelope.Result[[]Item] {
	if s.Client == nil {
		return envelope.FromError[[]Item](records.ErrClientNotInitialized, "Failed to update cart")
	}
	if quantity <= 0 {
		return s.Remove(ctx, id)
	}

	resp, err := s.Client.UpdateRecord(ctx, Table, records.WriteParams{Records: []records.Record{{
		records.FieldID: id,
		fieldQuantity:   quantity,
	}}})
	if err != nil {
		log.Printf("cart: set quantity: %v", err)
		return envelope.FromError[[]Item](err, "Failed to update cart")
	}
	if !resp.Success {
		log.Printf("cart: set quantity failed: %s", resp.Message)
		return envelope.Fail[[]Item](resp.Message)
	}
	return s.List(ctx)
}

func (s *Service) Remove(ctx context.Context, id int) envelope.Result[[]Item] {
	if s.Client == nil {
		return envelope.FromError[[]Item](records.ErrClientNotInitialized, "Failed to remove from cart")
	}

	resp, err := s.Client.DeleteRecord(ctx, Table, records.DeleteParams{RecordIDs: []int{id}})
	if err != nil {
		log.Printf("cart: remove: %v", err)
		return envelope.FromError[[]Item](err, "Failed to remove from cart")
	}
	if !resp.Success {
		log.Printf("cart: remove failed: %s", resp.Message)
		return envelope.Fail[[]Item](resp.Message)
	}
	return s.List(ctx)
}

// Clear deletes every listed line. An empty or unreadable cart counts as
// already clear and issues no delete.
func (s *Service) Clear(ctx context.Context) envelope.Result[[]Item] {
	if s.Client == nil {
		return envelope.FromError[[]Item](records.ErrClientNotInitialized, "Failed to clear cart")
	}

	current := s.List(ctx)
	if !current.Success || len(current.Data) == 0 {
		return envelope.OK([]Item{})
	}

	ids := make([]int, 0, len(current.Data))
	for _, it := range current.Data {
		ids = append(ids, it.ID)
	}
	resp, err := s.Client.DeleteRecord(ctx, Table, records.DeleteParams{RecordIDs: ids})
	if err != nil {
		log.Printf("cart: clear: %v", err)
		return envelope.FromError[[]Item](err, "Failed to clear cart")
	}
	if !resp.Success {
		log.Printf("cart: clear failed: %s", resp.Message)
		return envelope.Fail[[]Item](resp.Message)
	}
	return envelope.OK([]Item{})
}

// Total is the sum of price*quantity over the cart.
func (s *Service) Total(ctx context.Context) envelope.Result[float64] {
	current := s.List(ctx)
	if !current.Success {
		return envelope.Recast[float64](current)
	}

	sum := decimal.Zero
	for _, it := range current.Data {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return envelope.OK(sum.InexactFloat64())
}

// ItemCount is the sum of quantities over the cart.
func (s *Service) ItemCount(ctx context.Context) envelope.Result[int] {
	current := s.List(ctx)
	if !current.Success {
		return envelope.Recast[int](current)
	}

	n := 0
	for _, it := range current.Data {
		n += it.Quantity
	}
	return envelope.OK(n)
}
