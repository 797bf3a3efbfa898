// Package wishlist keeps the set of product ids a shopper saved.
//
// Unlike the other adapters it returns plain values: reads degrade to a
// safe default on any failure, mutations return one of the Err* errors.
package wishlist

import (
	"context"
	"errors"
	"log"
	"slices"
	"strconv"

	"github.com/ariefcatur/go-storefront-records.git/internal/records"
)

const Table = "wishlist_item_c"

const fieldProductID = "product_id_c"

const (
	listLimit  = 100
	clearLimit = 1000
	countAggID = "wishlistCount"
)

var (
	ErrAddFailed    = errors.New("failed to add item to wishlist")
	ErrRemoveFailed = errors.New("failed to remove item from wishlist")
	ErrClearFailed  = errors.New("failed to clear wishlist")
)

type Service struct {
	Client records.Client
}

// List returns the saved product ids, or an empty list on failure.
func (s *Service) List(ctx context.Context) []int {
	if s.Client == nil {
		log.Printf("wishlist: list: %v", records.ErrClientNotInitialized)
		return []int{}
	}

	resp, err := s.Client.FetchRecords(ctx, Table, records.FetchParams{
		Fields:     records.Fields(fieldProductID),
		PagingInfo: records.Limit(listLimit),
	})
	if err != nil {
		log.Printf("wishlist: list: %v", err)
		return []int{}
	}
	if !resp.Success {
		log.Printf("wishlist: list failed: %s", resp.Message)
		return []int{}
	}

	ids := make([]int, 0, len(resp.Data))
	for _, r := range resp.Data {
		ids = append(ids, r.Int(fieldProductID))
	}
	return ids
}

// Add saves productID. It reports false when the id was already saved.
func (s *Service) Add(ctx context.Context, productID int) (bool, error) {
	if s.Client == nil {
		log.Printf("wishlist: add: %v", records.ErrClientNotInitialized)
		return false, ErrAddFailed
	}

	if slices.Contains(s.List(ctx), productID) {
		return false, nil
	}

	resp, err := s.Client.CreateRecord(ctx, Table, records.WriteParams{Records: []records.Record{{
		records.FieldName: "Wishlist Item " + strconv.Itoa(productID),
		fieldProductID:    productID,
	}}})
	if err != nil {
		log.Printf("wishlist: add %d: %v", productID, err)
		return false, ErrAddFailed
	}
	if !resp.Success {
		log.Printf("wishlist: add %d failed: %s", productID, resp.Message)
		return false, ErrAddFailed
	}
	return true, nil
}

// Remove deletes every row saved for productID. Nothing to delete counts
// as success.
func (s *Service) Remove(ctx context.Context, productID int) error {
	if s.Client == nil {
		log.Printf("wishlist: remove: %v", records.ErrClientNotInitialized)
		return ErrRemoveFailed
	}

	found, err := s.Client.FetchRecords(ctx, Table, records.FetchParams{
		Fields: records.Fields(records.FieldID, fieldProductID),
		Where:  []records.Condition{records.Eq(fieldProductID, productID)},
	})
	if err != nil {
		log.Printf("wishlist: remove %d: %v", productID, err)
		return ErrRemoveFailed
	}
	if !found.Success || len(found.Data) == 0 {
		return nil
	}

	ids := make([]int, 0, len(found.Data))
	for _, r := range found.Data {
		ids = append(ids, r.ID())
	}
	resp, err := s.Client.DeleteRecord(ctx, Table, records.DeleteParams{RecordIDs: ids})
	if err != nil {
		log.Printf("wishlist: remove %d: %v", productID, err)
		return ErrRemoveFailed
	}
	if !resp.Success {
		log.Printf("wishlist: remove %d failed: %s", productID, resp.Message)
		return ErrRemoveFailed
	}
	return nil
}

func (s *Service) IsInWishlist(ctx context.Context, productID int) bool {
	if s.Client == nil {
		return false
	}

	resp, err := s.Client.FetchRecords(ctx, Table, records.FetchParams{
		Fields:     records.Fields(records.FieldID),
		Where:      []records.Condition{records.Eq(fieldProductID, productID)},
		PagingInfo: records.Limit(1),
	})
	if err != nil {
		log.Printf("wishlist: check %d: %v", productID, err)
		return false
	}
	return resp.Success && len(resp.Data) > 0
}

// Clear deletes every saved row. It reports false, without error, when the
// current rows cannot be read.
func (s *Service) Clear(ctx context.Context) (bool, error) {
	if s.Client == nil {
		log.Printf("wishlist: clear: %v", records.ErrClientNotInitialized)
		return false, ErrClearFailed
	}

	resp, err := s.Client.FetchRecords(ctx, Table, records.FetchParams{
		Fields:     records.Fields(records.FieldID),
		PagingInfo: records.Limit(clearLimit),
	})
	if err != nil {
		log.Printf("wishlist: clear: %v", err)
		return false, ErrClearFailed
	}
	if !resp.Success {
		return false, nil
	}
	if len(resp.Data) == 0 {
		return true, nil
	}

	ids := make([]int, 0, len(resp.Data))
	for _, r := range resp.Data {
		ids = append(ids, r.ID())
	}
	del, err := s.Client.DeleteRecord(ctx, Table, records.DeleteParams{RecordIDs: ids})
	if err != nil {
		log.Printf("wishlist: clear: %v", err)
		return false, ErrClearFailed
	}
	if !del.Success {
		log.Printf("wishlist: clear failed: %s", del.Message)
		return false, ErrClearFailed
	}
	return true, nil
}

// Count returns the number of saved rows, or 0 on failure.
func (s *Service) Count(ctx context.Context) int {
	if s.Client == nil {
		return 0
	}

	resp, err := s.Client.FetchRecords(ctx, Table, records.FetchParams{
		Fields: records.Fields(records.FieldID),
		Aggregators: []records.Aggregator{{
			ID:     countAggID,
			Fields: []records.Field{{Field: records.FieldRef{Name: records.FieldID}, Function: records.FuncCount}},
		}},
	})
	if err != nil {
		log.Printf("wishlist: count: %v", err)
		return 0
	}
	if !resp.Success {
		return 0
	}
	if n, ok := resp.Aggregate(countAggID); ok {
		return int(n)
	}
	return len(resp.Data)
}
