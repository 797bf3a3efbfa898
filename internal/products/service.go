package products

import (
	"context"
	"log"
	"slices"
	"sort"
	"strings"

	"github.com/ariefcatur/go-storefront-records.git/internal/envelope"
	"github.com/ariefcatur/go-storefront-records.git/internal/records"
)

type Service struct {
	Client records.Client
}

func (s *Service) List(ctx context.Context, f Filters) envelope.Result[[]Product] {
	if s.Client == nil {
		return envelope.FromError[[]Product](records.ErrClientNotInitialized, "Failed to fetch products")
	}

	p := records.FetchParams{
		Fields:     productFields,
		PagingInfo: records.Limit(listLimit),
	}
	if f.Category != "" {
		p.Where = append(p.Where, records.Eq(fieldCategory, f.Category))
	}
	if f.Search != "" {
		p.WhereGroups = []records.WhereGroup{records.AnyContains(f.Search, fieldName, fieldDescription)}
	}
	switch f.SortBy {
	case SortPriceLow:
		p.OrderBy = []records.OrderBy{{FieldName: fieldPrice, SortType: records.SortAsc}}
	case SortPriceHigh:
		p.OrderBy = []records.OrderBy{{FieldName: fieldPrice, SortType: records.SortDesc}}
	case SortName:
		p.OrderBy = []records.OrderBy{{FieldName: fieldName, SortType: records.SortAsc}}
	}

	resp, err := s.Client.FetchRecords(ctx, Table, p)
	if err != nil {
		log.Printf("products: list: %v", err)
		return envelope.FromError[[]Product](err, "Failed to fetch products")
	}
	if !resp.Success {
		log.Printf("products: list failed: %s", resp.Message)
		return envelope.Fail[[]Product](resp.Message)
	}

	return envelope.OK(applyLocalFilters(productsFromRecords(resp.Data), f))
}

// applyLocalFilters narrows an already fetched page; it never re-queries.
func applyLocalFilters(in []Product, f Filters) []Product {
	out := make([]Product, 0, len(in))
	for _, p := range in {
		if len(f.Sizes) > 0 && !containsAny(p.Sizes, f.Sizes) {
			continue
		}
		if len(f.Colors) > 0 && !containsAny(p.Colors, f.Colors) {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	return out
}

func containsAny(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

func (s *Service) GetByID(ctx context.Context, id int) envelope.Result[Product] {
	if s.Client == nil {
		return envelope.FromError[Product](records.ErrClientNotInitialized, "Failed to fetch product")
	}

	resp, err := s.Client.GetRecordByID(ctx, Table, id, records.FetchParams{Fields: productFields})
	if err != nil {
		log.Printf("products: get %d: %v", id, err)
		return envelope.FromError[Product](err, "Failed to fetch product")
	}
	if !resp.Success || resp.Data == nil {
		return envelope.Fail[Product](MsgProductNotFound)
	}
	return envelope.OK(productFromRecord(resp.Data))
}

func (s *Service) GetFeatured(ctx context.Context) envelope.Result[[]Product] {
	if s.Client == nil {
		return envelope.FromError[[]Product](records.ErrClientNotInitialized, "Failed to fetch featured products")
	}

	resp, err := s.Client.FetchRecords(ctx, Table, records.FetchParams{
		Fields:     productFields,
		Where:      []records.Condition{records.Eq(fieldFeatured, true)},
		PagingInfo: records.Limit(featuredLimit),
	})
	if err != nil {
		log.Printf("products: featured: %v", err)
		return envelope.FromError[[]Product](err, "Failed to fetch featured products")
	}
	if !resp.Success {
		return envelope.Fail[[]Product](resp.Message)
	}
	return envelope.OK(productsFromRecords(resp.Data))
}

// GetRelated returns up to limit other products of the same category.
// limit <= 0 means DefaultRelatedSize.
func (s *Service) GetRelated(ctx context.Context, id, limit int) envelope.Result[[]Product] {
	if s.Client == nil {
		return envelope.FromError[[]Product](records.ErrClientNotInitialized, "Failed to fetch related products")
	}
	if limit <= 0 {
		limit = DefaultRelatedSize
	}

	base := s.GetByID(ctx, id)
	if !base.Success {
		return envelope.Fail[[]Product](MsgProductNotFound)
	}

	resp, err := s.Client.FetchRecords(ctx, Table, records.FetchParams{
		Fields: productFields,
		Where: []records.Condition{
			records.Eq(fieldCategory, base.Data.Category),
			records.Ne(records.FieldID, id),
		},
		PagingInfo: records.Limit(limit),
	})
	if err != nil {
		log.Printf("products: related %d: %v", id, err)
		return envelope.FromError[[]Product](err, "Failed to fetch related products")
	}
	if !resp.Success {
		return envelope.Fail[[]Product](resp.Message)
	}
	return envelope.OK(productsFromRecords(resp.Data))
}

// GetCategories returns the distinct non-blank categories, sorted.
func (s *Service) GetCategories(ctx context.Context) envelope.Result[[]string] {
	if s.Client == nil {
		return envelope.FromError[[]string](records.ErrClientNotInitialized, "Failed to fetch categories")
	}

	resp, err := s.Client.FetchRecords(ctx, Table, records.FetchParams{
		Fields:     records.Fields(fieldCategory),
		GroupBy:    []string{fieldCategory},
		PagingInfo: records.Limit(categoryLimit),
	})
	if err != nil {
		log.Printf("products: categories: %v", err)
		return envelope.FromError[[]string](err, "Failed to fetch categories")
	}
	if !resp.Success {
		return envelope.Fail[[]string](resp.Message)
	}

	out := make([]string, 0, len(resp.Data))
	for _, r := range resp.Data {
		if c := r.String(fieldCategory); strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return envelope.OK(slices.Compact(out))
}
