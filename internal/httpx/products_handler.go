package httpx

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront-records.git/internal/products"
)

type ProductsHandler struct {
	Products *products.Service
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/featured", h.featured)
	r.Get("/products/categories", h.categories)
	r.Get("/products/{id}", h.get)
	r.Get("/products/{id}/related", h.related)
}

// productFilters reads ?category=&search=&sortBy=&sizes=S,M&colors=&minPrice=&maxPrice=.
// sizes and colors may also be repeated.
func productFilters(q url.Values) products.Filters {
	f := products.Filters{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		SortBy:   q.Get("sortBy"),
		Sizes:    multi(q["sizes"]),
		Colors:   multi(q["colors"]),
	}
	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil {
		f.MaxPrice = &v
	}
	return f
}

func multi(values []string) []string {
	var out []string
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			if t := strings.TrimSpace(p); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Products.List(ctx, productFilters(r.URL.Query())))
}

func (h *ProductsHandler) featured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Products.GetFeatured(ctx))
}

func (h *ProductsHandler) categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Products.GetCategories(ctx))
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Products.GetByID(ctx, id))
}

func (h *ProductsHandler) related(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Products.GetRelated(ctx, id, limit))
}
