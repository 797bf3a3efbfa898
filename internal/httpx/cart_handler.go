package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront-records.git/internal/cart"
)

type CartHandler struct {
	Cart *cart.Service
}

type setQuantityReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.list)
	r.Delete("/cart", h.clear)
	r.Post("/cart/items", h.add)
	r.Patch("/cart/items/{id}", h.setQuantity)
	r.Delete("/cart/items/{id}", h.remove)
	r.Get("/cart/total", h.total)
	r.Get("/cart/count", h.count)
}

func (h *CartHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Cart.List(ctx))
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var in cart.AddInput
	if err := decodeBody(r, &in); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if in.ProductID <= 0 {
		badRequest(w, "productId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusCreated, h.Cart.Add(ctx, in))
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid item id")
		return
	}
	var req setQuantityReq
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Cart.SetQuantity(ctx, id, req.Quantity))
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid item id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Cart.Remove(ctx, id))
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Cart.Clear(ctx))
}

func (h *CartHandler) total(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Cart.Total(ctx))
}

func (h *CartHandler) count(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Cart.ItemCount(ctx))
}
