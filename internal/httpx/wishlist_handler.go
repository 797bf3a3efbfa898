package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront-records.git/internal/envelope"
	"github.com/ariefcatur/go-storefront-records.git/internal/wishlist"
)

type WishlistHandler struct {
	Wishlist *wishlist.Service
}

type wishlistAddResp struct {
	Added bool `json:"added"`
}

type wishlistCheckResp struct {
	InWishlist bool `json:"inWishlist"`
}

type wishlistClearResp struct {
	Cleared bool `json:"cleared"`
}

func (h *WishlistHandler) Register(r chi.Router) {
	r.Get("/wishlist", h.list)
	r.Delete("/wishlist", h.clear)
	r.Get("/wishlist/count", h.count)
	r.Get("/wishlist/{productId}", h.check)
	r.Post("/wishlist/{productId}", h.add)
	r.Delete("/wishlist/{productId}", h.remove)
}

func (h *WishlistHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	writeJSON(w, http.StatusOK, envelope.OK(h.Wishlist.List(ctx)))
}

func (h *WishlistHandler) count(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	writeJSON(w, http.StatusOK, envelope.OK(h.Wishlist.Count(ctx)))
}

func (h *WishlistHandler) check(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "productId")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	writeJSON(w, http.StatusOK, envelope.OK(wishlistCheckResp{InWishlist: h.Wishlist.IsInWishlist(ctx, id)}))
}

func (h *WishlistHandler) add(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "productId")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	added, err := h.Wishlist.Add(ctx, id)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, envelope.FromError[wishlistAddResp](err, "failed to add item to wishlist"))
		return
	}
	code := http.StatusOK
	if added {
		code = http.StatusCreated
	}
	writeJSON(w, code, envelope.OK(wishlistAddResp{Added: added}))
}

func (h *WishlistHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "productId")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := h.Wishlist.Remove(ctx, id); err != nil {
		writeJSON(w, http.StatusBadGateway, envelope.FromError[struct{}](err, "failed to remove item from wishlist"))
		return
	}
	writeJSON(w, http.StatusOK, envelope.OK(struct{}{}))
}

func (h *WishlistHandler) clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	cleared, err := h.Wishlist.Clear(ctx)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, envelope.FromError[wishlistClearResp](err, "failed to clear wishlist"))
		return
	}
	writeJSON(w, http.StatusOK, envelope.OK(wishlistClearResp{Cleared: cleared}))
}
