package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront-records.git/internal/orders"
)

// payments wait out the gateway delay
const paymentTimeout = 10 * time.Second

type OrdersHandler struct {
	Orders *orders.Service
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/tracking", h.getTracking)
	r.Patch("/orders/{id}/status", h.updateStatus)
	r.Post("/payments", h.processPayment)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var in orders.CreateInput
	if err := decodeBody(r, &in); err != nil {
		badRequest(w, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusCreated, h.Orders.Create(ctx, in))
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := orders.Filters{Status: q.Get("status"), Search: q.Get("search")}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Orders.ListForUser(ctx, f))
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid order id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Orders.GetByID(ctx, id))
}

func (h *OrdersHandler) getTracking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid order id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Orders.GetTracking(ctx, id))
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid order id")
		return
	}
	var req updateStatusReq
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		badRequest(w, "status is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Orders.UpdateStatus(ctx, id, req.Status))
}

func (h *OrdersHandler) processPayment(w http.ResponseWriter, r *http.Request) {
	var in orders.PaymentInput
	if err := decodeBody(r, &in); err != nil {
		badRequest(w, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), paymentTimeout)
	defer cancel()
	respond(w, http.StatusOK, h.Orders.ProcessPayment(ctx, in))
}
