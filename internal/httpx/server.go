package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ariefcatur/go-storefront-records.git/internal/envelope"
	"github.com/ariefcatur/go-storefront-records.git/internal/orders"
	"github.com/ariefcatur/go-storefront-records.git/internal/products"
)

const requestTimeout = 5 * time.Second

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// notFound lists the adapter messages that mean the record does not exist.
var notFound = map[string]bool{
	orders.MsgOrderNotFound:     true,
	products.MsgProductNotFound: true,
}

// respond writes res with okCode on success, 404 for a missing record, 402
// for a declined payment and 502 for any other store failure.
func respond[T any](w http.ResponseWriter, okCode int, res envelope.Result[T]) {
	switch {
	case res.Success:
		writeJSON(w, okCode, res)
	case notFound[res.Error]:
		writeJSON(w, http.StatusNotFound, res)
	case res.Error == orders.MsgPaymentFailed:
		writeJSON(w, http.StatusPaymentRequired, res)
	default:
		writeJSON(w, http.StatusBadGateway, res)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, envelope.Fail[struct{}](msg))
}

func pathID(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
