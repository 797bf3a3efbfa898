package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-storefront-records.git/internal/cart"
	"github.com/ariefcatur/go-storefront-records.git/internal/config"
	"github.com/ariefcatur/go-storefront-records.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront-records.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-records.git/internal/orders"
	"github.com/ariefcatur/go-storefront-records.git/internal/platform"
	"github.com/ariefcatur/go-storefront-records.git/internal/products"
	"github.com/ariefcatur/go-storefront-records.git/internal/redisx"
	"github.com/ariefcatur/go-storefront-records.git/internal/wishlist"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Record store
	store, closeStore, err := platform.OpenRecords(ctx, cfg)
	if err != nil {
		log.Fatalf("records: %v", err)
	}
	defer closeStore()
	log.Printf("record backend: %s", cfg.RecordBackend)

	// Redis locks (optional)
	var cartLocker cart.Locker
	var orderLocker orders.Locker
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		l := redisx.NewLocker(rdb)
		cartLocker, orderLocker = l, l
	}

	// Kafka producer (optional)
	var prod *kafkax.Producer
	var events orders.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024)
		prod.Start(ctx)
		events = prod
	}

	// Services & handlers
	router := httpx.NewRouter()
	(&httpx.CartHandler{Cart: &cart.Service{Client: store, Locker: cartLocker}}).Register(router)
	(&httpx.OrdersHandler{Orders: &orders.Service{
		Client:      store,
		Locker:      orderLocker,
		Events:      events,
		Payments:    orders.NewSimulatedPayments(cfg.PaymentDelay, cfg.PaymentFailureRate),
		ServiceName: cfg.ServiceName,
	}}).Register(router)
	(&httpx.ProductsHandler{Products: &products.Service{Client: store}}).Register(router)
	(&httpx.WishlistHandler{Wishlist: &wishlist.Service{Client: store}}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close() // flush & close writer
		prod.WaitClosed()
	}
}
