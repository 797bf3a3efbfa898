package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-storefront-records.git/internal/config"
	"github.com/ariefcatur/go-storefront-records.git/internal/fulfillment"
	kafkax "github.com/ariefcatur/go-storefront-records.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-records.git/internal/orders"
	"github.com/ariefcatur/go-storefront-records.git/internal/platform"
	"github.com/ariefcatur/go-storefront-records.git/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Record store
	store, closeStore, err := platform.OpenRecords(ctx, cfg)
	if err != nil {
		log.Fatalf("records: %v", err)
	}
	defer closeStore()

	// Redis dedup + locks (optional)
	var rdb redis.Cmdable
	var locker orders.Locker
	if cfg.RedisAddr != "" {
		c := redisx.New(cfg.RedisAddr)
		defer c.Close()
		rdb, locker = c, redisx.NewLocker(c)
	}

	// Producer for the status-changed events UpdateStatus emits
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start(ctx)

	// Service
	svc := &fulfillment.Service{
		Orders: &orders.Service{
			Client:      store,
			Locker:      locker,
			Events:      prod,
			ServiceName: cfg.ServiceName + "-fulfillment",
		},
		Redis: rdb,
	}

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WorkerGroup, orders.TopicPayment, cfg.WorkerCount)

	consErr := make(chan error, 1)
	go func() {
		log.Printf("fulfillment consumer started: group=%s topic=%s workers=%d", cfg.WorkerGroup, orders.TopicPayment, cfg.WorkerCount)
		consErr <- cons.Start(ctx, svc.HandlePaymentEvent)
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	var failed error
	select {
	case <-sig:
	case failed = <-consErr:
	}
	log.Println("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
	prod.WaitClosed()

	// uncommitted offsets are replayed by the next run
	if failed != nil {
		closeStore()
		log.Fatalf("consumer exit: %v", failed)
	}
}
