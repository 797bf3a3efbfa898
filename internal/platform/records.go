// Package platform opens the infrastructure shared by the binaries.
package platform

import (
	"context"
	"fmt"
	"log"

	"github.com/ariefcatur/go-storefront-records.git/internal/config"
	"github.com/ariefcatur/go-storefront-records.git/internal/mongostore"
	"github.com/ariefcatur/go-storefront-records.git/internal/postgres"
	"github.com/ariefcatur/go-storefront-records.git/internal/records"
)

// OpenRecords returns the record store selected by cfg.RecordBackend and a
// func releasing its connections.
func OpenRecords(ctx context.Context, cfg config.Config) (records.Client, func(), error) {
	switch cfg.RecordBackend {
	case config.BackendHTTP:
		if cfg.RecordStoreURL == "" {
			return nil, nil, fmt.Errorf("RECORD_STORE_URL is required for the %s backend", cfg.RecordBackend)
		}
		return records.NewHTTPClient(cfg.RecordStoreURL, cfg.RecordProjectID, cfg.RecordPublicKey), func() {}, nil

	case config.BackendPostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return &postgres.Store{DB: db}, db.Close, nil

	case config.BackendMongo:
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Printf("mongo disconnect: %v", err)
			}
		}
		return &mongostore.Store{DB: client.Database(cfg.MongoDB)}, closeFn, nil

	case config.BackendMemory:
		log.Printf("using in-memory record store; data is lost on exit")
		return records.NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown RECORD_BACKEND %q", cfg.RecordBackend)
	}
}
