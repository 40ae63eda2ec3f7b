// seed-demo loads the demo book (three manufacturers, two customers) into the configured store.
// Accounts are matched by name, so re-running adds the amounts to the existing rows instead of duplicating them.
//
// Usage:
//   STORE_MODE=sql DB_USER=... DB_PASSWORD=... DB_HOST=... DB_NAME=... go run ./cmd/seed-demo
//   STORE_MODE=rest STORE_BASE_URL=http://localhost:5000 go run ./cmd/seed-demo
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/balanoilmart/ledger_backend/config"
	"github.com/balanoilmart/ledger_backend/ledger"
	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/notify"
	"github.com/balanoilmart/ledger_backend/sqlstore"
	"github.com/balanoilmart/ledger_backend/storeclient"
	"github.com/shopspring/decimal"
)

type demoAccount struct {
	kind    models.AccountKind
	name    string
	credit  int64
	paid    int64
	product string
}

var demoBook = []demoAccount{
	{kind: models.AccountKindManufacturer, name: "Meenakshi Oil Traders", credit: 50000, paid: 31273},
	{kind: models.AccountKindManufacturer, name: "Bharat Traders", credit: 35000, paid: 10000},
	{kind: models.AccountKindManufacturer, name: "Muyal Company", credit: 28000, paid: 15000},
	{kind: models.AccountKindCustomer, name: "Raja Nei Store", credit: 25000, paid: 15000, product: "Sunflower Oil - 1L"},
	{kind: models.AccountKindCustomer, name: "Surya Oil Mart", credit: 18000, paid: 6000, product: "Gingelly Oil Tin 15L"},
}

// seed loads the current snapshot first so FindOrCreate can merge into existing rows.
func seed(ctx context.Context, store models.Store) ([]*models.LedgerAccount, error) {
	managers := map[models.AccountKind]*ledger.Manager{
		models.AccountKindManufacturer: ledger.NewManager(models.AccountKindManufacturer, store, notify.Discard{}),
		models.AccountKindCustomer:     ledger.NewManager(models.AccountKindCustomer, store, notify.Discard{}),
	}
	for _, m := range managers {
		if err := m.Load(ctx); err != nil {
			return nil, err
		}
	}

	seeded := make([]*models.LedgerAccount, 0, len(demoBook))
	for _, d := range demoBook {
		account, err := managers[d.kind].FindOrCreate(ctx, &models.NewLedgerAccount{
			Name:        d.name,
			CreditGiven: decimal.NewFromInt(d.credit),
			PaidAmount:  decimal.NewFromInt(d.paid),
			Product:     d.product,
		})
		if err != nil {
			return seeded, fmt.Errorf("seed %s %q: %w", d.kind, d.name, err)
		}
		seeded = append(seeded, account)
	}
	return seeded, nil
}

func openStore(ctx context.Context, settings *config.Settings) (models.Store, func(), error) {
	if settings.StoreMode == config.StoreModeRest {
		client, err := storeclient.New(settings.StoreURL, settings.StoreTimeout)
		return client, func() {}, err
	}
	db, err := config.ConnectDatabaseWithRetry(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	if err := models.MigrateTable(db); err != nil {
		return nil, nil, err
	}
	rdb, locker, err := config.ConnectRedisWithRetry(ctx, settings.RedisAddress)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return sqlstore.New(db, rdb, locker, settings.CacheTTL), closer, nil
}

func main() {
	mode := flag.String("mode", "", "Optional: store mode (rest|sql). Defaults to STORE_MODE.")
	flag.Parse()

	settings := config.LoadSettings()
	if *mode != "" {
		settings.StoreMode = config.StoreMode(*mode)
	}
	ctx := context.Background()

	store, closer, err := openStore(ctx, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer closer()

	accounts, err := seed(ctx, store)
	for _, a := range accounts {
		fmt.Printf("%-13s %-24s credit=%s paid=%s balance=%s\n", a.Kind, a.Name, a.CreditGiven, a.PaidAmount, a.Balance())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("demo book seeded")
}
