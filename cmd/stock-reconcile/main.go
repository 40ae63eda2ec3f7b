// stock-reconcile replays the stock-movement log for every inventory item and
// reports items whose stored stock differs from the replayed value.
// It never writes; fix drift with an ADJUST movement.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/balanoilmart/ledger_backend/config"
	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/sqlstore"
	"github.com/balanoilmart/ledger_backend/storeclient"
	"github.com/sirupsen/logrus"
)

type drift struct {
	Barcode  string
	Name     string
	Stored   int
	Replayed int
	// Movements replayed for the item.
	Movements int
	// Orphans are movements whose barcode matches no item.
	Orphan bool
}

func reconcile(ctx context.Context, store models.Store) ([]drift, error) {
	items, err := store.ListInventoryItems(ctx)
	if err != nil {
		return nil, err
	}
	movements, err := store.ListStockMovements(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].CreatedAt.Before(movements[j].CreatedAt)
	})

	replayed := make(map[string]int)
	counts := make(map[string]int)
	for _, mv := range movements {
		replayed[mv.Barcode] = models.ApplyMovement(replayed[mv.Barcode], mv.Type, mv.Quantity)
		counts[mv.Barcode]++
	}

	var out []drift
	known := make(map[string]bool, len(items))
	for _, item := range items {
		known[item.Barcode] = true
		if replayed[item.Barcode] != item.Stock {
			out = append(out, drift{
				Barcode:   item.Barcode,
				Name:      item.Name,
				Stored:    item.Stock,
				Replayed:  replayed[item.Barcode],
				Movements: counts[item.Barcode],
			})
		}
	}
	for barcode, n := range counts {
		if !known[barcode] {
			out = append(out, drift{Barcode: barcode, Replayed: replayed[barcode], Movements: n, Orphan: true})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Barcode < out[j].Barcode })
	return out, nil
}

func main() {
	mode := flag.String("mode", "", "Optional: store mode (rest|sql). Defaults to STORE_MODE.")
	failOnDrift := flag.Bool("fail-on-drift", false, "Exit with status 3 when any drift is found")
	flag.Parse()

	settings := config.LoadSettings()
	if *mode != "" {
		settings.StoreMode = config.StoreMode(*mode)
	}
	ctx := context.Background()
	logger := config.GetLogger()

	var store models.Store
	if settings.StoreMode == config.StoreModeRest {
		client, err := storeclient.New(settings.StoreURL, settings.StoreTimeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "store client: %v\n", err)
			os.Exit(1)
		}
		store = client
	} else {
		db, err := config.ConnectDatabaseWithRetry(ctx, settings)
		if err != nil {
			fmt.Fprintf(os.Stderr, "connect database: %v\n", err)
			os.Exit(1)
		}
		// reads go straight to MySQL; a stale list cache would hide drift
		store = sqlstore.New(db, nil, nil, 0)
	}

	drifts, err := reconcile(ctx, store)
	if err != nil {
		config.LogError(logger, "stock-reconcile", "main", "reconcile", nil, err)
		os.Exit(1)
	}
	for _, d := range drifts {
		if d.Orphan {
			fmt.Printf("orphan   barcode=%s movements=%d replayed=%d\n", d.Barcode, d.Movements, d.Replayed)
			continue
		}
		fmt.Printf("drift    barcode=%s name=%q stored=%d replayed=%d movements=%d\n", d.Barcode, d.Name, d.Stored, d.Replayed, d.Movements)
	}
	logger.WithFields(logrus.Fields{"drifted": len(drifts)}).Info("stock reconcile complete")
	if len(drifts) > 0 && *failOnDrift {
		os.Exit(3)
	}
}
