package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/balanoilmart/ledger_backend/config"
	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/utils"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestListKey(t *testing.T) {
	if got := listKey[models.LedgerAccount]("Customer"); got != "LedgerAccountList:Customer" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := listKey[models.Sale](""); got != "SaleList" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestWrapMapsErrors(t *testing.T) {
	if err := wrap("get", "customers", "c1", gorm.ErrRecordNotFound); !utils.IsNotFoundError(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := wrap("get", "customers", "c1", errors.New("dial tcp: refused")); !utils.IsTransportError(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	ve := utils.NewValidationError("quantity", "too big")
	if err := wrap("record", "item", "b", ve); err != ve {
		t.Fatalf("validation errors must pass through, got %v", err)
	}
	if err := wrap("record", "item", "b", utils.ErrInFlight); !errors.Is(err, utils.ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	if !isDuplicateKey(fmt.Errorf("insert: %w", &mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry"})) {
		t.Fatalf("expected 1062 to be a duplicate key")
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	var c *listCache
	storeList(ctx, c, "", []*models.Sale{{ID: "s1"}})
	if got := retrieveList[models.Sale](ctx, c, ""); got != nil {
		t.Fatalf("expected nil from disabled cache, got %v", got)
	}
	removeList[models.Sale](ctx, &listCache{}, "")
}

func openIntegrationStore(t *testing.T) *Store {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 and TEST_MYSQL_DSN to run integration tests")
	}
	dsn := strings.TrimSpace(os.Getenv("TEST_MYSQL_DSN"))
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN is empty")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := config.OpenDatabaseWithRetry(ctx, dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := models.MigrateTable(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	rdb, locker, err := config.ConnectRedisWithRetry(ctx, os.Getenv("TEST_REDIS_ADDRESS"))
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	if rdb != nil {
		t.Cleanup(func() { _ = rdb.Close() })
	}
	return New(db, rdb, locker, time.Minute)
}

func TestLedgerRoundTrip(t *testing.T) {
	s := openIntegrationStore(t)
	ctx := context.Background()
	name := "Integration Traders " + time.Now().Format("150405.000000")

	a, err := s.CreateAccount(ctx, models.AccountKindManufacturer, &models.NewLedgerAccount{
		Name:        name,
		CreditGiven: decimal.NewFromInt(50000),
		PaidAmount:  decimal.NewFromInt(31273),
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if len(a.CreditHistory) != 1 || len(a.PaymentHistory) != 1 {
		t.Fatalf("expected seeded history, got %d/%d", len(a.CreditHistory), len(a.PaymentHistory))
	}
	a, err = s.AddPayment(ctx, models.AccountKindManufacturer, a.ID, &models.NewLedgerEntry{Amount: decimal.NewFromInt(727), Note: "cheque"})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	if !a.Balance().Equal(decimal.NewFromInt(18000)) {
		t.Fatalf("expected balance 18000, got %s", a.Balance())
	}
	a, err = s.AddManufacturerProduct(ctx, a.ID, &models.NewManufacturerProduct{Name: "Groundnut Oil 15L", Quantity: decimal.NewFromInt(4), Rate: decimal.NewFromInt(2100)})
	if err != nil {
		t.Fatalf("AddManufacturerProduct: %v", err)
	}
	if len(a.Products) != 1 || !a.Products[0].Total.Equal(decimal.NewFromInt(8400)) {
		t.Fatalf("unexpected products %+v", a.Products)
	}

	list, err := s.ListAccounts(ctx, models.AccountKindManufacturer)
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	found := false
	for _, l := range list {
		if l.ID == a.ID {
			found = true
			if !l.PaidAmount.Equal(decimal.NewFromInt(32000)) || len(l.PaymentHistory) != 2 {
				t.Fatalf("stale list after mutation: %+v", l)
			}
		}
	}
	if !found {
		t.Fatalf("created account missing from list")
	}

	if _, err := s.AddCredit(ctx, models.AccountKindCustomer, a.ID, &models.NewLedgerEntry{Amount: decimal.NewFromInt(1)}); !utils.IsNotFoundError(err) {
		t.Fatalf("expected not found across kinds, got %v", err)
	}
}

func TestInventoryMovements(t *testing.T) {
	s := openIntegrationStore(t)
	ctx := context.Background()
	barcode := "IT" + time.Now().Format("150405000000")

	if _, err := s.CreateInventoryItem(ctx, &models.NewInventoryItem{Barcode: barcode, Name: "Sunflower Oil - 1L", MinStock: 2}); err != nil {
		t.Fatalf("CreateInventoryItem: %v", err)
	}
	if _, err := s.CreateInventoryItem(ctx, &models.NewInventoryItem{Barcode: barcode, Name: "dup"}); !utils.IsValidationError(err) {
		t.Fatalf("expected duplicate barcode validation error, got %v", err)
	}
	steps := []struct {
		typ  models.MovementType
		qty  int
		want int
	}{
		{models.MovementTypeIn, 10, 10},
		{models.MovementTypeOut, 4, 6},
		{models.MovementTypeAdjust, 2, 2},
	}
	for _, step := range steps {
		item, err := s.RecordMovement(ctx, &models.NewStockMovement{Barcode: barcode, Type: step.typ, Quantity: step.qty})
		if err != nil {
			t.Fatalf("%s %d: %v", step.typ, step.qty, err)
		}
		if item.Stock != step.want {
			t.Fatalf("%s %d: expected stock %d, got %d", step.typ, step.qty, step.want, item.Stock)
		}
	}
	if _, err := s.RecordMovement(ctx, &models.NewStockMovement{Barcode: barcode, Type: models.MovementTypeOut, Quantity: 3}); !utils.IsValidationError(err) {
		t.Fatalf("expected insufficient stock validation error, got %v", err)
	}
	if _, err := s.RecordMovement(ctx, &models.NewStockMovement{Barcode: barcode + "-missing", Type: models.MovementTypeIn, Quantity: 1}); !utils.IsNotFoundError(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSalesRecomputeTotal(t *testing.T) {
	s := openIntegrationStore(t)
	sale, err := s.CreateSale(context.Background(), &models.NewSale{
		ProductName: "Sunflower Oil",
		Quantity:    decimal.NewFromInt(10),
		Price:       decimal.NewFromInt(150),
		Total:       decimal.NewFromInt(99),
		Date:        time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if !sale.Total.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("expected recomputed total 1500, got %s", sale.Total)
	}
}
