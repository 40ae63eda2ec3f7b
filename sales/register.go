package sales

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/balanoilmart/ledger_backend/config"
	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/notify"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sales")

// Register is the session view of the append-only sales log, newest first.
type Register struct {
	store    models.Store
	notifier notify.Publisher
	location *time.Location
	logger   *logrus.Logger
	now      func() time.Time

	mu      sync.RWMutex
	entries []*models.Sale
}

func NewRegister(store models.Store, notifier notify.Publisher, location *time.Location) *Register {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if location == nil {
		location = time.UTC
	}
	return &Register{
		store:    store,
		notifier: notifier,
		location: location,
		logger:   config.GetLogger(),
		now:      time.Now,
	}
}

func (r *Register) Load(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "sales.Load")
	defer span.End()
	span.SetAttributes(utils.SessionAttributes(ctx)...)

	list, err := r.store.ListSales(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		config.LogError(r.logger, "sales", "Load", "", nil, err)
		if utils.IsRecoverable(err) {
			r.notifier.Publish(models.NotificationLevelError, "Failed to fetch sales", err.Error())
		}
		return err
	}
	entries := make([]*models.Sale, 0, len(list))
	for _, s := range list {
		if s != nil {
			c := *s
			entries = append(entries, &c)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
	return nil
}

// RecordSale validates, computes total = quantity x unitPrice and stores the entry.
// A zero date means today in the register's time zone.
func (r *Register) RecordSale(ctx context.Context, productName string, quantity decimal.Decimal, unitPrice decimal.Decimal, date time.Time) (*models.Sale, error) {
	productName = strings.TrimSpace(productName)
	if err := utils.ValidateRequiredName("productName", productName); err != nil {
		return nil, err
	}
	if err := utils.ValidatePositiveAmount("quantity", quantity); err != nil {
		return nil, err
	}
	if err := utils.ValidatePositiveAmount("price", unitPrice); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = r.now().In(r.location)
	}
	input := &models.NewSale{
		ProductName: productName,
		Quantity:    quantity,
		Price:       unitPrice,
		Total:       models.SaleTotal(quantity, unitPrice),
		Date:        date,
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "sales.RecordSale")
	defer span.End()
	span.SetAttributes(utils.SessionAttributes(ctx)...)
	span.SetAttributes(attribute.String("sale.product", productName), attribute.String("sale.total", input.Total.String()))

	sale, err := r.store.CreateSale(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		config.LogError(r.logger, "sales", "RecordSale", productName, input, err)
		if utils.IsRecoverable(err) {
			r.notifier.Publish(models.NotificationLevelError, "Failed to add sale", err.Error())
		}
		return nil, err
	}
	stored := *sale
	r.mu.Lock()
	r.entries = append([]*models.Sale{&stored}, r.entries...)
	r.mu.Unlock()
	r.notifier.Publish(models.NotificationLevelInfo, "Success", "Sale added")
	c := stored
	return &c, nil
}

// Entries returns copies of the cached sales, most recent first.
func (r *Register) Entries() []*models.Sale {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Sale, 0, len(r.entries))
	for _, s := range r.entries {
		c := *s
		out = append(out, &c)
	}
	return out
}

// MonthToDate sums the cached entries dated on or after the first of the current month.
func (r *Register) MonthToDate() decimal.Decimal {
	return MonthToDateTotal(r.Entries(), r.now().In(r.location))
}

// AggregateByProduct groups entries by product name and sums their totals.
func AggregateByProduct(entries []*models.Sale) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, s := range entries {
		if s == nil {
			continue
		}
		out[s.ProductName] = out[s.ProductName].Add(s.Total)
	}
	return out
}

type ProductShare struct {
	ProductName string          `json:"productName"`
	Total       decimal.Decimal `json:"total"`
}

// Distribution is AggregateByProduct ordered by total, largest first, for charts.
func Distribution(entries []*models.Sale) []ProductShare {
	byProduct := AggregateByProduct(entries)
	out := make([]ProductShare, 0, len(byProduct))
	for name, total := range byProduct {
		out = append(out, ProductShare{ProductName: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].ProductName < out[j].ProductName
	})
	return out
}

// MonthToDateTotal sums totals dated on or after the first calendar day of
// reference's month, in reference's location.
func MonthToDateTotal(entries []*models.Sale, reference time.Time) decimal.Decimal {
	start := utils.StartOfMonth(reference)
	sum := decimal.Zero
	for _, s := range entries {
		if s == nil {
			continue
		}
		if !s.Date.Before(start) {
			sum = sum.Add(s.Total)
		}
	}
	return sum
}

func Total(entries []*models.Sale) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range entries {
		if s != nil {
			sum = sum.Add(s.Total)
		}
	}
	return sum
}
