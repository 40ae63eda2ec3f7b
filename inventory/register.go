package inventory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/balanoilmart/ledger_backend/config"
	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/notify"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("inventory")

// Register caches inventory items and the movement log for one session.
// Stock is never computed locally; the store's post-movement item replaces the cached one.
type Register struct {
	store    models.Store
	notifier notify.Publisher
	logger   *logrus.Logger

	mu        sync.RWMutex
	items     []*models.InventoryItem
	movements []*models.StockMovement
}

func NewRegister(store models.Store, notifier notify.Publisher) *Register {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Register{store: store, notifier: notifier, logger: config.GetLogger()}
}

func (r *Register) Load(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "inventory.Load")
	defer span.End()
	span.SetAttributes(utils.SessionAttributes(ctx)...)

	items, err := r.store.ListInventoryItems(ctx)
	if err != nil {
		r.fail(span, "Load", "", err, "Failed to fetch products")
		return err
	}
	movements, err := r.store.ListStockMovements(ctx)
	if err != nil {
		r.fail(span, "Load", "", err, "Failed to fetch transactions")
		return err
	}
	cachedItems := make([]*models.InventoryItem, 0, len(items))
	for _, item := range items {
		if item != nil {
			c := *item
			cachedItems = append(cachedItems, &c)
		}
	}
	r.mu.Lock()
	r.items = cachedItems
	r.movements = sortMovements(movements)
	r.mu.Unlock()
	return nil
}

// CreateItem registers a barcode with zero stock.
func (r *Register) CreateItem(ctx context.Context, input *models.NewInventoryItem) (*models.InventoryItem, error) {
	if input == nil {
		return nil, utils.NewValidationError("barcode", "is required")
	}
	in := *input
	in.Barcode = strings.TrimSpace(in.Barcode)
	in.Name = strings.TrimSpace(in.Name)
	in.Sku = strings.TrimSpace(in.Sku)
	input = &in
	if err := utils.ValidateRequiredName("barcode", input.Barcode); err != nil {
		return nil, err
	}
	if err := utils.ValidateRequiredName("name", input.Name); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if _, exists := r.Item(input.Barcode); exists {
		return nil, utils.NewValidationError("barcode", "%s already exists", input.Barcode)
	}

	ctx, span := tracer.Start(ctx, "inventory.CreateItem")
	defer span.End()
	span.SetAttributes(utils.SessionAttributes(ctx)...)
	span.SetAttributes(attribute.String("item.barcode", input.Barcode))

	item, err := r.store.CreateInventoryItem(ctx, input)
	if err != nil {
		r.fail(span, "CreateItem", input.Barcode, err, "Failed to add product")
		return nil, err
	}
	c := r.replace(item)
	r.notifier.Publish(models.NotificationLevelInfo, "Success", "Product added")
	return c, nil
}

// RecordMovement submits one stock movement and replaces the cached item with the store's result.
func (r *Register) RecordMovement(ctx context.Context, barcode string, movementType models.MovementType, quantity int, reason string) (*models.InventoryItem, error) {
	barcode = strings.TrimSpace(barcode)
	if err := utils.ValidateRequiredName("barcode", barcode); err != nil {
		return nil, err
	}
	if !movementType.IsValid() {
		return nil, utils.NewValidationError("type", "must be one of IN, OUT, ADJUST")
	}
	if err := utils.ValidatePositiveQuantity("quantity", quantity); err != nil {
		return nil, err
	}
	input := &models.NewStockMovement{
		Barcode:  barcode,
		Type:     movementType,
		Quantity: quantity,
		Reason:   strings.TrimSpace(reason),
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "inventory.RecordMovement")
	defer span.End()
	span.SetAttributes(utils.SessionAttributes(ctx)...)
	span.SetAttributes(
		attribute.String("item.barcode", barcode),
		attribute.String("movement.type", string(movementType)),
		attribute.Int("movement.quantity", quantity),
	)

	item, err := r.store.RecordMovement(ctx, input)
	if err != nil {
		r.fail(span, "RecordMovement", barcode, err, "Failed to update stock")
		return nil, err
	}
	c := r.replace(item)
	r.refreshMovements(ctx)
	r.notifier.Publish(models.NotificationLevelInfo, "Success", "Stock updated for "+c.Name)
	return c, nil
}

// refreshMovements reloads the movement log after a successful movement.
// A failure here keeps the previous log; the item itself is already current.
func (r *Register) refreshMovements(ctx context.Context) {
	movements, err := r.store.ListStockMovements(ctx)
	if err != nil {
		config.LogError(r.logger, "inventory", "refreshMovements", "", nil, err)
		return
	}
	r.mu.Lock()
	r.movements = sortMovements(movements)
	r.mu.Unlock()
}

func (r *Register) Items() []*models.InventoryItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.InventoryItem, 0, len(r.items))
	for _, item := range r.items {
		c := *item
		out = append(out, &c)
	}
	return out
}

func (r *Register) Item(barcode string) (*models.InventoryItem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if item.Barcode == barcode {
			c := *item
			return &c, true
		}
	}
	return nil, false
}

// LowStock lists items whose stock is at or below their minimum.
func (r *Register) LowStock() []*models.InventoryItem {
	out := make([]*models.InventoryItem, 0)
	for _, item := range r.Items() {
		if item.StockStatus() == models.StockStatusLow {
			out = append(out, item)
		}
	}
	return out
}

// Movements returns the cached movement log, newest first.
func (r *Register) Movements() []*models.StockMovement {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.StockMovement, 0, len(r.movements))
	for _, mv := range r.movements {
		c := *mv
		out = append(out, &c)
	}
	return out
}

func (r *Register) replace(item *models.InventoryItem) *models.InventoryItem {
	cached := *item
	r.mu.Lock()
	defer r.mu.Unlock()
	replaced := false
	for i, existing := range r.items {
		if existing.Barcode == item.Barcode {
			r.items[i] = &cached
			replaced = true
			break
		}
	}
	if !replaced {
		r.items = append(r.items, &cached)
	}
	c := cached
	return &c
}

func (r *Register) fail(span trace.Span, op string, barcode string, err error, title string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	config.LogError(r.logger, "inventory", op, barcode, nil, err)
	if utils.IsRecoverable(err) {
		r.notifier.Publish(models.NotificationLevelError, title, err.Error())
	}
}

func sortMovements(movements []*models.StockMovement) []*models.StockMovement {
	out := make([]*models.StockMovement, 0, len(movements))
	for _, mv := range movements {
		if mv != nil {
			c := *mv
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
