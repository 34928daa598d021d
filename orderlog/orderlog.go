// Package orderlog implements order intake: validation, allow-listed
// normalization of submitted payloads, an append-only in-memory log,
// and best-effort side effects (durable snapshot, webhook
// notification) that never fail an accepted order.
package orderlog

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dispatch-mcp/swag-store-backend/api"
	"github.com/dispatch-mcp/swag-store-backend/cryptoutils"
	"github.com/dispatch-mcp/swag-store-backend/storage"
)

// Config carries the order log dependencies. Snapshots and Notifier
// are optional; a nil value disables the corresponding side effect.
type Config struct {
	// Snapshots receives a full-log snapshot after every append.
	Snapshots storage.SnapshotBackend

	// Notifier receives every accepted order.
	Notifier Notifier

	// Log is the structured logger for order operations.
	Log *slog.Logger

	// Clock supplies the current time; overridden in tests.
	Clock func() time.Time
}

// Log is the append-only order log. Orders are immutable once
// appended; there is no update or delete operation.
type Log struct {
	mu     sync.RWMutex
	orders []api.Order

	snapshots storage.SnapshotBackend
	notifier  Notifier
	log       *slog.Logger
	now       func() time.Time
}

// New creates an empty order log.
func New(cfg Config) *Log {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Log{
		snapshots: cfg.Snapshots,
		notifier:  cfg.Notifier,
		log:       cfg.Log,
		now:       cfg.Clock,
	}
}

// Restore loads orders from the snapshot backend, replacing the
// current log. A missing snapshot is not an error.
func (l *Log) Restore(ctx context.Context) error {
	if l.snapshots == nil {
		return nil
	}

	data, err := l.snapshots.Load(ctx)
	if err != nil {
		return nil // nothing to restore
	}

	var orders []api.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		l.log.Error("Failed to parse order snapshot, starting empty", "err", err, "backend", l.snapshots.Name())
		return nil
	}

	l.mu.Lock()
	l.orders = orders
	l.mu.Unlock()

	l.log.Info("Restored orders from snapshot", "count", len(orders), "backend", l.snapshots.Name())
	return nil
}

// validate checks the required payload fields, naming the first
// missing one.
func validate(req *api.OrderRequest) error {
	if req.Email == "" {
		return api.Validationf("missing required field: email")
	}
	if len(req.Items) == 0 {
		return api.Validationf("missing required field: items")
	}

	addr := req.ShippingAddress
	for _, f := range []struct {
		name  string
		value string
	}{
		{"firstName", addr.FirstName},
		{"lastName", addr.LastName},
		{"address", addr.Address},
		{"city", addr.City},
		{"zipCode", addr.ZipCode},
		{"country", addr.Country},
	} {
		if f.value == "" {
			return api.Validationf("incomplete shipping address: %s", f.name)
		}
	}
	return nil
}

// normalize extracts the allow-listed fields of the request into an
// order record. selectedSize wins over size; quantity defaults to 1.
func normalize(req *api.OrderRequest) api.Order {
	items := make([]api.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		size := it.Size
		if it.SelectedSize != "" {
			size = it.SelectedSize
		}
		quantity := it.Quantity
		if quantity == 0 {
			quantity = 1
		}
		items = append(items, api.OrderItem{
			Name:     it.Name,
			Size:     size,
			Quantity: quantity,
		})
	}

	bugsFixed := req.BugsFixed
	if bugsFixed == nil {
		bugsFixed = []string{}
	}

	return api.Order{
		InstanceID:      req.InstanceID,
		Email:           req.Email,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		BugsFixed:       bugsFixed,
		Status:          "pending",
	}
}

// Append validates and stores a submitted order, returning the stored
// record. On success the snapshot write and webhook notification run
// best-effort: their failure is logged but never propagated.
func (l *Log) Append(req *api.OrderRequest) (api.Order, error) {
	if err := validate(req); err != nil {
		return api.Order{}, err
	}

	orderID, err := cryptoutils.NewOrderID()
	if err != nil {
		return api.Order{}, err
	}

	order := normalize(req)
	order.OrderID = orderID
	order.SubmittedAt = l.now().UTC()

	l.mu.Lock()
	l.orders = append(l.orders, order)
	snapshot := make([]api.Order, len(l.orders))
	copy(snapshot, l.orders)
	l.mu.Unlock()

	l.log.Info("Order received", "orderID", order.OrderID, "email", order.Email, "items", len(order.Items))

	l.writeSnapshot(snapshot)
	l.notify(order)

	return order, nil
}

// List returns a copy of the log sorted newest-first by submission
// time.
func (l *Log) List() []api.Order {
	l.mu.RLock()
	out := make([]api.Order, len(l.orders))
	copy(out, l.orders)
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

// Len returns the number of stored orders.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.orders)
}

func (l *Log) writeSnapshot(orders []api.Order) {
	if l.snapshots == nil {
		return
	}

	data, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		l.log.Error("Failed to marshal order snapshot", "err", err)
		return
	}

	if err := l.snapshots.Write(context.Background(), data); err != nil {
		l.log.Error("Failed to write order snapshot", "err", err, "backend", l.snapshots.Name())
	}
}
