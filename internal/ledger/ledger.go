// Package ledger owns the orders table: id assignment, status updates
// and read queries.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/guggenheimg/cakebot/core/logger"
	"github.com/guggenheimg/cakebot/internal/domain"
	"github.com/guggenheimg/cakebot/internal/sheet"
)

// ErrNotFound is returned when no row matches the requested OrderID.
var ErrNotFound = errors.New("ledger: order not found")

// Columns is the orders table header, in storage order.
var Columns = []string{
	"OrderID", "user_id", "user_name", "cake_name", "price",
	"taste", "size", "decor", "status", "date",
}

// Ledger is the authoritative order table. The store has no
// transactions, so Create serializes the read-then-append id assignment
// through a process-local mutex; this closes the duplicate-id race as
// long as a single process writes the ledger.
type Ledger struct {
	table sheet.Table
	mu    sync.Mutex
	now   func() time.Time
}

// New wires the ledger over the orders table.
func New(table sheet.Table) *Ledger {
	return &Ledger{table: table, now: time.Now}
}

// Create appends the draft as a new order row and returns its id. The
// id is lastID+1 read under the create lock, or 1 on an empty table.
func (l *Ledger) Create(ctx context.Context, userID int64, userName string, d domain.Draft) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	values, err := l.table.Values(ctx)
	if err != nil {
		return 0, fmt.Errorf("read last order id: %w", err)
	}

	var orderID int64 = 1
	if len(values) >= 2 {
		last := values[len(values)-1]
		if len(last) == 0 {
			return 0, fmt.Errorf("orders table has an empty last row")
		}
		lastID, err := strconv.ParseInt(strings.TrimSpace(last[0]), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse last order id %q: %w", last[0], err)
		}
		orderID = lastID + 1
	}

	row := []string{
		strconv.FormatInt(orderID, 10),
		strconv.FormatInt(userID, 10),
		strings.TrimSpace(userName),
		strings.TrimSpace(d.Cake.Name),
		strings.TrimSpace(d.Cake.Price),
		strings.TrimSpace(d.Taste),
		strconv.Itoa(d.Size),
		strings.TrimSpace(d.Decor),
		domain.StatusPending,
		l.now().Format(domain.DateLayout),
	}
	if err := l.table.Append(ctx, row); err != nil {
		return 0, fmt.Errorf("append order row: %w", err)
	}

	logger.Info(ctx, "ledger", "order.created",
		slog.Int64("order_id", orderID),
		slog.Int64("user_id", userID),
	)
	return orderID, nil
}

// UpdateStatus writes the new status into the matching row. The status
// column is located by header lookup; a missing column is a failure.
// When duplicate ids exist the first match wins.
func (l *Ledger) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	header, err := l.table.Header(ctx)
	if err != nil {
		return fmt.Errorf("read orders header: %w", err)
	}
	statusCol := 0
	for i, name := range header {
		if name == "status" {
			statusCol = i + 1
			break
		}
	}
	if statusCol == 0 {
		return fmt.Errorf("orders table has no 'status' column")
	}

	records, err := l.table.Records(ctx)
	if err != nil {
		return fmt.Errorf("read orders: %w", err)
	}

	want := strconv.FormatInt(orderID, 10)
	for idx, rec := range records {
		if strings.TrimSpace(rec["OrderID"]) != want {
			continue
		}
		if err := l.table.UpdateCell(ctx, idx+2, statusCol, status); err != nil {
			return fmt.Errorf("update status cell: %w", err)
		}
		logger.Info(ctx, "ledger", "order.status_updated",
			slog.Int64("order_id", orderID),
			slog.String("new_status", logger.SanitizeLimit(status, 128)),
		)
		return nil
	}

	logger.Warn(ctx, "ledger", "order.status_updated",
		slog.Int64("order_id", orderID),
		slog.String("status", "fail"),
		slog.String("reason", "not_found"),
	)
	return ErrNotFound
}

// ListAll returns every order. It fails soft to an empty list.
func (l *Ledger) ListAll(ctx context.Context) []domain.Order {
	records, err := l.table.Records(ctx)
	if err != nil {
		logger.Error(ctx, "ledger", "order.list",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return nil
	}
	orders := make([]domain.Order, 0, len(records))
	for _, rec := range records {
		orders = append(orders, recordToOrder(rec))
	}
	return orders
}

// ListByCustomer returns orders whose stored customer id, after
// trimming whitespace, equals the queried id. The match is on strings,
// not numbers, mirroring how the store hands ids back.
func (l *Ledger) ListByCustomer(ctx context.Context, userID int64) []domain.Order {
	want := strconv.FormatInt(userID, 10)
	var out []domain.Order
	for _, o := range l.ListAll(ctx) {
		if strings.TrimSpace(o.UserID) == want {
			out = append(out, o)
		}
	}
	return out
}

// Find locates a single order by id.
func (l *Ledger) Find(ctx context.Context, orderID int64) (domain.Order, bool) {
	for _, o := range l.ListAll(ctx) {
		if o.ID == orderID {
			return o, true
		}
	}
	return domain.Order{}, false
}

// SortByDateDesc orders records newest first. The sort is
// all-or-nothing: if any record's timestamp fails to parse the input
// order is returned unchanged, matching the store-native fallback the
// rest of the system expects.
func SortByDateDesc(orders []domain.Order) []domain.Order {
	type keyed struct {
		order domain.Order
		at    time.Time
	}
	keys := make([]keyed, 0, len(orders))
	for _, o := range orders {
		at, ok := o.CreatedAt()
		if !ok {
			out := make([]domain.Order, len(orders))
			copy(out, orders)
			return out
		}
		keys = append(keys, keyed{order: o, at: at})
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].at.After(keys[j].at)
	})
	out := make([]domain.Order, len(keys))
	for i, k := range keys {
		out[i] = k.order
	}
	return out
}

func recordToOrder(rec sheet.Record) domain.Order {
	id, _ := strconv.ParseInt(strings.TrimSpace(rec["OrderID"]), 10, 64)
	return domain.Order{
		ID:       id,
		UserID:   rec["user_id"],
		UserName: rec["user_name"],
		CakeName: rec["cake_name"],
		Price:    rec["price"],
		Taste:    rec["taste"],
		Size:     rec["size"],
		Decor:    rec["decor"],
		Status:   rec["status"],
		Date:     rec["date"],
	}
}
