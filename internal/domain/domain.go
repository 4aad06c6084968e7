// Package domain holds the data model shared by the ordering flow,
// the ledger and the renderers.
package domain

import "time"

// DateLayout is the timestamp format stored in the orders table.
// Second precision, local clock of the writer.
const DateLayout = "2006-01-02 15:04:05"

// StatusPending is the only status the bot ever assigns itself; every
// later status is free text chosen by an operator.
const StatusPending = "ожидается подтверждение администратора"

// StatusDelivered marks orders the operator review list skips.
const StatusDelivered = "Доставлен"

// Cake is a catalog item. The catalog table is owned by an external
// editor; the bot only reads snapshots of it.
type Cake struct {
	Name        string
	Price       string
	Description string
	Photo       string
}

// Draft accumulates order fields while a customer walks through the
// ordering conversation. The cake is a snapshot taken at selection
// time, so later catalog edits do not leak into the order.
type Draft struct {
	Cake  Cake
	Taste string
	Size  int
	Decor string
}

// Order is one durable row of the order ledger.
type Order struct {
	ID       int64
	UserID   string
	UserName string
	CakeName string
	Price    string
	Taste    string
	Size     string
	Decor    string
	Status   string
	Date     string
}

// CreatedAt parses the stored date. ok is false when the cell does not
// match DateLayout.
func (o Order) CreatedAt() (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, o.Date, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
