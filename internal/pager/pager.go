// Package pager renders ordered record sequences into fixed-size pages
// of text with previous/next affordances.
package pager

import (
	"fmt"
	"strings"

	"github.com/guggenheimg/cakebot/internal/domain"
)

const blockSeparator = "-----------------------\n"

// Page is one rendered slice of the full sequence.
type Page struct {
	Text    string
	Index   int
	HasPrev bool
	HasNext bool
}

// Formatter turns one order into its multi-line display block.
type Formatter func(o domain.Order) string

// Count returns the number of pages needed for total records.
func Count(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Render formats one page of orders. pageIndex is 0-based; keeping it
// in range is the caller's responsibility, the renderer does not clamp.
func Render(orders []domain.Order, pageIndex, pageSize int, header string, format Formatter) Page {
	pages := Count(len(orders), pageSize)
	start := pageIndex * pageSize
	end := start + pageSize
	if end > len(orders) {
		end = len(orders)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	for _, o := range orders[start:end] {
		b.WriteString(format(o))
		b.WriteString(blockSeparator)
	}

	return Page{
		Text:    b.String(),
		Index:   pageIndex,
		HasPrev: pageIndex > 0,
		HasNext: pageIndex < pages-1,
	}
}

// CustomerBlock formats an order for the customer's own list.
func CustomerBlock(o domain.Order) string {
	return fmt.Sprintf(
		"№ %d\nТорт: %s\nЦена: %s руб.\nВкус: %s\nРазмер: %s персон\nДекор: %s\nСтатус: %s\nДата: %s\n",
		o.ID, o.CakeName, o.Price, o.Taste, o.Size, o.Decor, o.Status, o.Date,
	)
}

// OperatorBlock formats an order for the operator review list, with
// the customer identity included.
func OperatorBlock(o domain.Order) string {
	return fmt.Sprintf(
		"№ %d\nПользователь: @%s (ID: %s)\nТорт: %s\nЦена: %s руб.\nВкус: %s\nРазмер: %s персон\nДекор: %s\nСтатус: %s\nДата: %s\n",
		o.ID, o.UserName, o.UserID, o.CakeName, o.Price, o.Taste, o.Size, o.Decor, o.Status, o.Date,
	)
}
