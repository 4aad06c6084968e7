// Package catalog reads the product list from the backing store.
package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/guggenheimg/cakebot/core/logger"
	"github.com/guggenheimg/cakebot/internal/domain"
	"github.com/guggenheimg/cakebot/internal/sheet"
)

// Columns is the catalog table header, in storage order.
var Columns = []string{"name", "price", "description", "photo"}

// Service fetches catalog snapshots. There is no caching: every call
// re-reads the store, so catalog edits show up within one round-trip.
type Service struct {
	table sheet.Table
}

// New wires the accessor over the catalog table.
func New(table sheet.Table) *Service {
	return &Service{table: table}
}

// Fetch returns the current catalog. It fails soft: on backend error
// the problem is logged and an empty list is returned.
func (s *Service) Fetch(ctx context.Context) []domain.Cake {
	records, err := s.table.Records(ctx)
	if err != nil {
		logger.Error(ctx, "catalog", "catalog.fetch",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return nil
	}

	cakes := make([]domain.Cake, 0, len(records))
	for _, rec := range records {
		cakes = append(cakes, domain.Cake{
			Name:        rec["name"],
			Price:       rec["price"],
			Description: rec["description"],
			Photo:       rec["photo"],
		})
	}
	logger.Debug(ctx, "catalog", "catalog.fetch",
		slog.String("status", "ok"),
		slog.Int("count", len(cakes)),
	)
	return cakes
}

// FindByName matches a cake by name, case-insensitively, against a
// fresh catalog snapshot.
func (s *Service) FindByName(ctx context.Context, name string) (domain.Cake, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, cake := range s.Fetch(ctx) {
		if strings.ToLower(strings.TrimSpace(cake.Name)) == want {
			return cake, true
		}
	}
	return domain.Cake{}, false
}
