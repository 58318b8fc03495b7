package handler

import (
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
)

// Metrics counts successful and rejected domain operations.
type Metrics struct {
	productsAdded  metric.Int64Counter
	ordersCreated  metric.Int64Counter
	lineItemsAdded metric.Int64Counter
	stockRejected  metric.Int64Counter
	exports        metric.Int64Counter
}

// NewMetrics registers the counters on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter("github.com/xenking/sklad/internal/handler")

	var (
		m   Metrics
		err error
	)
	for _, c := range []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.productsAdded, "sklad.products.added", "Products added to the inventory"},
		{&m.ordersCreated, "sklad.orders.created", "Orders created"},
		{&m.lineItemsAdded, "sklad.line_items.added", "Line items added to orders"},
		{&m.stockRejected, "sklad.stock.rejected", "Line items rejected for insufficient stock"},
		{&m.exports, "sklad.exports", "Order reports written"},
	} {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, errors.Wrapf(err, "create counter %s", c.name)
		}
	}
	return &m, nil
}
