// Package handler serves the JSON API over the inventory, order and export
// services. Request fields that carry numbers accept both JSON numbers and
// strings; parsing and validation happen in the domain packages.
package handler

import (
	"net/http"

	"github.com/xenking/sklad/internal/domain/export"
	"github.com/xenking/sklad/internal/domain/order"
	"github.com/xenking/sklad/internal/domain/product"
)

// maxBodySize bounds request bodies.
const maxBodySize = 64 << 10

// Handler holds the services behind the API and the single user session.
type Handler struct {
	products *product.Service
	orders   *order.Service
	exporter *export.Exporter
	session  *order.Session
	metrics  *Metrics
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products *product.Service,
	orders *order.Service,
	exporter *export.Exporter,
	session *order.Session,
	metrics *Metrics,
) *Handler {
	return &Handler{
		products: products,
		orders:   orders,
		exporter: exporter,
		session:  session,
		metrics:  metrics,
	}
}

// Register adds all API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("POST /api/products", h.AddProduct)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)

	mux.HandleFunc("POST /api/orders", h.CreateOrder)
	mux.HandleFunc("GET /api/orders/active", h.ActiveOrder)
	mux.HandleFunc("POST /api/orders/active/items", h.AddLineItem)
	mux.HandleFunc("GET /api/orders/active/report", h.Report)
	mux.HandleFunc("POST /api/orders/active/export", h.Export)
}
