package handler

import (
	"bytes"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/sklad/internal/domain/export"
	"github.com/xenking/sklad/internal/domain/order"
)

// CreateOrder starts a new order and makes it the active one.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	o, err := h.orders.CreateOrder(ctx, h.session)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	h.metrics.ordersCreated.Add(ctx, 1)

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Int64(o.ID) })
			e.Field("createdAt", func(e *jx.Encoder) { e.Str(o.CreatedAt.Format(order.TimestampLayout)) })
		})
	})
}

// ActiveOrder returns the active order id and its items. Without an active
// order the id is omitted and items is empty.
func (h *Handler) ActiveOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	// The session is read once so the id and the items belong together.
	id, ok := h.session.ActiveOrder()
	items := []order.ItemView{}
	if ok {
		var err error
		if items, err = h.orders.ListItems(ctx, id); err != nil {
			writeError(ctx, w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			if ok {
				e.Field("id", func(e *jx.Encoder) { e.Int64(id) })
			}
			e.Field("items", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, it := range items {
						e.Obj(func(e *jx.Encoder) {
							e.Field("name", func(e *jx.Encoder) { e.Str(it.ProductName) })
							e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
						})
					}
				})
			})
		})
	})
}

// AddLineItem adds {"productId","quantity"} to the active order.
func (h *Handler) AddLineItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.session.ActiveOrder(); !ok {
		writeError(ctx, w, order.ErrNoActiveOrder)
		return
	}
	f, err := decodeFields(w, r, "productId", "quantity")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	in, err := order.ParseLineItem(f["productId"], f["quantity"])
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	item, err := h.orders.AddLineItem(ctx, h.session, in)
	if err != nil {
		var stockErr *order.InsufficientStockError
		if errors.As(err, &stockErr) {
			h.metrics.stockRejected.Add(ctx, 1)
		}
		writeError(ctx, w, err)
		return
	}
	h.metrics.lineItemsAdded.Add(ctx, 1)

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Int64(item.ID) })
			e.Field("orderId", func(e *jx.Encoder) { e.Int64(item.OrderID) })
		})
	})
}

// Report renders the active order report without writing a file.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.session.ActiveOrder()
	if !ok {
		writeError(ctx, w, order.ErrNoActiveOrder)
		return
	}
	items, err := h.orders.ListItems(ctx, id)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Render(&buf, id, items); err != nil {
		writeError(ctx, w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Export writes the active order report to the export directory.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path, err := h.exporter.ExportActiveOrder(ctx, h.session)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	h.metrics.exports.Add(ctx, 1)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("path", func(e *jx.Encoder) { e.Str(path) })
		})
	})
}
