package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/sklad/internal/domain/input"
	"github.com/xenking/sklad/internal/domain/product"
)

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { e.Raw([]byte(p.Price.StringFixed(2))) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(p.Quantity) })
	})
}

// ListProducts returns every product in insertion order.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, p := range products {
				encodeProduct(e, p)
			}
		})
	})
}

// GetProduct returns a single product by id.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := input.Int("id", r.PathValue("id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, *p) })
}

// AddProduct creates a product from {"name","price","quantity"}.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := decodeFields(w, r, "name", "price", "quantity")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	np, err := product.ParseNew(f["name"], f["price"], f["quantity"])
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	id, err := h.products.Add(ctx, np)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	h.metrics.productsAdded.Add(ctx, 1)

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Int64(id) })
		})
	})
}
