package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/sklad/internal/domain/input"
	"github.com/xenking/sklad/internal/domain/order"
	"github.com/xenking/sklad/internal/domain/product"
	"github.com/xenking/sklad/pkg/httpmiddleware"
)

var errBadBody = errors.New("request body must be a JSON object")

// decodeFields reads a flat JSON object, rejecting trailing data, and returns
// the raw text of the requested fields. Strings are taken verbatim, numbers
// in their literal form; other fields are ignored.
func decodeFields(w http.ResponseWriter, r *http.Request, names ...string) (map[string]string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(errBadBody, err.Error())
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	// A single JSON value with nothing after it.
	if err := jx.DecodeBytes(body).Validate(); err != nil {
		return nil, errors.Wrap(errBadBody, err.Error())
	}

	out := make(map[string]string, len(names))
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return nil, errBadBody
	}
	err = d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		k := string(key)
		if !want[k] {
			return d.Skip()
		}
		switch d.Next() {
		case jx.String:
			v, err := d.Str()
			if err != nil {
				return err
			}
			out[k] = v
		case jx.Number:
			v, err := d.Num()
			if err != nil {
				return err
			}
			out[k] = string(v)
		case jx.Null:
			return d.Null()
		default:
			return input.Invalid(k, "must be a string or number")
		}
		return nil
	})
	if err != nil {
		if input.IsValidation(err) {
			return nil, err
		}
		return nil, errors.Wrap(errBadBody, err.Error())
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, enc func(e *jx.Encoder)) {
	var e jx.Encoder
	enc(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError maps domain errors to status codes. Unknown errors are logged
// and reported as 500.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		vErr     *input.ValidationError
		stockErr *order.InsufficientStockError
	)
	switch {
	case errors.Is(err, errBadBody):
		httpmiddleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &vErr):
		httpmiddleware.WriteError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, order.ErrNoActiveOrder):
		httpmiddleware.WriteError(w, http.StatusConflict, err.Error())
	case errors.As(err, &stockErr):
		httpmiddleware.WriteError(w, http.StatusConflict, stockErr.Error())
	case errors.Is(err, product.ErrNotFound):
		httpmiddleware.WriteError(w, http.StatusNotFound, err.Error())
	default:
		zctx.From(ctx).Error("Request failed", zap.Error(err))
		httpmiddleware.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
