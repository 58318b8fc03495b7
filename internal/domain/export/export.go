// Package export writes the active order to a plain text report.
package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/sklad/internal/domain/order"
)

const separator = "================================"

// ItemLister returns the items of an order in insertion order.
type ItemLister interface {
	ListItems(ctx context.Context, orderID int64) ([]order.ItemView, error)
}

// Render writes the report for orderID to w.
func Render(w io.Writer, orderID int64, items []order.ItemView) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Objednávka ID: %d\n", orderID)
	fmt.Fprintln(bw, separator)
	for _, it := range items {
		fmt.Fprintf(bw, "%s - %d ks\n", it.ProductName, it.Quantity)
	}
	return bw.Flush()
}

// FileName is the report file name for an order.
func FileName(orderID int64) string {
	return fmt.Sprintf("objednavka_%d.txt", orderID)
}

// Exporter writes order reports into a directory.
type Exporter struct {
	dir   string
	items ItemLister
}

// NewExporter creates an Exporter writing into dir.
func NewExporter(dir string, items ItemLister) *Exporter {
	return &Exporter{dir: dir, items: items}
}

// ExportActiveOrder writes the session's active order and returns the report
// path. A previous report of the same order is replaced.
func (e *Exporter) ExportActiveOrder(ctx context.Context, sess *order.Session) (string, error) {
	orderID, ok := sess.ActiveOrder()
	if !ok {
		return "", order.ErrNoActiveOrder
	}

	items, err := e.items.ListItems(ctx, orderID)
	if err != nil {
		return "", errors.Wrapf(err, "list items of order %d", orderID)
	}

	path := filepath.Join(e.dir, FileName(orderID))
	if err := writeFile(path, func(w io.Writer) error {
		return Render(w, orderID, items)
	}); err != nil {
		return "", errors.Wrapf(err, "write report %s", path)
	}

	zctx.From(ctx).Info("Order exported",
		zap.Int64("order_id", orderID),
		zap.Int("items", len(items)),
		zap.String("path", path),
	)
	return path, nil
}

// writeFile writes through a temporary file in the same directory and
// renames it over path, so readers never see a partial report.
func writeFile(path string, write func(w io.Writer) error) (rerr error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return err
	}
	defer func() {
		if rerr != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err := write(f); err != nil {
		return err
	}
	if err := f.Chmod(0o644); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// CheckWritable reports an error when dir cannot hold new files. It is used
// as a readiness check.
func CheckWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return errors.Wrapf(err, "export dir %s", dir)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
