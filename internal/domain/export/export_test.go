package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/sklad/internal/domain/order"
	"github.com/xenking/sklad/internal/storage/memory"
)

type mockItemLister struct {
	items map[int64][]order.ItemView
	err   error
}

func (m *mockItemLister) ListItems(_ context.Context, orderID int64) ([]order.ItemView, error) {
	return m.items[orderID], m.err
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, 7, []order.ItemView{
		{ProductName: "Widget", Quantity: 4},
		{ProductName: "Šroub M6", Quantity: 100},
	})
	require.NoError(t, err)

	want := "Objednávka ID: 7\n" +
		"================================\n" +
		"Widget - 4 ks\n" +
		"Šroub M6 - 100 ks\n"
	assert.Equal(t, want, buf.String())
}

func TestRender_NoItems(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, 1, nil))
	assert.Equal(t, "Objednávka ID: 1\n================================\n", buf.String())
}

func TestExportActiveOrder_NoActiveOrder(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, &mockItemLister{})

	_, err := e.ExportActiveOrder(context.Background(), order.NewSession())
	require.ErrorIs(t, err, order.ErrNoActiveOrder)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no file must be written")
}

func newActiveSession(t *testing.T, store *memory.Store) *order.Session {
	t.Helper()
	sess := order.NewSession()
	_, err := order.NewService(store.Orders()).CreateOrder(context.Background(), sess)
	require.NoError(t, err)
	return sess
}

func TestExportActiveOrder_OverwritesPreviousReport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := memory.New()
	sess := newActiveSession(t, store)

	lister := &mockItemLister{items: map[int64][]order.ItemView{
		1: {{ProductName: "Widget", Quantity: 4}},
	}}
	e := NewExporter(dir, lister)

	path, err := e.ExportActiveOrder(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "objednavka_1.txt"), path)

	lister.items[1] = append(lister.items[1], order.ItemView{ProductName: "Gadget", Quantity: 1})
	_, err = e.ExportActiveOrder(ctx, sess)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Objednávka ID: 1\n================================\nWidget - 4 ks\nGadget - 1 ks\n",
		string(data),
	)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestExportActiveOrder_ListError(t *testing.T) {
	dir := t.TempDir()
	sess := newActiveSession(t, memory.New())
	e := NewExporter(dir, &mockItemLister{err: errors.New("db down")})

	_, err := e.ExportActiveOrder(context.Background(), sess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCheckWritable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CheckWritable(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Error(t, CheckWritable(filepath.Join(dir, "missing")))
}
