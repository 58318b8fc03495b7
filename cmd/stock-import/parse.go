package main

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/sklad/internal/domain/product"
)

// record is a product line that passed validation.
type record struct {
	line    int
	product product.NewProduct
}

// batch holds the parsed content of one import file.
type batch struct {
	path    string
	records []record
	invalid int
}

// parseFiles parses every file concurrently. Batches keep the order of files.
func parseFiles(ctx context.Context, files []string) ([]batch, error) {
	batches := make([]batch, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			b, err := parseFile(ctx, f)
			if err != nil {
				return err
			}
			batches[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

// parseFile reads a gzip-compressed file of "name;price;quantity" lines.
// Blank lines are ignored, invalid lines are logged and counted.
func parseFile(ctx context.Context, path string) (batch, error) {
	lg := zctx.From(ctx).With(zap.String("file", path))
	b := batch{path: path}

	err := streamGzFile(ctx, path, func(n int, line string) {
		if strings.TrimSpace(line) == "" {
			return
		}
		p, err := parseLine(line)
		if err != nil {
			b.invalid++
			lg.Warn("Skipping invalid line", zap.Int("line", n), zap.Error(err))
			return
		}
		b.records = append(b.records, record{line: n, product: p})
	})
	if err != nil {
		return batch{}, err
	}

	lg.Info("File parsed", zap.Int("records", len(b.records)), zap.Int("invalid", b.invalid))
	return b, nil
}

func parseLine(line string) (product.NewProduct, error) {
	fields := strings.Split(line, ";")
	if len(fields) != 3 {
		return product.NewProduct{}, errors.Errorf("want 3 fields, got %d", len(fields))
	}
	return product.ParseNew(fields[0], fields[1], fields[2])
}

// streamGzFile opens a gzip-compressed file and calls fn for each line with
// its 1-based number.
func streamGzFile(ctx context.Context, path string, fn func(n int, line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	var n int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		n++
		fn(n, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}
