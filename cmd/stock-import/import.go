package main

import (
	"context"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/sklad/internal/domain/product"
)

const (
	minBloomCapacity = 1024
	bloomFPR         = 0.001
)

type stats struct {
	Added      int
	Duplicates int
	Invalid    int
}

// importProducts adds the parsed records file by file, line by line. A name
// already in the store, or earlier in the import, is skipped. The Bloom
// filter answers most "new name" lookups; its positives are confirmed
// against the store.
func importProducts(ctx context.Context, repo product.Repository, svc *product.Service, batches []batch) (stats, error) {
	lg := zctx.From(ctx)

	existing, err := repo.List(ctx)
	if err != nil {
		return stats{}, errors.Wrap(err, "list products")
	}

	capacity := len(existing)
	for _, b := range batches {
		capacity += len(b.records)
	}
	filter := bloom.NewWithEstimates(uint(max(capacity, minBloomCapacity)), bloomFPR)
	for _, p := range existing {
		filter.AddString(p.Name)
	}

	var st stats
	for _, b := range batches {
		st.Invalid += b.invalid
		for _, r := range b.records {
			if err := ctx.Err(); err != nil {
				return st, err
			}
			name := r.product.Name
			if filter.TestString(name) {
				exists, err := repo.ExistsByName(ctx, name)
				if err != nil {
					return st, errors.Wrapf(err, "lookup %q", name)
				}
				if exists {
					st.Duplicates++
					lg.Debug("Duplicate product skipped",
						zap.String("file", b.path),
						zap.Int("line", r.line),
						zap.String("name", name),
					)
					continue
				}
			}
			if _, err := svc.Add(ctx, r.product); err != nil {
				return st, errors.Wrapf(err, "%s:%d", b.path, r.line)
			}
			filter.AddString(name)
			st.Added++
		}
	}
	return st, nil
}
