package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	helix "github.com/BackendStack21/helix-go"
	"github.com/BackendStack21/helix-go/core"
)

// EncryptBatch encrypts independent buffers concurrently with at most workers goroutines
// (runtime.NumCPU() if workers <= 0). Results keep the order of inputs.
// Cancellation is checked between items; a single item always runs to completion.
func EncryptBatch(ctx context.Context, inputs [][]byte, params helix.Params, workers int) ([][]byte, error) {
	return batch(ctx, inputs, params, workers, Encrypt)
}

// DecryptBatch is the concurrent counterpart of Decrypt.
func DecryptBatch(ctx context.Context, inputs [][]byte, params helix.Params, workers int) ([][]byte, error) {
	return batch(ctx, inputs, params, workers, Decrypt)
}

func batch(ctx context.Context, inputs [][]byte, params helix.Params, workers int, fn helix.EncryptFunc) ([][]byte, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}
	for _, in := range inputs {
		if err := check(in, params); err != nil {
			return nil, err
		}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([][]byte, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		i, in := i, in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = fn(in, params.DNARounds, params.ProteinRounds, params.R, params.X0)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
